package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Assets:Bank:Checking", true},
		{"Expenses:Food-Out", true},
		{"Unknown:Account", true},
		{"Assets", true},
		{"2ndPillar:Savings", true},
		{"", false},
		{"assets:Bank", false},
		{"Assets:", false},
		{":Assets", false},
		{"Assets:bank", false},
		{"Assets:-Bank", false},
		{"Assets Bank", false},
		{"Expenses:Café", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Valid(tt.name), "Valid(%q)", tt.name)
	}
}

func TestRoot(t *testing.T) {
	assert.Equal(t, "Assets", Root("Assets:Bank:Checking"))
	assert.Equal(t, "Expenses", Root("Expenses"))
	assert.Equal(t, "", Root(""))
}
