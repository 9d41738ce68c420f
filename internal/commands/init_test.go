package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banklift-dev/banklift/internal/config"
)

func runInitCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"init"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	out, err := runInitCmd(t, dir, "--account", "Assets:Bank:Checking")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized banklift import directory")

	cfg, err := config.Load(filepath.Join(dir, ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, "Assets:Bank:Checking", cfg.Account)
	assert.Equal(t, "volksbank", cfg.Format)

	for _, sub := range []string{"import", filepath.Join("import", "processed")} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err, sub)
		assert.True(t, info.IsDir())
	}
}

func TestInit_WithJournal(t *testing.T) {
	dir := t.TempDir()
	_, err := runInitCmd(t, dir, "--account", "Assets:Bank:Giro", "--journal", "main.beancount")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, "main.beancount", cfg.Journal)
}

func TestInit_RequiresAccount(t *testing.T) {
	_, err := runInitCmd(t, t.TempDir())
	assert.Error(t, err)
}

func TestInit_RejectsBadAccount(t *testing.T) {
	_, err := runInitCmd(t, t.TempDir(), "--account", "checking")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid account name")
}
