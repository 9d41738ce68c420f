// Package accounts implements the account-name grammar shared by the
// journal reader, the configuration surface, and the output writer.
package accounts

import "strings"

// Valid reports whether name is a well-formed account name: one or more
// colon-separated segments, each starting with an uppercase letter or a
// digit and continuing with letters, digits, or dashes.
// "Expenses:Food:Groceries" is valid; "expenses:food" and "Expenses:"
// are not.
func Valid(name string) bool {
	if name == "" {
		return false
	}
	for _, seg := range strings.Split(name, ":") {
		if !validSegment(seg) {
			return false
		}
	}
	return true
}

func validSegment(seg string) bool {
	if seg == "" {
		return false
	}
	for i, r := range seg {
		switch {
		case r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z' || r == '-':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Root returns the first segment of an account name.
// Root("Assets:Bank:Checking") = "Assets".
func Root(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i]
	}
	return name
}
