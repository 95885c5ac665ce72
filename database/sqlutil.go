package database

import "strings"

// placeholders returns "?, ?, ..." for n parameters of an IN clause.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
