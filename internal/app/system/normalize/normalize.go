// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address so lookups and the unique
// index agree on a single canonical form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses interior runs of spaces.
// Case is preserved; display names are shown as the user typed them.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
