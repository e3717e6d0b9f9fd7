// internal/app/system/sanitize/sanitize.go
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Item fields are free text typed on a phone and rendered on every other
// member's screen, so they go through the strict policy: all markup is
// stripped, only text survives.
var strict = bluemonday.StrictPolicy()

// Text strips any HTML from a user-supplied value and trims whitespace.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
