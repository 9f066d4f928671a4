// Package htmlsanitize checks user-supplied strings against bluemonday
// policies.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every element and attribute. It is safe for concurrent use.
var strict = bluemonday.StrictPolicy()

// StripTags returns s with all markup removed.
func StripTags(s string) string {
	return strict.Sanitize(s)
}

// IsPlainText reports whether s is non-blank and survives the strict policy
// unchanged, i.e. carries no markup and no characters bluemonday would escape.
func IsPlainText(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return strict.Sanitize(s) == s
}
