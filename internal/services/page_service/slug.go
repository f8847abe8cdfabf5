package services

import (
	"regexp"
	"strings"
)

var (
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugInvalid    = regexp.MustCompile(`[^a-z0-9-]`)
)

// DeriveSlug builds a URL slug from a page title: lowercase, whitespace
// runs become single hyphens, everything outside [a-z0-9-] is stripped.
// Leading and trailing whitespace turns into hyphens on purpose, the
// slug mirrors the title the operator typed.
func DeriveSlug(title string) string {
	slug := strings.ToLower(title)
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	return slugInvalid.ReplaceAllString(slug, "")
}
