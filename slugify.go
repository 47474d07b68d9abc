package blogvault

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and removes combining diacritical marks,
// so that "Café" becomes "Cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Slugify derives the URL slug for a post title: lower-case, diacritics
// stripped, everything outside [a-z0-9 -] dropped, whitespace runs replaced
// with a single hyphen, hyphen runs collapsed, leading and trailing hyphens
// trimmed. An empty title yields an empty slug.
//
// The derivation is deliberately stable; slugs produced by earlier versions of
// the admin must keep resolving, so do not change the rules.
func Slugify(title string) string {
	lowered := strings.ToLower(title)

	decomposed, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		decomposed = lowered
	}

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '-':
			b.WriteRune(r)
		}
	}

	// Only literal spaces survive the filter above, so joining the fields
	// collapses every whitespace run into one hyphen.
	s := strings.Join(strings.Fields(b.String()), "-")

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}

	return strings.Trim(s, "-")
}
