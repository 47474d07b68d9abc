package blogvault_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blogvault/blogvault"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "Simple title",
			title:    "Hello World",
			expected: "hello-world",
		},
		{
			name:     "Diacritics are stripped",
			title:    "Café com Leite!",
			expected: "cafe-com-leite",
		},
		{
			name:     "Mixed case and digits",
			title:    "Top 10 Dicas de Go",
			expected: "top-10-dicas-de-go",
		},
		{
			name:     "Symbols are dropped",
			title:    "São João & Maria",
			expected: "sao-joao-maria",
		},
		{
			name:     "Whitespace runs collapse",
			title:    "  spaced    out  title ",
			expected: "spaced-out-title",
		},
		{
			name:     "Hyphen runs collapse",
			title:    "--hello---world--",
			expected: "hello-world",
		},
		{
			name:     "Hyphens next to spaces",
			title:    "one - two -  three",
			expected: "one-two-three",
		},
		{
			name:     "Tabs and newlines are not word separators",
			title:    "a\tb\nc",
			expected: "abc",
		},
		{
			name:     "Empty title",
			title:    "",
			expected: "",
		},
		{
			name:     "Only symbols",
			title:    "!!!???",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := blogvault.Slugify(tt.title)
			assert.Equal(t, tt.expected, got)

			// Feeding a slug back in must be a fixed point.
			assert.Equal(t, got, blogvault.Slugify(got))
		})
	}
}
