package analysis

import (
	"strings"
	"unicode"

	"github.com/bbalet/stopwords"
)

// Keywords returns the distinct non-stop words of text in order of first
// appearance.
func Keywords(text string) []string {
	cleaned := stopwords.CleanString(strings.ToLower(text), "en", false)
	words := strings.FieldsFunc(cleaned, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	seen := make(map[string]bool, len(words))
	var out []string
	for _, w := range words {
		w = strings.Trim(w, "'")
		if len(w) < 2 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
