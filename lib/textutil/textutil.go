package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CollapseSpace trims a string and collapses runs of whitespace into a single space.
func CollapseSpace(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// FoldName is the comparison form of a display name: lowercase with single spaces.
func FoldName(name string) string {
	return strings.ToLower(CollapseSpace(name))
}

// ContainsAny reports whether s contains any of the given substrings.
func ContainsAny(s string, substrings ...string) bool {
	for _, m := range substrings {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch", 'ы': "y",
	'э': "e", 'ю': "yu", 'я': "ya", 'ь': "", 'ъ': "", 'і': "i", 'ї': "yi", 'є': "e", 'ґ': "g",
}

var (
	nonSlugRegex = regexp.MustCompile(`[^a-z0-9]+`)
	stripMarks   = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify transliterates cyrillic, strips diacritics and turns the rest into a
// lowercase dash separated identifier.
//
// Unknown cyrillic letters are dropped.
func Slugify(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			b.WriteString(cyrillic[r])
			continue
		}
		b.WriteRune(r)
	}

	out, _, err := transform.String(stripMarks, b.String())
	if err != nil {
		out = b.String()
	}
	out = nonSlugRegex.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}
