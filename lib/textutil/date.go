package textutil

import (
	"fmt"
	"regexp"
	"strings"
)

// ConvertDate turns "DD.MM.YY" or "DD.MM.YYYY" into "YYYY-MM-DD".
//
// Two digit years are assumed to be in the 2000s. The result is not
// validated, callers should check it against the ISO layout.
func ConvertDate(date string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(date), ".")
	if len(parts) != 3 {
		return "", false
	}
	d, m, y := parts[0], parts[1], parts[2]
	if y == "" || m == "" || d == "" {
		return "", false
	}
	if len(y) == 2 {
		y = "20" + y
	}
	return fmt.Sprintf("%s-%s-%s", y, m, d), true
}

var titleDateRegex = regexp.MustCompile(`(\d{2})[./](\d{2})[./](\d{2,4})`)

// DateFromTitle finds the first DD.MM.YY(YY) (or slash separated) date in a string.
func DateFromTitle(title string) (string, bool) {
	m := titleDateRegex.FindStringSubmatch(title)
	if m == nil {
		return "", false
	}
	y := m[3]
	if len(y) == 2 {
		y = "20" + y
	}
	return fmt.Sprintf("%s-%s-%s", y, m[2], m[1]), true
}
