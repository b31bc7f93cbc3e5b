package pipeline

import (
	"regexp"
	"strconv"
)

// sizePattern matches a sheet count in a product name: one or more digits,
// optional whitespace, the unit glyph, with an optional trailing suffix.
// Examples: "70매", "100매입", "60 매".
var sizePattern = regexp.MustCompile(`(\d+)\s*매(?:입)?`)

// ParseSize extracts the unit count from a free-text product name.
// It returns the first match's numeric value, or nil when the name is
// blank or carries no recognizable count.
func ParseSize(name string) *int {
	if name == "" {
		return nil
	}
	m := sizePattern.FindStringSubmatch(name)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}
