package question

import "strings"

// Render replaces every "{name}" placeholder with the matching value.
// Replacement happens in one pass, so text produced by a value is never re-matched.
func Render(template string, variables []string, values []Value) string {
	n := min(len(variables), len(values))
	if n == 0 {
		return template
	}
	pairs := make([]string, 0, 2*n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, "{"+variables[i]+"}", values[i].String())
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
