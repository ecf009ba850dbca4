package question

import (
	"regexp"
	"strings"
)

// variablePattern matches one letter followed by anything up to the next '*'
var variablePattern = regexp.MustCompile(`([a-zA-Z])[^*]*\*`)

// ExtractVariables returns the distinct variable names of an operand column in first-seen order
func ExtractVariables(operandColumn string) []string {
	var (
		names []string
		seen  = make(map[string]bool)
	)
	for _, m := range variablePattern.FindAllStringSubmatch(operandColumn, -1) {
		if name := m[1]; !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// SplitOperands splits an operand column into its non-blank '*' delimited tokens
func SplitOperands(operandColumn string) []string {
	var tokens []string
	for _, part := range strings.Split(operandColumn, "*") {
		if part = strings.TrimSpace(part); part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}
