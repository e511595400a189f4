package utils

import (
	"strings"
)

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns free text into a LIKE pattern matching it anywhere.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(NormalizeSpace(s)) + "%"
}
