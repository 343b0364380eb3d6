package utils

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikeContains builds a LIKE/ILIKE pattern matching term as a literal substring.
func LikeContains(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
