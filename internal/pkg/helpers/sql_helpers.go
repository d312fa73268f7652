package helpers

import (
	"strings"

	"github.com/Masterminds/squirrel"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards in user input
func EscapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// SearchCondition builds a case-insensitive substring match over the given columns.
// It returns nil when term is blank.
func SearchCondition(term string, columns ...string) squirrel.Sqlizer {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return nil
	}

	pattern := "%" + EscapeLike(term) + "%"
	or := make(squirrel.Or, 0, len(columns))
	for _, column := range columns {
		or = append(or, squirrel.ILike{column: pattern})
	}
	return or
}

// ContainsFold reports whether any of the values contains term, ignoring case.
// It is the in-memory counterpart of SearchCondition.
func ContainsFold(term string, values ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}
