package postgres

import (
	"strings"

	"github.com/phrazzld/bookswap-api/internal/domain"
)

// userSummaryColumns are the users columns embedded in book and trade reads.
var userSummaryColumns = []string{"id", "name", "avatar_url"}

// qualifiedColumns renders columns prefixed with a table alias.
func qualifiedColumns(alias string, columns []string) string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return strings.Join(out, ", ")
}

func userSummaryDest(s *domain.UserSummary) []any {
	return []any{&s.ID, &s.Name, &s.AvatarURL}
}
