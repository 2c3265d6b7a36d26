package sqlxrepos

import (
	"strings"

	"github.com/trezcool/chama/core"
)

// per-table sortable columns; anything else in an ordering is ignored
var (
	userColumns    = columnSet("name", "username", "email", "is_active", "created_at", "updated_at", "last_login")
	memberColumns  = columnSet("display_name", "role", "joined_at", "created_at", "updated_at")
	eventColumns   = columnSet("title", "slug", "starts_at", "ends_at", "published", "created_at", "updated_at")
	postColumns    = columnSet("title", "slug", "published_at", "created_at", "updated_at")
	contactColumns = columnSet("name", "email", "subject", "created_at")
)

func columnSet(cols ...string) map[string]bool {
	set := make(map[string]bool, len(cols))
	for _, col := range cols {
		set[col] = true
	}
	return set
}

// orderBy renders an ORDER BY clause from `ordering`, keeping only fields
// present in `allowed`. Returns "" when nothing survives.
func orderBy(ordering []core.DBOrdering, allowed map[string]bool) string {
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if allowed[ord.Field] {
			orderList = append(orderList, ord.String())
		}
	}
	if len(orderList) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(orderList, ", ")
}
