package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xavierca1/artisan-crm/internal/entity"
)

const dateLayout = "2006-01-02"

// sortColumns is the allow-list of fields a client may sort by. Anything
// else is rejected instead of silently falling back.
var sortColumns = map[string]string{
	"id":             "id",
	"name":           "name",
	"email":          "email",
	"company":        "company",
	"phone":          "phone",
	"stage":          "stage",
	"engaged":        "engaged",
	"last_contacted": "last_contacted",
	"created_at":     "created_at",
	"updated_at":     "updated_at",
}

// leadQuery is a composed list query: conjunctive WHERE predicates with
// positional args, plus a fully resolved ORDER BY clause.
type leadQuery struct {
	where []string
	args  []any
	order string
}

// composeLeadQuery applies, in order: free-text search (OR over name, email
// and company), stage equality, engaged equality, inclusive created_at
// bounds, then the sort directive. A malformed date bound is logged and
// skipped; an unknown sort field fails the whole query.
func composeLeadQuery(params entity.ListParams) (*leadQuery, error) {
	q := &leadQuery{order: "created_at DESC"}

	if params.Search != "" {
		q.args = append(q.args, "%"+params.Search+"%")
		n := len(q.args)
		q.where = append(q.where,
			fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR company ILIKE $%d)", n, n, n))
	}

	f := params.Filters
	if f == nil {
		return q, nil
	}

	if f.Stage != "" {
		q.addPredicate("stage = $%d", f.Stage)
	}
	if f.Engaged != "" {
		q.addPredicate("engaged = $%d", strings.EqualFold(f.Engaged, "true"))
	}
	if f.CreatedAtStart != "" {
		start, err := time.Parse(dateLayout, f.CreatedAtStart)
		if err != nil {
			log.Printf("query: error parsing createdAtStart %q: %v", f.CreatedAtStart, err)
		} else {
			q.addPredicate("created_at >= $%d", start)
		}
	}
	if f.CreatedAtEnd != "" {
		end, err := time.Parse(dateLayout, f.CreatedAtEnd)
		if err != nil {
			log.Printf("query: error parsing createdAtEnd %q: %v", f.CreatedAtEnd, err)
		} else {
			q.addPredicate("created_at <= $%d", end)
		}
	}

	if f.SortField != "" {
		col, ok := sortColumns[f.SortField]
		if !ok {
			return nil, fmt.Errorf("%w: %s", entity.ErrInvalidSortField, f.SortField)
		}
		dir := "DESC"
		if strings.EqualFold(f.SortOrder, "asc") {
			dir = "ASC"
		}
		q.order = col + " " + dir
	}

	return q, nil
}

func (q *leadQuery) addPredicate(format string, arg any) {
	q.args = append(q.args, arg)
	q.where = append(q.where, fmt.Sprintf(format, len(q.args)))
}

func (q *leadQuery) whereClause() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

// countSQL counts every match, ignoring pagination.
func (q *leadQuery) countSQL() string {
	return "SELECT COUNT(*) FROM leads" + q.whereClause()
}

// pageSQL returns the bounded, ordered page query and its full arg list.
func (q *leadQuery) pageSQL(skip, limit int) (string, []any) {
	args := append(append([]any{}, q.args...), limit, skip)
	n := len(q.args)
	stmt := fmt.Sprintf(
		"SELECT %s FROM leads%s ORDER BY %s LIMIT $%d OFFSET $%d",
		leadColumns, q.whereClause(), q.order, n+1, n+2,
	)
	return stmt, args
}
