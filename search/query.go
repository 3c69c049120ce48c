// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danielhkuo/petitions/db"
)

// SortKey orders search results. Every key is completed by petition id
// ascending so that pages never overlap or skip.
type SortKey string

const (
	AlphabeticalAsc  SortKey = "ALPHABETICAL_ASC"
	AlphabeticalDesc SortKey = "ALPHABETICAL_DESC"
	CostAsc          SortKey = "COST_ASC"
	CostDesc         SortKey = "COST_DESC"
	CreatedAsc       SortKey = "CREATED_ASC"
	CreatedDesc      SortKey = "CREATED_DESC"
)

// DefaultSort applies when the caller gives no sort key.
const DefaultSort = CreatedAsc

// orderClauses builds the ORDER BY terms of each key, before the id
// tie-break. Titles sort by their case-folded form first, so "apple" and
// "Banana" order the same way on every backend.
var orderClauses = map[SortKey]func(d db.Dialect) string{
	AlphabeticalAsc: func(d db.Dialect) string {
		return d.Fold("p.title") + " ASC, p.title ASC"
	},
	AlphabeticalDesc: func(d db.Dialect) string {
		return d.Fold("p.title") + " DESC, p.title DESC"
	},
	CostAsc:     constOrder(minCostExpr + " ASC"),
	CostDesc:    constOrder(minCostExpr + " DESC"),
	CreatedAsc:  constOrder("p.creation_date ASC"),
	CreatedDesc: constOrder("p.creation_date DESC"),
}

func constOrder(clause string) func(db.Dialect) string {
	return func(db.Dialect) string { return clause }
}

// ParseSortKey maps a sortBy query value to a SortKey. The empty string
// selects DefaultSort.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return DefaultSort, nil
	}
	k := SortKey(s)
	if _, ok := orderClauses[k]; !ok {
		return "", fmt.Errorf("unknown sort key %q", s)
	}
	return k, nil
}

// Query is a petition search. Nil pointers and empty values mean "no filter".
// Category IDs must already be known to exist.
type Query struct {
	Q              string
	CategoryIDs    []int64
	SupportingCost *int64 // cheapest tier cost <= value; 0 keeps free petitions only
	OwnerID        *int64
	SupporterID    *int64
	SortBy         SortKey
	StartIndex     int
	Count          *int // nil is unbounded
}

// Statement is a built search: a count over the filtered set and one page
// of it, both sharing the same FROM and WHERE.
type Statement struct {
	CountSQL  string
	CountArgs []any
	PageSQL   string
	PageArgs  []any
}

// minCostExpr is the cheapest tier cost of a petition, used for both the
// supportingCost filter and the COST_* sorts.
const minCostExpr = "COALESCE(c.min_cost, 0)"

const fromClause = `
FROM petition p
JOIN "user" u ON u.id = p.owner_id
LEFT JOIN (
    SELECT petition_id, MIN(cost) AS min_cost
    FROM support_tier
    GROUP BY petition_id
) c ON c.petition_id = p.id`

const summaryColumns = `
SELECT p.id, p.title, p.category_id, p.owner_id, u.first_name, u.last_name,
       p.creation_date, ` + minCostExpr

// params accumulates bound values and hands out $N placeholders.
type params struct {
	args []any
}

func (p *params) add(v any) string {
	p.args = append(p.args, v)
	return "$" + strconv.Itoa(len(p.args))
}

// predicates turns the filters of q into WHERE clauses. Each filter adds at
// most one clause, and every value is bound, never inlined.
func predicates(q Query, d db.Dialect, p *params) []string {
	var where []string

	if q.Q != "" {
		n := d.Fold(p.add("%" + escapeLike(q.Q) + "%"))
		where = append(where, fmt.Sprintf(
			`(%[1]s LIKE %[3]s ESCAPE '\' OR %[2]s LIKE %[3]s ESCAPE '\')`,
			d.Fold("p.title"), d.Fold("p.description"), n))
	}

	if len(q.CategoryIDs) > 0 {
		holders := make([]string, len(q.CategoryIDs))
		for i, id := range q.CategoryIDs {
			holders[i] = p.add(id)
		}
		where = append(where, "p.category_id IN ("+strings.Join(holders, ", ")+")")
	}

	if q.SupportingCost != nil {
		where = append(where, "c.min_cost <= "+p.add(*q.SupportingCost))
	}

	if q.OwnerID != nil {
		where = append(where, "p.owner_id = "+p.add(*q.OwnerID))
	}

	if q.SupporterID != nil {
		where = append(where,
			"EXISTS (SELECT 1 FROM supporter s WHERE s.petition_id = p.id AND s.user_id = "+p.add(*q.SupporterID)+")")
	}

	return where
}

// Build assembles the count and page statements for q.
func Build(q Query, dialect db.Dialect) Statement {
	p := &params{}
	where := predicates(q, dialect, p)

	body := fromClause
	if len(where) > 0 {
		body += "\nWHERE " + strings.Join(where, "\n  AND ")
	}

	// The filter values are shared; the page appends its own window.
	countArgs := append([]any(nil), p.args...)

	sortBy := q.SortBy
	if _, ok := orderClauses[sortBy]; !ok {
		sortBy = DefaultSort
	}

	var page strings.Builder
	page.WriteString(summaryColumns)
	page.WriteString(body)
	page.WriteString("\nORDER BY " + orderClauses[sortBy](dialect) + ", p.id ASC")

	switch {
	case q.Count != nil:
		page.WriteString("\nLIMIT " + p.add(max(*q.Count, 0)))
	case q.StartIndex > 0:
		page.WriteString("\nLIMIT " + dialect.UnboundedLimit())
	}
	if q.StartIndex > 0 {
		page.WriteString(" OFFSET " + p.add(q.StartIndex))
	}

	return Statement{
		CountSQL:  "SELECT COUNT(*)" + body,
		CountArgs: countArgs,
		PageSQL:   page.String(),
		PageArgs:  p.args,
	}
}

// escapeLike makes LIKE metacharacters in a search term match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
