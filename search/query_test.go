// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package search

import (
	"strings"
	"testing"

	"github.com/danielhkuo/petitions/db"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in      string
		want    SortKey
		wantErr bool
	}{
		{"", CreatedAsc, false},
		{"ALPHABETICAL_ASC", AlphabeticalAsc, false},
		{"ALPHABETICAL_DESC", AlphabeticalDesc, false},
		{"COST_ASC", CostAsc, false},
		{"COST_DESC", CostDesc, false},
		{"CREATED_ASC", CreatedAsc, false},
		{"CREATED_DESC", CreatedDesc, false},
		{"created_asc", "", true},
		{"POPULAR", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSortKey(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_NoFilters(t *testing.T) {
	stmt := Build(Query{}, db.SQLite)

	assert.NotContains(t, stmt.CountSQL, "WHERE")
	assert.NotContains(t, stmt.PageSQL, "WHERE")
	assert.NotContains(t, stmt.PageSQL, "LIMIT")
	assert.NotContains(t, stmt.PageSQL, "OFFSET")
	assert.Empty(t, stmt.CountArgs)
	assert.Empty(t, stmt.PageArgs)
	assert.Contains(t, stmt.PageSQL, "ORDER BY p.creation_date ASC, p.id ASC")
}

func TestBuild_SharesPredicates(t *testing.T) {
	q := Query{
		Q:              "park",
		CategoryIDs:    []int64{1, 2, 3},
		SupportingCost: int64Ptr(5),
		OwnerID:        int64Ptr(7),
		SupporterID:    int64Ptr(9),
		SortBy:         CostDesc,
		StartIndex:     10,
		Count:          intPtr(20),
	}
	stmt := Build(q, db.Postgres)

	wantFilterArgs := []any{"%park%", int64(1), int64(2), int64(3), int64(5), int64(7), int64(9)}
	assert.Equal(t, wantFilterArgs, stmt.CountArgs)
	assert.Equal(t, append(wantFilterArgs, 20, 10), stmt.PageArgs)

	// Identical WHERE text in both statements
	countWhere := stmt.CountSQL[strings.Index(stmt.CountSQL, "WHERE"):]
	assert.Contains(t, stmt.PageSQL, countWhere)

	assert.Contains(t, stmt.CountSQL, "p.category_id IN ($2, $3, $4)")
	assert.Contains(t, stmt.CountSQL, "c.min_cost <= $5")
	assert.Contains(t, stmt.CountSQL, "p.owner_id = $6")
	assert.Contains(t, stmt.CountSQL, "s.user_id = $7")
	assert.Contains(t, stmt.PageSQL, "ORDER BY COALESCE(c.min_cost, 0) DESC, p.id ASC")
	assert.Contains(t, stmt.PageSQL, "LIMIT $8 OFFSET $9")
}

func TestBuild_Window(t *testing.T) {
	tests := []struct {
		name     string
		q        Query
		dialect  db.Dialect
		contains string
		args     []any
	}{
		{"count only", Query{Count: intPtr(5)}, db.SQLite, "LIMIT $1", []any{5}},
		{"zero count", Query{Count: intPtr(0)}, db.SQLite, "LIMIT $1", []any{0}},
		{"offset without count sqlite", Query{StartIndex: 3}, db.SQLite, "LIMIT -1 OFFSET $1", []any{3}},
		{"offset without count postgres", Query{StartIndex: 3}, db.Postgres, "LIMIT ALL OFFSET $1", []any{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := Build(tt.q, tt.dialect)
			assert.Contains(t, stmt.PageSQL, tt.contains)
			assert.Equal(t, tt.args, stmt.PageArgs)
			assert.Empty(t, stmt.CountArgs)
			assert.NotContains(t, stmt.CountSQL, "LIMIT")
		})
	}
}

func TestBuild_UnknownSortFallsBackToDefault(t *testing.T) {
	stmt := Build(Query{SortBy: "NOPE"}, db.SQLite)
	assert.Contains(t, stmt.PageSQL, "ORDER BY p.creation_date ASC, p.id ASC")
}

func TestBuild_NeverInlinesValues(t *testing.T) {
	q := Query{Q: "'; DROP TABLE petition; --"}
	stmt := Build(q, db.SQLite)
	assert.NotContains(t, stmt.CountSQL, "DROP")
	assert.NotContains(t, stmt.PageSQL, "DROP")
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"park", "park"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeLike(tt.in), tt.in)
	}
}

func TestBuild_FoldsTextPerDialect(t *testing.T) {
	tests := []struct {
		dialect db.Dialect
		where   string
		order   string
	}{
		{db.SQLite, `fold(p.title) LIKE fold($1)`, "ORDER BY fold(p.title) ASC, p.title ASC, p.id ASC"},
		{db.Postgres, `LOWER(p.title) LIKE LOWER($1)`, "ORDER BY LOWER(p.title) ASC, p.title ASC, p.id ASC"},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			stmt := Build(Query{Q: "école", SortBy: AlphabeticalAsc}, tt.dialect)
			assert.Contains(t, stmt.CountSQL, tt.where)
			assert.Contains(t, stmt.PageSQL, tt.order)
			assert.Equal(t, []any{"%école%"}, stmt.CountArgs)
		})
	}
}
