// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package search

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/danielhkuo/petitions/db"
	"github.com/danielhkuo/petitions/models"
	"golang.org/x/sync/errgroup"
)

// Result is one page of matches plus the number of matches before paging.
type Result struct {
	Petitions []models.PetitionSummary
	Count     int
}

type Searcher struct {
	store *db.Store
}

func NewSearcher(store *db.Store) *Searcher {
	return &Searcher{store: store}
}

// Search runs q. An empty match is an empty, non-nil slice and a zero count.
func (s *Searcher) Search(ctx context.Context, q Query) (Result, error) {
	stmt := Build(q, s.store.Dialect())
	conn := s.store.DB()

	res := Result{Petitions: []models.PetitionSummary{}}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := conn.QueryRowContext(gctx, stmt.CountSQL, stmt.CountArgs...).Scan(&res.Count); err != nil {
			return fmt.Errorf("search: count: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		rows, err := conn.QueryContext(gctx, stmt.PageSQL, stmt.PageArgs...)
		if err != nil {
			return fmt.Errorf("search: query: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var p models.PetitionSummary
			if err := rows.Scan(&p.PetitionID, &p.Title, &p.CategoryID, &p.OwnerID,
				&p.OwnerFirstName, &p.OwnerLastName, &p.CreationDate, &p.SupportingCost); err != nil {
				return fmt.Errorf("search: scan: %w", err)
			}
			res.Petitions = append(res.Petitions, p)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Categories lists the category reference data by id.
func (s *Searcher) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.store.DB().QueryContext(ctx, "SELECT id, name FROM category ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("search: categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.CategoryID, &c.Name); err != nil {
			return nil, fmt.Errorf("search: categories: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CategoriesExist reports whether every id names a category. Callers check
// this before Search, which assumes a valid category set.
func (s *Searcher) CategoriesExist(ctx context.Context, ids []int64) (bool, error) {
	distinct := slices.Clone(ids)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)
	if len(distinct) == 0 {
		return true, nil
	}

	p := &params{}
	holders := make([]string, len(distinct))
	for i, id := range distinct {
		holders[i] = p.add(id)
	}

	var n int
	err := s.store.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM category WHERE id IN ("+strings.Join(holders, ", ")+")",
		p.args...).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("search: categories exist: %w", err)
	}
	return n == len(distinct), nil
}
