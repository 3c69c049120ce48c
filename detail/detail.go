// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package detail

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/petitions/db"
	"github.com/danielhkuo/petitions/models"
	"golang.org/x/sync/errgroup"
)

var ErrNotFound = errors.New("petition not found")

type Reader struct {
	store *db.Store
}

func NewReader(store *db.Store) *Reader {
	return &Reader{store: store}
}

// Get returns a petition with its tiers and supporter aggregates. Money
// raised sums the cost of the tier each supporter pledged at, and is 0 for
// a petition nobody supports.
func (r *Reader) Get(ctx context.Context, petitionID int64) (models.PetitionDetail, error) {
	var d models.PetitionDetail
	var tiers []models.SupportTier

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.petitionRow(gctx, petitionID, &d)
	})

	g.Go(func() error {
		var err error
		tiers, err = r.tiers(gctx, petitionID)
		return err
	})

	if err := g.Wait(); err != nil {
		return models.PetitionDetail{}, err
	}

	d.SupportTiers = tiers
	return d, nil
}

func (r *Reader) petitionRow(ctx context.Context, petitionID int64, d *models.PetitionDetail) error {
	var image sql.NullString
	err := r.store.DB().QueryRowContext(ctx, `
		SELECT p.id, p.title, p.description, p.category_id, p.owner_id,
		       u.first_name, u.last_name, p.creation_date, p.image_filename,
		       COALESCE((SELECT MIN(t.cost) FROM support_tier t WHERE t.petition_id = p.id), 0),
		       (SELECT COUNT(*) FROM supporter s WHERE s.petition_id = p.id),
		       (SELECT COALESCE(SUM(t.cost), 0)
		          FROM supporter s
		          JOIN support_tier t ON t.id = s.support_tier_id
		         WHERE s.petition_id = p.id)
		FROM petition p
		JOIN "user" u ON u.id = p.owner_id
		WHERE p.id = $1
	`, petitionID).Scan(&d.PetitionID, &d.Title, &d.Description, &d.CategoryID, &d.OwnerID,
		&d.OwnerFirstName, &d.OwnerLastName, &d.CreationDate, &image,
		&d.SupportingCost, &d.NumberOfSupporters, &d.MoneyRaised)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("detail: petition: %w", err)
	}

	if image.Valid {
		d.ImageFilename = &image.String
	}
	return nil
}

func (r *Reader) tiers(ctx context.Context, petitionID int64) ([]models.SupportTier, error) {
	rows, err := r.store.DB().QueryContext(ctx, `
		SELECT id, title, description, cost
		FROM support_tier
		WHERE petition_id = $1
		ORDER BY id
	`, petitionID)
	if err != nil {
		return nil, fmt.Errorf("detail: tiers: %w", err)
	}
	defer rows.Close()

	tiers := []models.SupportTier{}
	for rows.Next() {
		var t models.SupportTier
		if err := rows.Scan(&t.SupportTierID, &t.Title, &t.Description, &t.Cost); err != nil {
			return nil, fmt.Errorf("detail: tiers: %w", err)
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

// Supporters lists a petition's pledges, newest first.
func (r *Reader) Supporters(ctx context.Context, petitionID int64) ([]models.Supporter, error) {
	conn := r.store.DB()

	var found bool
	if err := conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM petition WHERE id = $1)`, petitionID).Scan(&found); err != nil {
		return nil, fmt.Errorf("detail: supporters: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT s.id, s.support_tier_id, s.message, s.user_id,
		       u.first_name, u.last_name, s.timestamp
		FROM supporter s
		JOIN "user" u ON u.id = s.user_id
		WHERE s.petition_id = $1
		ORDER BY s.timestamp DESC, s.id DESC
	`, petitionID)
	if err != nil {
		return nil, fmt.Errorf("detail: supporters: %w", err)
	}
	defer rows.Close()

	supporters := []models.Supporter{}
	for rows.Next() {
		var s models.Supporter
		var message sql.NullString
		if err := rows.Scan(&s.SupportID, &s.SupportTierID, &message, &s.SupporterID,
			&s.SupporterFirstName, &s.SupporterLastName, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("detail: supporters: %w", err)
		}
		if message.Valid {
			s.Message = &message.String
		}
		supporters = append(supporters, s)
	}
	return supporters, rows.Err()
}
