// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/petitions/db"
	"github.com/danielhkuo/petitions/guard"
	"github.com/danielhkuo/petitions/images"
	"github.com/danielhkuo/petitions/metrics"
	"github.com/danielhkuo/petitions/models"
)

var (
	ErrNotFound = errors.New("petition not found")
	ErrNoImage  = errors.New("petition has no image")
)

// errDenied rolls back a transaction whose decision turned negative after
// it had started writing.
var errDenied = errors.New("denied")

// Operation names used in logs and the guard_decisions_total metric.
const (
	OpCreatePetition    = "create_petition"
	OpEditPetition      = "edit_petition"
	OpDeletePetition    = "delete_petition"
	OpSetPetitionImage  = "set_petition_image"
	OpAddSupportTier    = "add_support_tier"
	OpEditSupportTier   = "edit_support_tier"
	OpDeleteSupportTier = "delete_support_tier"
	OpAddSupporter      = "add_supporter"
)

// Service performs petition, tier and supporter mutations. Each one runs
// its guard and its write in a single transaction, and writes only when the
// guard allows it.
type Service struct {
	store  *db.Store
	images *images.Store
	now    func() time.Time
}

func NewService(store *db.Store, imageStore *images.Store) *Service {
	return &Service{
		store:  store,
		images: imageStore,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// run wraps fn in a transaction and records the decision it reached.
func (s *Service) run(ctx context.Context, op string, fn func(tx *sql.Tx, g *guard.Guard) (guard.Decision, error)) (guard.Decision, error) {
	var d guard.Decision
	err := s.store.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		d, err = fn(tx, guard.New(tx))
		if err == nil && !d.OK() {
			// Postgres aborts the transaction after a failed insert.
			return errDenied
		}
		return err
	})
	if errors.Is(err, errDenied) {
		err = nil
	}
	if err != nil {
		return guard.Decision{}, err
	}

	metrics.RecordDecision(op, d.Verdict.String())
	if !d.OK() {
		slog.Debug("mutation denied", "operation", op, "verdict", d.Verdict.String(), "reason", d.Reason)
	}
	return d, nil
}

// conflictOnUnique converts a unique-constraint race the guard could not
// see into a Conflict decision.
func conflictOnUnique(err error, reason string) (guard.Decision, error) {
	if db.IsUniqueViolation(err) {
		return guard.Decision{Verdict: guard.Conflict, Reason: reason}, nil
	}
	return guard.Decision{}, err
}

// CreatePetition creates a petition and its initial tiers for ownerID.
func (s *Service) CreatePetition(ctx context.Context, ownerID int64, req models.CreatePetitionRequest) (int64, guard.Decision, error) {
	var id int64

	d, err := s.run(ctx, OpCreatePetition, func(tx *sql.Tx, g *guard.Guard) (guard.Decision, error) {
		d, err := g.CanCreatePetition(ctx, req.Title, req.CategoryID)
		if err != nil || !d.OK() {
			return d, err
		}

		titles := make([]string, len(req.SupportTiers))
		for i, t := range req.SupportTiers {
			titles[i] = t.Title
		}
		if d := guard.CanCreateInitialTiers(titles); !d.OK() {
			return d, nil
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO petition (title, description, creation_date, owner_id, category_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, req.Title, req.Description, s.now(), ownerID, req.CategoryID).Scan(&id)
		if err != nil {
			return conflictOnUnique(fmt.Errorf("catalog: insert petition: %w", err), guard.ReasonTitleTaken)
		}

		for _, t := range req.SupportTiers {
			if _, err := insertTier(ctx, tx, id, t); err != nil {
				return guard.Decision{}, err
			}
		}
		return d, nil
	})
	if err != nil || !d.OK() {
		return 0, d, err
	}

	slog.Info("petition created", "petition_id", id, "owner_id", ownerID, "tiers", len(req.SupportTiers))
	return id, d, nil
}

func insertTier(ctx context.Context, tx *sql.Tx, petitionID int64, t models.SupportTierRequest) (int64, error) {
	var cost int64
	if t.Cost != nil {
		cost = *t.Cost
	}

	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO support_tier (petition_id, title, description, cost)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, petitionID, t.Title, t.Description, cost).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("catalog: insert tier: %w", err)
	}
	return id, nil
}

// EditPetition applies the non-nil fields of req.
func (s *Service) EditPetition(ctx context.Context, petitionID int64, token string, req models.EditPetitionRequest) (guard.Decision, error) {
	d, err := s.run(ctx, OpEditPetition, func(tx *sql.Tx, g *guard.Guard) (guard.Decision, error) {
		d, err := g.CanEditPetition(ctx, petitionID, token, req.Title, req.CategoryID)
		if err != nil || !d.OK() {
			return d, err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE petition
			SET title = COALESCE($1, title),
			    description = COALESCE($2, description),
			    category_id = COALESCE($3, category_id)
			WHERE id = $4
		`, req.Title, req.Description, req.CategoryID, petitionID)
		if err != nil {
			return conflictOnUnique(fmt.Errorf("catalog: update petition: %w", err), guard.ReasonTitleTaken)
		}
		return d, nil
	})
	if err == nil && d.OK() {
		slog.Info("petition edited", "petition_id", petitionID)
	}
	return d, err
}

// DeletePetition removes an unsupported petition, its tiers and its image.
func (s *Service) DeletePetition(ctx context.Context, petitionID int64, token string) (guard.Decision, error) {
	var image sql.NullString

	d, err := s.run(ctx, OpDeletePetition, func(tx *sql.Tx, g *guard.Guard) (guard.Decision, error) {
		d, err := g.CanDeletePetition(ctx, petitionID, token)
		if err != nil || !d.OK() {
			return d, err
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT image_filename FROM petition WHERE id = $1`, petitionID).Scan(&image); err != nil {
			return guard.Decision{}, fmt.Errorf("catalog: delete petition: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM support_tier WHERE petition_id = $1`, petitionID); err != nil {
			return guard.Decision{}, fmt.Errorf("catalog: delete tiers: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM petition WHERE id = $1`, petitionID); err != nil {
			return guard.Decision{}, fmt.Errorf("catalog: delete petition: %w", err)
		}
		return d, nil
	})
	if err != nil || !d.OK() {
		return d, err
	}

	if image.Valid {
		if err := s.images.Remove(image.String); err != nil {
			slog.Warn("failed to remove petition image", "petition_id", petitionID, "error", err)
		}
	}
	slog.Info("petition deleted", "petition_id", petitionID)
	return d, nil
}

// SetPetitionImage stores a new image for the petition, replacing any
// previous one. created reports whether the petition had no image before.
func (s *Service) SetPetitionImage(ctx context.Context, petitionID int64, token string, data []byte, ext string) (created bool, d guard.Decision, err error) {
	var previous sql.NullString
	var filename string

	d, err = s.run(ctx, OpSetPetitionImage, func(tx *sql.Tx, g *guard.Guard) (guard.Decision, error) {
		d, err := g.CanSetPetitionImage(ctx, petitionID, token)
		if err != nil || !d.OK() {
			return d, err
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT image_filename FROM petition WHERE id = $1`, petitionID).Scan(&previous); err != nil {
			return guard.Decision{}, fmt.Errorf("catalog: set image: %w", err)
		}

		if filename == "" {
			if filename, err = s.images.Save(data, ext); err != nil {
				return guard.Decision{}, err
			}
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE petition SET image_filename = $1 WHERE id = $2`, filename, petitionID); err != nil {
			return guard.Decision{}, fmt.Errorf("catalog: set image: %w", err)
		}
		return d, nil
	})
	if err != nil || !d.OK() {
		if filename != "" {
			_ = s.images.Remove(filename)
		}
		return false, d, err
	}

	if previous.Valid && previous.String != "" {
		if err := s.images.Remove(previous.String); err != nil {
			slog.Warn("failed to remove replaced image", "petition_id", petitionID, "error", err)
		}
		return false, d, nil
	}
	return true, d, nil
}

// PetitionImage returns the petition's image and its content type.
func (s *Service) PetitionImage(ctx context.Context, petitionID int64) ([]byte, string, error) {
	var image sql.NullString
	err := s.store.DB().QueryRowContext(ctx,
		`SELECT image_filename FROM petition WHERE id = $1`, petitionID).Scan(&image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("catalog: petition image: %w", err)
	}
	if !image.Valid || image.String == "" {
		return nil, "", ErrNoImage
	}
	return s.images.Read(image.String)
}

// AddSupportTier adds a tier to an existing petition.
func (s *Service) AddSupportTier(ctx context.Context, petitionID int64, token string, req models.SupportTierRequest) (int64, guard.Decision, error) {
	var id int64

	d, err := s.run(ctx, OpAddSupportTier, func(tx *sql.Tx, g *guard.Guard) (guard.Decision, error) {
		d, err := g.CanAddSupportTier(ctx, petitionID, token, req.Title)
		if err != nil || !d.OK() {
			return d, err
		}

		id, err = insertTier(ctx, tx, petitionID, req)
		if err != nil {
			return conflictOnUnique(err, guard.ReasonTierTitleRepeated)
		}
		return d, nil
	})
	if err != nil || !d.OK() {
		return 0, d, err
	}

	slog.Info("support tier added", "petition_id", petitionID, "tier_id", id)
	return id, d, nil
}

// EditSupportTier applies the non-nil fields of req to an unsupported tier.
func (s *Service) EditSupportTier(ctx context.Context, petitionID, tierID int64, token string, req models.EditSupportTierRequest) (guard.Decision, error) {
	d, err := s.run(ctx, OpEditSupportTier, func(tx *sql.Tx, g *guard.Guard) (guard.Decision, error) {
		d, err := g.CanEditSupportTier(ctx, petitionID, tierID, token, req.Title)
		if err != nil || !d.OK() {
			return d, err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE support_tier
			SET title = COALESCE($1, title),
			    description = COALESCE($2, description),
			    cost = COALESCE($3, cost)
			WHERE id = $4 AND petition_id = $5
		`, req.Title, req.Description, req.Cost, tierID, petitionID)
		if err != nil {
			return conflictOnUnique(fmt.Errorf("catalog: update tier: %w", err), guard.ReasonTierTitleRepeated)
		}
		return d, nil
	})
	if err == nil && d.OK() {
		slog.Info("support tier edited", "petition_id", petitionID, "tier_id", tierID)
	}
	return d, err
}

// DeleteSupportTier removes an unsupported tier that is not the last one.
func (s *Service) DeleteSupportTier(ctx context.Context, petitionID, tierID int64, token string) (guard.Decision, error) {
	d, err := s.run(ctx, OpDeleteSupportTier, func(tx *sql.Tx, g *guard.Guard) (guard.Decision, error) {
		d, err := g.CanDeleteSupportTier(ctx, petitionID, tierID, token)
		if err != nil || !d.OK() {
			return d, err
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM support_tier WHERE id = $1 AND petition_id = $2`, tierID, petitionID); err != nil {
			return guard.Decision{}, fmt.Errorf("catalog: delete tier: %w", err)
		}
		return d, nil
	})
	if err == nil && d.OK() {
		slog.Info("support tier deleted", "petition_id", petitionID, "tier_id", tierID)
	}
	return d, err
}

// AddSupporter records userID's pledge at a tier of the petition.
func (s *Service) AddSupporter(ctx context.Context, petitionID, userID int64, req models.AddSupporterRequest) (int64, guard.Decision, error) {
	var id int64

	d, err := s.run(ctx, OpAddSupporter, func(tx *sql.Tx, g *guard.Guard) (guard.Decision, error) {
		d, err := g.CanAddSupporter(ctx, petitionID, req.SupportTierID, userID)
		if err != nil || !d.OK() {
			return d, err
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO supporter (petition_id, support_tier_id, user_id, message, timestamp)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, petitionID, req.SupportTierID, userID, req.Message, s.now()).Scan(&id)
		if err != nil {
			return conflictOnUnique(fmt.Errorf("catalog: insert supporter: %w", err), guard.ReasonAlreadySupported)
		}
		return d, nil
	})
	if err != nil || !d.OK() {
		return 0, d, err
	}

	slog.Info("supporter added", "petition_id", petitionID, "tier_id", req.SupportTierID, "user_id", userID)
	return id, d, nil
}
