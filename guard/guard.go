// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package guard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/petitions/auth"
	"github.com/danielhkuo/petitions/db"
)

// MaxSupportTiers bounds how many tiers a petition may have.
const MaxSupportTiers = 3

// Guard checks mutations against the current store state. Bind it to the
// transaction that will perform the write so the check and the write see
// the same snapshot.
type Guard struct {
	q db.Querier
}

func New(q db.Querier) *Guard {
	return &Guard{q: q}
}

// CanCreatePetition checks a new petition's category and title.
func (g *Guard) CanCreatePetition(ctx context.Context, title string, categoryID int64) (Decision, error) {
	ok, err := g.categoryExists(ctx, categoryID)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return deny(InvalidReference, ReasonUnknownCategory), nil
	}

	taken, err := g.titleTaken(ctx, title, 0)
	if err != nil {
		return Decision{}, err
	}
	if taken {
		return deny(Conflict, ReasonTitleTaken), nil
	}

	return allowed, nil
}

// CanCreateInitialTiers checks the tier batch submitted with a new
// petition: 1..3 tiers with pairwise distinct titles.
func CanCreateInitialTiers(titles []string) Decision {
	if len(titles) < 1 || len(titles) > MaxSupportTiers {
		return deny(Conflict, ReasonTierCount)
	}

	seen := make(map[string]bool, len(titles))
	for _, title := range titles {
		if seen[title] {
			return deny(Conflict, ReasonTierTitleRepeated)
		}
		seen[title] = true
	}

	return allowed
}

// CanEditPetition checks an edit by the holder of token. Nil fields are
// not being changed.
func (g *Guard) CanEditPetition(ctx context.Context, petitionID int64, token string, newTitle *string, newCategoryID *int64) (Decision, error) {
	if d, err := g.authorize(ctx, petitionID, token); err != nil || !d.OK() {
		return d, err
	}

	if newCategoryID != nil {
		ok, err := g.categoryExists(ctx, *newCategoryID)
		if err != nil {
			return Decision{}, err
		}
		if !ok {
			return deny(InvalidReference, ReasonUnknownCategory), nil
		}
	}

	if newTitle != nil {
		taken, err := g.titleTaken(ctx, *newTitle, petitionID)
		if err != nil {
			return Decision{}, err
		}
		if taken {
			return deny(Conflict, ReasonTitleTaken), nil
		}
	}

	return allowed, nil
}

// CanDeletePetition allows the owner to delete a petition nobody supports.
func (g *Guard) CanDeletePetition(ctx context.Context, petitionID int64, token string) (Decision, error) {
	if d, err := g.authorize(ctx, petitionID, token); err != nil || !d.OK() {
		return d, err
	}

	supported, err := g.exists(ctx, `SELECT 1 FROM supporter WHERE petition_id = $1`, petitionID)
	if err != nil {
		return Decision{}, err
	}
	if supported {
		return deny(Conflict, ReasonHasSupporters), nil
	}

	return allowed, nil
}

// CanSetPetitionImage allows only the owner to replace the image.
func (g *Guard) CanSetPetitionImage(ctx context.Context, petitionID int64, token string) (Decision, error) {
	return g.authorize(ctx, petitionID, token)
}

// CanAddSupportTier checks a new tier against the limit and the titles
// already on the petition.
func (g *Guard) CanAddSupportTier(ctx context.Context, petitionID int64, token, title string) (Decision, error) {
	if d, err := g.authorize(ctx, petitionID, token); err != nil || !d.OK() {
		return d, err
	}

	n, err := g.tierCount(ctx, petitionID)
	if err != nil {
		return Decision{}, err
	}
	if n >= MaxSupportTiers {
		return deny(Conflict, ReasonTierLimit), nil
	}

	taken, err := g.tierTitleTaken(ctx, petitionID, title, 0)
	if err != nil {
		return Decision{}, err
	}
	if taken {
		return deny(Conflict, ReasonTierTitleRepeated), nil
	}

	return allowed, nil
}

// CanEditSupportTier checks an edit of an unsupported tier. Keeping the
// tier's own title is not a collision.
func (g *Guard) CanEditSupportTier(ctx context.Context, petitionID, tierID int64, token string, newTitle *string) (Decision, error) {
	if d, err := g.tierAccess(ctx, petitionID, tierID, token); err != nil || !d.OK() {
		return d, err
	}

	if newTitle != nil {
		taken, err := g.tierTitleTaken(ctx, petitionID, *newTitle, tierID)
		if err != nil {
			return Decision{}, err
		}
		if taken {
			return deny(Conflict, ReasonTierTitleRepeated), nil
		}
	}

	return allowed, nil
}

// CanDeleteSupportTier refuses supported tiers and the petition's last tier.
func (g *Guard) CanDeleteSupportTier(ctx context.Context, petitionID, tierID int64, token string) (Decision, error) {
	if d, err := g.tierAccess(ctx, petitionID, tierID, token); err != nil || !d.OK() {
		return d, err
	}

	n, err := g.tierCount(ctx, petitionID)
	if err != nil {
		return Decision{}, err
	}
	if n <= 1 {
		return deny(Conflict, ReasonLastTier), nil
	}

	return allowed, nil
}

// CanAddSupporter checks a pledge by userID at tierID.
func (g *Guard) CanAddSupporter(ctx context.Context, petitionID, tierID, userID int64) (Decision, error) {
	var ownerID int64
	err := g.q.QueryRowContext(ctx, `SELECT owner_id FROM petition WHERE id = $1`, petitionID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return deny(NotFound, ReasonPetitionNotFound), nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("guard: petition owner: %w", err)
	}

	ok, err := g.tierExists(ctx, petitionID, tierID)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return deny(NotFound, ReasonTierNotFound), nil
	}

	if ownerID == userID {
		return deny(Forbidden, ReasonOwnPetition), nil
	}

	dup, err := g.exists(ctx,
		`SELECT 1 FROM supporter WHERE petition_id = $1 AND support_tier_id = $2 AND user_id = $3`,
		petitionID, tierID, userID)
	if err != nil {
		return Decision{}, err
	}
	if dup {
		return deny(Conflict, ReasonAlreadySupported), nil
	}

	return allowed, nil
}

// authorize resolves the petition and compares token with its owner's
// stored session token.
func (g *Guard) authorize(ctx context.Context, petitionID int64, token string) (Decision, error) {
	var stored sql.NullString
	err := g.q.QueryRowContext(ctx, `
		SELECT u.auth_token
		FROM petition p
		JOIN "user" u ON u.id = p.owner_id
		WHERE p.id = $1
	`, petitionID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return deny(NotFound, ReasonPetitionNotFound), nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("guard: petition owner: %w", err)
	}

	if !auth.TokenFromNull(stored).Matches(token) {
		return deny(Forbidden, ReasonNotOwner), nil
	}
	return allowed, nil
}

// tierAccess is the shared prefix of tier edits and deletes: the pair
// exists, the caller owns the petition, and nobody supports the tier yet.
func (g *Guard) tierAccess(ctx context.Context, petitionID, tierID int64, token string) (Decision, error) {
	ok, err := g.tierExists(ctx, petitionID, tierID)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return deny(NotFound, ReasonTierNotFound), nil
	}

	if d, err := g.authorize(ctx, petitionID, token); err != nil || !d.OK() {
		return d, err
	}

	supported, err := g.exists(ctx, `SELECT 1 FROM supporter WHERE support_tier_id = $1`, tierID)
	if err != nil {
		return Decision{}, err
	}
	if supported {
		return deny(Conflict, ReasonTierSupported), nil
	}

	return allowed, nil
}

func (g *Guard) categoryExists(ctx context.Context, categoryID int64) (bool, error) {
	return g.exists(ctx, `SELECT 1 FROM category WHERE id = $1`, categoryID)
}

// titleTaken reports whether another petition uses title. Pass 0 to check
// against every petition.
func (g *Guard) titleTaken(ctx context.Context, title string, exceptID int64) (bool, error) {
	return g.exists(ctx, `SELECT 1 FROM petition WHERE title = $1 AND id <> $2`, title, exceptID)
}

func (g *Guard) tierExists(ctx context.Context, petitionID, tierID int64) (bool, error) {
	return g.exists(ctx, `SELECT 1 FROM support_tier WHERE id = $1 AND petition_id = $2`, tierID, petitionID)
}

func (g *Guard) tierTitleTaken(ctx context.Context, petitionID int64, title string, exceptTierID int64) (bool, error) {
	return g.exists(ctx,
		`SELECT 1 FROM support_tier WHERE petition_id = $1 AND title = $2 AND id <> $3`,
		petitionID, title, exceptTierID)
}

func (g *Guard) tierCount(ctx context.Context, petitionID int64) (int, error) {
	var n int
	err := g.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM support_tier WHERE petition_id = $1`, petitionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("guard: tier count: %w", err)
	}
	return n, nil
}

// exists reports whether query returns at least one row.
func (g *Guard) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	err := g.q.QueryRowContext(ctx, "SELECT EXISTS ("+query+")", args...).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("guard: %w", err)
	}
	return found, nil
}
