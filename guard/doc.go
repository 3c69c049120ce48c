// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package guard decides whether a petition, support tier or supporter mutation
may proceed.

Every guard returns a Decision. Expected business outcomes are never errors;
an error means the store itself failed.

	d, err := guard.New(tx).CanDeletePetition(ctx, id, token)
	if err != nil {
		return err
	}
	if !d.OK() {
		// d.Verdict is NotFound, Forbidden, Conflict or InvalidReference
		// and d.Reason says which rule refused
	}

# Check Order

Checks run existence first, then authorization, then business rules, so a
caller always receives the most specific true verdict:

	CanCreatePetition      InvalidReference (category), Conflict (title)
	CanCreateInitialTiers  Conflict (count outside 1..3, repeated title)
	CanEditPetition        NotFound, Forbidden, InvalidReference, Conflict (title)
	CanDeletePetition      NotFound, Forbidden, Conflict (has supporters)
	CanSetPetitionImage    NotFound, Forbidden
	CanAddSupportTier      NotFound, Forbidden, Conflict (3 tiers), Conflict (title)
	CanEditSupportTier     NotFound (tier on petition), Forbidden, Conflict (supported), Conflict (title)
	CanDeleteSupportTier   NotFound (tier on petition), Forbidden, Conflict (supported), Conflict (last tier)
	CanAddSupporter        NotFound (petition), NotFound (tier), Forbidden (own petition), Conflict (duplicate)

# Ownership

Ownership compares the presented token with the owner's stored session token.
An owner with no active session owns nothing until they log in again.

Guards only read. Run them on the same transaction as the write that
follows; see package catalog.
*/
package guard
