// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package guard

import (
	"context"
	"testing"

	"github.com/danielhkuo/petitions/db"
	"github.com/danielhkuo/petitions/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }

type fixture struct {
	store    *db.Store
	guard    *Guard
	owner    testutil.TestUser
	other    testutil.TestUser
	petition testutil.TestPetition // "Save the Park", tiers $0 and $5
	single   testutil.TestPetition // "Clean the River", one $1 tier
}

func setup(t *testing.T) fixture {
	t.Helper()

	store := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, store, "owner@example.com")
	other := testutil.CreateTestUser(t, store, "other@example.com")

	return fixture{
		store:    store,
		guard:    New(store.DB()),
		owner:    owner,
		other:    other,
		petition: testutil.CreateTestPetition(t, store, owner.ID, "Save the Park", 1, testutil.BaseTime, 0, 5),
		single:   testutil.CreateTestPetition(t, store, owner.ID, "Clean the River", 2, testutil.BaseTime, 1),
	}
}

func assertVerdict(t *testing.T, want Verdict, d Decision, err error) {
	t.Helper()
	require.NoError(t, err)
	assert.Equal(t, want, d.Verdict, "reason: %s", d.Reason)
	if want == Allow {
		assert.True(t, d.OK())
		assert.Empty(t, d.Reason)
	} else {
		assert.False(t, d.OK())
		assert.NotEmpty(t, d.Reason)
	}
}

func TestCanCreatePetition(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		title      string
		categoryID int64
		want       Verdict
	}{
		{"new title", "Plant More Trees", 1, Allow},
		{"title taken", "Save the Park", 1, Conflict},
		{"title match is case-sensitive", "save the park", 1, Allow},
		{"unknown category", "Plant More Trees", 99, InvalidReference},
		{"unknown category reported before title", "Save the Park", 99, InvalidReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := f.guard.CanCreatePetition(ctx, tt.title, tt.categoryID)
			assertVerdict(t, tt.want, d, err)
		})
	}
}

func TestCanCreateInitialTiers(t *testing.T) {
	tests := []struct {
		name   string
		titles []string
		want   Verdict
	}{
		{"none", nil, Conflict},
		{"one", []string{"Basic"}, Allow},
		{"two", []string{"Basic", "Gold"}, Allow},
		{"three", []string{"Basic", "Gold", "Platinum"}, Allow},
		{"four", []string{"Basic", "Gold", "Platinum", "Diamond"}, Conflict},
		{"duplicate title", []string{"Basic", "Basic"}, Conflict},
		{"titles differ by case", []string{"Basic", "basic"}, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertVerdict(t, tt.want, CanCreateInitialTiers(tt.titles), nil)
		})
	}
}

func TestCanEditPetition(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.petition.ID

	tests := []struct {
		name     string
		id       int64
		token    string
		title    *string
		category *int64
		want     Verdict
	}{
		{"owner edits description only", id, f.owner.Token, nil, nil, Allow},
		{"owner keeps own title", id, f.owner.Token, strPtr("Save the Park"), nil, Allow},
		{"owner renames", id, f.owner.Token, strPtr("Save the Big Park"), nil, Allow},
		{"title of another petition", id, f.owner.Token, strPtr("Clean the River"), nil, Conflict},
		{"unknown category", id, f.owner.Token, nil, int64Ptr(99), InvalidReference},
		{"other user", id, f.other.Token, nil, nil, Forbidden},
		{"empty token", id, "", nil, nil, Forbidden},
		{"missing petition", 9999, f.other.Token, nil, nil, NotFound},
		{"missing petition before ownership", 9999, "", strPtr("Clean the River"), nil, NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := f.guard.CanEditPetition(ctx, tt.id, tt.token, tt.title, tt.category)
			assertVerdict(t, tt.want, d, err)
		})
	}
}

func TestCanEditPetition_LoggedOutOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	testutil.LogoutTestUser(t, f.store, f.owner.ID)

	d, err := f.guard.CanEditPetition(ctx, f.petition.ID, f.owner.Token, nil, nil)
	assertVerdict(t, Forbidden, d, err)

	d, err = f.guard.CanEditPetition(ctx, f.petition.ID, "", nil, nil)
	assertVerdict(t, Forbidden, d, err)
}

func TestCanDeletePetition(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	d, err := f.guard.CanDeletePetition(ctx, f.petition.ID, f.other.Token)
	assertVerdict(t, Forbidden, d, err)

	d, err = f.guard.CanDeletePetition(ctx, f.petition.ID, f.owner.Token)
	assertVerdict(t, Allow, d, err)

	testutil.AddTestSupporter(t, f.store, f.petition.ID, f.petition.TierIDs[0], f.other.ID, testutil.BaseTime)

	d, err = f.guard.CanDeletePetition(ctx, f.petition.ID, f.owner.Token)
	assertVerdict(t, Conflict, d, err)

	d, err = f.guard.CanDeletePetition(ctx, 9999, f.owner.Token)
	assertVerdict(t, NotFound, d, err)
}

func TestCanSetPetitionImage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	d, err := f.guard.CanSetPetitionImage(ctx, f.petition.ID, f.owner.Token)
	assertVerdict(t, Allow, d, err)

	d, err = f.guard.CanSetPetitionImage(ctx, f.petition.ID, f.other.Token)
	assertVerdict(t, Forbidden, d, err)

	d, err = f.guard.CanSetPetitionImage(ctx, 9999, f.owner.Token)
	assertVerdict(t, NotFound, d, err)
}

func TestCanAddSupportTier(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		id    int64
		token string
		title string
		want  Verdict
	}{
		{"new title", f.petition.ID, f.owner.Token, "Gold", Allow},
		{"title already on petition", f.petition.ID, f.owner.Token, "Tier 1", Conflict},
		{"title used on another petition only", f.single.ID, f.owner.Token, "Tier 2", Allow},
		{"not owner", f.petition.ID, f.other.Token, "Gold", Forbidden},
		{"missing petition", 9999, f.owner.Token, "Gold", NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := f.guard.CanAddSupportTier(ctx, tt.id, tt.token, tt.title)
			assertVerdict(t, tt.want, d, err)
		})
	}

	t.Run("three tiers is the limit", func(t *testing.T) {
		testutil.AddTestTier(t, f.store.DB(), f.petition.ID, "Tier 3", 10)
		d, err := f.guard.CanAddSupportTier(ctx, f.petition.ID, f.owner.Token, "Gold")
		assertVerdict(t, Conflict, d, err)
		assert.Equal(t, ReasonTierLimit, d.Reason)
	})
}

func TestCanEditSupportTier(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.petition

	tests := []struct {
		name   string
		id     int64
		tierID int64
		token  string
		title  *string
		want   Verdict
	}{
		{"no title change", p.ID, p.TierIDs[0], f.owner.Token, nil, Allow},
		{"resubmit own title", p.ID, p.TierIDs[0], f.owner.Token, strPtr("Tier 1"), Allow},
		{"title of sibling tier", p.ID, p.TierIDs[0], f.owner.Token, strPtr("Tier 2"), Conflict},
		{"not owner", p.ID, p.TierIDs[0], f.other.Token, nil, Forbidden},
		{"tier of another petition", p.ID, f.single.TierIDs[0], f.owner.Token, nil, NotFound},
		{"missing tier", p.ID, 9999, f.other.Token, nil, NotFound},
		{"missing petition", 9999, p.TierIDs[0], f.owner.Token, nil, NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := f.guard.CanEditSupportTier(ctx, tt.id, tt.tierID, tt.token, tt.title)
			assertVerdict(t, tt.want, d, err)
		})
	}

	t.Run("supported tier is immutable", func(t *testing.T) {
		testutil.AddTestSupporter(t, f.store, p.ID, p.TierIDs[1], f.other.ID, testutil.BaseTime)

		d, err := f.guard.CanEditSupportTier(ctx, p.ID, p.TierIDs[1], f.owner.Token, nil)
		assertVerdict(t, Conflict, d, err)
		assert.Equal(t, ReasonTierSupported, d.Reason)

		// The unsupported sibling is still editable
		d, err = f.guard.CanEditSupportTier(ctx, p.ID, p.TierIDs[0], f.owner.Token, nil)
		assertVerdict(t, Allow, d, err)
	})
}

func TestCanDeleteSupportTier(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.petition

	d, err := f.guard.CanDeleteSupportTier(ctx, p.ID, p.TierIDs[0], f.other.Token)
	assertVerdict(t, Forbidden, d, err)

	d, err = f.guard.CanDeleteSupportTier(ctx, p.ID, f.single.TierIDs[0], f.owner.Token)
	assertVerdict(t, NotFound, d, err)

	d, err = f.guard.CanDeleteSupportTier(ctx, p.ID, p.TierIDs[0], f.owner.Token)
	assertVerdict(t, Allow, d, err)

	// Only tier, no supporters
	d, err = f.guard.CanDeleteSupportTier(ctx, f.single.ID, f.single.TierIDs[0], f.owner.Token)
	assertVerdict(t, Conflict, d, err)
	assert.Equal(t, ReasonLastTier, d.Reason)

	testutil.AddTestSupporter(t, f.store, p.ID, p.TierIDs[0], f.other.ID, testutil.BaseTime)
	d, err = f.guard.CanDeleteSupportTier(ctx, p.ID, p.TierIDs[0], f.owner.Token)
	assertVerdict(t, Conflict, d, err)
	assert.Equal(t, ReasonTierSupported, d.Reason)
}

func TestCanAddSupporter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.petition

	tests := []struct {
		name   string
		id     int64
		tierID int64
		userID int64
		want   Verdict
	}{
		{"other user", p.ID, p.TierIDs[0], f.other.ID, Allow},
		{"owner supports own petition", p.ID, p.TierIDs[0], f.owner.ID, Forbidden},
		{"missing petition", 9999, p.TierIDs[0], f.other.ID, NotFound},
		{"tier of another petition", p.ID, f.single.TierIDs[0], f.other.ID, NotFound},
		{"missing tier reported before own petition", p.ID, 9999, f.owner.ID, NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := f.guard.CanAddSupporter(ctx, tt.id, tt.tierID, tt.userID)
			assertVerdict(t, tt.want, d, err)
		})
	}

	t.Run("second pledge at same tier", func(t *testing.T) {
		testutil.AddTestSupporter(t, f.store, p.ID, p.TierIDs[0], f.other.ID, testutil.BaseTime)

		d, err := f.guard.CanAddSupporter(ctx, p.ID, p.TierIDs[0], f.other.ID)
		assertVerdict(t, Conflict, d, err)
		assert.Equal(t, ReasonAlreadySupported, d.Reason)

		// A different tier of the same petition is a new combination
		d, err = f.guard.CanAddSupporter(ctx, p.ID, p.TierIDs[1], f.other.ID)
		assertVerdict(t, Allow, d, err)
	})
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "forbidden", Forbidden.String())
	assert.Equal(t, "conflict", Conflict.String())
	assert.Equal(t, "invalid_reference", InvalidReference.String())
	assert.Equal(t, "unknown", Verdict(42).String())
}
