// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package guard

// Verdict is the outcome class of a guard check.
type Verdict int

const (
	Allow Verdict = iota
	NotFound
	Forbidden
	Conflict
	InvalidReference
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Conflict:
		return "conflict"
	case InvalidReference:
		return "invalid_reference"
	}
	return "unknown"
}

// Decision is what a guard returns for an expected business outcome.
// Reason is empty when the verdict is Allow.
type Decision struct {
	Verdict Verdict
	Reason  string
}

// OK reports whether the mutation may proceed.
func (d Decision) OK() bool {
	return d.Verdict == Allow
}

var allowed = Decision{Verdict: Allow}

func deny(v Verdict, reason string) Decision {
	return Decision{Verdict: v, Reason: reason}
}

// Reasons given with denials.
const (
	ReasonPetitionNotFound  = "no petition with that id"
	ReasonTierNotFound      = "no support tier with that id on this petition"
	ReasonNotOwner          = "only the owner can modify this petition"
	ReasonOwnPetition       = "cannot support your own petition"
	ReasonUnknownCategory   = "categoryId does not reference an existing category"
	ReasonTitleTaken        = "a petition with that title already exists"
	ReasonTierCount         = "a petition must have between 1 and 3 support tiers"
	ReasonTierTitleRepeated = "support tier titles must be unique within a petition"
	ReasonTierLimit         = "a petition can have at most 3 support tiers"
	ReasonTierSupported     = "support tier already has supporters"
	ReasonLastTier          = "cannot remove the last support tier"
	ReasonHasSupporters     = "petition already has supporters"
	ReasonAlreadySupported  = "already supporting this petition at that tier"
)
