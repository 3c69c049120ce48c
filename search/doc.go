// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package search lists petitions matching a structured query.

Filters combine with AND. Each one is optional:

	Q               substring of title or description, case-insensitive
	CategoryIDs     category is any of the ids
	SupportingCost  cheapest tier costs at most this much
	OwnerID         petition owner
	SupporterID     user has pledged at least once

The total count and the page are computed from the same predicates, so
Count always describes the full match set regardless of StartIndex and Count.
Every sort order ends with the petition id, which makes pages contiguous.

Build never interpolates caller values into SQL; everything is bound.
*/
package search
