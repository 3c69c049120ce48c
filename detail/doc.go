// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package detail reads a single petition with its derived values.

	d, err := detail.NewReader(store).Get(ctx, id)
	if errors.Is(err, detail.ErrNotFound) {
		// 404
	}

NumberOfSupporters counts supporter rows. MoneyRaised sums, per supporter,
the cost of the tier they pledged at; it is not the sum of the tier prices.
Both are 0 for a petition without supporters. Tiers are listed in creation
order. The petition row and its tiers are read concurrently.

Supporters lists pledges newest first with the supporter's name.
*/
package detail
