package discovery

import (
	"copydesk/internal/models"
)

// MergeOptions tune one pipeline run. Zero MaxItems falls back to the
// default display cap.
type MergeOptions struct {
	MinMarketCap float64
	MaxItems     int
}

const DefaultMaxItems = 20

// Merge flattens the input lists in priority order, keeps the first card
// seen per address, drops everything under the market-cap floor
// (inclusive), and truncates to the display cap.
//
// The floor is applied after dedupe so a collision is always resolved by
// priority, never by which duplicate happened to clear the threshold. Both
// display columns run through this same function with different inputs.
func Merge(opts MergeOptions, lists ...[]models.TokenCard) []models.TokenCard {
	max := opts.MaxItems
	if max <= 0 {
		max = DefaultMaxItems
	}

	seen := make(map[string]struct{})
	out := make([]models.TokenCard, 0, max)
	for _, list := range lists {
		for _, card := range list {
			if card.Address == "" {
				continue
			}
			if _, dup := seen[card.Address]; dup {
				continue
			}
			seen[card.Address] = struct{}{}
			if card.MarketCap < opts.MinMarketCap {
				continue
			}
			out = append(out, card)
			if len(out) >= max {
				return out
			}
		}
	}
	return out
}
