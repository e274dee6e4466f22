package service

import (
	"context"
	"strings"

	"crimson-crm-be/pkg/biostate"
)

// wealthTiers maps the CRM's screening tier codes to the line shown under the bio.
var wealthTiers = map[string]string{
	"1": "Estimated net worth above $10M; major gift prospect.",
	"2": "Estimated net worth $5M-$10M; major gift prospect.",
	"3": "Estimated net worth $1M-$5M; mid-level gift prospect.",
	"4": "Estimated net worth $250K-$1M; annual fund prospect.",
	"5": "Estimated net worth below $250K; annual fund prospect.",
}

type wealthService struct{}

// NewWealthService looks the donor's tier up in a fixed table. Unknown or
// missing tiers yield an empty summary.
func NewWealthService() biostate.WealthLookup {
	return &wealthService{}
}

func (w *wealthService) WealthSummary(ctx context.Context, donor biostate.Donor) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tier := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(donor.WealthTier)), "TIER")
	return wealthTiers[strings.TrimSpace(tier)], nil
}
