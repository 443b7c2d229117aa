package domain

import "strings"

// WatchlistMode selects the needs-attention eligibility policy.
type WatchlistMode string

const (
	// WatchlistStrict restricts needs-attention to Platinum and Gold retailers.
	WatchlistStrict WatchlistMode = "strict"
	// WatchlistBroad includes every tier.
	WatchlistBroad WatchlistMode = "broad"
)

// ParseWatchlistMode parses a mode name case-insensitively.
func ParseWatchlistMode(s string) (WatchlistMode, bool) {
	switch WatchlistMode(strings.ToLower(strings.TrimSpace(s))) {
	case WatchlistStrict:
		return WatchlistStrict, true
	case WatchlistBroad:
		return WatchlistBroad, true
	}
	return "", false
}

// Campaign is the brand campaign a retailer roster is invited to.
type Campaign struct {
	ID        string `json:"id" yaml:"id" db:"id"`
	Name      string `json:"name" yaml:"name" db:"name"`
	BrandName string `json:"brand_name" yaml:"brand_name" db:"brand_name"`

	// WatchlistMode is empty when the campaign leaves the choice to the caller.
	WatchlistMode WatchlistMode `json:"watchlist_mode,omitempty" yaml:"watchlist_mode" db:"watchlist_mode"`

	// DefaultStatus seeds retailers that have no override record. Empty means Unopened.
	DefaultStatus EngagementStatus `json:"default_status,omitempty" yaml:"default_status" db:"default_status"`
}
