package domain

import "strings"

// Tier ranks a retailer's commercial importance to the brand.
type Tier string

const (
	TierPlatinum Tier = "Platinum"
	TierGold     Tier = "Gold"
	TierSilver   Tier = "Silver"
	TierStandard Tier = "Standard"
)

// DefaultTier and DefaultZone fill gaps in the retailer directory.
const (
	DefaultTier Tier   = TierStandard
	DefaultZone string = "Central"
)

var validTiers = []Tier{TierPlatinum, TierGold, TierSilver, TierStandard}

// ParseTier matches a tier name case-insensitively.
func ParseTier(s string) (Tier, bool) {
	s = strings.TrimSpace(s)
	for _, t := range validTiers {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

// Weight orders tiers for watchlist ranking: Platinum=2, Gold=1, everything else 0.
func (t Tier) Weight() int {
	switch t {
	case TierPlatinum:
		return 2
	case TierGold:
		return 1
	default:
		return 0
	}
}

// Rank orders all four tiers for table sorting: Platinum=3 down to Standard=0.
func (t Tier) Rank() int {
	switch t {
	case TierPlatinum:
		return 3
	case TierGold:
		return 2
	case TierSilver:
		return 1
	default:
		return 0
	}
}

// IsKeyAccount reports whether the tier is eligible for the strict watchlist.
func (t Tier) IsKeyAccount() bool {
	return t == TierPlatinum || t == TierGold
}

// RetailerRef identifies a retailer in the external directory. Read-only to
// the adoption engine.
type RetailerRef struct {
	ID           string `json:"id" yaml:"id" db:"id"`
	Name         string `json:"name" yaml:"name" db:"name"`
	Tier         Tier   `json:"tier,omitempty" yaml:"tier" db:"tier"`
	Zone         string `json:"zone,omitempty" yaml:"zone" db:"zone"`
	ContactName  string `json:"contact_name,omitempty" yaml:"contact_name" db:"contact_name"`
	ContactEmail string `json:"contact_email,omitempty" yaml:"contact_email" db:"contact_email"`
	Phone        string `json:"phone,omitempty" yaml:"phone" db:"phone"`
}
