package adoption

import (
	"context"

	"github.com/ignite/partner-console/internal/domain"
)

// Source supplies the raw roster for a campaign. Implementations must be
// safe for concurrent use and must not hand out slices they later mutate.
type Source interface {
	// Campaign returns campaign metadata. Returns ErrCampaignNotFound if it doesn't exist.
	Campaign(ctx context.Context, campaignID string) (*domain.Campaign, error)

	// Retailers returns the invite list in roster order.
	Retailers(ctx context.Context, campaignID string) ([]domain.RetailerRef, error)

	// Overrides returns the override records keyed by retailer id.
	Overrides(ctx context.Context, campaignID string) (map[string]domain.OverrideRecord, error)
}
