package adoption

import (
	"context"
	"fmt"
	"strings"

	"github.com/ignite/partner-console/internal/domain"
)

// Roster is a freshly normalized snapshot of one campaign's retailers.
// Each request builds its own; snapshots are never shared or cached.
type Roster struct {
	Campaign domain.Campaign           `json:"campaign"`
	Records  []domain.EngagementRecord `json:"records"`
}

// Service wires a roster Source to the pure adoption steps.
type Service struct {
	src        Source
	normalizer *Normalizer
}

// NewService creates an adoption service backed by the given source.
func NewService(src Source, normalizer *Normalizer) *Service {
	return &Service{src: src, normalizer: normalizer}
}

// Roster loads and normalizes the roster for a campaign.
func (s *Service) Roster(ctx context.Context, campaignID string) (*Roster, error) {
	c, err := s.src.Campaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	retailers, err := s.src.Retailers(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("load retailers: %w", err)
	}
	overrides, err := s.src.Overrides(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}

	return &Roster{
		Campaign: *c,
		Records:  s.normalizer.Normalize(retailers, overrides, c.DefaultStatus),
	}, nil
}

// Find returns the record for a retailer id.
func (r *Roster) Find(retailerID string) (domain.EngagementRecord, bool) {
	for _, rec := range r.Records {
		if rec.RetailerID == retailerID {
			return rec, true
		}
	}
	return domain.EngagementRecord{}, false
}

// Contacts indexes the campaign's retailer references by id. Delivery uses
// it to address nudges; the engagement records carry no contact data. Ids
// are trimmed the same way the normalizer trims them.
func (s *Service) Contacts(ctx context.Context, campaignID string) (map[string]domain.RetailerRef, error) {
	retailers, err := s.src.Retailers(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("load retailers: %w", err)
	}
	out := make(map[string]domain.RetailerRef, len(retailers))
	for _, r := range retailers {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			continue
		}
		r.ID = id
		out[id] = r
	}
	return out, nil
}
