package adoption_test

import (
	"fmt"

	"github.com/ignite/partner-console/internal/domain"
	"github.com/ignite/partner-console/internal/service/adoption"
)

func label(s string) *string { return &s }

// rec builds an already-classified record at the given roster position.
func rec(pos int, name string, tier domain.Tier, status domain.EngagementStatus, actions int) domain.EngagementRecord {
	r := domain.EngagementRecord{
		RetailerID:   fmt.Sprintf("r-%02d", pos),
		Name:         name,
		Tier:         tier,
		Zone:         domain.DefaultZone,
		Status:       status,
		TotalActions: actions,
		Position:     pos,
	}
	return adoption.DefaultReachPolicy.Classify(r)
}

func ids(records []domain.EngagementRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.RetailerID
	}
	return out
}

// scenarioRoster is 16 participating retailers with 5 actions each, 3 that
// viewed without acting and 1 that never opened the campaign.
func scenarioRoster() []domain.EngagementRecord {
	retailers := make([]domain.RetailerRef, 0, 20)
	overrides := make(map[string]domain.OverrideRecord, 20)
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("ret-%02d", i)
		retailers = append(retailers, domain.RetailerRef{ID: id, Name: fmt.Sprintf("Retailer %02d", i), Tier: domain.TierSilver})
		switch {
		case i < 16:
			overrides[id] = domain.OverrideRecord{RetailerID: id, Status: domain.StatusParticipated, TotalActions: 5, LastActive: label("2 days ago"),
				Usage: domain.NewChannelSet(domain.ChannelSocial)}
		case i < 19:
			overrides[id] = domain.OverrideRecord{RetailerID: id, Status: domain.StatusViewed, LastActive: label("1 week ago")}
		}
	}
	return adoption.NewNormalizer(adoption.DefaultReachPolicy, nil).Normalize(retailers, overrides, "")
}
