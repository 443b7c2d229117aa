package adoption

import "github.com/ignite/partner-console/internal/domain"

// UnknownActivityLabel stands in for a missing last-active label on a
// retailer that did open the campaign.
const UnknownActivityLabel = "Unknown"

// ReachPolicy turns a participating retailer's action count into an
// estimated audience reach: reach = BaseReach + actions*PerActionReach.
// Non-participating retailers always have zero reach.
type ReachPolicy struct {
	BaseReach      int `json:"base_reach"`
	PerActionReach int `json:"per_action_reach"`
}

// DefaultReachPolicy is used when configuration leaves the curve unset.
var DefaultReachPolicy = ReachPolicy{BaseReach: 250, PerActionReach: 120}

// NewReachPolicy clamps negative coefficients to zero so reach stays monotonic
// and non-negative.
func NewReachPolicy(base, perAction int) ReachPolicy {
	return ReachPolicy{BaseReach: max(base, 0), PerActionReach: max(perAction, 0)}
}

// Reach returns the estimated reach for a participating retailer.
func (p ReachPolicy) Reach(actions int) int {
	if actions <= 0 {
		return 0
	}
	return p.BaseReach + actions*p.PerActionReach
}

// Classify enforces the engagement invariants on a normalized record and
// derives its reach. It is pure and repairs bad source data rather than
// rejecting it:
//   - an unknown status becomes Unopened
//   - Participated has at least one action
//   - Unopened has no actions, no channels and no last-active label
//   - any opened record has a last-active label
func (p ReachPolicy) Classify(r domain.EngagementRecord) domain.EngagementRecord {
	status, ok := domain.ParseEngagementStatus(string(r.Status))
	if !ok {
		status = domain.StatusUnopened
	}
	r.Status = status
	if r.TotalActions < 0 {
		r.TotalActions = 0
	}
	r.EstimatedReach = 0

	switch status {
	case domain.StatusParticipated:
		if r.TotalActions < 1 {
			r.TotalActions = 1
		}
		r.EstimatedReach = p.Reach(r.TotalActions)
	case domain.StatusUnopened:
		r.TotalActions = 0
		r.UsageChannels = 0
		r.LastActive = nil
	}

	if status != domain.StatusUnopened {
		label := UnknownActivityLabel
		if r.LastActive != nil && *r.LastActive != "" {
			label = *r.LastActive
		}
		r.LastActive = &label
	}
	return r
}

// IsZeroAction reports whether a retailer has taken no measurable action:
// it never opened the campaign, or it viewed it without acting.
func IsZeroAction(r domain.EngagementRecord) bool {
	return r.Status == domain.StatusUnopened ||
		(r.Status == domain.StatusViewed && r.TotalActions == 0)
}
