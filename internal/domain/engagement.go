package domain

import "strings"

// EngagementStatus describes how far a retailer got with a campaign.
type EngagementStatus string

const (
	StatusParticipated EngagementStatus = "Participated"
	StatusViewed       EngagementStatus = "Viewed"
	StatusUnopened     EngagementStatus = "Unopened"
)

var validStatuses = []EngagementStatus{StatusParticipated, StatusViewed, StatusUnopened}

// AllStatuses returns every engagement status in display order.
func AllStatuses() []EngagementStatus {
	return append([]EngagementStatus(nil), validStatuses...)
}

// ParseEngagementStatus matches a status name case-insensitively.
func ParseEngagementStatus(s string) (EngagementStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range validStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// Valid reports whether s is exactly one of the three known statuses.
func (s EngagementStatus) Valid() bool {
	for _, st := range validStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Rank orders statuses for outreach urgency: Unopened=0, Viewed=1, Participated=2.
func (s EngagementStatus) Rank() int {
	switch s {
	case StatusUnopened:
		return 0
	case StatusViewed:
		return 1
	default:
		return 2
	}
}

// OverrideRecord holds the per-campaign facts a data source knows about one
// retailer. Immutable once loaded.
type OverrideRecord struct {
	RetailerID   string           `json:"retailer_id" yaml:"retailer_id" db:"retailer_id"`
	Status       EngagementStatus `json:"status" yaml:"status" db:"status"`
	LastActive   *string          `json:"last_active,omitempty" yaml:"last_active" db:"last_active"`
	TotalActions int              `json:"total_actions" yaml:"total_actions" db:"total_actions"`
	Usage        ChannelSet       `json:"usage" yaml:"usage" db:"usage"`
	Impact       string           `json:"impact,omitempty" yaml:"impact" db:"impact"`
}

// EngagementRecord is the normalized, classified view of one retailer's
// engagement with a campaign. Rebuilt whenever the roster or overrides change.
type EngagementRecord struct {
	RetailerID     string           `json:"retailer_id"`
	Name           string           `json:"name"`
	Tier           Tier             `json:"tier"`
	Zone           string           `json:"zone"`
	Status         EngagementStatus `json:"status"`
	TotalActions   int              `json:"total_actions"`
	EstimatedReach int              `json:"estimated_reach"`
	UsageChannels  ChannelSet       `json:"usage_channels"`
	LastActive     *string          `json:"last_active"`
	Impact         string           `json:"impact,omitempty"`

	// Resolved is set only by the resolution tracker.
	Resolved bool `json:"resolved"`

	// Position is the record's index in the normalized roster and breaks
	// every ranking tie.
	Position int `json:"position"`
}

// KpiSummary is the headline adoption report for a roster.
type KpiSummary struct {
	AdoptionRatePercent int                      `json:"adoption_rate_percent"`
	ActiveCount         int                      `json:"active_count"`
	TotalInvited        int                      `json:"total_invited"`
	ZeroActionCount     int                      `json:"zero_action_count"`
	EstimatedReachTotal int                      `json:"estimated_reach_total"`
	StatusCounts        map[EngagementStatus]int `json:"status_counts"`
	ChannelCounts       map[ChannelTag]int       `json:"channel_counts"`
}
