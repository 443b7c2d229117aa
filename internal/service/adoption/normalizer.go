package adoption

import (
	"strings"

	"github.com/ignite/partner-console/internal/domain"
	"github.com/ignite/partner-console/internal/pkg/logger"
)

// Normalizer merges a campaign's invite list with its override records.
type Normalizer struct {
	reach ReachPolicy
	log   *logger.Logger
}

// NewNormalizer creates a normalizer that classifies with the given policy.
func NewNormalizer(reach ReachPolicy, log *logger.Logger) *Normalizer {
	if log == nil {
		log = logger.Default()
	}
	return &Normalizer{reach: reach, log: log.With("adoption.normalizer")}
}

// Normalize builds one classified EngagementRecord per retailer, preserving
// input order. A retailer with an override takes the override's facts
// verbatim; one without takes defaultStatus, or Unopened when defaultStatus
// is empty or unknown. Retailers without an id are dropped and logged.
func (n *Normalizer) Normalize(
	retailers []domain.RetailerRef,
	overrides map[string]domain.OverrideRecord,
	defaultStatus domain.EngagementStatus,
) []domain.EngagementRecord {
	seed := domain.StatusUnopened
	if defaultStatus != "" {
		if st, ok := domain.ParseEngagementStatus(string(defaultStatus)); ok {
			seed = st
		} else {
			n.log.Warn("ignoring unknown default status", "status", defaultStatus)
		}
	}

	out := make([]domain.EngagementRecord, 0, len(retailers))
	for i, r := range retailers {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			n.log.Warn("dropping retailer", "error", ErrMalformedRecord, "index", i, "name", r.Name)
			continue
		}

		rec := domain.EngagementRecord{
			RetailerID: id,
			Name:       strings.TrimSpace(r.Name),
			Tier:       tierOrDefault(r.Tier),
			Zone:       zoneOrDefault(r.Zone),
			Status:     seed,
			Position:   len(out),
		}
		if rec.Name == "" {
			rec.Name = id
		}
		if o, ok := overrides[id]; ok {
			rec.Status = o.Status
			rec.LastActive = copyLabel(o.LastActive)
			rec.TotalActions = o.TotalActions
			rec.UsageChannels = o.Usage
			rec.Impact = o.Impact
		}
		out = append(out, n.reach.Classify(rec))
	}
	return out
}

func tierOrDefault(t domain.Tier) domain.Tier {
	if parsed, ok := domain.ParseTier(string(t)); ok {
		return parsed
	}
	return domain.DefaultTier
}

func zoneOrDefault(z string) string {
	if z = strings.TrimSpace(z); z != "" {
		return z
	}
	return domain.DefaultZone
}

func copyLabel(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
