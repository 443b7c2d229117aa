package adoption

import (
	"math"
	"sort"

	"github.com/ignite/partner-console/internal/domain"
	"github.com/ignite/partner-console/internal/pkg/logger"
)

// TopAdvocateLimit caps the top-advocates watchlist.
const TopAdvocateLimit = 5

// Summarize reduces a classified roster into headline KPIs.
func Summarize(records []domain.EngagementRecord) domain.KpiSummary {
	sum := domain.KpiSummary{
		TotalInvited:  len(records),
		StatusCounts:  make(map[domain.EngagementStatus]int, 3),
		ChannelCounts: make(map[domain.ChannelTag]int, 3),
	}
	for _, st := range domain.AllStatuses() {
		sum.StatusCounts[st] = 0
	}
	for _, ch := range domain.AllChannels() {
		sum.ChannelCounts[ch] = 0
	}

	for _, r := range records {
		sum.StatusCounts[r.Status]++
		sum.EstimatedReachTotal += r.EstimatedReach
		if IsZeroAction(r) {
			sum.ZeroActionCount++
		}
		for _, ch := range r.UsageChannels.Tags() {
			sum.ChannelCounts[ch]++
		}
	}

	sum.ActiveCount = sum.TotalInvited - sum.ZeroActionCount
	sum.AdoptionRatePercent = percent(sum.StatusCounts[domain.StatusParticipated], sum.TotalInvited)
	return sum
}

// percent returns round(100*part/whole), or 0 when whole is 0.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}

// Watchlists holds the two outreach watchlists for one roster snapshot.
type Watchlists struct {
	Mode           domain.WatchlistMode      `json:"mode"`
	NeedsAttention []domain.EngagementRecord `json:"needs_attention"`
	TopAdvocates   []domain.EngagementRecord `json:"top_advocates"`

	// ResolvedCount counts records that qualify for needs-attention but were
	// already nudged or snoozed this session.
	ResolvedCount int `json:"resolved_count"`
}

// BuildWatchlists computes both watchlists. The caller always picks mode;
// an unrecognized mode is logged and treated as strict.
func BuildWatchlists(records []domain.EngagementRecord, mode domain.WatchlistMode) Watchlists {
	mode = checkMode(mode)
	w := Watchlists{
		Mode:         mode,
		TopAdvocates: TopAdvocates(records),
	}
	w.NeedsAttention = NeedsAttention(records, mode)
	for _, r := range records {
		if r.Resolved && needsAttention(r, mode) {
			w.ResolvedCount++
		}
	}
	return w
}

// NeedsAttention lists unresolved retailers that have not participated,
// restricted to Platinum and Gold in strict mode. Unopened sorts before
// Viewed, then higher tiers first, then roster order.
func NeedsAttention(records []domain.EngagementRecord, mode domain.WatchlistMode) []domain.EngagementRecord {
	mode = checkMode(mode)
	out := make([]domain.EngagementRecord, 0)
	for _, r := range records {
		if r.Resolved || !needsAttention(r, mode) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Status.Rank() != b.Status.Rank() {
			return a.Status.Rank() < b.Status.Rank()
		}
		if a.Tier.Weight() != b.Tier.Weight() {
			return a.Tier.Weight() > b.Tier.Weight()
		}
		return a.Position < b.Position
	})
	return out
}

func needsAttention(r domain.EngagementRecord, mode domain.WatchlistMode) bool {
	if r.Status != domain.StatusUnopened && r.Status != domain.StatusViewed {
		return false
	}
	return mode == domain.WatchlistBroad || r.Tier.IsKeyAccount()
}

// TopAdvocates returns at most TopAdvocateLimit participating retailers with
// the most actions. Ties keep roster order; short rosters are not padded.
func TopAdvocates(records []domain.EngagementRecord) []domain.EngagementRecord {
	out := make([]domain.EngagementRecord, 0, TopAdvocateLimit)
	for _, r := range records {
		if r.Status == domain.StatusParticipated {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalActions != out[j].TotalActions {
			return out[i].TotalActions > out[j].TotalActions
		}
		return out[i].Position < out[j].Position
	})
	if len(out) > TopAdvocateLimit {
		out = out[:TopAdvocateLimit]
	}
	return out
}

func checkMode(mode domain.WatchlistMode) domain.WatchlistMode {
	if m, ok := domain.ParseWatchlistMode(string(mode)); ok {
		return m
	}
	logger.Warn("unknown watchlist mode, using strict", "mode", mode)
	return domain.WatchlistStrict
}

// ModeForRoster picks a watchlist mode for a campaign. An explicit campaign
// mode wins; otherwise rosters of at most broadThreshold retailers use broad
// and larger ones strict.
func ModeForRoster(c *domain.Campaign, size, broadThreshold int) domain.WatchlistMode {
	if c != nil {
		if m, ok := domain.ParseWatchlistMode(string(c.WatchlistMode)); ok {
			return m
		}
	}
	if size <= broadThreshold {
		return domain.WatchlistBroad
	}
	return domain.WatchlistStrict
}
