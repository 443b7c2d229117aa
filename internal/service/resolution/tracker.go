package resolution

import (
	"sort"
	"strings"
	"time"

	"github.com/ignite/partner-console/internal/domain"
)

// Snooze records a request to revisit a retailer later.
type Snooze struct {
	RetailerID string    `json:"retailer_id"`
	Days       int       `json:"days"`
	SnoozedAt  time.Time `json:"snoozed_at"`
}

// Until returns when the snooze lapses.
func (s Snooze) Until() time.Time {
	return s.SnoozedAt.AddDate(0, 0, s.Days)
}

// State is the serializable form of a Tracker.
type State struct {
	Resolved map[string]time.Time `json:"resolved"`
	Snoozes  map[string]Snooze    `json:"snoozes"`
}

// Tracker holds resolution state for one session. Not safe for concurrent
// use; callers persist it through Snapshot and Restore.
type Tracker struct {
	resolved map[string]time.Time
	snoozes  map[string]Snooze
	now      func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		resolved: make(map[string]time.Time),
		snoozes:  make(map[string]Snooze),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Resolve marks ids as handled and returns the ids newly resolved by this
// call. Blank ids are ignored; resolving twice is a no-op.
func (t *Tracker) Resolve(ids ...string) []string {
	now := t.now()
	var added []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := t.resolved[id]; ok {
			continue
		}
		t.resolved[id] = now
		added = append(added, id)
	}
	return added
}

// IsResolved reports whether id has been resolved.
func (t *Tracker) IsResolved(id string) bool {
	_, ok := t.resolved[id]
	return ok
}

// Snooze resolves id and records when it should be revisited. The duration
// is metadata only; nothing un-snoozes a retailer. Non-positive days are
// stored as one day and the latest snooze for an id wins.
func (t *Tracker) Snooze(id string, days int) Snooze {
	if days < 1 {
		days = 1
	}
	s := Snooze{RetailerID: strings.TrimSpace(id), Days: days, SnoozedAt: t.now()}
	if s.RetailerID == "" {
		return s
	}
	t.Resolve(s.RetailerID)
	t.snoozes[s.RetailerID] = s
	return s
}

// SnoozeFor returns the recorded snooze for id.
func (t *Tracker) SnoozeFor(id string) (Snooze, bool) {
	s, ok := t.snoozes[id]
	return s, ok
}

// ResolvedIDs lists resolved ids in sorted order.
func (t *Tracker) ResolvedIDs() []string {
	ids := make([]string, 0, len(t.resolved))
	for id := range t.resolved {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Apply returns a copy of records with Resolved set from the tracker.
func (t *Tracker) Apply(records []domain.EngagementRecord) []domain.EngagementRecord {
	out := make([]domain.EngagementRecord, len(records))
	for i, r := range records {
		r.Resolved = r.Resolved || t.IsResolved(r.RetailerID)
		out[i] = r
	}
	return out
}

// Snapshot returns a copy of the tracker state.
func (t *Tracker) Snapshot() State {
	s := State{
		Resolved: make(map[string]time.Time, len(t.resolved)),
		Snoozes:  make(map[string]Snooze, len(t.snoozes)),
	}
	for k, v := range t.resolved {
		s.Resolved[k] = v
	}
	for k, v := range t.snoozes {
		s.Snoozes[k] = v
	}
	return s
}

// Restore replaces the tracker state with s.
func (t *Tracker) Restore(s State) {
	t.resolved = make(map[string]time.Time, len(s.Resolved))
	t.snoozes = make(map[string]Snooze, len(s.Snoozes))
	for k, v := range s.Resolved {
		t.resolved[k] = v
	}
	for k, v := range s.Snoozes {
		t.snoozes[k] = v
	}
}
