package adoption

import (
	"strings"

	"github.com/ignite/partner-console/internal/domain"
)

// AllSentinel is the "no restriction" filter value used by the console's
// dropdowns. It is matched case-insensitively and only at parse time.
const AllSentinel = "all"

// Selection restricts one roster column to a single value. The zero
// Selection matches every record without comparing anything.
type Selection[T ~string] struct {
	value  T
	active bool
}

// Only returns a Selection matching exactly v, even when v spells "All".
func Only[T ~string](v T) Selection[T] {
	return Selection[T]{value: v, active: true}
}

// ParseSelection reads a raw filter value. Empty strings and the "all"
// sentinel yield the unrestricted Selection. When canonical is non-nil it
// normalizes known values; values it rejects still produce an active
// Selection, which simply matches nothing.
func ParseSelection[T ~string](raw string, canonical func(string) (T, bool)) Selection[T] {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, AllSentinel) {
		return Selection[T]{}
	}
	if canonical != nil {
		if v, ok := canonical(raw); ok {
			return Only(v)
		}
	}
	return Only(T(raw))
}

// Active reports whether the selection restricts anything.
func (s Selection[T]) Active() bool { return s.active }

// Value returns the selected value, or "" when unrestricted.
func (s Selection[T]) Value() T { return s.value }

// Matches reports whether v passes the selection.
func (s Selection[T]) Matches(v T) bool {
	if !s.active {
		return true
	}
	return v == s.value
}

// SortKey orders roster rows.
type SortKey string

const (
	SortRoster  SortKey = "roster"
	SortName    SortKey = "name"
	SortActions SortKey = "actions"
	SortTier    SortKey = "tier"
	SortStatus  SortKey = "status"
)

var validSortKeys = []SortKey{SortRoster, SortName, SortActions, SortTier, SortStatus}

// ParseSortKey matches a sort key name; unknown keys fall back to roster order.
func ParseSortKey(s string) SortKey {
	for _, k := range validSortKeys {
		if strings.EqualFold(strings.TrimSpace(s), string(k)) {
			return k
		}
	}
	return SortRoster
}

// DefaultPageSize is the table page size when the caller gives none.
const DefaultPageSize = 10

// Query describes one roster table request. All filters are AND-combined.
type Query struct {
	Search   string
	Tier     Selection[domain.Tier]
	Zone     Selection[string]
	Status   Selection[domain.EngagementStatus]
	Sort     SortKey
	Page     int
	PageSize int
}

// RosterState holds the console's roster table controls between requests.
// Changing any filter, the sort or the page size sends the table back to
// page 1, so a narrowed result never lands on an empty trailing page.
type RosterState struct {
	q Query
}

// NewRosterState starts on page 1 with no filters.
func NewRosterState(pageSize int) *RosterState {
	return &RosterState{q: Query{Sort: SortRoster, Page: 1, PageSize: pageSize}}
}

// ResumeRosterState continues from previously saved controls.
func ResumeRosterState(q Query) *RosterState {
	if q.Sort == "" {
		q.Sort = SortRoster
	}
	return &RosterState{q: q}
}

func (s *RosterState) SetSearch(v string) {
	if v != s.q.Search {
		s.q.Search = v
		s.q.Page = 1
	}
}

func (s *RosterState) SetTier(v Selection[domain.Tier]) {
	if v != s.q.Tier {
		s.q.Tier = v
		s.q.Page = 1
	}
}

func (s *RosterState) SetZone(v Selection[string]) {
	if v != s.q.Zone {
		s.q.Zone = v
		s.q.Page = 1
	}
}

func (s *RosterState) SetStatus(v Selection[domain.EngagementStatus]) {
	if v != s.q.Status {
		s.q.Status = v
		s.q.Page = 1
	}
}

func (s *RosterState) SetSort(k SortKey) {
	if k != s.q.Sort {
		s.q.Sort = k
		s.q.Page = 1
	}
}

func (s *RosterState) SetPageSize(n int) {
	if n != s.q.PageSize {
		s.q.PageSize = n
		s.q.Page = 1
	}
}

// SetPage requests a page; out-of-range values are clamped by View.
func (s *RosterState) SetPage(n int) { s.q.Page = n }

// Query returns a copy of the current controls.
func (s *RosterState) Query() Query { return s.q }

// Apply runs View with the current controls and remembers the clamped page.
func (s *RosterState) Apply(records []domain.EngagementRecord) Page {
	p := View(records, s.q)
	s.q.Page = p.Page
	return p
}
