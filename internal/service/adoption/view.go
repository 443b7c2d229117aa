package adoption

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ignite/partner-console/internal/domain"
)

// Page is one slice of the filtered, sorted roster.
type Page struct {
	Rows       []domain.EngagementRecord `json:"rows"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"page_size"`
	TotalPages int                       `json:"total_pages"`
	Filtered   int                       `json:"filtered"`
}

// View filters, sorts and pages a classified roster. Search is a
// case-insensitive substring match on the retailer name. TotalPages is at
// least 1, and a requested page outside [1, TotalPages] is clamped.
// The input slice is never reordered.
func View(records []domain.EngagementRecord, q Query) Page {
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	rows := Filter(records, q)
	sortRows(rows, q.Sort)

	totalPages := (len(rows) + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := min((page-1)*size, len(rows))
	end := min(start+size, len(rows))
	return Page{
		Rows:       rows[start:end:end],
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		Filtered:   len(rows),
	}
}

// Filter returns the records passing every filter in q, in roster order.
func Filter(records []domain.EngagementRecord, q Query) []domain.EngagementRecord {
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(q.Search))

	out := make([]domain.EngagementRecord, 0, len(records))
	for _, r := range records {
		if !q.Tier.Matches(r.Tier) || !q.Zone.Matches(r.Zone) || !q.Status.Matches(r.Status) {
			continue
		}
		if needle != "" && !strings.Contains(folder.String(r.Name), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func sortRows(rows []domain.EngagementRecord, key SortKey) {
	var primary func(a, b domain.EngagementRecord) int
	switch key {
	case SortName:
		// Collators are stateful; one per sort.
		coll := collate.New(language.Und, collate.IgnoreCase)
		primary = func(a, b domain.EngagementRecord) int { return coll.CompareString(a.Name, b.Name) }
	case SortActions:
		primary = func(a, b domain.EngagementRecord) int { return b.TotalActions - a.TotalActions }
	case SortTier:
		primary = func(a, b domain.EngagementRecord) int { return b.Tier.Rank() - a.Tier.Rank() }
	case SortStatus:
		primary = func(a, b domain.EngagementRecord) int { return a.Status.Rank() - b.Status.Rank() }
	default:
		primary = func(domain.EngagementRecord, domain.EngagementRecord) int { return 0 }
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if c := primary(rows[i], rows[j]); c != 0 {
			return c < 0
		}
		return rows[i].Position < rows[j].Position
	})
}
