package adoption_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/partner-console/internal/domain"
	"github.com/ignite/partner-console/internal/service/adoption"
)

func viewRoster() []domain.EngagementRecord {
	roster := []domain.EngagementRecord{
		rec(0, "Acme Co.", domain.TierPlatinum, domain.StatusParticipated, 4),
		rec(1, "Bravo Outfitters", domain.TierGold, domain.StatusViewed, 0),
		rec(2, "acme west", domain.TierSilver, domain.StatusUnopened, 0),
		rec(3, "Ça Va Boutique", domain.TierStandard, domain.StatusParticipated, 9),
		rec(4, "Delta Home", domain.TierGold, domain.StatusParticipated, 2),
	}
	roster[1].Zone = "North"
	roster[4].Zone = "All"
	return roster
}

func TestViewSearchIsCaseInsensitiveOnName(t *testing.T) {
	p := adoption.View(viewRoster(), adoption.Query{Search: "ACME"})
	assert.Equal(t, []string{"r-00", "r-02"}, ids(p.Rows))

	p = adoption.View(viewRoster(), adoption.Query{Search: "ça va"})
	assert.Equal(t, []string{"r-03"}, ids(p.Rows))

	p = adoption.View(viewRoster(), adoption.Query{Search: "Central"})
	assert.Empty(t, p.Rows, "search must not match zone")
}

func TestViewFiltersAreANDCombined(t *testing.T) {
	q := adoption.Query{
		Search: "a",
		Tier:   adoption.Only(domain.TierGold),
		Status: adoption.Only(domain.StatusParticipated),
	}
	p := adoption.View(viewRoster(), q)
	assert.Equal(t, []string{"r-04"}, ids(p.Rows))
}

func TestViewAllSentinelShortCircuits(t *testing.T) {
	q := adoption.Query{
		Tier:   adoption.ParseSelection("All", domain.ParseTier),
		Zone:   adoption.ParseSelection[string]("all", nil),
		Status: adoption.ParseSelection("", domain.ParseEngagementStatus),
	}
	assert.False(t, q.Zone.Active())
	p := adoption.View(viewRoster(), q)
	assert.Equal(t, 5, p.Filtered)

	// A real zone literally named "All" is still reachable with Only.
	p = adoption.View(viewRoster(), adoption.Query{Zone: adoption.Only("All")})
	assert.Equal(t, []string{"r-04"}, ids(p.Rows))
}

func TestViewZeroMatches(t *testing.T) {
	for _, q := range []adoption.Query{
		{Tier: adoption.ParseSelection("Diamond", domain.ParseTier)},
		{Zone: adoption.Only("Atlantis")},
		{Status: adoption.Only(domain.StatusViewed), Tier: adoption.Only(domain.TierPlatinum)},
	} {
		p := adoption.View(viewRoster(), q)
		require.NotNil(t, p.Rows)
		assert.Empty(t, p.Rows)
		assert.Equal(t, 1, p.TotalPages)
		assert.Equal(t, 1, p.Page)
	}
}

func TestViewPagination(t *testing.T) {
	roster := make([]domain.EngagementRecord, 0, 23)
	for i := 0; i < 23; i++ {
		roster = append(roster, rec(i, "Shop", domain.TierSilver, domain.StatusViewed, 0))
	}

	tests := []struct {
		name      string
		page      int
		size      int
		wantPage  int
		wantRows  int
		wantTotal int
		wantFirst string
	}{
		{"first page", 1, 10, 1, 10, 3, "r-00"},
		{"last partial page", 3, 10, 3, 3, 3, "r-20"},
		{"beyond last clamps", 9, 10, 3, 3, 3, "r-20"},
		{"zero clamps to first", 0, 10, 1, 10, 3, "r-00"},
		{"negative clamps to first", -4, 10, 1, 10, 3, "r-00"},
		{"default page size", 2, 0, 2, 10, 3, "r-10"},
		{"one page holds all", 1, 50, 1, 23, 1, "r-00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := adoption.View(roster, adoption.Query{Page: tt.page, PageSize: tt.size})
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantTotal, p.TotalPages)
			require.Len(t, p.Rows, tt.wantRows)
			assert.Equal(t, tt.wantFirst, p.Rows[0].RetailerID)
		})
	}
}

func TestViewSortKeys(t *testing.T) {
	roster := viewRoster()
	tests := []struct {
		key  adoption.SortKey
		want []string
	}{
		{adoption.SortRoster, []string{"r-00", "r-01", "r-02", "r-03", "r-04"}},
		{adoption.SortName, []string{"r-00", "r-02", "r-01", "r-03", "r-04"}},
		{adoption.SortActions, []string{"r-03", "r-00", "r-04", "r-01", "r-02"}},
		{adoption.SortTier, []string{"r-00", "r-01", "r-04", "r-02", "r-03"}},
		{adoption.SortStatus, []string{"r-02", "r-01", "r-00", "r-03", "r-04"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			p := adoption.View(roster, adoption.Query{Sort: tt.key})
			assert.Equal(t, tt.want, ids(p.Rows))
		})
	}
	assert.Equal(t, []string{"r-00", "r-01", "r-02", "r-03", "r-04"}, ids(roster), "input must not be reordered")
	assert.Equal(t, adoption.SortRoster, adoption.ParseSortKey("bogus"))
}

func TestRosterStateResetsPageOnFilterChange(t *testing.T) {
	roster := make([]domain.EngagementRecord, 0, 30)
	for i := 0; i < 30; i++ {
		tier := domain.TierSilver
		if i%10 == 0 {
			tier = domain.TierPlatinum
		}
		roster = append(roster, rec(i, "Shop", tier, domain.StatusViewed, 0))
	}

	state := adoption.NewRosterState(10)
	state.SetPage(3)
	assert.Equal(t, 3, state.Apply(roster).Page)

	changes := map[string]func(){
		"search": func() { state.SetSearch("shop") },
		"tier":   func() { state.SetTier(adoption.Only(domain.TierPlatinum)) },
		"zone":   func() { state.SetZone(adoption.Only(domain.DefaultZone)) },
		"status": func() { state.SetStatus(adoption.Only(domain.StatusViewed)) },
		"sort":   func() { state.SetSort(adoption.SortName) },
		"size":   func() { state.SetPageSize(5) },
	}
	for name, change := range changes {
		state.SetPage(3)
		change()
		assert.Equal(t, 1, state.Query().Page, "changing %s must reset the page", name)
	}

	state.SetPage(2)
	state.SetTier(adoption.Only(domain.TierPlatinum))
	assert.Equal(t, 2, state.Query().Page, "re-selecting the same tier is not a change")

	state.SetPage(7)
	p := state.Apply(roster)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, 1, state.Query().Page, "apply remembers the clamped page")
}

func TestResumeRosterState(t *testing.T) {
	state := adoption.ResumeRosterState(adoption.Query{Tier: adoption.Only(domain.TierGold), Page: 4, PageSize: 5})
	assert.Equal(t, 4, state.Query().Page)
	assert.Equal(t, adoption.SortRoster, state.Query().Sort)

	state.SetTier(adoption.Only(domain.TierGold))
	assert.Equal(t, 4, state.Query().Page)
	state.SetTier(adoption.Selection[domain.Tier]{})
	assert.Equal(t, 1, state.Query().Page)
}
