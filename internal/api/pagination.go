package api

import (
	"net/http"
	"net/url"

	"github.com/ignite/partner-console/internal/domain"
	"github.com/ignite/partner-console/internal/pkg/httputil"
	"github.com/ignite/partner-console/internal/service/adoption"
	"github.com/ignite/partner-console/internal/session"
)

// rosterState restores the session's table controls for a campaign and
// applies whichever controls the request carries. A changed filter, sort
// or page size sends the table back to page 1; an explicit page param is
// applied last.
func (h *Handlers) rosterState(r *http.Request, saved session.TableControls, ok bool) *adoption.RosterState {
	var state *adoption.RosterState
	if ok {
		state = adoption.ResumeRosterState(adoption.Query{
			Search:   saved.Search,
			Tier:     adoption.ParseSelection(saved.Tier, domain.ParseTier),
			Zone:     adoption.ParseSelection[string](saved.Zone, nil),
			Status:   adoption.ParseSelection(saved.Status, domain.ParseEngagementStatus),
			Sort:     adoption.ParseSortKey(saved.Sort),
			Page:     saved.Page,
			PageSize: h.pageSize(saved.PageSize),
		})
	} else {
		state = adoption.NewRosterState(h.settings.PageSize)
	}

	q := r.URL.Query()
	applyRosterParams(state, q)
	if q.Has("page_size") {
		state.SetPageSize(h.pageSize(httputil.QueryInt(r, "page_size", h.settings.PageSize)))
	}
	if q.Has("page") {
		state.SetPage(httputil.QueryInt(r, "page", 1))
	}
	return state
}

func applyRosterParams(state *adoption.RosterState, q url.Values) {
	if q.Has("search") {
		state.SetSearch(q.Get("search"))
	}
	if q.Has("tier") {
		state.SetTier(adoption.ParseSelection(q.Get("tier"), domain.ParseTier))
	}
	if q.Has("zone") {
		state.SetZone(adoption.ParseSelection[string](q.Get("zone"), nil))
	}
	if q.Has("status") {
		state.SetStatus(adoption.ParseSelection(q.Get("status"), domain.ParseEngagementStatus))
	}
	if q.Has("sort") {
		state.SetSort(adoption.ParseSortKey(q.Get("sort")))
	}
}

// pageSize falls back to the configured default and caps at the maximum.
func (h *Handlers) pageSize(n int) int {
	if n < 1 {
		return h.settings.PageSize
	}
	return min(n, h.settings.MaxPageSize)
}

func tableControls(q adoption.Query) session.TableControls {
	return session.TableControls{
		Search:   q.Search,
		Tier:     string(q.Tier.Value()),
		Zone:     q.Zone.Value(),
		Status:   string(q.Status.Value()),
		Sort:     string(q.Sort),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
}
