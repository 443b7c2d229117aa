package api

import (
	"fmt"
	"net/http"

	"github.com/ignite/partner-console/internal/domain"
	"github.com/ignite/partner-console/internal/export"
	"github.com/ignite/partner-console/internal/pkg/httputil"
	"github.com/ignite/partner-console/internal/service/adoption"
	"github.com/ignite/partner-console/internal/session"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SummaryResponse is the KPI header for one campaign.
type SummaryResponse struct {
	Campaign domain.Campaign   `json:"campaign"`
	KPIs     domain.KpiSummary `json:"kpis"`
}

// RosterResponse is one page of the roster table plus the controls that
// produced it.
type RosterResponse struct {
	adoption.Page
	Controls session.TableControls `json:"controls"`
}

// HandleSummary handles GET /api/campaigns/{campaignID}/summary
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, false, func(sess *session.Data) (bool, error) {
		view, err := h.loadCampaign(r.Context(), sess, campaignID(r))
		if err != nil {
			return false, err
		}
		httputil.OK(w, SummaryResponse{
			Campaign: view.Campaign,
			KPIs:     adoption.Summarize(view.Records),
		})
		return false, nil
	})
}

// HandleWatchlists handles GET /api/campaigns/{campaignID}/watchlists
// An explicit ?mode= wins; otherwise the campaign's mode or roster size decides.
func (h *Handlers) HandleWatchlists(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, false, func(sess *session.Data) (bool, error) {
		view, err := h.loadCampaign(r.Context(), sess, campaignID(r))
		if err != nil {
			return false, err
		}
		httputil.OK(w, adoption.BuildWatchlists(view.Records, h.watchlistMode(r, view)))
		return false, nil
	})
}

func (h *Handlers) watchlistMode(r *http.Request, view *campaignView) domain.WatchlistMode {
	if raw := r.URL.Query().Get("mode"); raw != "" {
		return domain.WatchlistMode(raw)
	}
	return adoption.ModeForRoster(&view.Campaign, len(view.Records), h.settings.BroadThreshold)
}

// HandleRoster handles GET /api/campaigns/{campaignID}/roster
// Query params: search, tier, zone, status, sort, page, page_size. Params
// left out keep the values this session last used.
func (h *Handlers) HandleRoster(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, true, func(sess *session.Data) (bool, error) {
		id := campaignID(r)
		view, err := h.loadCampaign(r.Context(), sess, id)
		if err != nil {
			return false, err
		}

		saved, ok := sess.Table(id)
		state := h.rosterState(r, saved, ok)
		page := state.Apply(view.Records)

		controls := tableControls(state.Query())
		sess.PutTable(id, controls)

		httputil.OK(w, RosterResponse{Page: page, Controls: controls})
		return !ok || controls != saved, nil
	})
}

// HandleRosterExport handles GET /api/campaigns/{campaignID}/roster/export
// Every row matching the current filters is exported in table order,
// ignoring pagination.
func (h *Handlers) HandleRosterExport(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, false, func(sess *session.Data) (bool, error) {
		id := campaignID(r)
		view, err := h.loadCampaign(r.Context(), sess, id)
		if err != nil {
			return false, err
		}

		saved, ok := sess.Table(id)
		q := h.rosterState(r, saved, ok).Query()
		q.Page = 1
		q.PageSize = max(len(view.Records), 1)
		rows := adoption.View(view.Records, q).Rows

		data, err := export.RosterXLSX(view.Campaign, rows, adoption.Summarize(view.Records))
		if err != nil {
			return false, fmt.Errorf("export roster: %w", err)
		}
		httputil.Attachment(w, xlsxContentType, fmt.Sprintf("%s-roster.xlsx", id), data)
		return false, nil
	})
}
