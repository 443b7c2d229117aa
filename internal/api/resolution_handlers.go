package api

import (
	"net/http"

	"github.com/ignite/partner-console/internal/pkg/httputil"
	"github.com/ignite/partner-console/internal/service/adoption"
	"github.com/ignite/partner-console/internal/service/resolution"
	"github.com/ignite/partner-console/internal/session"
)

// ResolveRequest marks retailers as handled for this session.
type ResolveRequest struct {
	IDs []string `json:"ids"`
}

// ResolveResponse lists what changed and the recomputed watchlists.
type ResolveResponse struct {
	Resolved   []string            `json:"resolved"`
	Unknown    []string            `json:"unknown,omitempty"`
	Watchlists adoption.Watchlists `json:"watchlists"`
}

// SnoozeRequest defers a retailer for a number of days.
type SnoozeRequest struct {
	ID   string `json:"id"`
	Days int    `json:"days"`
}

// SnoozeResponse echoes the stored snooze and the recomputed watchlists.
type SnoozeResponse struct {
	Snooze     resolution.Snooze   `json:"snooze"`
	Watchlists adoption.Watchlists `json:"watchlists"`
}

// HandleResolve handles POST /api/campaigns/{campaignID}/resolutions
// Unknown retailer ids are reported and otherwise ignored.
func (h *Handlers) HandleResolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	h.withSession(w, r, true, func(sess *session.Data) (bool, error) {
		id := campaignID(r)
		view, err := h.loadCampaign(r.Context(), sess, id)
		if err != nil {
			return false, err
		}

		var known, unknown []string
		for _, rid := range req.IDs {
			if _, ok := view.Find(rid); ok {
				known = append(known, rid)
			} else {
				unknown = append(unknown, rid)
			}
		}

		added := view.tracker.Resolve(known...)
		sess.PutTracker(id, view.tracker)
		view.Records = view.tracker.Apply(view.Records)

		httputil.OK(w, ResolveResponse{
			Resolved:   view.tracker.ResolvedIDs(),
			Unknown:    unknown,
			Watchlists: adoption.BuildWatchlists(view.Records, h.watchlistMode(r, view)),
		})
		return len(added) > 0, nil
	})
}

// HandleSnooze handles POST /api/campaigns/{campaignID}/snoozes
// A snoozed retailer also counts as resolved for this session.
func (h *Handlers) HandleSnooze(w http.ResponseWriter, r *http.Request) {
	var req SnoozeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.ID == "" {
		httputil.BadRequest(w, "id is required")
		return
	}

	h.withSession(w, r, true, func(sess *session.Data) (bool, error) {
		id := campaignID(r)
		view, err := h.loadCampaign(r.Context(), sess, id)
		if err != nil {
			return false, err
		}
		if _, ok := view.Find(req.ID); !ok {
			httputil.NotFound(w, "retailer not found")
			return false, errResponded
		}

		snooze := view.tracker.Snooze(req.ID, req.Days)
		sess.PutTracker(id, view.tracker)
		view.Records = view.tracker.Apply(view.Records)

		httputil.OK(w, SnoozeResponse{
			Snooze:     snooze,
			Watchlists: adoption.BuildWatchlists(view.Records, h.watchlistMode(r, view)),
		})
		return true, nil
	})
}
