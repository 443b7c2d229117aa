package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/partner-console/internal/delivery"
	"github.com/ignite/partner-console/internal/pkg/httputil"
	"github.com/ignite/partner-console/internal/pkg/logger"
	"github.com/ignite/partner-console/internal/service/adoption"
	"github.com/ignite/partner-console/internal/service/outreach"
	"github.com/ignite/partner-console/internal/service/resolution"
	"github.com/ignite/partner-console/internal/session"
)

// Settings are the console defaults the handlers apply.
type Settings struct {
	DefaultBrand   string
	PageSize       int
	MaxPageSize    int
	BroadThreshold int
}

// Handlers serves the partner console API. Each request derives a fresh
// roster from the source and rehydrates the caller's session state.
type Handlers struct {
	roster     *adoption.Service
	sessions   session.Store
	renderer   *outreach.MergeRenderer
	dispatcher delivery.Dispatcher
	settings   Settings
	log        *logger.Logger
}

// NewHandlers wires the console handlers.
func NewHandlers(roster *adoption.Service, sessions session.Store, dispatcher delivery.Dispatcher, settings Settings, log *logger.Logger) *Handlers {
	if settings.PageSize <= 0 {
		settings.PageSize = adoption.DefaultPageSize
	}
	if settings.MaxPageSize <= 0 {
		settings.MaxPageSize = 100
	}
	if log == nil {
		log = logger.Default()
	}
	return &Handlers{
		roster:     roster,
		sessions:   sessions,
		renderer:   outreach.NewMergeRenderer(),
		dispatcher: dispatcher,
		settings:   settings,
		log:        log.With("api"),
	}
}

// campaignView is a campaign roster with the session's resolutions applied.
type campaignView struct {
	*adoption.Roster
	tracker *resolution.Tracker
}

// loadCampaign builds the roster for the URL's campaign and applies the
// session's resolution state.
func (h *Handlers) loadCampaign(ctx context.Context, sess *session.Data, campaignID string) (*campaignView, error) {
	roster, err := h.roster.Roster(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	tr := sess.Tracker(campaignID)
	roster.Records = tr.Apply(roster.Records)
	return &campaignView{Roster: roster, tracker: tr}, nil
}

// composer returns a composer for the given brand, falling back to the
// configured default.
func (h *Handlers) composer(brand string) *outreach.Composer {
	if brand == "" {
		brand = h.settings.DefaultBrand
	}
	return outreach.NewComposer(brand, h.renderer, h.log)
}

// withSession runs fn with the caller's session loaded. When fn reports a
// change the session is saved. Mutating calls hold the session lock.
func (h *Handlers) withSession(w http.ResponseWriter, r *http.Request, mutate bool, fn func(*session.Data) (bool, error)) {
	ctx := r.Context()
	id := SessionID(ctx)

	if mutate {
		unlock, err := h.sessions.Lock(ctx, id)
		if err != nil {
			httputil.InternalError(w, err)
			return
		}
		defer unlock()
	}

	sess, err := h.sessions.Load(ctx, id)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	changed, err := fn(sess)
	if err != nil {
		h.fail(w, err)
		return
	}
	if changed {
		if err := h.sessions.Save(ctx, sess); err != nil {
			h.log.Error("session save failed", "session_id", id, "error", err)
		}
	}
}

// errResponded marks errors whose response was already written.
var errResponded = errors.New("response written")

// fail maps domain errors onto HTTP responses.
func (h *Handlers) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errResponded):
	case errors.Is(err, adoption.ErrCampaignNotFound):
		httputil.NotFound(w, "campaign not found")
	case errors.Is(err, outreach.ErrDraftNotFound):
		httputil.NotFound(w, "draft not found")
	case errors.Is(err, outreach.ErrEmptyRecipientSet):
		httputil.Conflict(w, "empty_recipient_set", err.Error())
	case errors.Is(err, outreach.ErrDraftClosed):
		httputil.Conflict(w, "draft_closed", err.Error())
	case errors.Is(err, outreach.ErrSelectionLocked):
		httputil.Conflict(w, "selection_locked", err.Error())
	case errors.Is(err, outreach.ErrInvalidMode),
		errors.Is(err, outreach.ErrNoRecipients),
		errors.Is(err, outreach.ErrUnknownRecipient):
		httputil.BadRequest(w, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}

func campaignID(r *http.Request) string { return chi.URLParam(r, "campaignID") }

func draftID(r *http.Request) string { return chi.URLParam(r, "draftID") }
