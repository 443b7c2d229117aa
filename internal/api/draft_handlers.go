package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ignite/partner-console/internal/delivery"
	"github.com/ignite/partner-console/internal/domain"
	"github.com/ignite/partner-console/internal/pkg/httputil"
	"github.com/ignite/partner-console/internal/service/outreach"
	"github.com/ignite/partner-console/internal/session"
)

// OpenDraftRequest is the body of POST /api/campaigns/{campaignID}/drafts.
// An empty mode means single for one recipient and bulk otherwise; an
// empty category is suggested from the recipients' engagement.
type OpenDraftRequest struct {
	Mode         string   `json:"mode"`
	RiskCategory string   `json:"risk_category"`
	RecipientIDs []string `json:"recipient_ids"`
}

// UpdateDraftRequest is the body of PATCH /api/drafts/{draftID}. Category
// and mode changes apply first, then text edits, then selection changes.
type UpdateDraftRequest struct {
	RiskCategory *string         `json:"risk_category,omitempty"`
	Mode         *string         `json:"mode,omitempty"`
	Subject      *string         `json:"subject,omitempty"`
	Body         *string         `json:"body,omitempty"`
	Edits        []outreach.Edit `json:"edits,omitempty"`
	Select       []string        `json:"select,omitempty"`
	Deselect     []string        `json:"deselect,omitempty"`
	Toggle       []string        `json:"toggle,omitempty"`
}

// DraftResponse is a draft plus the derived send state.
type DraftResponse struct {
	*outreach.Draft
	SelectedIDs []string `json:"selected_ids"`
	CanSend     bool     `json:"can_send"`
}

// SendResponse reports the personalized messages and their delivery.
type SendResponse struct {
	Result        outreach.SendResult `json:"result"`
	Delivery      *delivery.Report    `json:"delivery,omitempty"`
	DeliveryError string              `json:"delivery_error,omitempty"`
}

func draftResponse(d *outreach.Draft) DraftResponse {
	return DraftResponse{Draft: d, SelectedIDs: d.SelectedIDs(), CanSend: d.CanSend()}
}

// HandleOpenDraft handles POST /api/campaigns/{campaignID}/drafts
func (h *Handlers) HandleOpenDraft(w http.ResponseWriter, r *http.Request) {
	var req OpenDraftRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	h.withSession(w, r, true, func(sess *session.Data) (bool, error) {
		id := campaignID(r)
		view, err := h.loadCampaign(r.Context(), sess, id)
		if err != nil {
			return false, err
		}

		records := make([]domain.EngagementRecord, 0, len(req.RecipientIDs))
		var unknown []string
		for _, rid := range req.RecipientIDs {
			rec, ok := view.Find(rid)
			if !ok {
				unknown = append(unknown, rid)
				continue
			}
			records = append(records, rec)
		}
		if len(unknown) > 0 {
			return false, fmt.Errorf("%w: %s", outreach.ErrUnknownRecipient, strings.Join(unknown, ", "))
		}

		mode, err := draftMode(req.Mode, len(records))
		if err != nil {
			return false, err
		}
		category := outreach.RiskCategory(req.RiskCategory)
		if strings.TrimSpace(req.RiskCategory) == "" {
			category = suggestCategory(records)
		}

		recipients := make([]outreach.Recipient, len(records))
		for i, rec := range records {
			recipients[i] = outreach.RecipientFrom(rec)
		}

		d, err := h.composer(view.Campaign.BrandName).Open(id, category, mode, recipients)
		if err != nil {
			return false, err
		}
		sess.PutDraft(d)
		httputil.Created(w, draftResponse(d))
		return true, nil
	})
}

func draftMode(raw string, recipients int) (outreach.Mode, error) {
	if strings.TrimSpace(raw) == "" {
		if recipients == 1 {
			return outreach.ModeSingle, nil
		}
		return outreach.ModeBulk, nil
	}
	mode, ok := outreach.ParseMode(raw)
	if !ok {
		return "", fmt.Errorf("%w: %q", outreach.ErrInvalidMode, raw)
	}
	return mode, nil
}

// suggestCategory returns the category every record agrees on, or generic.
func suggestCategory(records []domain.EngagementRecord) outreach.RiskCategory {
	if len(records) == 0 {
		return outreach.CategoryGeneric
	}
	first := outreach.CategoryFor(records[0])
	for _, rec := range records[1:] {
		if outreach.CategoryFor(rec) != first {
			return outreach.CategoryGeneric
		}
	}
	return first
}

// HandleGetDraft handles GET /api/drafts/{draftID}
func (h *Handlers) HandleGetDraft(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, false, func(sess *session.Data) (bool, error) {
		d, err := sess.Draft(draftID(r))
		if err != nil {
			return false, err
		}
		httputil.OK(w, draftResponse(d))
		return false, nil
	})
}

// HandleUpdateDraft handles PATCH /api/drafts/{draftID}
// The update is all or nothing: on any error the stored draft is unchanged.
func (h *Handlers) HandleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req UpdateDraftRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	h.withSession(w, r, true, func(sess *session.Data) (bool, error) {
		d, err := sess.Draft(draftID(r))
		if err != nil {
			return false, err
		}
		if err := h.applyDraftUpdate(d, req); err != nil {
			return false, err
		}
		sess.PutDraft(d)
		httputil.OK(w, draftResponse(d))
		return true, nil
	})
}

func (h *Handlers) applyDraftUpdate(d *outreach.Draft, req UpdateDraftRequest) error {
	if d.Closed {
		return outreach.ErrDraftClosed
	}

	if req.RiskCategory != nil || req.Mode != nil {
		category, mode := d.Category, d.Mode
		if req.RiskCategory != nil {
			category = outreach.RiskCategory(strings.ToLower(strings.TrimSpace(*req.RiskCategory)))
		}
		if req.Mode != nil {
			m, ok := outreach.ParseMode(*req.Mode)
			if !ok {
				return fmt.Errorf("%w: %q", outreach.ErrInvalidMode, *req.Mode)
			}
			mode = m
		}
		if err := h.composer(d.Brand).Reconfigure(d, category, mode); err != nil {
			return err
		}
	}

	if req.Subject != nil || req.Body != nil {
		subject, body := d.Subject, d.Body
		if req.Subject != nil {
			subject = *req.Subject
		}
		if req.Body != nil {
			body = *req.Body
		}
		if err := d.Edit(subject, body); err != nil {
			return err
		}
	}
	if len(req.Edits) > 0 {
		if err := d.Rewrite(req.Edits...); err != nil {
			return err
		}
	}

	for _, id := range req.Select {
		if err := d.Select(id); err != nil {
			return fmt.Errorf("select %s: %w", id, err)
		}
	}
	for _, id := range req.Deselect {
		if err := d.Deselect(id); err != nil {
			return fmt.Errorf("deselect %s: %w", id, err)
		}
	}
	for _, id := range req.Toggle {
		if err := d.Toggle(id); err != nil {
			return fmt.Errorf("toggle %s: %w", id, err)
		}
	}
	return nil
}

// HandleCloseDraft handles DELETE /api/drafts/{draftID}
func (h *Handlers) HandleCloseDraft(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, true, func(sess *session.Data) (bool, error) {
		id := draftID(r)
		d, err := sess.Draft(id)
		if err != nil {
			return false, err
		}
		d.Close()
		sess.DropDraft(id)
		httputil.NoContent(w)
		return true, nil
	})
}

// HandleSendDraft handles POST /api/drafts/{draftID}/send
// The draft is destroyed and the sent recipients resolved before delivery
// starts, so a failed or slow dispatch is never re-sent from the same draft.
func (h *Handlers) HandleSendDraft(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, true, func(sess *session.Data) (bool, error) {
		ctx := r.Context()
		d, err := sess.Draft(draftID(r))
		if err != nil {
			return false, err
		}

		result, err := h.composer(d.Brand).Send(d)
		if err != nil {
			return false, err
		}
		sess.DropDraft(d.ID)
		tr := sess.Tracker(d.CampaignID)
		tr.Resolve(result.RecipientIDs...)
		sess.PutTracker(d.CampaignID, tr)
		if err := h.sessions.Save(ctx, sess); err != nil {
			return false, fmt.Errorf("save session: %w", err)
		}

		resp := SendResponse{Result: result}
		report, err := h.deliver(ctx, d, result)
		if err != nil {
			h.log.Error("delivery failed", "draft_id", d.ID, "campaign_id", d.CampaignID, "error", err)
			resp.DeliveryError = err.Error()
		}
		resp.Delivery = report
		httputil.OK(w, resp)
		return false, nil
	})
}

func (h *Handlers) deliver(ctx context.Context, d *outreach.Draft, result outreach.SendResult) (*delivery.Report, error) {
	if h.dispatcher == nil {
		return nil, nil
	}
	contacts, err := h.roster.Contacts(ctx, d.CampaignID)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(d.Recipients))
	for _, rec := range d.Recipients {
		names[rec.ID] = rec.Name
	}

	msgs := make([]delivery.Outbound, 0, len(result.Messages))
	for _, m := range result.Messages {
		c := contacts[m.RecipientID]
		name := c.ContactName
		if name == "" {
			name = names[m.RecipientID]
		}
		msgs = append(msgs, delivery.Outbound{
			Message:    m,
			CampaignID: d.CampaignID,
			DraftID:    d.ID,
			Name:       name,
			Email:      c.ContactEmail,
		})
	}
	return h.dispatcher.Dispatch(ctx, msgs)
}
