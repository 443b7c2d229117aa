package outreach

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/partner-console/internal/pkg/logger"
)

// Rendered is a subject and body after the compose-time merge phase.
type Rendered struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Message is one personalized nudge produced by Send.
type Message struct {
	RecipientID string `json:"recipient_id"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
}

// SendResult reports what a send produced.
type SendResult struct {
	DraftID      string    `json:"draft_id"`
	SentCount    int       `json:"sent_count"`
	RecipientIDs []string  `json:"recipient_ids"`
	Messages     []Message `json:"messages"`
}

// Composer opens and sends drafts for one brand.
type Composer struct {
	brand    string
	renderer *MergeRenderer
	log      *logger.Logger
	now      func() time.Time
}

// NewComposer creates a composer. A nil renderer gets a private one.
func NewComposer(brand string, renderer *MergeRenderer, log *logger.Logger) *Composer {
	if renderer == nil {
		renderer = NewMergeRenderer()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Composer{
		brand:    brand,
		renderer: renderer,
		log:      log.With("outreach.composer"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Brand returns the brand name bound into every draft.
func (c *Composer) Brand() string { return c.brand }

// Render fills a category template for the given recipients. The retailer
// name is bound only for a single-mode render addressed to exactly one
// recipient.
func (c *Composer) Render(category RiskCategory, mode Mode, recipients []Recipient) Rendered {
	tpl := TemplateFor(c.category(category))
	fields := Fields{FieldBrandName: c.brand}
	if mode == ModeSingle && len(recipients) == 1 {
		fields[FieldRetailerName] = recipients[0].Name
	}
	return Rendered{
		Subject: c.renderer.MustExpand(tpl.Subject, fields, false),
		Body:    c.renderer.MustExpand(tpl.Body, fields, true),
	}
}

// Open starts a draft. Duplicate recipients are collapsed and every
// recipient starts selected.
func (c *Composer) Open(campaignID string, category RiskCategory, mode Mode, recipients []Recipient) (*Draft, error) {
	if mode != ModeSingle && mode != ModeBulk {
		return nil, ErrInvalidMode
	}
	recipients = dedupe(recipients)
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	if mode == ModeSingle && len(recipients) != 1 {
		return nil, fmt.Errorf("%w: single mode takes exactly one recipient, got %d", ErrInvalidMode, len(recipients))
	}

	category = c.category(category)
	now := c.now()
	d := &Draft{
		ID:         uuid.New().String(),
		CampaignID: campaignID,
		Brand:      c.brand,
		Mode:       mode,
		Category:   category,
		Recipients: recipients,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	c.reset(d)
	c.log.Info("draft opened", "draft_id", d.ID, "campaign_id", campaignID, "mode", mode, "category", category, "recipients", len(recipients))
	return d, nil
}

// Reconfigure switches category or mode. The draft is re-initialized from the
// template only when one of them actually changes; otherwise edits are kept.
func (c *Composer) Reconfigure(d *Draft, category RiskCategory, mode Mode) error {
	if d.Closed {
		return ErrDraftClosed
	}
	if mode != ModeSingle && mode != ModeBulk {
		return ErrInvalidMode
	}
	if mode == ModeSingle && len(d.Recipients) != 1 {
		return fmt.Errorf("%w: single mode takes exactly one recipient, got %d", ErrInvalidMode, len(d.Recipients))
	}
	category = c.category(category)
	if category == d.Category && mode == d.Mode {
		return nil
	}
	d.Category = category
	d.Mode = mode
	c.reset(d)
	d.UpdatedAt = c.now()
	return nil
}

// Send personalizes the draft for every selected recipient and closes it.
// With nothing selected it returns ErrEmptyRecipientSet and leaves the draft
// untouched.
func (c *Composer) Send(d *Draft) (SendResult, error) {
	if d.Closed {
		return SendResult{}, ErrDraftClosed
	}
	selected := d.SelectedRecipients()
	if len(selected) == 0 {
		return SendResult{}, ErrEmptyRecipientSet
	}

	brand := d.Brand
	if brand == "" {
		brand = c.brand
	}
	result := SendResult{
		DraftID:      d.ID,
		RecipientIDs: make([]string, 0, len(selected)),
		Messages:     make([]Message, 0, len(selected)),
	}
	for _, r := range selected {
		fields := Fields{FieldBrandName: brand, FieldRetailerName: r.Name}
		subject, err := c.renderer.Expand(d.Subject, fields, false)
		if err != nil {
			return SendResult{}, fmt.Errorf("personalize subject for %s: %w", r.ID, err)
		}
		body, err := c.renderer.Expand(d.Body, fields, true)
		if err != nil {
			return SendResult{}, fmt.Errorf("personalize body for %s: %w", r.ID, err)
		}
		result.RecipientIDs = append(result.RecipientIDs, r.ID)
		result.Messages = append(result.Messages, Message{RecipientID: r.ID, Subject: subject, Body: body})
	}
	result.SentCount = len(result.Messages)

	d.Closed = true
	d.UpdatedAt = c.now()
	c.log.Info("draft sent", "draft_id", d.ID, "campaign_id", d.CampaignID, "sent", result.SentCount)
	return result, nil
}

func (c *Composer) reset(d *Draft) {
	r := c.Render(d.Category, d.Mode, d.Recipients)
	d.Subject = r.Subject
	d.Body = r.Body
	d.Edited = false
	d.selectAll()
}

func (c *Composer) category(cat RiskCategory) RiskCategory {
	if known, ok := ParseRiskCategory(string(cat)); ok {
		return known
	}
	c.log.Warn("unknown risk category, using generic template", "category", string(cat))
	return CategoryGeneric
}

func dedupe(in []Recipient) []Recipient {
	seen := make(map[string]bool, len(in))
	out := make([]Recipient, 0, len(in))
	for _, r := range in {
		if r.ID == "" || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}
