package outreach

import "time"

// Draft is an editable nudge message addressed to one or more retailers.
// Drafts are plain values so they can be persisted in a session store.
type Draft struct {
	ID         string          `json:"id"`
	CampaignID string          `json:"campaign_id"`
	Brand      string          `json:"brand"`
	Mode       Mode            `json:"mode"`
	Category   RiskCategory    `json:"risk_category"`
	Recipients []Recipient     `json:"recipients"`
	Selected   map[string]bool `json:"selected"`
	Subject    string          `json:"subject"`
	Body       string          `json:"body"`
	Edited     bool            `json:"edited"`
	Closed     bool            `json:"closed"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Edit replaces the subject and body verbatim.
func (d *Draft) Edit(subject, body string) error {
	if d.Closed {
		return ErrDraftClosed
	}
	d.Subject = subject
	d.Body = body
	d.touch()
	return nil
}

// Rewrite applies rich-text edit spans to the body.
func (d *Draft) Rewrite(edits ...Edit) error {
	if d.Closed {
		return ErrDraftClosed
	}
	d.Body = Rewrite(d.Body, edits...)
	d.touch()
	return nil
}

// Select adds a recipient to the send set.
func (d *Draft) Select(id string) error {
	return d.setSelected(id, func(bool) bool { return true })
}

// Deselect removes a recipient from the send set.
func (d *Draft) Deselect(id string) error {
	return d.setSelected(id, func(bool) bool { return false })
}

// Toggle flips a recipient's membership in the send set.
func (d *Draft) Toggle(id string) error {
	return d.setSelected(id, func(cur bool) bool { return !cur })
}

func (d *Draft) setSelected(id string, next func(bool) bool) error {
	if d.Closed {
		return ErrDraftClosed
	}
	if d.Mode == ModeSingle {
		return ErrSelectionLocked
	}
	if !d.hasRecipient(id) {
		return ErrUnknownRecipient
	}
	if d.Selected == nil {
		d.Selected = make(map[string]bool)
	}
	if next(d.Selected[id]) {
		d.Selected[id] = true
	} else {
		delete(d.Selected, id)
	}
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// SelectedRecipients returns the selected recipients in draft order.
func (d *Draft) SelectedRecipients() []Recipient {
	out := make([]Recipient, 0, len(d.Selected))
	for _, r := range d.Recipients {
		if d.Selected[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// SelectedIDs returns the selected recipient ids in draft order.
func (d *Draft) SelectedIDs() []string {
	sel := d.SelectedRecipients()
	ids := make([]string, len(sel))
	for i, r := range sel {
		ids[i] = r.ID
	}
	return ids
}

// CanSend reports whether Send would dispatch anything.
func (d *Draft) CanSend() bool {
	return !d.Closed && len(d.SelectedRecipients()) > 0
}

// Close discards the draft without sending.
func (d *Draft) Close() {
	d.Closed = true
	d.UpdatedAt = time.Now().UTC()
}

func (d *Draft) hasRecipient(id string) bool {
	for _, r := range d.Recipients {
		if r.ID == id {
			return true
		}
	}
	return false
}

func (d *Draft) selectAll() {
	d.Selected = make(map[string]bool, len(d.Recipients))
	for _, r := range d.Recipients {
		d.Selected[r.ID] = true
	}
}

func (d *Draft) touch() {
	d.Edited = true
	d.UpdatedAt = time.Now().UTC()
}
