// Package delivery hands personalized nudges to an outbound channel. Every
// message gets exactly one attempt; failures are reported per recipient and
// never retried.
package delivery

import (
	"context"
	"time"

	"github.com/ignite/partner-console/internal/pkg/logger"
	"github.com/ignite/partner-console/internal/service/outreach"
)

// Outbound is a personalized message with its delivery address.
type Outbound struct {
	outreach.Message
	CampaignID string `json:"campaign_id"`
	DraftID    string `json:"draft_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// Result is the outcome for one recipient.
type Result struct {
	RecipientID string    `json:"recipient_id"`
	Success     bool      `json:"success"`
	MessageID   string    `json:"message_id,omitempty"`
	Error       string    `json:"error,omitempty"`
	SentAt      time.Time `json:"sent_at,omitempty"`
}

// Report summarizes one dispatch.
type Report struct {
	Channel  string   `json:"channel"`
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
	Results  []Result `json:"results"`
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	if res.Success {
		r.Accepted++
	} else {
		r.Rejected++
	}
}

// Dispatcher delivers a batch of outbound messages.
type Dispatcher interface {
	Dispatch(ctx context.Context, msgs []Outbound) (*Report, error)
}

// LogDispatcher records messages in the structured log instead of sending
// them. It is the default for local runs.
type LogDispatcher struct {
	log *logger.Logger
}

// NewLogDispatcher creates a log-only dispatcher.
func NewLogDispatcher(log *logger.Logger) *LogDispatcher {
	if log == nil {
		log = logger.Default()
	}
	return &LogDispatcher{log: log.With("delivery.log")}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, msgs []Outbound) (*Report, error) {
	report := &Report{Channel: "log"}
	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		d.log.Info("nudge",
			"campaign_id", m.CampaignID,
			"draft_id", m.DraftID,
			"recipient_id", m.RecipientID,
			"contact_email", m.Email,
			"subject", m.Subject,
		)
		report.add(Result{RecipientID: m.RecipientID, Success: true, SentAt: time.Now().UTC()})
	}
	return report, nil
}
