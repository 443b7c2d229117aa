// Package session persists per-user console state between HTTP requests:
// resolution tracker state per campaign and open outreach drafts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ignite/partner-console/internal/service/outreach"
	"github.com/ignite/partner-console/internal/service/resolution"
)

// ErrInvalidID is returned for an empty session id.
var ErrInvalidID = errors.New("invalid session id")

// TableControls are the roster table's filters, sort and paging as the
// console last left them. Empty filter values mean unrestricted.
type TableControls struct {
	Search   string `json:"search,omitempty"`
	Tier     string `json:"tier,omitempty"`
	Zone     string `json:"zone,omitempty"`
	Status   string `json:"status,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// Data is everything stored for one session.
type Data struct {
	ID          string                      `json:"id"`
	Resolutions map[string]resolution.State `json:"resolutions"`
	Drafts      map[string]*outreach.Draft  `json:"drafts"`
	Tables      map[string]TableControls    `json:"tables"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// New returns empty session data.
func New(id string) *Data {
	return &Data{
		ID:          id,
		Resolutions: make(map[string]resolution.State),
		Drafts:      make(map[string]*outreach.Draft),
		Tables:      make(map[string]TableControls),
	}
}

// Table returns the saved roster table controls for a campaign.
func (d *Data) Table(campaignID string) (TableControls, bool) {
	t, ok := d.Tables[campaignID]
	return t, ok
}

// PutTable saves roster table controls for a campaign.
func (d *Data) PutTable(campaignID string, t TableControls) {
	if d.Tables == nil {
		d.Tables = make(map[string]TableControls)
	}
	d.Tables[campaignID] = t
}

// Tracker rehydrates the resolution tracker for a campaign.
func (d *Data) Tracker(campaignID string) *resolution.Tracker {
	t := resolution.NewTracker()
	if s, ok := d.Resolutions[campaignID]; ok {
		t.Restore(s)
	}
	return t
}

// PutTracker stores a tracker's state for a campaign.
func (d *Data) PutTracker(campaignID string, t *resolution.Tracker) {
	if d.Resolutions == nil {
		d.Resolutions = make(map[string]resolution.State)
	}
	d.Resolutions[campaignID] = t.Snapshot()
}

// Draft looks up an open or closed draft by id.
func (d *Data) Draft(id string) (*outreach.Draft, error) {
	draft, ok := d.Drafts[id]
	if !ok {
		return nil, outreach.ErrDraftNotFound
	}
	return draft, nil
}

// PutDraft stores a draft.
func (d *Data) PutDraft(draft *outreach.Draft) {
	if d.Drafts == nil {
		d.Drafts = make(map[string]*outreach.Draft)
	}
	d.Drafts[draft.ID] = draft
}

// DropDraft removes a draft.
func (d *Data) DropDraft(id string) {
	delete(d.Drafts, id)
}

// Store loads and saves session data. Load returns empty data for an unknown
// id. Lock serializes read-modify-write cycles on one session; the returned
// function releases it. Implementations are safe for concurrent use.
type Store interface {
	Load(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, d *Data) error
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

func encode(d *Data) ([]byte, error) {
	d.UpdatedAt = time.Now().UTC()
	return json.Marshal(d)
}

func decode(id string, raw []byte) (*Data, error) {
	d := New(id)
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, err
	}
	if d.Resolutions == nil {
		d.Resolutions = make(map[string]resolution.State)
	}
	if d.Drafts == nil {
		d.Drafts = make(map[string]*outreach.Draft)
	}
	if d.Tables == nil {
		d.Tables = make(map[string]TableControls)
	}
	return d, nil
}
