// Package fixture serves campaign rosters from a YAML document. The
// document is read once from a local path or an s3://bucket/key URL.
package fixture

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ignite/partner-console/internal/domain"
	"github.com/ignite/partner-console/internal/service/adoption"
)

// Document is the on-disk fixture layout.
type Document struct {
	Campaigns []CampaignFixture `yaml:"campaigns"`
}

// CampaignFixture is one campaign with its roster and overrides.
type CampaignFixture struct {
	domain.Campaign `yaml:",inline"`
	Retailers       []domain.RetailerRef    `yaml:"retailers"`
	Overrides       []domain.OverrideRecord `yaml:"overrides"`
}

// Source implements adoption.Source over a parsed Document.
type Source struct {
	campaigns map[string]CampaignFixture
	order     []string
}

var _ adoption.Source = (*Source)(nil)

// Parse decodes a fixture document.
func Parse(r io.Reader) (*Source, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return NewSource(doc)
}

// NewSource indexes a document by campaign id.
func NewSource(doc Document) (*Source, error) {
	s := &Source{campaigns: make(map[string]CampaignFixture, len(doc.Campaigns))}
	for i, c := range doc.Campaigns {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return nil, fmt.Errorf("campaign %d: missing id", i)
		}
		if _, dup := s.campaigns[id]; dup {
			return nil, fmt.Errorf("campaign %q: duplicate id", id)
		}
		c.ID = id
		s.campaigns[id] = c
		s.order = append(s.order, id)
	}
	return s, nil
}

// Load reads a fixture from path. Paths of the form s3://bucket/key are
// fetched with getter, which may be nil for local paths.
func Load(ctx context.Context, path string, getter ObjectGetter) (*Source, error) {
	if bucket, key, ok := parseS3URL(path); ok {
		if getter == nil {
			return nil, fmt.Errorf("load fixture %s: no S3 client configured", path)
		}
		body, err := getObject(ctx, getter, bucket, key)
		if err != nil {
			return nil, fmt.Errorf("load fixture %s: %w", path, err)
		}
		defer body.Close()
		return Parse(body)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// CampaignIDs lists campaigns in document order.
func (s *Source) CampaignIDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Campaigns returns the parsed campaigns in document order. cmd/migrate
// uses it to seed Postgres from a fixture.
func (s *Source) Campaigns() []CampaignFixture {
	out := make([]CampaignFixture, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.campaigns[id])
	}
	return out
}

func (s *Source) Campaign(_ context.Context, campaignID string) (*domain.Campaign, error) {
	c, ok := s.campaigns[campaignID]
	if !ok {
		return nil, adoption.ErrCampaignNotFound
	}
	out := c.Campaign
	return &out, nil
}

func (s *Source) Retailers(_ context.Context, campaignID string) ([]domain.RetailerRef, error) {
	c, ok := s.campaigns[campaignID]
	if !ok {
		return nil, adoption.ErrCampaignNotFound
	}
	out := make([]domain.RetailerRef, len(c.Retailers))
	copy(out, c.Retailers)
	return out, nil
}

// Overrides indexes override entries by retailer id; later entries win.
func (s *Source) Overrides(_ context.Context, campaignID string) (map[string]domain.OverrideRecord, error) {
	c, ok := s.campaigns[campaignID]
	if !ok {
		return nil, adoption.ErrCampaignNotFound
	}
	out := make(map[string]domain.OverrideRecord, len(c.Overrides))
	for _, o := range c.Overrides {
		id := strings.TrimSpace(o.RetailerID)
		if id == "" {
			continue
		}
		o.RetailerID = id
		out[id] = o
	}
	return out, nil
}
