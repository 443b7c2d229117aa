package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ignite/partner-console/internal/domain"
	"github.com/ignite/partner-console/internal/service/adoption"
)

// RosterRepo implements adoption.Source against PostgreSQL.
type RosterRepo struct{ db *sql.DB }

var _ adoption.Source = (*RosterRepo)(nil)

// NewRosterRepo creates a Postgres-backed roster source.
func NewRosterRepo(db *sql.DB) *RosterRepo { return &RosterRepo{db: db} }

func (r *RosterRepo) Campaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	var mode, status string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(brand_name,''), COALESCE(watchlist_mode,''), COALESCE(default_status,'')
		FROM partner_campaigns
		WHERE id = $1
	`, campaignID).Scan(&c.ID, &c.Name, &c.BrandName, &mode, &status)
	if err == sql.ErrNoRows {
		return nil, adoption.ErrCampaignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	c.WatchlistMode = domain.WatchlistMode(mode)
	c.DefaultStatus = domain.EngagementStatus(status)
	return c, nil
}

func (r *RosterRepo) Retailers(ctx context.Context, campaignID string) ([]domain.RetailerRef, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.name, COALESCE(r.tier,''), COALESCE(r.zone,''),
		       COALESCE(r.contact_name,''), COALESCE(r.contact_email,''), COALESCE(r.phone,'')
		FROM partner_campaign_retailers cr
		JOIN partner_retailers r ON r.id = cr.retailer_id
		WHERE cr.campaign_id = $1
		ORDER BY cr.position, r.id
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list retailers: %w", err)
	}
	defer rows.Close()

	var out []domain.RetailerRef
	for rows.Next() {
		var ref domain.RetailerRef
		var tier string
		if err := rows.Scan(&ref.ID, &ref.Name, &tier, &ref.Zone, &ref.ContactName, &ref.ContactEmail, &ref.Phone); err != nil {
			return nil, fmt.Errorf("scan retailer: %w", err)
		}
		ref.Tier = domain.Tier(tier)
		out = append(out, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate retailers: %w", err)
	}
	return out, nil
}

// Overrides loads engagement overrides. The usage column is JSONB holding
// either a tag array or the legacy flag object.
func (r *RosterRepo) Overrides(ctx context.Context, campaignID string) (map[string]domain.OverrideRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT retailer_id, status, last_active, total_actions, usage, COALESCE(impact,'')
		FROM partner_engagement_overrides
		WHERE campaign_id = $1
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.OverrideRecord)
	for rows.Next() {
		var o domain.OverrideRecord
		var status string
		var lastActive sql.NullString
		var usage []byte
		if err := rows.Scan(&o.RetailerID, &status, &lastActive, &o.TotalActions, &usage, &o.Impact); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		o.Status = domain.EngagementStatus(status)
		if lastActive.Valid {
			s := lastActive.String
			o.LastActive = &s
		}
		if len(usage) > 0 {
			if err := json.Unmarshal(usage, &o.Usage); err != nil {
				return nil, fmt.Errorf("decode usage for %s: %w", o.RetailerID, err)
			}
		}
		out[o.RetailerID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overrides: %w", err)
	}
	return out, nil
}

// UpsertOverride writes one engagement override.
func (r *RosterRepo) UpsertOverride(ctx context.Context, campaignID string, o domain.OverrideRecord) error {
	return upsertOverride(ctx, r.db, campaignID, o)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertOverride(ctx context.Context, db execer, campaignID string, o domain.OverrideRecord) error {
	usage, err := json.Marshal(o.Usage)
	if err != nil {
		return fmt.Errorf("encode usage: %w", err)
	}
	var lastActive sql.NullString
	if o.LastActive != nil {
		lastActive = sql.NullString{String: *o.LastActive, Valid: true}
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO partner_engagement_overrides
			(campaign_id, retailer_id, status, last_active, total_actions, usage, impact)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (campaign_id, retailer_id) DO UPDATE SET
			status = EXCLUDED.status,
			last_active = EXCLUDED.last_active,
			total_actions = EXCLUDED.total_actions,
			usage = EXCLUDED.usage,
			impact = EXCLUDED.impact
	`, campaignID, o.RetailerID, string(o.Status), lastActive, o.TotalActions, usage, o.Impact)
	if err != nil {
		return fmt.Errorf("upsert override %s: %w", o.RetailerID, err)
	}
	return nil
}

// ImportCampaign writes a campaign with its roster and overrides in one
// transaction. Roster position follows the order of retailers.
func (r *RosterRepo) ImportCampaign(ctx context.Context, c domain.Campaign, retailers []domain.RetailerRef, overrides []domain.OverrideRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO partner_campaigns (id, name, brand_name, watchlist_mode, default_status)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''))
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			brand_name = EXCLUDED.brand_name,
			watchlist_mode = EXCLUDED.watchlist_mode,
			default_status = EXCLUDED.default_status
	`, c.ID, c.Name, c.BrandName, string(c.WatchlistMode), string(c.DefaultStatus))
	if err != nil {
		return fmt.Errorf("upsert campaign: %w", err)
	}

	for i, ref := range retailers {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO partner_retailers (id, name, tier, zone, contact_name, contact_email, phone)
			VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				tier = EXCLUDED.tier,
				zone = EXCLUDED.zone,
				contact_name = EXCLUDED.contact_name,
				contact_email = EXCLUDED.contact_email,
				phone = EXCLUDED.phone
		`, ref.ID, ref.Name, string(ref.Tier), ref.Zone, ref.ContactName, ref.ContactEmail, ref.Phone)
		if err != nil {
			return fmt.Errorf("upsert retailer %s: %w", ref.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO partner_campaign_retailers (campaign_id, retailer_id, position)
			VALUES ($1, $2, $3)
			ON CONFLICT (campaign_id, retailer_id) DO UPDATE SET position = EXCLUDED.position
		`, c.ID, ref.ID, i)
		if err != nil {
			return fmt.Errorf("link retailer %s: %w", ref.ID, err)
		}
	}

	for _, o := range overrides {
		if err := upsertOverride(ctx, tx, c.ID, o); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}
