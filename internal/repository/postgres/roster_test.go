package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/partner-console/internal/domain"
	"github.com/ignite/partner-console/internal/service/adoption"
)

func setupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return db, mock, func() { db.Close() }
}

func TestRosterRepo_Campaign(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRosterRepo(db)

	mock.ExpectQuery("SELECT id, name").
		WithArgs("spring").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "brand_name", "watchlist_mode", "default_status"}).
			AddRow("spring", "Spring Launch", "Lumen", "broad", ""))

	c, err := repo.Campaign(context.Background(), "spring")
	require.NoError(t, err)
	assert.Equal(t, "Lumen", c.BrandName)
	assert.Equal(t, domain.WatchlistBroad, c.WatchlistMode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepo_CampaignNotFound(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRosterRepo(db)

	mock.ExpectQuery("SELECT id, name").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Campaign(context.Background(), "nope")
	assert.ErrorIs(t, err, adoption.ErrCampaignNotFound)
}

func TestRosterRepo_Retailers(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRosterRepo(db)

	mock.ExpectQuery("FROM partner_campaign_retailers").
		WithArgs("spring").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "tier", "zone", "contact_name", "contact_email", "phone"}).
			AddRow("ret-01", "Acme Co.", "Gold", "North", "Ana", "ana@acme.test", "").
			AddRow("ret-02", "Bravo", "", "", "", "", ""))

	rs, err := repo.Retailers(context.Background(), "spring")
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, domain.TierGold, rs[0].Tier)
	assert.Equal(t, domain.Tier(""), rs[1].Tier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepo_Overrides(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRosterRepo(db)

	mock.ExpectQuery("FROM partner_engagement_overrides").
		WithArgs("spring").
		WillReturnRows(sqlmock.NewRows([]string{"retailer_id", "status", "last_active", "total_actions", "usage", "impact"}).
			AddRow("ret-01", "Participated", "2 days ago", 4, []byte(`["social","email"]`), "High").
			AddRow("ret-02", "Viewed", nil, 0, []byte(`{"social":false,"downloadable":true}`), "").
			AddRow("ret-03", "Unopened", nil, 0, nil, ""))

	ov, err := repo.Overrides(context.Background(), "spring")
	require.NoError(t, err)
	require.Len(t, ov, 3)

	assert.Equal(t, domain.NewChannelSet(domain.ChannelSocial, domain.ChannelEmail), ov["ret-01"].Usage)
	require.NotNil(t, ov["ret-01"].LastActive)
	assert.Equal(t, "2 days ago", *ov["ret-01"].LastActive)
	assert.Equal(t, domain.NewChannelSet(domain.ChannelDownloadable), ov["ret-02"].Usage)
	assert.Nil(t, ov["ret-02"].LastActive)
	assert.True(t, ov["ret-03"].Usage.IsEmpty())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepo_OverridesBadUsage(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRosterRepo(db)

	mock.ExpectQuery("FROM partner_engagement_overrides").
		WithArgs("spring").
		WillReturnRows(sqlmock.NewRows([]string{"retailer_id", "status", "last_active", "total_actions", "usage", "impact"}).
			AddRow("ret-01", "Participated", nil, 1, []byte(`42`), ""))

	_, err := repo.Overrides(context.Background(), "spring")
	assert.ErrorContains(t, err, "ret-01")
}

func TestRosterRepo_QueryError(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRosterRepo(db)

	mock.ExpectQuery("FROM partner_campaign_retailers").WillReturnError(errors.New("connection reset"))

	_, err := repo.Retailers(context.Background(), "spring")
	assert.ErrorContains(t, err, "list retailers")
}

func TestRosterRepo_UpsertOverride(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRosterRepo(db)

	last := "Today"
	mock.ExpectExec("INSERT INTO partner_engagement_overrides").
		WithArgs("spring", "ret-01", "Participated", "Today", 2,
			[]byte(`["email"]`), "Medium").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertOverride(context.Background(), "spring", domain.OverrideRecord{
		RetailerID:   "ret-01",
		Status:       domain.StatusParticipated,
		LastActive:   &last,
		TotalActions: 2,
		Usage:        domain.NewChannelSet(domain.ChannelEmail),
		Impact:       "Medium",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepo_ImportCampaign(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRosterRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO partner_campaigns").
		WithArgs("spring", "Spring Launch", "Lumen", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO partner_retailers").
		WithArgs("ret-01", "Acme Co.", "Gold", "North", "", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO partner_campaign_retailers").
		WithArgs("spring", "ret-01", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO partner_engagement_overrides").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ImportCampaign(context.Background(),
		domain.Campaign{ID: "spring", Name: "Spring Launch", BrandName: "Lumen"},
		[]domain.RetailerRef{{ID: "ret-01", Name: "Acme Co.", Tier: domain.TierGold, Zone: "North"}},
		[]domain.OverrideRecord{{RetailerID: "ret-01", Status: domain.StatusViewed}},
	)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepo_ImportCampaignRollsBack(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRosterRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO partner_campaigns").WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := repo.ImportCampaign(context.Background(), domain.Campaign{ID: "spring"}, nil, nil)
	assert.ErrorContains(t, err, "upsert campaign")
	assert.NoError(t, mock.ExpectationsWereMet())
}
