package export_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ignite/partner-console/internal/domain"
	"github.com/ignite/partner-console/internal/export"
	"github.com/ignite/partner-console/internal/service/adoption"
)

func TestRosterXLSX(t *testing.T) {
	last := "Today"
	records := []domain.EngagementRecord{
		{RetailerID: "ret-01", Name: "Acme Co.", Tier: domain.TierGold, Zone: "North", Status: domain.StatusParticipated,
			TotalActions: 2, EstimatedReach: 490, UsageChannels: domain.NewChannelSet(domain.ChannelSocial, domain.ChannelEmail),
			LastActive: &last, Impact: "High", Resolved: true},
		{RetailerID: "ret-02", Name: "Bravo", Tier: domain.TierStandard, Zone: "Central", Status: domain.StatusUnopened},
	}
	kpi := adoption.Summarize(records)

	data, err := export.RosterXLSX(domain.Campaign{Name: "Spring Launch", BrandName: "Lumen"}, records, kpi)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.RosterSheet, export.SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(export.RosterSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Retailer ID", rows[0][0])
	assert.Equal(t, []string{"ret-01", "Acme Co.", "Gold", "North", "Participated", "2", "490", "social,email", "Today", "High", "Yes"}, rows[1])
	assert.Equal(t, "ret-02", rows[2][0])
	assert.Equal(t, "No", rows[2][10])

	rate, err := f.GetCellValue(export.SummarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "50", rate)
}

func TestRosterXLSX_EmptyRoster(t *testing.T) {
	data, err := export.RosterXLSX(domain.Campaign{}, nil, adoption.Summarize(nil))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.RosterSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
