// Package export renders roster snapshots as spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ignite/partner-console/internal/domain"
)

const (
	RosterSheet  = "Roster"
	SummarySheet = "Summary"
)

var rosterHeaders = []string{
	"Retailer ID", "Name", "Tier", "Zone", "Status", "Total Actions",
	"Estimated Reach", "Channels", "Last Active", "Impact", "Resolved",
}

var rosterWidths = []float64{14, 32, 12, 14, 14, 14, 16, 28, 16, 12, 10}

// RosterXLSX writes the roster rows and the KPI summary to an XLSX workbook.
// Rows are written in the order given.
func RosterXLSX(c domain.Campaign, records []domain.EngagementRecord, kpi domain.KpiSummary) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(RosterSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create roster sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeRoster(f, headerStyle, records); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, headerStyle, c, kpi); err != nil {
		f.Close()
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRoster(f *excelize.File, headerStyle int, records []domain.EngagementRecord) error {
	for i, h := range rosterHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(RosterSheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		if err := f.SetCellStyle(RosterSheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(RosterSheet, col, col, rosterWidths[i]); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	for i, r := range records {
		lastActive := ""
		if r.LastActive != nil {
			lastActive = *r.LastActive
		}
		row := []any{
			r.RetailerID, r.Name, string(r.Tier), r.Zone, string(r.Status), r.TotalActions,
			r.EstimatedReach, r.UsageChannels.String(), lastActive, r.Impact, yesNo(r.Resolved),
		}
		for col, v := range row {
			if err := setCellValue(f, RosterSheet, col+1, i+2, v); err != nil {
				return fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
	}

	if err := f.SetPanes(RosterSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze panes: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, headerStyle int, c domain.Campaign, kpi domain.KpiSummary) error {
	rows := [][]any{
		{"Campaign", c.Name},
		{"Brand", c.BrandName},
		{"Adoption Rate (%)", kpi.AdoptionRatePercent},
		{"Total Invited", kpi.TotalInvited},
		{"Active", kpi.ActiveCount},
		{"Zero Action", kpi.ZeroActionCount},
		{"Estimated Reach", kpi.EstimatedReachTotal},
	}
	for _, st := range domain.AllStatuses() {
		rows = append(rows, []any{"Status: " + string(st), kpi.StatusCounts[st]})
	}
	for _, ch := range domain.AllChannels() {
		rows = append(rows, []any{"Channel: " + string(ch), kpi.ChannelCounts[ch]})
	}

	if err := f.SetColWidth(SummarySheet, "A", "A", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	for i, row := range rows {
		for col, v := range row {
			if err := setCellValue(f, SummarySheet, col+1, i+1, v); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
		}
		if err := f.SetCellStyle(SummarySheet, fmt.Sprintf("A%d", i+1), fmt.Sprintf("A%d", i+1), headerStyle); err != nil {
			return fmt.Errorf("style summary: %w", err)
		}
	}
	return nil
}

func setCellValue(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
