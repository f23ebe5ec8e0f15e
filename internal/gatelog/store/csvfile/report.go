package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/service"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

// ReportWriter generates downloadable report files in the records root:
// a Summary section followed by the detailed rows, matching the layout
// admins expect from the spreadsheet exports.
type ReportWriter struct {
	root string
}

func NewReportWriter(root string) *ReportWriter {
	return &ReportWriter{root: root}
}

func (w *ReportWriter) WriteReport(
	_ context.Context,
	filename string,
	summary service.Summary,
	rows []types.VisitRecord,
) (string, error) {
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", w.root, err)
	}

	path := filepath.Join(w.root, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	summarySection := [][]string{
		{"Metric", "Value"},
		{"Total Visits", strconv.Itoa(summary.Total)},
		{"Students", strconv.Itoa(summary.StudentCount)},
		{"Employees", strconv.Itoa(summary.OtherCount)},
		{"Peak Hour", summary.PeakHour},
		{"Top Dept", summary.TopGroup},
		{}, // blank line between sections
	}
	if err := cw.WriteAll(summarySection); err != nil {
		return "", fmt.Errorf("write report summary %s: %w", path, err)
	}

	if err := cw.Write(partitionHeader); err != nil {
		return "", fmt.Errorf("write report header %s: %w", path, err)
	}
	for _, row := range rows {
		rec := []string{
			string(row.Category), row.LastName, row.FirstName, row.IDNumber,
			row.Group, row.TimeIn, row.DateLogged, row.TimeOut, row.Notes,
		}
		if err := cw.Write(rec); err != nil {
			return "", fmt.Errorf("write report row %s: %w", path, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush report %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report %s: %w", path, err)
	}
	return path, nil
}
