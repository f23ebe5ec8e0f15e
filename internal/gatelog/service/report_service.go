package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/store"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

var (
	ErrBadDateRange = errors.New("start and end dates must be YYYY-MM-DD")
	ErrUnknownTerm  = errors.New("unknown term key")
	ErrNoReportData = errors.New("no data found to export")
)

// Term is a preset date range (an academic quarter) selectable on the
// range view instead of explicit dates.
type Term struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Start string `json:"start" yaml:"start"` // YYYY-MM-DD
	End   string `json:"end" yaml:"end"`     // YYYY-MM-DD
}

// ReportWriter persists a generated report file and returns its path.
type ReportWriter interface {
	WriteReport(ctx context.Context, filename string, summary Summary, rows []types.VisitRecord) (string, error)
}

// ViewRequest selects what slice of the log the dashboard is looking at.
type ViewRequest struct {
	ViewMode  string // "monthly" (default) or "range"
	Year      string // monthly: the year directory, default current
	MonthFile string // monthly: partition filename, default newest
	StartDate string // range: explicit bounds, or
	TermKey   string // range: a configured term preset
	EndDate   string
	Filters   Filters
}

// View is the dashboard read model: the summary plus the filtered detail
// rows and the picker context for whichever mode was requested.
type View struct {
	Label        string              `json:"report_label"`
	ViewMode     string              `json:"view_mode"`
	Files        []string            `json:"files,omitempty"`
	SelectedYear string              `json:"selected_year,omitempty"`
	CurrentFile  string              `json:"current_file,omitempty"`
	StartDate    string              `json:"start_date,omitempty"`
	EndDate      string              `json:"end_date,omitempty"`
	SelectedTerm string              `json:"selected_term,omitempty"`
	Summary      Summary             `json:"summary"`
	Rows         []types.VisitRecord `json:"rows"`
}

// ReportService answers dashboard queries over the partition store and
// exports report files.
type ReportService struct {
	partitions store.PartitionStore
	merger     *Merger
	reports    ReportWriter
	terms      []Term
	logger     *log.Logger
	nowFn      func() time.Time
}

func NewReportService(
	partitions store.PartitionStore,
	merger *Merger,
	reports ReportWriter,
	terms []Term,
	logger *log.Logger,
) *ReportService {
	return &ReportService{
		partitions: partitions,
		merger:     merger,
		reports:    reports,
		terms:      terms,
		logger:     logger,
		nowFn:      time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.nowFn = now
	return s
}

// Terms returns the configured term presets.
func (s *ReportService) Terms() []Term {
	out := make([]Term, len(s.terms))
	copy(out, s.terms)
	return out
}

// Partitions lists a year's partition filenames, newest first, for the
// dashboard's month picker. An empty year means the current one.
func (s *ReportService) Partitions(ctx context.Context, yearStr string) ([]string, error) {
	year := s.nowFn().Year()
	if yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			return nil, fmt.Errorf("%w: bad year %q", ErrBadDateRange, yearStr)
		}
		year = y
	}

	files, err := s.partitions.List(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("list partitions %d: %w", year, err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

// ViewFor resolves the requested slice of the log and summarizes it.
func (s *ReportService) ViewFor(ctx context.Context, req ViewRequest) (View, error) {
	view, rows, err := s.resolve(ctx, req)
	if err != nil {
		return View{}, err
	}

	now := s.nowFn()
	view.Rows = ApplyFilters(rows, req.Filters, now)
	view.Summary = Summarize(view.Rows, Filters{}, now)
	return view, nil
}

// ExportReport builds the requested view and writes it as a
// Report_-prefixed file with a leading summary section. Returns the
// written path and the filename offered for download.
func (s *ReportService) ExportReport(ctx context.Context, req ViewRequest) (path, filename string, err error) {
	view, rows, err := s.resolve(ctx, req)
	if err != nil {
		return "", "", err
	}

	now := s.nowFn()
	rows = ApplyFilters(rows, req.Filters, now)
	if len(rows) == 0 {
		return "", "", ErrNoReportData
	}

	if view.ViewMode == "range" {
		filename = fmt.Sprintf("Report_Quarterly_%s_to_%s.csv", view.StartDate, view.EndDate)
	} else {
		filename = "Report_" + view.CurrentFile
	}

	summary := Summarize(rows, Filters{}, now)
	path, err = s.reports.WriteReport(ctx, filename, summary, rows)
	if err != nil {
		return "", "", fmt.Errorf("write report %s: %w", filename, err)
	}
	return path, filename, nil
}

// resolve picks the partition(s) behind the request and returns the
// unfiltered rows plus the picker context.
func (s *ReportService) resolve(ctx context.Context, req ViewRequest) (View, []types.VisitRecord, error) {
	if req.ViewMode == "range" {
		return s.resolveRange(ctx, req)
	}
	return s.resolveMonthly(ctx, req)
}

func (s *ReportService) resolveMonthly(ctx context.Context, req ViewRequest) (View, []types.VisitRecord, error) {
	now := s.nowFn()

	year := now.Year()
	if req.Year != "" {
		y, err := strconv.Atoi(req.Year)
		if err != nil {
			return View{}, nil, fmt.Errorf("%w: bad year %q", ErrBadDateRange, req.Year)
		}
		year = y
	}

	files, err := s.partitions.List(ctx, year)
	if err != nil {
		return View{}, nil, fmt.Errorf("list partitions %d: %w", year, err)
	}
	// Newest first for the picker.
	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	selected := req.MonthFile
	if !containsString(files, selected) {
		selected = ""
		if len(files) > 0 {
			selected = files[0]
		}
	}

	view := View{
		ViewMode:     "monthly",
		Files:        files,
		SelectedYear: strconv.Itoa(year),
		CurrentFile:  selected,
	}

	if selected == "" {
		view.Label = fmt.Sprintf("Monthly: no data for %d", year)
		return view, nil, nil
	}

	key, ok := ParsePartitionFileName(selected)
	if !ok {
		return View{}, nil, fmt.Errorf("unrecognized partition filename %q", selected)
	}

	rows, err := s.partitions.Load(ctx, key)
	if err != nil {
		return View{}, nil, fmt.Errorf("load partition %s: %w", selected, err)
	}

	view.Label = "Monthly: " + selected
	return view, rows, nil
}

func (s *ReportService) resolveRange(ctx context.Context, req ViewRequest) (View, []types.VisitRecord, error) {
	startStr, endStr := req.StartDate, req.EndDate

	if startStr == "" || endStr == "" {
		if req.TermKey != "" {
			term, ok := s.termByKey(req.TermKey)
			if !ok {
				return View{}, nil, fmt.Errorf("%w: %q", ErrUnknownTerm, req.TermKey)
			}
			startStr, endStr = term.Start, term.End
		} else {
			// Default: current month to date.
			now := s.nowFn()
			startStr = now.Format("2006-01") + "-01"
			endStr = now.Format(types.DateLayout)
		}
	}

	start, err := time.Parse(types.DateLayout, startStr)
	if err != nil {
		return View{}, nil, fmt.Errorf("%w: start %q", ErrBadDateRange, startStr)
	}
	end, err := time.Parse(types.DateLayout, endStr)
	if err != nil {
		return View{}, nil, fmt.Errorf("%w: end %q", ErrBadDateRange, endStr)
	}

	rows := s.merger.MergeRange(ctx, start, end)

	return View{
		ViewMode:     "range",
		Label:        fmt.Sprintf("Range: %s to %s", startStr, endStr),
		StartDate:    startStr,
		EndDate:      endStr,
		SelectedTerm: req.TermKey,
	}, rows, nil
}

func (s *ReportService) termByKey(key string) (Term, bool) {
	for _, t := range s.terms {
		if t.Key == key {
			return t, true
		}
	}
	return Term{}, false
}

func containsString(ss []string, s string) bool {
	if s == "" {
		return false
	}
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
