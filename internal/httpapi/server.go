package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/service"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

type Dependencies struct {
	Logger        *log.Logger
	Addr          string
	AdminKey      string
	TapService    *service.TapService
	VisitService  *service.VisitService
	ReportService *service.ReportService
}

type Server struct {
	httpServer    *http.Server
	logger        *log.Logger
	mux           *http.ServeMux
	tapService    *service.TapService
	visitService  *service.VisitService
	reportService *service.ReportService
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:        d.Logger,
		mux:           mux,
		tapService:    d.TapService,
		visitService:  d.VisitService,
		reportService: d.ReportService,
	}

	// Kiosk-facing endpoints.
	mux.HandleFunc("POST /v1/taps", s.handleTap)
	mux.HandleFunc("POST /v1/visits", s.handleVisit)

	// Admin dashboard endpoints.
	admin := adminKeyMiddleware(d.AdminKey)
	mux.Handle("GET /v1/dashboard/summary", admin(http.HandlerFunc(s.handleSummary)))
	mux.Handle("GET /v1/dashboard/terms", admin(http.HandlerFunc(s.handleTerms)))
	mux.Handle("GET /v1/dashboard/report", admin(http.HandlerFunc(s.handleReport)))
	mux.Handle("GET /v1/partitions", admin(http.HandlerFunc(s.handlePartitions)))

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	var req types.TapRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	resp, err := s.tapService.Tap(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			writeError(w, http.StatusBadRequest, "invalid_token", err.Error())
		case errors.Is(err, service.ErrTokenNotRegistered):
			writeError(w, http.StatusNotFound, "card_not_registered", "Card not registered.")
		default:
			s.logger.Printf("tap error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVisit(w http.ResponseWriter, r *http.Request) {
	var req types.VisitEntryRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	resp, err := s.visitService.LogEntry(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCategory):
			writeError(w, http.StatusBadRequest, "invalid_category", err.Error())
		case errors.Is(err, service.ErrMissingName):
			writeError(w, http.StatusBadRequest, "missing_name", err.Error())
		case errors.Is(err, service.ErrStudentIDFormat):
			writeError(w, http.StatusBadRequest, "invalid_student_number", err.Error())
		case errors.Is(err, service.ErrMissingGroup):
			writeError(w, http.StatusBadRequest, "missing_group", err.Error())
		default:
			s.logger.Printf("visit entry error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	view, err := s.reportService.ViewFor(r.Context(), viewRequestFromQuery(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadDateRange), errors.Is(err, service.ErrUnknownTerm):
			writeError(w, http.StatusBadRequest, "bad_view_request", err.Error())
		default:
			s.logger.Printf("dashboard summary error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleTerms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.reportService.Terms())
}

func (s *Server) handlePartitions(w http.ResponseWriter, r *http.Request) {
	files, err := s.reportService.Partitions(r.Context(), r.URL.Query().Get("year"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadDateRange):
			writeError(w, http.StatusBadRequest, "bad_year", err.Error())
		default:
			s.logger.Printf("partitions error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Files []string `json:"files"`
	}{Files: files})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	path, filename, err := s.reportService.ExportReport(r.Context(), viewRequestFromQuery(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadDateRange), errors.Is(err, service.ErrUnknownTerm):
			writeError(w, http.StatusBadRequest, "bad_view_request", err.Error())
		case errors.Is(err, service.ErrNoReportData):
			writeError(w, http.StatusNotFound, "no_report_data", err.Error())
		default:
			s.logger.Printf("report export error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Type", "text/csv")
	http.ServeFile(w, r, path)
}

func viewRequestFromQuery(r *http.Request) service.ViewRequest {
	q := r.URL.Query()
	return service.ViewRequest{
		ViewMode:  q.Get("view_mode"),
		Year:      q.Get("year"),
		MonthFile: q.Get("month_file"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		TermKey:   q.Get("term_key"),
		Filters: service.Filters{
			Day:  q.Get("filter_day"),
			Hour: q.Get("filter_hour"),
		},
	}
}
