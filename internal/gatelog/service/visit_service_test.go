package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/service"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/store/memory"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

func newVisitService(parts *memory.PartitionStore, now time.Time) *service.VisitService {
	return service.NewVisitService(parts, service.NewPartitionLocks(), 10).
		WithClock(func() time.Time { return now })
}

func TestLogEntry_StudentAppendsOpenRow(t *testing.T) {
	parts := memory.NewPartitionStore()
	now := at("2025-08-15", "14:30")
	svc := newVisitService(parts, now)

	resp, err := svc.LogEntry(context.Background(), types.VisitEntryRequest{
		Category:  types.CategoryStudent,
		LastName:  "Reyes",
		FirstName: "Maria",
		IDNumber:  "2025000101",
		Group:     "SOIT",
	})
	if err != nil {
		t.Fatalf("log entry: %v", err)
	}
	if resp.Message != "Welcome, Maria!" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.Detail != "Logged at 02:30 PM" {
		t.Errorf("unexpected detail %q", resp.Detail)
	}

	rows := parts.Rows(types.PartitionKeyFor(now))
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if !row.Open() {
		t.Error("expected an open session")
	}
	if row.DateLogged != "2025-08-15" || row.TimeIn != "14:30" {
		t.Errorf("unexpected timestamps %+v", row)
	}
	if row.IDNumber != "2025000101" || row.Group != "SOIT" {
		t.Errorf("unexpected identity fields %+v", row)
	}
}

func TestLogEntry_GuestGetsSentinelID(t *testing.T) {
	parts := memory.NewPartitionStore()
	now := at("2025-08-15", "14:30")
	svc := newVisitService(parts, now)

	_, err := svc.LogEntry(context.Background(), types.VisitEntryRequest{
		Category:  types.CategoryGuest,
		LastName:  "Cruz",
		FirstName: "Ana",
		IDNumber:  "should be ignored",
		Group:     "DepEd",
	})
	if err != nil {
		t.Fatalf("log entry: %v", err)
	}

	rows := parts.Rows(types.PartitionKeyFor(now))
	if rows[0].IDNumber != types.GuestIDNumber {
		t.Errorf("expected %q sentinel, got %q", types.GuestIDNumber, rows[0].IDNumber)
	}
}

func TestLogEntry_Validation(t *testing.T) {
	parts := memory.NewPartitionStore()
	now := at("2025-08-15", "14:30")
	svc := newVisitService(parts, now)

	base := types.VisitEntryRequest{
		Category:  types.CategoryStudent,
		LastName:  "Reyes",
		FirstName: "Maria",
		IDNumber:  "2025000101",
		Group:     "SOIT",
	}

	cases := []struct {
		name    string
		mutate  func(*types.VisitEntryRequest)
		wantErr error
	}{
		{"unknown category", func(r *types.VisitEntryRequest) { r.Category = "Alumni" }, service.ErrInvalidCategory},
		{"missing last name", func(r *types.VisitEntryRequest) { r.LastName = " " }, service.ErrMissingName},
		{"missing first name", func(r *types.VisitEntryRequest) { r.FirstName = "" }, service.ErrMissingName},
		{"student id too short", func(r *types.VisitEntryRequest) { r.IDNumber = "123" }, service.ErrStudentIDFormat},
		{"student id not numeric", func(r *types.VisitEntryRequest) { r.IDNumber = "20250001AB" }, service.ErrStudentIDFormat},
		{"student without program", func(r *types.VisitEntryRequest) { r.Group = "" }, service.ErrMissingGroup},
		{"guest without agency", func(r *types.VisitEntryRequest) {
			r.Category = types.CategoryGuest
			r.Group = "  "
		}, service.ErrMissingGroup},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := svc.LogEntry(context.Background(), req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	if n := len(parts.Rows(types.PartitionKeyFor(now))); n != 0 {
		t.Errorf("rejected entries must not be persisted, found %d rows", n)
	}
}
