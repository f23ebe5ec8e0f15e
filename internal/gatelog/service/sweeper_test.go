package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/service"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/store/memory"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

func newSweeper(parts *memory.PartitionStore, now time.Time, intervalHours int) *service.StaleSweeper {
	return service.NewStaleSweeper(
		parts,
		service.NewPartitionLocks(),
		service.DefaultSessionPolicy(),
		service.SweeperConfig{IntervalHours: intervalHours},
		discardLogger(),
	).WithClock(func() time.Time { return now })
}

func TestSweep_ClosesOnlyStaleOpenRows(t *testing.T) {
	now := at("2025-08-15", "07:00")
	k := types.PartitionKeyFor(now)

	parts := memory.NewPartitionStore()
	rows := []types.VisitRecord{
		// Stale open row: gets closed.
		{IDNumber: "2025000101", DateLogged: "2025-08-14", TimeIn: "09:00"},
		// Already closed: untouched.
		{IDNumber: "2025000102", DateLogged: "2025-08-14", TimeIn: "09:00", TimeOut: "17:00"},
		// Open today: someone currently on site, untouched.
		{IDNumber: "2025000103", DateLogged: "2025-08-15", TimeIn: "06:30"},
		// Open without a date: indeterminate, left alone.
		{IDNumber: "2025000104", TimeIn: "10:00"},
	}
	if err := parts.Save(context.Background(), k, rows); err != nil {
		t.Fatalf("seed: %v", err)
	}

	closed := newSweeper(parts, now, 1).Sweep(context.Background())
	if closed != 1 {
		t.Fatalf("expected 1 row closed, got %d", closed)
	}

	got := parts.Rows(k)
	if got[0].TimeOut != "21:00" || got[0].Notes != "Auto-Closed (Forgot Logout)" {
		t.Errorf("stale row not force-closed: %+v", got[0])
	}
	if got[1].TimeOut != "17:00" || got[1].Notes != "" {
		t.Errorf("closed row mutated: %+v", got[1])
	}
	if !got[2].Open() {
		t.Errorf("today's open row mutated: %+v", got[2])
	}
	if !got[3].Open() {
		t.Errorf("dateless row mutated: %+v", got[3])
	}
}

func TestSweep_NothingStale(t *testing.T) {
	now := at("2025-08-15", "07:00")
	parts := memory.NewPartitionStore()

	if closed := newSweeper(parts, now, 1).Sweep(context.Background()); closed != 0 {
		t.Fatalf("expected no closures on an empty partition, got %d", closed)
	}
}

func TestSweeper_StartRunsImmediateSweep(t *testing.T) {
	now := at("2025-08-15", "07:00")
	k := types.PartitionKeyFor(now)

	parts := memory.NewPartitionStore()
	seed := []types.VisitRecord{
		{IDNumber: "2025000101", DateLogged: "2025-08-14", TimeIn: "09:00"},
	}
	if err := parts.Save(context.Background(), k, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	sw := newSweeper(parts, now, 1)
	sw.Start(context.Background())
	sw.Stop()

	if got := parts.Rows(k); got[0].Open() {
		t.Errorf("expected the startup sweep to close the stale row, got %+v", got[0])
	}
}

func TestSweeper_DisabledIntervalStopsCleanly(t *testing.T) {
	sw := newSweeper(memory.NewPartitionStore(), at("2025-08-15", "07:00"), 0)
	sw.Start(context.Background())
	sw.Stop() // must not hang
}
