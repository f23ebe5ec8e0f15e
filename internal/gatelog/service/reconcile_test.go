package service_test

import (
	"testing"
	"time"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/service"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

var testIdentity = types.Identity{
	Token:     "A1B2C3D4",
	IDNumber:  "2025-001",
	LastName:  "Reyes",
	FirstName: "Maria",
	Category:  types.CategoryStudent,
	Group:     "SOIT",
}

func at(date, clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

// ── First tap ────────────────────────────────────────────────────────────────

func TestReconcile_NoRows_OpensSession(t *testing.T) {
	rows, action, msg := service.Reconcile(nil, testIdentity, at("2025-08-01", "09:00"), service.DefaultSessionPolicy())

	if action != service.ActionOpen {
		t.Fatalf("expected OPEN, got %s", action)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if !row.Open() {
		t.Error("expected the new row to be open")
	}
	if row.TimeIn != "09:00" {
		t.Errorf("expected time_in=09:00, got %q", row.TimeIn)
	}
	if row.DateLogged != "2025-08-01" {
		t.Errorf("expected date_logged=2025-08-01, got %q", row.DateLogged)
	}
	if row.IDNumber != "2025-001" {
		t.Errorf("expected id_number=2025-001, got %q", row.IDNumber)
	}
	if msg != "Welcome, Maria!" {
		t.Errorf("unexpected message %q", msg)
	}
}

// ── Same-day checkout ────────────────────────────────────────────────────────

func TestReconcile_OpenSameDay_Closes(t *testing.T) {
	rows, _, _ := service.Reconcile(nil, testIdentity, at("2025-08-01", "09:00"), service.DefaultSessionPolicy())

	rows, action, msg := service.Reconcile(rows, testIdentity, at("2025-08-01", "17:00"), service.DefaultSessionPolicy())

	if action != service.ActionClose {
		t.Fatalf("expected CLOSE, got %s", action)
	}
	if len(rows) != 1 {
		t.Fatalf("expected row count unchanged at 1, got %d", len(rows))
	}
	if rows[0].TimeOut != "17:00" {
		t.Errorf("expected time_out=17:00, got %q", rows[0].TimeOut)
	}
	if msg != "Goodbye, Maria!" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestReconcile_AfterClose_OpensAgainSameDay(t *testing.T) {
	policy := service.DefaultSessionPolicy()
	rows, _, _ := service.Reconcile(nil, testIdentity, at("2025-08-01", "09:00"), policy)
	rows, _, _ = service.Reconcile(rows, testIdentity, at("2025-08-01", "12:00"), policy)

	// Third tap the same day: the invariant was restored by the close,
	// so this must open a fresh session, never re-close.
	rows, action, _ := service.Reconcile(rows, testIdentity, at("2025-08-01", "13:00"), policy)

	if action != service.ActionOpen {
		t.Fatalf("expected OPEN, got %s", action)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].TimeOut != "12:00" {
		t.Errorf("first session should stay closed at 12:00, got %q", rows[0].TimeOut)
	}
	if !rows[1].Open() {
		t.Error("expected second session to be open")
	}
}

func TestReconcile_PreviousDayClosed_OpensNotStale(t *testing.T) {
	policy := service.DefaultSessionPolicy()
	rows, _, _ := service.Reconcile(nil, testIdentity, at("2025-08-01", "09:00"), policy)
	rows, _, _ = service.Reconcile(rows, testIdentity, at("2025-08-01", "17:00"), policy)

	rows, action, _ := service.Reconcile(rows, testIdentity, at("2025-08-02", "08:00"), policy)

	if action != service.ActionOpen {
		t.Fatalf("expected OPEN (previous row closed, not stale), got %s", action)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Notes != "" {
		t.Errorf("closed row must not be annotated, got %q", rows[0].Notes)
	}
}

// ── Forgotten logout ─────────────────────────────────────────────────────────

func TestReconcile_StaleOpenRow_AutoClosesThenOpens(t *testing.T) {
	policy := service.DefaultSessionPolicy()
	rows, _, _ := service.Reconcile(nil, testIdentity, at("2025-08-01", "09:00"), policy)

	rows, action, msg := service.Reconcile(rows, testIdentity, at("2025-08-03", "08:00"), policy)

	if action != service.ActionAutoCloseThenOpen {
		t.Fatalf("expected AUTO_CLOSE_THEN_OPEN, got %s", action)
	}
	if len(rows) != 2 {
		t.Fatalf("expected exactly 2 rows, got %d", len(rows))
	}

	stale := rows[0]
	if stale.TimeOut != "21:00" {
		t.Errorf("expected stale row force-closed at 21:00, got %q", stale.TimeOut)
	}
	if stale.Notes != "Auto-Closed (Forgot Logout)" {
		t.Errorf("expected auto-close annotation, got %q", stale.Notes)
	}

	fresh := rows[1]
	if !fresh.Open() {
		t.Error("expected the new row to be open")
	}
	if fresh.DateLogged != "2025-08-03" || fresh.TimeIn != "08:00" {
		t.Errorf("unexpected new row %+v", fresh)
	}
	if msg != "Welcome Back, Maria! (Previous session auto-closed)" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestReconcile_PolicyCutoffRespected(t *testing.T) {
	policy := service.SessionPolicy{AutoCloseTime: "18:30", AutoCloseNote: "Auto-Closed (Forgot Logout)"}
	rows, _, _ := service.Reconcile(nil, testIdentity, at("2025-08-01", "09:00"), policy)

	rows, _, _ = service.Reconcile(rows, testIdentity, at("2025-08-02", "08:00"), policy)

	if rows[0].TimeOut != "18:30" {
		t.Errorf("expected configured cutoff 18:30, got %q", rows[0].TimeOut)
	}
}

// ── Row matching ─────────────────────────────────────────────────────────────

func TestReconcile_IgnoresOtherIdentities(t *testing.T) {
	other := types.VisitRecord{
		Category:   types.CategoryStudent,
		IDNumber:   "2025-999",
		FirstName:  "Jose",
		LastName:   "Santos",
		DateLogged: "2025-08-01",
		TimeIn:     "08:00",
	}

	rows, action, _ := service.Reconcile(
		[]types.VisitRecord{other}, testIdentity, at("2025-08-01", "09:00"), service.DefaultSessionPolicy())

	if action != service.ActionOpen {
		t.Fatalf("expected OPEN for a first-time identity, got %s", action)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[0].Open() {
		t.Error("the other identity's open row must be left alone")
	}
}

func TestReconcile_LastRowByInsertionOrderIsAuthoritative(t *testing.T) {
	// A backdated open row appended after a closed one: position wins,
	// not the timestamp, so the tap closes... nothing same-day and the
	// backdated row is treated as stale.
	rows := []types.VisitRecord{
		{IDNumber: "2025-001", DateLogged: "2025-08-02", TimeIn: "10:00", TimeOut: "11:00"},
		{IDNumber: "2025-001", DateLogged: "2025-08-01", TimeIn: "09:00"},
	}

	rows, action, _ := service.Reconcile(rows, testIdentity, at("2025-08-02", "12:00"), service.DefaultSessionPolicy())

	if action != service.ActionAutoCloseThenOpen {
		t.Fatalf("expected AUTO_CLOSE_THEN_OPEN for the backdated open row, got %s", action)
	}
	if rows[1].TimeOut != "21:00" {
		t.Errorf("expected the backdated row force-closed, got %q", rows[1].TimeOut)
	}
}

func TestReconcile_BlankTimeOutVariantsCountAsOpen(t *testing.T) {
	rows := []types.VisitRecord{
		{IDNumber: "2025-001", DateLogged: "2025-08-01", TimeIn: "09:00", TimeOut: "   "},
	}

	_, action, _ := service.Reconcile(rows, testIdentity, at("2025-08-01", "17:00"), service.DefaultSessionPolicy())

	if action != service.ActionClose {
		t.Fatalf("whitespace time_out must read as open; expected CLOSE, got %s", action)
	}
}
