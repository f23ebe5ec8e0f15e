package service

import (
	"fmt"
	"time"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

// Action tags the outcome of a reconcile step.
type Action string

const (
	// ActionOpen starts a new session (first tap, or tap after checkout).
	ActionOpen Action = "OPEN"
	// ActionClose checks out the current same-day open session.
	ActionClose Action = "CLOSE"
	// ActionAutoCloseThenOpen force-closes a stale open session from a
	// prior day, then starts a fresh one.
	ActionAutoCloseThenOpen Action = "AUTO_CLOSE_THEN_OPEN"
)

// SessionPolicy holds the knobs for force-closing forgotten sessions.
type SessionPolicy struct {
	// AutoCloseTime is the HH:MM written into a stale row's Time_Out.
	AutoCloseTime string
	// AutoCloseNote is the annotation written into the stale row's Notes.
	AutoCloseNote string
}

// DefaultSessionPolicy matches the facility's closing time.
func DefaultSessionPolicy() SessionPolicy {
	return SessionPolicy{
		AutoCloseTime: "21:00",
		AutoCloseNote: "Auto-Closed (Forgot Logout)",
	}
}

// Reconcile applies one tap for identity against the partition covering
// now, and returns the full row set to persist plus the action taken and
// a kiosk-facing message.
//
// The identity's last row *by insertion order* is authoritative — not the
// row with the latest timestamp. Backdated or clock-skewed entries keep
// their position; do not switch this to a max-timestamp lookup.
//
//   - no rows for the identity, or last row closed → append a new open row
//   - last row open, logged today → set its Time_Out (checkout)
//   - last row open, logged on a prior day → force-close it at the policy
//     cutoff with the policy note, then append a new open row
//
// Rows are matched by exact IDNumber string equality. A row is open iff
// its Time_Out is blank. The input slice may be mutated in place.
func Reconcile(rows []types.VisitRecord, id types.Identity, now time.Time, policy SessionPolicy) ([]types.VisitRecord, Action, string) {
	date := now.Format(types.DateLayout)
	clock := now.Format(types.TimeLayout)

	last := -1
	for i := range rows {
		if rows[i].IDNumber == id.IDNumber {
			last = i
		}
	}

	if last >= 0 && rows[last].Open() {
		if rows[last].DateLogged == date {
			rows[last].TimeOut = clock
			return rows, ActionClose, fmt.Sprintf("Goodbye, %s!", id.FirstName)
		}

		// Forgotten logout: the open session is from another day.
		rows[last].TimeOut = policy.AutoCloseTime
		rows[last].Notes = policy.AutoCloseNote
		rows = append(rows, openRow(id, date, clock))
		return rows, ActionAutoCloseThenOpen,
			fmt.Sprintf("Welcome Back, %s! (Previous session auto-closed)", id.FirstName)
	}

	rows = append(rows, openRow(id, date, clock))
	return rows, ActionOpen, fmt.Sprintf("Welcome, %s!", id.FirstName)
}

func openRow(id types.Identity, date, clock string) types.VisitRecord {
	return types.VisitRecord{
		Category:   id.Category,
		LastName:   id.LastName,
		FirstName:  id.FirstName,
		IDNumber:   id.IDNumber,
		Group:      id.Group,
		DateLogged: date,
		TimeIn:     clock,
	}
}
