package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type seedIdentity struct {
	token     string
	idNumber  string
	lastName  string
	firstName string
	category  string
	group     string
}

// devRoster is a handful of starter identities so a fresh dev install can
// take taps straight away. Token A1B2C3D4 is the one printed on the test
// card taped to the kiosk.
var devRoster = []seedIdentity{
	{"A1B2C3D4", "2025000101", "Reyes", "Maria", "Student", "SOIT"},
	{"B2C3D4E5", "2024000202", "Santos", "Jose", "Student", "ETYSBM"},
	{"C3D4E5F6", "2023000303", "Cruz", "Ana", "Student", "School of Health Sciences"},
	{"D4E5F6A7", "E-1001", "Dela Cruz", "Ramon", "Employee", "Library"},
	{"E5F6A7B8", "E-1002", "Garcia", "Lourdes", "Employee", "Registrar"},
}

// SeedDev upserts the dev roster. Safe to run on every startup; existing
// rows keep their created_at.
func SeedDev(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC().UnixMilli()

	for _, p := range devRoster {
		if _, err := db.ExecContext(ctx, `
INSERT INTO roster(
  token, id_number, last_name, first_name, category, group_name,
  created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(token) DO UPDATE SET
  id_number = excluded.id_number,
  last_name = excluded.last_name,
  first_name = excluded.first_name,
  category = excluded.category,
  group_name = excluded.group_name,
  updated_at_ms = excluded.updated_at_ms;
`, p.token, p.idNumber, p.lastName, p.firstName, p.category, p.group, now, now); err != nil {
			return fmt.Errorf("seed roster %s: %w", p.token, err)
		}
	}

	return nil
}
