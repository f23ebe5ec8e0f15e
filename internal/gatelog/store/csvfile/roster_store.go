package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/store"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

// RosterStore resolves tokens against a roster CSV with columns
// RFID_UID, ID_Number, Last_Name, First_Name, Department, Role.
//
// The file is re-read on every lookup: the roster is maintained by hand
// and small, and re-reading picks up edits without a restart. A missing
// roster file behaves as an empty roster — every tap reads as
// unregistered rather than the kiosk erroring out.
type RosterStore struct {
	path string
}

func NewRosterStore(path string) *RosterStore {
	return &RosterStore{path: path}
}

func (s *RosterStore) Lookup(_ context.Context, token string) (types.Identity, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return types.Identity{}, store.ErrIdentityNotFound
	}
	if err != nil {
		return types.Identity{}, fmt.Errorf("open roster %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return types.Identity{}, fmt.Errorf("read roster %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return types.Identity{}, store.ErrIdentityNotFound
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.TrimSpace(name)] = i
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	for _, rec := range records[1:] {
		if field(rec, "RFID_UID") != token {
			continue
		}
		return types.Identity{
			Token:     token,
			IDNumber:  field(rec, "ID_Number"),
			LastName:  field(rec, "Last_Name"),
			FirstName: field(rec, "First_Name"),
			Category:  types.Category(field(rec, "Role")),
			Group:     field(rec, "Department"),
		}, nil
	}
	return types.Identity{}, store.ErrIdentityNotFound
}
