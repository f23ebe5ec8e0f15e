// Package csvfile persists the visit log as plain tabular files: one CSV
// per month under <root>/<year>/log_YYYYMM.csv. The layout and column
// names are the external contract shared with the reporting spreadsheets,
// so they are fixed here rather than derived from the Go types.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

// partitionHeader is the canonical column order for partition files.
// Older files may lack the trailing Time_Out/Notes columns (they were
// added once the first checkout happened); loads map columns by name.
var partitionHeader = []string{
	"Type", "Last_Name", "First_Name", "ID_Number",
	"Program", "Time_In", "Date_Logged", "Time_Out", "Notes",
}

// PartitionStore reads and writes monthly partitions below root.
type PartitionStore struct {
	root string
}

func NewPartitionStore(root string) *PartitionStore {
	return &PartitionStore{root: root}
}

// Root returns the records directory the store writes under.
func (s *PartitionStore) Root() string { return s.root }

func (s *PartitionStore) path(key types.PartitionKey) string {
	return filepath.Join(s.root, strconv.Itoa(key.Year), key.FileName())
}

// Load returns the partition's rows in file order. A partition that has
// never been written loads as empty, not as an error.
func (s *PartitionStore) Load(_ context.Context, key types.PartitionKey) ([]types.VisitRecord, error) {
	f, err := os.Open(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open partition %s: %w", key, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // column count varies across file generations

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read partition %s: %w", key, err)
	}
	if len(records) == 0 {
		return nil, nil
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
		return rec[i]
	}

	rows := make([]types.VisitRecord, 0, len(records)-1)
	for _, rec := range records[1:] {
		idNumber := strings.TrimSpace(field(rec, "ID_Number"))
		if idNumber == "" {
			idNumber = types.GuestIDNumber
		}
		rows = append(rows, types.VisitRecord{
			Category:   types.Category(strings.TrimSpace(field(rec, "Type"))),
			LastName:   field(rec, "Last_Name"),
			FirstName:  field(rec, "First_Name"),
			IDNumber:   idNumber,
			Group:      field(rec, "Program"),
			TimeIn:     field(rec, "Time_In"),
			DateLogged: field(rec, "Date_Logged"),
			TimeOut:    field(rec, "Time_Out"),
			Notes:      field(rec, "Notes"),
		})
	}
	return rows, nil
}

// Save overwrites the whole partition, creating the year directory if
// missing. The write goes through a temp file and rename so a failed
// save never leaves a torn partition behind.
func (s *PartitionStore) Save(_ context.Context, key types.PartitionKey, rows []types.VisitRecord) error {
	dir := filepath.Join(s.root, strconv.Itoa(key.Year))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, key.FileName()+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(partitionHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("write partition %s: %w", key, err)
	}
	for _, row := range rows {
		rec := []string{
			string(row.Category), row.LastName, row.FirstName, row.IDNumber,
			row.Group, row.TimeIn, row.DateLogged, row.TimeOut, row.Notes,
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("write partition %s: %w", key, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush partition %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close partition %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("replace partition %s: %w", key, err)
	}
	return nil
}

// List returns the partition filenames present for year. Report files
// and strays in the directory are excluded. A missing year directory
// lists as empty.
func (s *PartitionStore) List(_ context.Context, year int) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, strconv.Itoa(year)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list partitions %d: %w", year, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "log_") && strings.HasSuffix(name, ".csv") {
			names = append(names, name)
		}
	}
	return names, nil
}
