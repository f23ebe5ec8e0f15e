package service

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/store"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

// Merger composes monthly partitions into one in-memory dataset for
// queries that cross month boundaries.
type Merger struct {
	partitions store.PartitionStore
	logger     *log.Logger
	nowFn      func() time.Time
}

func NewMerger(partitions store.PartitionStore, logger *log.Logger) *Merger {
	return &Merger{partitions: partitions, logger: logger, nowFn: time.Now}
}

// WithClock overrides the merger clock. Test hook.
func (m *Merger) WithClock(now func() time.Time) *Merger {
	m.nowFn = now
	return m
}

// MergeRange loads every partition whose month could overlap
// [start, end], concatenates the rows, then keeps only rows whose
// Date_Logged falls within the range (inclusive). Rows without a date are
// treated as logged today before filtering.
//
// Partitions that fail to list, parse or load contribute nothing; the
// merge never fails outright for partial data.
func (m *Merger) MergeRange(ctx context.Context, start, end time.Time) []types.VisitRecord {
	startMonth := start.Year()*12 + int(start.Month())
	endMonth := end.Year()*12 + int(end.Month())

	var merged []types.VisitRecord
	for year := start.Year(); year <= end.Year(); year++ {
		names, err := m.partitions.List(ctx, year)
		if err != nil {
			m.logger.Printf("range merge: list %d: %v (skipped)", year, err)
			continue
		}

		for _, name := range names {
			key, ok := ParsePartitionFileName(name)
			if !ok {
				continue
			}

			// Coarse month-level pre-filter; precise row filtering follows.
			keyMonth := key.Year*12 + int(key.Month)
			if keyMonth < startMonth || keyMonth > endMonth {
				continue
			}

			rows, err := m.partitions.Load(ctx, key)
			if err != nil {
				m.logger.Printf("range merge: load %s: %v (skipped)", name, err)
				continue
			}
			merged = append(merged, rows...)
		}
	}

	today := m.nowFn().Format(types.DateLayout)
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	out := merged[:0]
	for _, r := range merged {
		d := strings.TrimSpace(r.DateLogged)
		if d == "" {
			d = today
			r.DateLogged = today
		}
		t, err := time.Parse(types.DateLayout, d)
		if err != nil {
			continue
		}
		if t.Before(startDay) || t.After(endDay) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ParsePartitionFileName extracts the partition key from a filename of
// the form log_YYYYMM.<ext>. Report files and strays do not parse.
func ParsePartitionFileName(name string) (types.PartitionKey, bool) {
	rest, ok := strings.CutPrefix(name, "log_")
	if !ok || len(rest) < 6 {
		return types.PartitionKey{}, false
	}

	year, err := strconv.Atoi(rest[:4])
	if err != nil {
		return types.PartitionKey{}, false
	}
	month, err := strconv.Atoi(rest[4:6])
	if err != nil || month < 1 || month > 12 {
		return types.PartitionKey{}, false
	}
	return types.PartitionKey{Year: year, Month: time.Month(month)}, true
}
