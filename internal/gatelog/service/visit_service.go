package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/store"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

var (
	ErrInvalidCategory = errors.New("category must be Student, Employee or Guest")
	ErrMissingName     = errors.New("last name and first name are required")
	ErrStudentIDFormat = errors.New("student number has the wrong format")
	ErrMissingGroup    = errors.New("group is required")
)

// VisitService logs manual form entries for visitors without a registered
// card. Entries are validated before any storage access and appended as
// open sessions; form visitors cannot tap out, so the sweeper closes
// their rows at end of day.
type VisitService struct {
	partitions      store.PartitionStore
	locks           *PartitionLocks
	studentIDDigits int
	nowFn           func() time.Time
}

func NewVisitService(partitions store.PartitionStore, locks *PartitionLocks, studentIDDigits int) *VisitService {
	return &VisitService{
		partitions:      partitions,
		locks:           locks,
		studentIDDigits: studentIDDigits,
		nowFn:           time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *VisitService) WithClock(now func() time.Time) *VisitService {
	s.nowFn = now
	return s
}

// LogEntry validates the submission and appends an open visit row to the
// current month's partition.
func (s *VisitService) LogEntry(ctx context.Context, req types.VisitEntryRequest) (types.VisitEntryResponse, error) {
	row, err := s.rowFromRequest(req)
	if err != nil {
		return types.VisitEntryResponse{}, err
	}

	now := s.nowFn()
	row.DateLogged = now.Format(types.DateLayout)
	row.TimeIn = now.Format(types.TimeLayout)

	key := types.PartitionKeyFor(now)
	unlock := s.locks.Lock(key)
	defer unlock()

	rows, err := s.partitions.Load(ctx, key)
	if err != nil {
		return types.VisitEntryResponse{}, fmt.Errorf("load partition %s: %w", key, err)
	}

	rows = append(rows, row)
	if err := s.partitions.Save(ctx, key, rows); err != nil {
		return types.VisitEntryResponse{}, fmt.Errorf("save partition %s: %w", key, err)
	}

	return types.VisitEntryResponse{
		Message: fmt.Sprintf("Welcome, %s!", row.FirstName),
		Detail:  fmt.Sprintf("Logged at %s", now.Format("03:04 PM")),
	}, nil
}

func (s *VisitService) rowFromRequest(req types.VisitEntryRequest) (types.VisitRecord, error) {
	lastName := strings.TrimSpace(req.LastName)
	firstName := strings.TrimSpace(req.FirstName)
	if lastName == "" || firstName == "" {
		return types.VisitRecord{}, ErrMissingName
	}

	group := strings.TrimSpace(req.Group)

	switch req.Category {
	case types.CategoryStudent:
		idNumber := strings.TrimSpace(req.IDNumber)
		if len(idNumber) != s.studentIDDigits || !allDigits(idNumber) {
			return types.VisitRecord{}, fmt.Errorf("%w: expected exactly %d digits", ErrStudentIDFormat, s.studentIDDigits)
		}
		if group == "" {
			return types.VisitRecord{}, fmt.Errorf("%w: please select a program", ErrMissingGroup)
		}
		return types.VisitRecord{
			Category:  types.CategoryStudent,
			LastName:  lastName,
			FirstName: firstName,
			IDNumber:  idNumber,
			Group:     group,
		}, nil

	case types.CategoryEmployee, types.CategoryGuest:
		if group == "" {
			return types.VisitRecord{}, fmt.Errorf("%w: please enter your agency or school", ErrMissingGroup)
		}
		return types.VisitRecord{
			Category:  req.Category,
			LastName:  lastName,
			FirstName: firstName,
			IDNumber:  types.GuestIDNumber,
			Group:     group,
		}, nil

	default:
		return types.VisitRecord{}, ErrInvalidCategory
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
