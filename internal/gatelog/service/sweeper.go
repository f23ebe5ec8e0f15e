package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/store"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

// StaleSweeper periodically force-closes open sessions left over from
// prior days. Tapped-in visitors get auto-closed on their next tap, but
// form-entry visitors have no card and would stay open forever without
// this sweep. It runs as a background goroutine and is safe to stop via
// its context or the Stop method.
//
// An interval of 0 disables sweeping entirely.
type StaleSweeper struct {
	partitions store.PartitionStore
	locks      *PartitionLocks
	policy     SessionPolicy
	interval   time.Duration
	logger     *log.Logger
	nowFn      func() time.Time
	cancel     context.CancelFunc
	done       chan struct{}
}

// SweeperConfig holds the parameters for NewStaleSweeper.
type SweeperConfig struct {
	// IntervalHours is how often the sweeper runs. 0 disables it.
	IntervalHours int
}

// NewStaleSweeper creates a sweeper but does not start it.
// Call Start to begin the background loop.
func NewStaleSweeper(
	partitions store.PartitionStore,
	locks *PartitionLocks,
	policy SessionPolicy,
	cfg SweeperConfig,
	logger *log.Logger,
) *StaleSweeper {
	return &StaleSweeper{
		partitions: partitions,
		locks:      locks,
		policy:     policy,
		interval:   time.Duration(cfg.IntervalHours) * time.Hour,
		logger:     logger,
		nowFn:      time.Now,
		done:       make(chan struct{}),
	}
}

// WithClock overrides the sweeper clock. Test hook.
func (s *StaleSweeper) WithClock(now func() time.Time) *StaleSweeper {
	s.nowFn = now
	return s
}

// Start begins the background loop. It runs an immediate sweep on
// startup, then repeats on the configured interval. The loop exits when
// ctx is cancelled or Stop is called.
func (s *StaleSweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Printf("stale-session sweeper disabled (interval=0)")
		close(s.done)
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)

	go s.loop(ctx)

	s.logger.Printf("stale-session sweeper started (interval=%dh, cutoff=%s)",
		int(s.interval.Hours()), s.policy.AutoCloseTime)
}

// Stop signals the sweeper to exit and waits for it to finish.
func (s *StaleSweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
}

func (s *StaleSweeper) loop(ctx context.Context) {
	defer close(s.done)

	// Run immediately on startup to clean up any backlog.
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep force-closes open rows from prior days in the current month's
// partition and reports how many were closed. The partition is only
// rewritten when something changed.
func (s *StaleSweeper) Sweep(ctx context.Context) int {
	now := s.nowFn()
	today := now.Format(types.DateLayout)
	key := types.PartitionKeyFor(now)

	unlock := s.locks.Lock(key)
	defer unlock()

	rows, err := s.partitions.Load(ctx, key)
	if err != nil {
		s.logger.Printf("sweep: load partition %s: %v", key, err)
		return 0
	}

	closed := 0
	for i := range rows {
		if !rows[i].Open() {
			continue
		}
		if strings.TrimSpace(rows[i].DateLogged) == "" || rows[i].DateLogged == today {
			continue
		}
		rows[i].TimeOut = s.policy.AutoCloseTime
		rows[i].Notes = s.policy.AutoCloseNote
		closed++
	}

	if closed == 0 {
		return 0
	}

	if err := s.partitions.Save(ctx, key, rows); err != nil {
		s.logger.Printf("sweep: save partition %s: %v", key, err)
		return 0
	}

	s.logger.Printf("sweep: closed %d stale session(s) in %s", closed, key)
	return closed
}
