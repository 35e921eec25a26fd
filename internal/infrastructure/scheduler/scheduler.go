package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	appsync "github.com/erp/stocksync/internal/application/sync"
	syncdomain "github.com/erp/stocksync/internal/domain/sync"
)

// SettingsProvider returns the current per-store settings snapshot. It is
// invoked once per tick so a run always operates on the settings that were
// in force when it was scheduled, never on values changed mid-run.
type SettingsProvider func() []appsync.StoreSettings

// Runner executes one reconciliation cycle for one store
type Runner interface {
	RunStore(ctx context.Context, settings appsync.StoreSettings, trigger syncdomain.Trigger) (*syncdomain.Run, error)
}

// Config holds sync scheduler configuration
type Config struct {
	// Enabled indicates if the scheduler is enabled
	Enabled bool
	// TickInterval is how often due stores are checked
	TickInterval time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		TickInterval: time.Minute,
	}
}

// ErrInvalidConfig indicates an invalid scheduler configuration
var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// SyncScheduler runs each enabled store's reconciliation cycle on its
// configured interval. Stores run sequentially within a tick; the per-store
// run lock keeps an overlapping manual trigger from racing a scheduled run.
type SyncScheduler struct {
	config   Config
	settings SettingsProvider
	runner   Runner
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// lastRun tracks per-store run start times across ticks
	lastRun map[string]time.Time
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(config Config, settings SettingsProvider, runner Runner, logger *zap.Logger) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &SyncScheduler{
		config:   config,
		settings: settings,
		runner:   runner,
		logger:   logger,
		lastRun:  make(map[string]time.Time),
	}, nil
}

// Start starts the scheduler loop
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Sync scheduler started",
		zap.Duration("tick_interval", s.config.TickInterval),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// loop ticks until the context is cancelled
func (s *SyncScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs every enabled store whose interval has elapsed
func (s *SyncScheduler) tick(ctx context.Context) {
	now := time.Now()

	for _, settings := range s.settings() {
		if ctx.Err() != nil {
			return
		}
		if !settings.Enabled {
			continue
		}

		settings.Normalize()
		if last, ok := s.lastRun[settings.StoreID]; ok && now.Sub(last) < settings.SyncInterval {
			continue
		}
		s.lastRun[settings.StoreID] = now

		run, err := s.runner.RunStore(ctx, settings, syncdomain.TriggerScheduled)
		switch {
		case errors.Is(err, appsync.ErrRunInProgress):
			s.logger.Info("Scheduled run skipped: store already syncing",
				zap.String("store_id", settings.StoreID),
			)
		case err != nil:
			s.logger.Error("Scheduled run failed",
				zap.String("store_id", settings.StoreID),
				zap.Error(err),
			)
		default:
			s.logger.Info("Scheduled run finished",
				zap.String("store_id", settings.StoreID),
				zap.String("run_id", run.ID.String()),
				zap.String("status", string(run.Status)),
				zap.Int("processed", run.Counts.Processed),
				zap.Int("errors", run.Counts.Errors),
			)
		}
	}
}
