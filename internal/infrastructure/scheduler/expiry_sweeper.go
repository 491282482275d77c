package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ExpiredOrderPurger removes temporary orders whose TTL passed before the
// cutoff and reports how many were removed
type ExpiredOrderPurger interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// ExpirySweeperConfig holds configuration for the expiry sweeper
type ExpirySweeperConfig struct {
	// Enabled determines if the sweeper is active
	Enabled bool

	// Interval is how often expired temporary orders are purged
	Interval time.Duration

	// SweepTimeout is the maximum time for a single sweep run
	SweepTimeout time.Duration
}

// DefaultExpirySweeperConfig returns default configuration
func DefaultExpirySweeperConfig() ExpirySweeperConfig {
	return ExpirySweeperConfig{
		Enabled:      true,
		Interval:     10 * time.Minute,
		SweepTimeout: time.Minute,
	}
}

// ExpirySweeper periodically purges expired temporary orders. Reads already
// treat a past-TTL snapshot as gone, so the sweeper only reclaims storage;
// missing a tick never extends an order's life.
type ExpirySweeper struct {
	purger    ExpiredOrderPurger
	logger    *zap.Logger
	config    ExpirySweeperConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewExpirySweeper creates a new expiry sweeper
func NewExpirySweeper(purger ExpiredOrderPurger, logger *zap.Logger, config ExpirySweeperConfig) *ExpirySweeper {
	return &ExpirySweeper{
		purger: purger,
		logger: logger,
		config: config,
	}
}

// Start starts the sweep loop
func (s *ExpirySweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Temporary order expiry sweeper is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Temporary order expiry sweeper started",
		zap.Duration("interval", s.config.Interval),
	)
	return nil
}

// Stop gracefully stops the sweeper
func (s *ExpirySweeper) Stop(ctx context.Context) error {
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
		s.logger.Info("Temporary order expiry sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Temporary order expiry sweeper stop timed out")
		return ctx.Err()
	}
}

func (s *ExpirySweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Expiry sweep loop stopping")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	startTime := time.Now()
	removed, err := s.purger.DeleteExpired(sweepCtx, time.Now())
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Expired temporary order sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	if removed > 0 {
		s.logger.Info("Expired temporary orders purged",
			zap.Duration("duration", duration),
			zap.Int64("removed", removed),
		)
	}
}

// TriggerImmediateSweep runs a sweep without waiting for the next tick
func (s *ExpirySweeper) TriggerImmediateSweep(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSweeperNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.sweep(ctx)
	}()
	return nil
}

// IsRunning returns whether the sweeper is running
func (s *ExpirySweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
