package usecase

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ExpiringCall ends its call once the call's credential has expired
type ExpiringCall interface {
	EndIfExpired(now time.Time) bool
}

// CallExpiryService periodically ends calls whose room credential expired
type CallExpiryService struct {
	calls    ExpiringCall
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	done     chan struct{}
}

// NewCallExpiryService creates a new call expiry service
func NewCallExpiryService(calls ExpiringCall, interval time.Duration, logger *zap.Logger) *CallExpiryService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &CallExpiryService{
		calls:    calls,
		interval: interval,
		now:      time.Now,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the background check
func (s *CallExpiryService) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.loop()
	s.logger.Info("Call expiry service started", zap.Duration("interval", s.interval))
}

// Stop stops the check and waits for it to exit. It is safe to call more than once.
func (s *CallExpiryService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.started.Load() {
			<-s.done
		}
		s.logger.Info("Call expiry service stopped")
	})
}

func (s *CallExpiryService) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if s.calls.EndIfExpired(s.now()) {
				s.logger.Info("Expired call ended")
			}
		}
	}
}
