package playback

import (
	"sync"
	"time"
)

// Scheduler runs a callback repeatedly at a fixed interval until stopped.
// Start replaces any running schedule. Stop must be safe to call from inside the callback.
type Scheduler interface {
	Start(interval time.Duration, fn func())
	Stop()
}

// TickerScheduler is a Scheduler backed by a Clock ticker and one goroutine per schedule.
type TickerScheduler struct {
	clock Clock

	mu   sync.Mutex
	done chan struct{}
}

// NewTickerScheduler creates a scheduler on the given clock
func NewTickerScheduler(clock Clock) *TickerScheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &TickerScheduler{clock: clock}
}

// Start begins calling fn every interval
func (s *TickerScheduler) Start(interval time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	done := make(chan struct{})
	s.done = done
	ticker := s.clock.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C():
				// A stop may race with a pending tick
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()
}

// Stop halts the current schedule, if any
func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *TickerScheduler) stopLocked() {
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
}
