package verification

import (
	"context"
	"time"
)

// Start runs a one-second ticker that calls Tick until Cancel is called or
// ctx ends. Starting a running session does nothing.
func (s *Session) Start(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.stop != nil {
		return
	}

	// The ticker exists before Start returns so a mock clock advanced right
	// after Start still fires it.
	ticker := s.clock.Ticker(time.Second)
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done = stop, done

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				s.Tick()
			}
		}
	}()
}

// Cancel stops the ticker and waits for its goroutine to exit. It is safe to
// call on a session that was never started or is already cancelled.
func (s *Session) Cancel() {
	s.runMu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.runMu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Running reports whether the ticker goroutine is alive.
func (s *Session) Running() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}
