package verification

import (
	"fmt"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/jask/opsconsole/internal/apperr"
)

const (
	// CodeLength is the number of digit slots in a session.
	CodeLength = 4
	// DefaultWindowSeconds is the countdown a fresh or resent session gets.
	DefaultWindowSeconds = 120
)

// State of a session. A session is Active while seconds remain.
type State int

const (
	Active State = iota
	Expired
)

func (s State) String() string {
	if s == Expired {
		return "expired"
	}
	return "active"
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	Digits    [CodeLength]string
	Remaining int
	Window    int
}

// State derives Active/Expired from the remaining seconds.
func (s Snapshot) State() State {
	if s.Remaining > 0 {
		return Active
	}
	return Expired
}

// Countdown renders the remaining time as m:ss.
func (s Snapshot) Countdown() string {
	return fmt.Sprintf("%d:%02d", s.Remaining/60, s.Remaining%60)
}

// Code joins the digits when every slot is filled.
func (s Snapshot) Code() (string, bool) {
	for _, d := range s.Digits {
		if d == "" {
			return "", false
		}
	}
	return strings.Join(s.Digits[:], ""), true
}

// Option configures a Session.
type Option func(*Session)

// WithWindow overrides the countdown length in seconds. Non-positive values
// keep the default.
func WithWindow(seconds int) Option {
	return func(s *Session) {
		if seconds > 0 {
			s.window = seconds
		}
	}
}

// WithClock injects the clock that drives Start's ticker.
func WithClock(c clock.Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// Session captures one verification attempt: four digit slots and a
// countdown. It only does bookkeeping; nothing is verified against a backend.
type Session struct {
	mu        sync.Mutex
	digits    [CodeLength]string
	remaining int
	window    int

	clock clock.Clock
	runMu sync.Mutex
	stop  chan struct{}
	done  chan struct{}
}

// NewSession returns an Active session with a full window and empty slots.
func NewSession(opts ...Option) *Session {
	s := &Session{window: DefaultWindowSeconds, clock: clock.New()}
	for _, opt := range opts {
		opt(s)
	}
	s.remaining = s.window
	return s
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{Digits: s.digits, Remaining: s.remaining, Window: s.window}
}

// Tick consumes one second. At zero the session is Expired and further
// ticks leave it at zero.
func (s *Session) Tick() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remaining > 0 {
		s.remaining--
	}
	return s.snapshotLocked()
}

// EnterDigit sets slot index to value, which must be empty (clears the slot)
// or a single decimal digit. Rejected input leaves the slot unchanged.
func (s *Session) EnterDigit(index int, value string) (Snapshot, error) {
	if index < 0 || index >= CodeLength {
		return s.Snapshot(), apperr.InvalidInput("digit index %d out of range", index)
	}
	if value != "" && (len(value) != 1 || value[0] < '0' || value[0] > '9') {
		return s.Snapshot(), apperr.InvalidInput("%q is not a digit", value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.digits[index] = value
	return s.snapshotLocked(), nil
}

// Resend restarts an Expired session: slots are cleared and the full window
// is restored. While the session is Active it fails with InvalidState.
func (s *Session) Resend() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remaining > 0 {
		return s.snapshotLocked(), apperr.InvalidState("code still valid for %d seconds", s.remaining)
	}
	s.digits = [CodeLength]string{}
	s.remaining = s.window
	return s.snapshotLocked(), nil
}
