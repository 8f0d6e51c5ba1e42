package modes

import (
	"strings"
	"sync"

	"github.com/jask/opsconsole/internal/apperr"
)

// Flag names a service category.
type Flag string

const (
	Food     Flag = "food"
	Grocery  Flag = "grocery"
	Delivery Flag = "delivery"
)

// All lists the flags in display order.
func All() []Flag { return []Flag{Food, Grocery, Delivery} }

// ParseFlag maps user text to a Flag.
func ParseFlag(raw string) (Flag, error) {
	f := Flag(strings.ToLower(strings.TrimSpace(raw)))
	switch f {
	case Food, Grocery, Delivery:
		return f, nil
	}
	return "", apperr.InvalidInput("unknown mode %q", raw)
}

// Flags is a snapshot of every mode.
type Flags struct {
	Food     bool
	Grocery  bool
	Delivery bool
}

// Get returns the value of f in the snapshot.
func (fs Flags) Get(f Flag) bool {
	switch f {
	case Food:
		return fs.Food
	case Grocery:
		return fs.Grocery
	case Delivery:
		return fs.Delivery
	}
	return false
}

// With returns a copy of fs with f set to v. Unknown flags are ignored.
func (fs Flags) With(f Flag, v bool) Flags {
	switch f {
	case Food:
		fs.Food = v
	case Grocery:
		fs.Grocery = v
	case Delivery:
		fs.Delivery = v
	}
	return fs
}

// Store holds independent boolean flags; toggling one never touches another.
type Store struct {
	mu    sync.RWMutex
	flags map[Flag]bool
}

// NewStore starts from initial.
func NewStore(initial Flags) *Store {
	return &Store{flags: map[Flag]bool{
		Food:     initial.Food,
		Grocery:  initial.Grocery,
		Delivery: initial.Delivery,
	}}
}

// Toggle flips f and returns its new value.
func (s *Store) Toggle(f Flag) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.flags[f]
	if !ok {
		return false, apperr.InvalidInput("unknown mode %q", f)
	}
	s.flags[f] = !v
	return !v, nil
}

// Enabled reports the value of f.
func (s *Store) Enabled(f Flag) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.flags[f]
	if !ok {
		return false, apperr.InvalidInput("unknown mode %q", f)
	}
	return v, nil
}

// Snapshot copies every flag.
func (s *Store) Snapshot() Flags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Flags{
		Food:     s.flags[Food],
		Grocery:  s.flags[Grocery],
		Delivery: s.flags[Delivery],
	}
}
