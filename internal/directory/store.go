package directory

import (
	"strings"
	"sync"

	"github.com/jask/opsconsole/internal/apperr"
)

// ApprovalStatus is the listing approval axis.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// OperatingStatus is the open/closed axis, independent of approval.
type OperatingStatus string

const (
	OperatingOpen   OperatingStatus = "open"
	OperatingClosed OperatingStatus = "closed"
)

// Coordinates locates a listing on the map.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Listing is a merchant directory entry.
type Listing struct {
	ID          string
	Name        string
	Area        string
	Coordinates Coordinates
	Approval    ApprovalStatus
	Operating   OperatingStatus
}

// Store holds the listings of one console session. Listings are never
// deleted and keep their seed order.
type Store struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*Listing
}

// NewStore builds a store from the seed set. IDs must be unique and
// non-empty; missing statuses default to pending and open.
func NewStore(seed []Listing) (*Store, error) {
	s := &Store{byID: make(map[string]*Listing, len(seed))}
	for _, l := range seed {
		l.ID = strings.TrimSpace(l.ID)
		if l.ID == "" {
			return nil, apperr.InvalidInput("listing %q has no id", l.Name)
		}
		if _, dup := s.byID[l.ID]; dup {
			return nil, apperr.InvalidInput("duplicate listing id %q", l.ID)
		}
		if l.Approval == "" {
			l.Approval = ApprovalPending
		}
		if !validApproval(l.Approval) {
			return nil, apperr.InvalidInput("listing %q: unknown approval status %q", l.ID, l.Approval)
		}
		if l.Operating == "" {
			l.Operating = OperatingOpen
		}
		if l.Operating != OperatingOpen && l.Operating != OperatingClosed {
			return nil, apperr.InvalidInput("listing %q: unknown operating status %q", l.ID, l.Operating)
		}
		listing := l
		s.byID[l.ID] = &listing
		s.order = append(s.order, l.ID)
	}
	return s, nil
}

// List returns listings whose name or area contains query (case-insensitive)
// and, when filter is set, whose approval equals filter. An empty query and
// filter return everything in seed order.
func (s *Store) List(query string, filter ApprovalStatus) []Listing {
	needle := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Listing, 0, len(s.order))
	for _, id := range s.order {
		l := s.byID[id]
		if filter != "" && l.Approval != filter {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(l.Name), needle) &&
			!strings.Contains(strings.ToLower(l.Area), needle) {
			continue
		}
		out = append(out, *l)
	}
	return out
}

// Get returns the listing with id.
func (s *Store) Get(id string) (Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.byID[id]
	if !ok {
		return Listing{}, apperr.NotFound("listing", id)
	}
	return *l, nil
}

// Approve marks the listing approved. Approving twice is a no-op.
func (s *Store) Approve(id string) (Listing, error) {
	return s.setApproval(id, ApprovalApproved)
}

// Reject marks the listing rejected. Approve and Reject are last-write-wins.
func (s *Store) Reject(id string) (Listing, error) {
	return s.setApproval(id, ApprovalRejected)
}

func (s *Store) setApproval(id string, status ApprovalStatus) (Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok {
		return Listing{}, apperr.NotFound("listing", id)
	}
	l.Approval = status
	return *l, nil
}

// ToggleOperatingStatus flips open/closed without touching approval.
func (s *Store) ToggleOperatingStatus(id string) (Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok {
		return Listing{}, apperr.NotFound("listing", id)
	}
	if l.Operating == OperatingOpen {
		l.Operating = OperatingClosed
	} else {
		l.Operating = OperatingOpen
	}
	return *l, nil
}

// Counts tallies listings per approval status.
func (s *Store) Counts() map[ApprovalStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[ApprovalStatus]int{
		ApprovalPending:  0,
		ApprovalApproved: 0,
		ApprovalRejected: 0,
	}
	for _, l := range s.byID {
		counts[l.Approval]++
	}
	return counts
}

// Len returns the number of listings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// ParseApproval maps user text to a status. The empty string is "any".
func ParseApproval(raw string) (ApprovalStatus, error) {
	status := ApprovalStatus(strings.ToLower(strings.TrimSpace(raw)))
	if status == "" || validApproval(status) {
		return status, nil
	}
	return "", apperr.InvalidInput("unknown approval status %q", raw)
}

func validApproval(s ApprovalStatus) bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}
