package orders

import (
	"math"
	"strings"
	"sync"

	"github.com/jask/opsconsole/internal/apperr"
)

// Order is an active delivery. DeliveryStatus is an opaque label that no
// command changes. An empty Issue or AssignedPartnerID means none.
type Order struct {
	ID                string
	DeliveryStatus    string
	Issue             string
	ETA               string
	Address           string
	DistanceKm        float64
	AssignedPartnerID string
}

// HasIssue reports whether the order carries an open issue.
func (o Order) HasIssue() bool { return o.Issue != "" }

// Assigned reports whether a partner is assigned.
func (o Order) Assigned() bool { return o.AssignedPartnerID != "" }

// Store holds the orders of one console session in seed order.
type Store struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*Order
}

// NewStore builds a store from seed orders.
func NewStore(seed []Order) (*Store, error) {
	s := &Store{byID: make(map[string]*Order, len(seed))}
	for _, o := range seed {
		o.ID = strings.TrimSpace(o.ID)
		if o.ID == "" {
			return nil, apperr.InvalidInput("order at %q has no id", o.Address)
		}
		if _, dup := s.byID[o.ID]; dup {
			return nil, apperr.InvalidInput("duplicate order id %q", o.ID)
		}
		if o.DistanceKm < 0 || math.IsNaN(o.DistanceKm) || math.IsInf(o.DistanceKm, 0) {
			return nil, apperr.InvalidInput("order %q: distance %v km", o.ID, o.DistanceKm)
		}
		order := o
		s.byID[o.ID] = &order
		s.order = append(s.order, o.ID)
	}
	return s, nil
}

// List returns all orders in seed order.
func (s *Store) List() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

// Get returns the order with id.
func (s *Store) Get(id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byID[id]
	if !ok {
		return Order{}, apperr.NotFound("order", id)
	}
	return *o, nil
}

// Assign sets the delivery partner. Status and issue are left alone and an
// order may be reassigned any number of times.
func (s *Store) Assign(orderID, partnerID string) (Order, error) {
	partnerID = strings.TrimSpace(partnerID)
	if partnerID == "" {
		return Order{}, apperr.InvalidInput("partner id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[orderID]
	if !ok {
		return Order{}, apperr.NotFound("order", orderID)
	}
	o.AssignedPartnerID = partnerID
	return *o, nil
}

// ResolveIssue clears the order's issue. Resolving a clean order is a no-op.
func (s *Store) ResolveIssue(orderID string) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[orderID]
	if !ok {
		return Order{}, apperr.NotFound("order", orderID)
	}
	o.Issue = ""
	return *o, nil
}

// OpenIssues counts orders with an unresolved issue.
func (s *Store) OpenIssues() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, o := range s.byID {
		if o.HasIssue() {
			n++
		}
	}
	return n
}
