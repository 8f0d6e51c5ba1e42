// Package wallet prepares wallet top-up requests. Payments are never
// processed here: a top-up is a pre-filled message to the operator's chat
// number, rate limited per username.
package wallet

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/jask/opsconsole/internal/apperr"
	"github.com/jask/opsconsole/internal/links"
)

const (
	// UserTemplate is sent when end-users top up their own wallet.
	UserTemplate = "Hi PN'S, I want to top-up my wallet with %s%s for username %s."
	// AdminTemplate is sent when an operator requests a top-up for someone.
	AdminTemplate = "Admin top-up request: %s%s for username %s"
)

// Entry is one line of the sample transaction history.
type Entry struct {
	ID      string
	Account string
	Amount  decimal.Decimal
	At      string
}

// Credit reports whether the entry adds funds.
func (e Entry) Credit() bool { return !e.Amount.IsNegative() }

// Ledger is a read-only view over the seeded history.
type Ledger struct {
	Balance decimal.Decimal
	Entries []Entry
}

// Limits configure the per-username token bucket.
type Limits struct {
	PerMinute float64
	Burst     int
	IdleTTL   time.Duration
}

// Service validates top-up input and builds the deep links.
type Service struct {
	messenger links.Messenger
	currency  string

	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu     sync.Mutex
	byUser map[string]*bucket
	hits   uint64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewService returns a Service. A non-positive PerMinute or Burst disables
// rate limiting.
func NewService(messenger links.Messenger, currency string, limits Limits) *Service {
	s := &Service{
		messenger: messenger,
		currency:  currency,
		burst:     limits.Burst,
		idleTTL:   limits.IdleTTL,
		byUser:    make(map[string]*bucket),
	}
	if limits.PerMinute > 0 && limits.Burst > 0 {
		s.limit = rate.Limit(limits.PerMinute / 60)
	}
	if s.idleTTL <= 0 {
		s.idleTTL = 10 * time.Minute
	}
	return s
}

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// ParseAmount accepts a whole, positive amount typed as digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if !digitsOnly.MatchString(raw) {
		return decimal.Zero, apperr.InvalidInput("amount %q must be digits only", raw)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.InvalidInput("amount %q: %v", raw, err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, apperr.InvalidInput("amount must be greater than zero")
	}
	return amount, nil
}

// UserTopUpLink builds the link an end-user follows to top up their wallet.
func (s *Service) UserTopUpLink(username, amount string, now time.Time) (string, error) {
	return s.link(UserTemplate, username, amount, now)
}

// AdminTopUpLink builds the link an operator follows to top up a user.
func (s *Service) AdminTopUpLink(username, amount string, now time.Time) (string, error) {
	return s.link(AdminTemplate, username, amount, now)
}

func (s *Service) link(template, username, amount string, now time.Time) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", apperr.InvalidInput("username is required")
	}
	value, err := ParseAmount(amount)
	if err != nil {
		return "", err
	}
	if !s.allow(username, now) {
		return "", apperr.InvalidState("too many top-up requests for this username, try again shortly")
	}
	return s.messenger.Link(fmt.Sprintf(template, s.currency, value.String(), username)), nil
}

func (s *Service) allow(username string, now time.Time) bool {
	if s.limit == 0 {
		return true
	}
	key := strings.ToLower(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byUser[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.byUser[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)

	s.hits++
	if s.hits%256 == 0 {
		cutoff := now.Add(-s.idleTTL)
		for k, v := range s.byUser {
			if v.lastSeen.Before(cutoff) {
				delete(s.byUser, k)
			}
		}
	}
	return allowed
}
