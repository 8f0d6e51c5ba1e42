package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/jask/opsconsole/internal/apperr"
	"github.com/jask/opsconsole/internal/database"
	"github.com/jask/opsconsole/internal/database/repository"
	"github.com/jask/opsconsole/internal/directory"
	"github.com/jask/opsconsole/internal/links"
	"github.com/jask/opsconsole/internal/metrics"
	"github.com/jask/opsconsole/internal/modes"
	"github.com/jask/opsconsole/internal/orders"
	"github.com/jask/opsconsole/internal/payout"
	"github.com/jask/opsconsole/internal/seed"
	"github.com/jask/opsconsole/internal/verification"
	"github.com/jask/opsconsole/internal/wallet"
)

// Entity names used in the journal and as the metrics store label.
const (
	EntityListing = "listing"
	EntityOrder   = "order"
	EntityMode    = "mode"
	EntityPayout  = "payout"
	EntitySession = "session"
	EntityWallet  = "wallet"
)

// journalKeep bounds the in-memory journal; older rows are pruned.
const journalKeep = 1000

// Console coordinates the stores for the UI. Every command goes to exactly
// one store and its outcome is journaled, counted and logged. No store
// depends on another.
type Console struct {
	Directory *directory.Store
	Orders    *orders.Store
	Modes     *modes.Store
	Rates     payout.Rates
	Wallet    *wallet.Service
	Maps      links.MapLinks

	Ledger wallet.Ledger
	TopUps []wallet.Entry

	Journal *repository.ActivityRepo
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// WindowSeconds and Clock configure new verification sessions.
	WindowSeconds int
	Clock         clock.Clock
	// Now stamps journal rows and drives wallet rate limiting.
	Now func() time.Time

	recorded atomic.Int64
}

// Options configure NewConsole. Zero values fall back to defaults.
type Options struct {
	Rates         payout.Rates
	Wallet        *wallet.Service
	Maps          links.MapLinks
	Journal       *repository.ActivityRepo
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	WindowSeconds int
	Clock         clock.Clock
}

// NewConsole builds the stores from a seed set.
func NewConsole(set seed.Set, opts Options) (*Console, error) {
	dir, err := directory.NewStore(set.Listings)
	if err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}
	ords, err := orders.NewStore(set.Orders)
	if err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	c := &Console{
		Directory:     dir,
		Orders:        ords,
		Modes:         modes.NewStore(set.Modes),
		Rates:         opts.Rates,
		Wallet:        opts.Wallet,
		Maps:          opts.Maps,
		Ledger:        set.Wallet,
		TopUps:        set.TopUps,
		Journal:       opts.Journal,
		Metrics:       opts.Metrics,
		Logger:        opts.Logger,
		WindowSeconds: opts.WindowSeconds,
		Clock:         opts.Clock,
	}
	if c.Rates == (payout.Rates{}) {
		c.Rates = payout.DefaultRates
	}
	if c.Wallet == nil {
		c.Wallet = wallet.NewService(links.Messenger{BaseURL: "https://wa.me", Phone: "918434805818"}, "₹", wallet.Limits{})
	}
	if c.Maps == (links.MapLinks{}) {
		c.Maps = links.DefaultMapLinks()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.WindowSeconds <= 0 {
		c.WindowSeconds = verification.DefaultWindowSeconds
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	c.Now = database.Now
	return c, nil
}

// command describes one journaled console action.
type command struct {
	entity   string
	entityID string
	action   string
	detail   string
}

// record journals, counts and logs a finished command. Journal failures are
// logged and never change the command's result.
func (c *Console) record(ctx context.Context, cmd command, started time.Time, err error) {
	outcome := apperr.Kind(err)
	c.Metrics.Observe(cmd.entity, cmd.action, err, time.Since(started))

	// Wallet ids are usernames; the log handler fingerprints that key.
	idKey := "id"
	if cmd.entity == EntityWallet {
		idKey = "username"
	}
	attrs := []any{"store", cmd.entity, "op", cmd.action, idKey, cmd.entityID, "outcome", outcome}
	if err != nil {
		c.Logger.Warn("operation ignored", append(attrs, "err", err)...)
	} else {
		c.Logger.Info("operation applied", attrs...)
	}

	if c.Journal == nil {
		return
	}
	detail := cmd.detail
	if err != nil {
		detail = err.Error()
	}
	row := repository.Activity{
		ID:        uuid.NewString(),
		Entity:    cmd.entity,
		EntityID:  cmd.entityID,
		Action:    cmd.action,
		Detail:    detail,
		Outcome:   outcome,
		CreatedAt: c.Now(),
	}
	if jerr := c.Journal.Insert(ctx, row); jerr != nil {
		c.Logger.Error("journal insert failed", "err", jerr)
		return
	}
	if c.recorded.Add(1)%100 == 0 {
		if _, jerr := c.Journal.Prune(ctx, journalKeep); jerr != nil {
			c.Logger.Error("journal prune failed", "err", jerr)
		}
	}
}

// Listings returns the directory filtered by query and approval.
func (c *Console) Listings(query string, filter directory.ApprovalStatus) []directory.Listing {
	return c.Directory.List(query, filter)
}

// Suggestions offers close matches for a query that found nothing.
func (c *Console) Suggestions(query string) []directory.Listing {
	return c.Directory.Suggest(query, 3)
}

// ApproveListing marks a listing approved.
func (c *Console) ApproveListing(ctx context.Context, id string) (directory.Listing, error) {
	started := time.Now()
	l, err := c.Directory.Approve(id)
	c.record(ctx, command{entity: EntityListing, entityID: id, action: "approve", detail: l.Name}, started, err)
	return l, err
}

// RejectListing marks a listing rejected.
func (c *Console) RejectListing(ctx context.Context, id string) (directory.Listing, error) {
	started := time.Now()
	l, err := c.Directory.Reject(id)
	c.record(ctx, command{entity: EntityListing, entityID: id, action: "reject", detail: l.Name}, started, err)
	return l, err
}

// ToggleListing flips a listing between open and closed.
func (c *Console) ToggleListing(ctx context.Context, id string) (directory.Listing, error) {
	started := time.Now()
	l, err := c.Directory.ToggleOperatingStatus(id)
	detail := ""
	if err == nil {
		detail = string(l.Operating)
	}
	c.record(ctx, command{entity: EntityListing, entityID: id, action: "toggle_operating", detail: detail}, started, err)
	return l, err
}

// MapLinks returns the embed and viewer URLs for a listing.
func (c *Console) MapLinks(id string) (embed, view string, err error) {
	l, err := c.Directory.Get(id)
	if err != nil {
		return "", "", err
	}
	return c.Maps.EmbedURL(l.Coordinates.Lat, l.Coordinates.Lon), c.Maps.ViewURL(l.Coordinates.Lat, l.Coordinates.Lon), nil
}

// AssignPartner assigns (or reassigns) a delivery partner.
func (c *Console) AssignPartner(ctx context.Context, orderID, partnerID string) (orders.Order, error) {
	started := time.Now()
	o, err := c.Orders.Assign(orderID, partnerID)
	c.record(ctx, command{entity: EntityOrder, entityID: orderID, action: "assign", detail: strings.TrimSpace(partnerID)}, started, err)
	return o, err
}

// ResolveIssue clears an order's issue.
func (c *Console) ResolveIssue(ctx context.Context, orderID string) (orders.Order, error) {
	started := time.Now()
	before, _ := c.Orders.Get(orderID)
	o, err := c.Orders.ResolveIssue(orderID)
	c.record(ctx, command{entity: EntityOrder, entityID: orderID, action: "resolve_issue", detail: before.Issue}, started, err)
	return o, err
}

// OrderPayout quotes the partner payout for an order's distance.
func (c *Console) OrderPayout(orderID string) (payout.Quote, error) {
	o, err := c.Orders.Get(orderID)
	if err != nil {
		return payout.Quote{}, err
	}
	return c.Rates.Quote(o.DistanceKm)
}

// Quote computes a payout for a typed distance.
func (c *Console) Quote(ctx context.Context, rawDistance string) (payout.Quote, error) {
	started := time.Now()
	q, err := c.quote(rawDistance)
	detail := ""
	if err == nil {
		detail = q.Amount.StringFixed(2)
	}
	c.record(ctx, command{entity: EntityPayout, entityID: strings.TrimSpace(rawDistance), action: "quote", detail: detail}, started, err)
	return q, err
}

func (c *Console) quote(rawDistance string) (payout.Quote, error) {
	d, err := payout.ParseDistance(rawDistance)
	if err != nil {
		return payout.Quote{}, err
	}
	return c.Rates.Quote(d)
}

// ToggleMode flips a service mode flag and returns its new value.
func (c *Console) ToggleMode(ctx context.Context, flag modes.Flag) (bool, error) {
	started := time.Now()
	v, err := c.Modes.Toggle(flag)
	c.record(ctx, command{entity: EntityMode, entityID: string(flag), action: "toggle", detail: fmt.Sprintf("enabled=%t", v)}, started, err)
	return v, err
}

// NewVerification starts a fresh verification session for the partner view.
// The caller owns its ticker.
func (c *Console) NewVerification() *verification.Session {
	s := verification.NewSession(verification.WithWindow(c.WindowSeconds), verification.WithClock(c.Clock))
	c.observeRemaining(s.Snapshot())
	return s
}

// TickVerification advances the countdown by one second and journals the
// moment it expires.
func (c *Console) TickVerification(ctx context.Context, s *verification.Session) verification.Snapshot {
	before := s.Snapshot()
	after := s.Tick()
	c.observeRemaining(after)
	if before.State() == verification.Active && after.State() == verification.Expired {
		c.record(ctx, command{entity: EntitySession, action: "expire"}, time.Now(), nil)
	}
	return after
}

// EnterDigit fills one slot of the verification code.
func (c *Console) EnterDigit(ctx context.Context, s *verification.Session, index int, value string) (verification.Snapshot, error) {
	started := time.Now()
	snap, err := s.EnterDigit(index, value)
	c.record(ctx, command{entity: EntitySession, entityID: fmt.Sprint(index), action: "enter_digit"}, started, err)
	return snap, err
}

// ResendCode restarts an expired session.
func (c *Console) ResendCode(ctx context.Context, s *verification.Session) (verification.Snapshot, error) {
	started := time.Now()
	snap, err := s.Resend()
	c.observeRemaining(snap)
	c.record(ctx, command{entity: EntitySession, action: "resend"}, started, err)
	return snap, err
}

func (c *Console) observeRemaining(s verification.Snapshot) {
	if c.Metrics != nil {
		c.Metrics.VerificationRemaining.Set(float64(s.Remaining))
	}
}

// UserTopUp builds an end-user wallet top-up link.
func (c *Console) UserTopUp(ctx context.Context, username, amount string) (string, error) {
	started := time.Now()
	link, err := c.Wallet.UserTopUpLink(username, amount, c.Now())
	c.record(ctx, command{entity: EntityWallet, entityID: strings.TrimSpace(username), action: "user_topup", detail: strings.TrimSpace(amount)}, started, err)
	return link, err
}

// AdminTopUp builds an operator top-up link for a user.
func (c *Console) AdminTopUp(ctx context.Context, username, amount string) (string, error) {
	started := time.Now()
	link, err := c.Wallet.AdminTopUpLink(username, amount, c.Now())
	c.record(ctx, command{entity: EntityWallet, entityID: strings.TrimSpace(username), action: "admin_topup", detail: strings.TrimSpace(amount)}, started, err)
	return link, err
}

// Activity returns journal rows matching f, newest first.
func (c *Console) Activity(ctx context.Context, f repository.ActivityFilters) ([]repository.Activity, error) {
	if c.Journal == nil {
		return nil, nil
	}
	return c.Journal.List(ctx, f)
}

// Outcomes tallies journal rows per outcome for the dashboard.
func (c *Console) Outcomes(ctx context.Context) (map[string]int, error) {
	if c.Journal == nil {
		return map[string]int{}, nil
	}
	return c.Journal.CountByOutcome(ctx)
}
