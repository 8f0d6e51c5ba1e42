package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/opsconsole/internal/apperr"
	"github.com/jask/opsconsole/internal/config"
	"github.com/jask/opsconsole/internal/database/repository"
	"github.com/jask/opsconsole/internal/directory"
	"github.com/jask/opsconsole/internal/modes"
	"github.com/jask/opsconsole/internal/payout"
	"github.com/jask/opsconsole/internal/service"
	"github.com/jask/opsconsole/internal/verification"
)

// activityRows is how many journal rows the activity pane shows.
const activityRows = 20

// App ties together the role views. It owns no entity state: every command
// goes through the console and the view re-renders what comes back.
type App struct {
	ctx         context.Context
	console     *service.Console
	maintenance *service.MaintenanceService
	cfg         config.Config
	keys        keyMap

	role   role
	pane   pane
	width  int
	status string

	input     textinput.Model
	inputMode inputMode

	// listings
	query      string
	filter     directory.ApprovalStatus
	listCursor int
	mapLink    string

	// orders
	orderCursor int

	// payout calculator
	distance string
	quote    *payout.Quote

	// wallet
	topUpUser   string
	topUpAmount string
	link        string

	// partner verification; tickGen invalidates ticks of a discarded session
	session *verification.Session
	slot    int
	tickGen int
	every   func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

	activity       []repository.Activity
	activityFilter repository.ActivityFilters
	outcomes       map[string]int
}

type role int

const (
	roleAdmin role = iota
	roleUser
	roleRestaurant
	rolePartner
)

var roleNames = []string{"Admin", "User", "Restaurant", "Partner"}

func (r role) String() string { return roleNames[r] }

func (r role) next() role { return (r + 1) % role(len(roleNames)) }

type pane int

const (
	paneListings pane = iota
	paneOrders
	paneModes
	panePayout
	paneWallet
	paneActivity
)

var paneNames = []string{"Listings", "Orders", "Modes", "Payout", "Wallet", "Activity"}

func (p pane) String() string { return paneNames[p] }

type inputMode string

const (
	inputNone     inputMode = ""
	inputSearch   inputMode = "search"
	inputAssign   inputMode = "assign"
	inputDistance inputMode = "distance"
	inputUsername inputMode = "username"
	inputAmount   inputMode = "amount"
)

var entityCycle = []string{
	"",
	service.EntityListing,
	service.EntityOrder,
	service.EntityMode,
	service.EntityPayout,
	service.EntitySession,
	service.EntityWallet,
}

var outcomeCycle = []string{
	"",
	apperr.KindOK,
	apperr.KindNotFound,
	apperr.KindInvalidInput,
	apperr.KindInvalidState,
}

var filterCycle = []directory.ApprovalStatus{
	"",
	directory.ApprovalPending,
	directory.ApprovalApproved,
	directory.ApprovalRejected,
}

// New builds the root model. maintenance may be nil, which disables
// clearing the journal.
func New(ctx context.Context, cfg config.Config, console *service.Console, maintenance *service.MaintenanceService) *App {
	in := textinput.New()
	in.CharLimit = 64
	// Load has already validated the filter.
	filter, _ := directory.ParseApproval(cfg.UI.ListingFilter)
	return &App{
		ctx:         ctx,
		console:     console,
		maintenance: maintenance,
		cfg:         cfg,
		keys:        newKeyMap(),
		input:       in,
		filter:      filter,
		topUpUser:   cfg.UI.Username,
		outcomes:    map[string]int{},
		every:       tea.Tick,
	}
}

func (a *App) Init() tea.Cmd {
	return a.loadActivity()
}

func (a *App) loadActivity() tea.Cmd {
	f := a.activityFilter
	f.Limit = activityRows
	return func() tea.Msg {
		rows, err := a.console.Activity(a.ctx, f)
		if err != nil {
			return errMsg{err}
		}
		outcomes, err := a.console.Outcomes(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return activityMsg{rows: rows, outcomes: outcomes}
	}
}

func (a *App) tickCmd() tea.Cmd {
	gen := a.tickGen
	return a.every(time.Second, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
	case tea.KeyMsg:
		if a.inputMode != inputNone {
			return a.handleInputKey(m)
		}
		if key.Matches(m, a.keys.Quit) {
			a.discardSession()
			return a, tea.Quit
		}
		if key.Matches(m, a.keys.NextRole) {
			return a, a.switchRole(a.role.next())
		}
		switch a.role {
		case roleUser:
			return a.handleUserKey(m)
		case roleRestaurant:
			return a.handleRestaurantKey(m)
		case rolePartner:
			return a.handlePartnerKey(m)
		default:
			return a.handleAdminKey(m)
		}
	case tickMsg:
		if m.gen != a.tickGen || a.session == nil {
			return a, nil
		}
		snap := a.console.TickVerification(a.ctx, a.session)
		if snap.State() == verification.Active {
			return a, a.tickCmd()
		}
		a.status = "code expired, press R to resend"
		return a, a.loadActivity()
	case activityMsg:
		a.activity = m.rows
		a.outcomes = m.outcomes
	case statusMsg:
		a.status = string(m)
		return a, a.loadActivity()
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

// switchRole discards the partner session when leaving the partner view and
// starts a fresh one when entering it.
func (a *App) switchRole(next role) tea.Cmd {
	if a.role == rolePartner {
		a.discardSession()
	}
	a.role = next
	a.status = ""
	a.link = ""
	a.mapLink = ""
	a.listCursor = 0
	if next == rolePartner {
		a.session = a.console.NewVerification()
		a.slot = 0
		a.tickGen++
		return a.tickCmd()
	}
	return nil
}

func (a *App) discardSession() {
	a.session = nil
	a.tickGen++
}

// applied reports a command outcome in the status line and refreshes the
// journal view.
func (a *App) applied(err error, ok string) tea.Cmd {
	if err != nil {
		a.status = "operation ignored: " + err.Error()
	} else {
		a.status = ok
	}
	return a.loadActivity()
}

func (a *App) visibleListings() []directory.Listing {
	return a.console.Listings(a.query, a.filter)
}

func (a *App) selectedListing() (directory.Listing, bool) {
	list := a.visibleListings()
	if len(list) == 0 {
		return directory.Listing{}, false
	}
	if a.listCursor >= len(list) {
		a.listCursor = len(list) - 1
	}
	return list[a.listCursor], true
}

func (a *App) selectedOrder() (string, bool) {
	list := a.console.Orders.List()
	if len(list) == 0 {
		return "", false
	}
	if a.orderCursor >= len(list) {
		a.orderCursor = len(list) - 1
	}
	return list[a.orderCursor].ID, true
}

func (a *App) moveCursor(m tea.KeyMsg, cursor *int, n int) {
	switch m.String() {
	case "up", "k":
		if *cursor > 0 {
			*cursor--
		}
	case "down", "j":
		if *cursor < n-1 {
			*cursor++
		}
	}
}

func (a *App) handleAdminKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.NextPane):
		a.pane = (a.pane + 1) % pane(len(paneNames))
		a.status = ""
		return a, nil
	case key.Matches(m, a.keys.PrevPane):
		a.pane = (a.pane + pane(len(paneNames)) - 1) % pane(len(paneNames))
		a.status = ""
		return a, nil
	}
	switch a.pane {
	case paneListings:
		return a.handleListingKey(m, true)
	case paneOrders:
		return a.handleOrderKey(m)
	case paneModes:
		return a.handleModeKey(m)
	case panePayout:
		if key.Matches(m, a.keys.Edit) {
			a.startInput(inputDistance, "Distance (km): ", a.distance)
		}
	case paneWallet:
		return a.handleWalletKey(m, true)
	case paneActivity:
		switch {
		case key.Matches(m, a.keys.Reload):
			return a, a.loadActivity()
		case key.Matches(m, a.keys.ClearLog):
			return a, a.clearJournal()
		case key.Matches(m, a.keys.Filter):
			a.activityFilter.Entity = nextIn(entityCycle, a.activityFilter.Entity)
			a.activityFilter.EntityID = ""
			return a, a.loadActivity()
		case key.Matches(m, a.keys.Outcome):
			a.activityFilter.Outcome = nextIn(outcomeCycle, a.activityFilter.Outcome)
			return a, a.loadActivity()
		case key.Matches(m, a.keys.Clear):
			a.activityFilter = repository.ActivityFilters{}
			return a, a.loadActivity()
		}
	}
	return a, nil
}

func (a *App) handleListingKey(m tea.KeyMsg, admin bool) (tea.Model, tea.Cmd) {
	if key.Matches(m, a.keys.UpDown) {
		a.moveCursor(m, &a.listCursor, len(a.visibleListings()))
		a.mapLink = ""
		return a, nil
	}
	switch {
	case key.Matches(m, a.keys.Search):
		a.startInput(inputSearch, "Search: ", a.query)
		return a, nil
	case key.Matches(m, a.keys.Clear):
		a.query = ""
		a.listCursor = 0
		return a, nil
	case key.Matches(m, a.keys.Toggle):
		l, ok := a.selectedListing()
		if !ok {
			a.status = "no listings"
			return a, nil
		}
		updated, err := a.console.ToggleListing(a.ctx, l.ID)
		return a, a.applied(err, updated.Name+" is now "+string(updated.Operating))
	}
	if !admin {
		return a, nil
	}
	switch {
	case key.Matches(m, a.keys.Filter):
		a.filter = nextFilter(a.filter)
		a.listCursor = 0
	case key.Matches(m, a.keys.Approve), key.Matches(m, a.keys.Reject):
		l, ok := a.selectedListing()
		if !ok {
			a.status = "no listings"
			return a, nil
		}
		var updated directory.Listing
		var err error
		if key.Matches(m, a.keys.Approve) {
			updated, err = a.console.ApproveListing(a.ctx, l.ID)
		} else {
			updated, err = a.console.RejectListing(a.ctx, l.ID)
		}
		return a, a.applied(err, updated.Name+" "+string(updated.Approval))
	case key.Matches(m, a.keys.Map):
		l, ok := a.selectedListing()
		if !ok {
			a.status = "no listings"
			return a, nil
		}
		_, view, err := a.console.MapLinks(l.ID)
		if err != nil {
			a.status = "error: " + err.Error()
			return a, nil
		}
		a.mapLink = view
	case key.Matches(m, a.keys.History):
		l, ok := a.selectedListing()
		if !ok {
			a.status = "no listings"
			return a, nil
		}
		a.activityFilter = repository.ActivityFilters{Entity: service.EntityListing, EntityID: l.ID}
		a.pane = paneActivity
		a.status = "history for " + l.Name
		return a, a.loadActivity()
	}
	return a, nil
}

func nextIn(cycle []string, cur string) string {
	for i, v := range cycle {
		if v == cur {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return ""
}

func nextFilter(f directory.ApprovalStatus) directory.ApprovalStatus {
	for i, v := range filterCycle {
		if v == f {
			return filterCycle[(i+1)%len(filterCycle)]
		}
	}
	return ""
}

func (a *App) handleOrderKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(m, a.keys.UpDown) {
		a.moveCursor(m, &a.orderCursor, len(a.console.Orders.List()))
		return a, nil
	}
	id, ok := a.selectedOrder()
	if !ok {
		return a, nil
	}
	switch {
	case key.Matches(m, a.keys.Assign):
		o, err := a.console.Orders.Get(id)
		if err != nil {
			a.status = "error: " + err.Error()
			return a, nil
		}
		a.startInput(inputAssign, "Partner ID for "+id+": ", o.AssignedPartnerID)
	case key.Matches(m, a.keys.Resolve):
		_, err := a.console.ResolveIssue(a.ctx, id)
		return a, a.applied(err, "issue resolved on "+id)
	}
	return a, nil
}

func (a *App) handleModeKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(m, a.keys.Modes) {
		return a, nil
	}
	all := modes.All()
	idx := int(m.String()[0] - '1')
	flag := all[idx]
	on, err := a.console.ToggleMode(a.ctx, flag)
	state := "disabled"
	if on {
		state = "enabled"
	}
	return a, a.applied(err, string(flag)+" "+state)
}

func (a *App) handleWalletKey(m tea.KeyMsg, admin bool) (tea.Model, tea.Cmd) {
	switch {
	case admin && key.Matches(m, a.keys.Username):
		a.startInput(inputUsername, "Username: ", a.topUpUser)
	case key.Matches(m, a.keys.Edit):
		a.startInput(inputAmount, "Amount: ", a.topUpAmount)
	case key.Matches(m, a.keys.Submit):
		var link string
		var err error
		if admin {
			link, err = a.console.AdminTopUp(a.ctx, a.topUpUser, a.topUpAmount)
		} else {
			link, err = a.console.UserTopUp(a.ctx, a.cfg.UI.Username, a.topUpAmount)
		}
		a.link = link
		return a, a.applied(err, "top-up link ready")
	}
	return a, nil
}

func (a *App) handleUserKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	return a.handleWalletKey(m, false)
}

func (a *App) handleRestaurantKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	return a.handleListingKey(m, false)
}

func (a *App) handlePartnerKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.session == nil {
		return a, nil
	}
	switch {
	case key.Matches(m, a.keys.Digit):
		snap, err := a.console.EnterDigit(a.ctx, a.session, a.slot, m.String())
		if err != nil {
			a.status = "operation ignored: " + err.Error()
			return a, nil
		}
		if a.slot < verification.CodeLength-1 {
			a.slot++
		}
		if _, complete := snap.Code(); complete {
			a.status = "code complete"
		}
	case key.Matches(m, a.keys.Backspace):
		snap := a.session.Snapshot()
		if snap.Digits[a.slot] == "" && a.slot > 0 {
			a.slot--
		}
		_, err := a.console.EnterDigit(a.ctx, a.session, a.slot, "")
		if err != nil {
			a.status = "operation ignored: " + err.Error()
		}
	case key.Matches(m, a.keys.Move):
		if m.String() == "left" && a.slot > 0 {
			a.slot--
		}
		if m.String() == "right" && a.slot < verification.CodeLength-1 {
			a.slot++
		}
	case key.Matches(m, a.keys.Resend):
		_, err := a.console.ResendCode(a.ctx, a.session)
		if err != nil {
			return a, a.applied(err, "")
		}
		a.slot = 0
		a.tickGen++
		return a, tea.Batch(a.applied(nil, "code resent"), a.tickCmd())
	}
	return a, nil
}

func (a *App) startInput(mode inputMode, prompt, value string) {
	a.inputMode = mode
	a.input.Prompt = prompt
	a.input.SetValue(value)
	a.input.CursorEnd()
	a.input.Focus()
}

func (a *App) endInput() {
	a.inputMode = inputNone
	a.input.Blur()
	a.input.SetValue("")
}

func (a *App) handleInputKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Cancel):
		mode := a.inputMode
		a.endInput()
		if mode == inputSearch {
			a.query = ""
		}
		return a, nil
	case m.Type == tea.KeyEnter:
		mode, value := a.inputMode, a.input.Value()
		a.endInput()
		return a.commitInput(mode, value)
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	if a.inputMode == inputSearch {
		a.query = a.input.Value()
		a.listCursor = 0
	}
	return a, cmd
}

func (a *App) commitInput(mode inputMode, value string) (tea.Model, tea.Cmd) {
	switch mode {
	case inputSearch:
		a.query = strings.TrimSpace(value)
		a.listCursor = 0
	case inputAssign:
		id, ok := a.selectedOrder()
		if !ok {
			return a, nil
		}
		o, err := a.console.AssignPartner(a.ctx, id, value)
		return a, a.applied(err, id+" assigned to "+o.AssignedPartnerID)
	case inputDistance:
		a.distance = strings.TrimSpace(value)
		q, err := a.console.Quote(a.ctx, a.distance)
		if err != nil {
			a.quote = nil
		} else {
			a.quote = &q
		}
		return a, a.applied(err, "payout updated")
	case inputUsername:
		a.topUpUser = strings.TrimSpace(value)
		a.link = ""
	case inputAmount:
		a.topUpAmount = strings.TrimSpace(value)
		a.link = ""
	}
	return a, nil
}

func (a *App) clearJournal() tea.Cmd {
	if a.maintenance == nil {
		a.status = "journal clearing unavailable"
		return nil
	}
	return func() tea.Msg {
		n, err := a.maintenance.ClearJournal(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("journal cleared (%d rows)", n))
	}
}

// messages
type statusMsg string

type errMsg struct{ error }

type tickMsg struct{ gen int }

type activityMsg struct {
	rows     []repository.Activity
	outcomes map[string]int
}
