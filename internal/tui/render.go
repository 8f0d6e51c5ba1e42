package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/shopspring/decimal"

	"github.com/jask/opsconsole/internal/apperr"
	"github.com/jask/opsconsole/internal/directory"
	"github.com/jask/opsconsole/internal/modes"
	"github.com/jask/opsconsole/internal/payout"
	"github.com/jask/opsconsole/internal/verification"
	"github.com/jask/opsconsole/internal/wallet"
)

// styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	activeStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	slotStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	cursorSlot  = slotStyle.BorderForeground(lipgloss.Color("6"))
)

var guidelines = []string{
	"Ensure menu items have clear allergens and accurate pricing.",
	"Keep preparation times updated to optimize delivery.",
	"Respond to approval requests promptly.",
}

func (a *App) View() string {
	var body string
	switch a.role {
	case roleUser:
		body = a.renderUser()
	case roleRestaurant:
		body = a.renderRestaurant()
	case rolePartner:
		body = a.renderPartner()
	default:
		body = a.renderAdmin()
	}
	out := a.renderHeader() + "\n\n" + body
	if a.inputMode != inputNone {
		out += "\n\n" + a.input.View() + "\n" + mutedStyle.Render(hints(a.keys.Submit, a.keys.Cancel))
	}
	if a.status != "" {
		out += "\n\n" + a.status
	}
	return a.fit(out)
}

// fit truncates every line to the terminal width once it is known.
func (a *App) fit(s string) string {
	if a.width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, a.width, "")
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderHeader() string {
	parts := make([]string, 0, len(roleNames))
	for i, name := range roleNames {
		if role(i) == a.role {
			parts = append(parts, activeStyle.Render(" "+name+" "))
		} else {
			parts = append(parts, " "+name+" ")
		}
	}
	return titleStyle.Render("PN'S Operations Console") + "\n" + strings.Join(parts, "|")
}

func (a *App) renderAdmin() string {
	tabs := make([]string, 0, len(paneNames))
	for i, name := range paneNames {
		if pane(i) == a.pane {
			tabs = append(tabs, activeStyle.Render(name))
		} else {
			tabs = append(tabs, name)
		}
	}
	out := a.renderStats() + "\n" + strings.Join(tabs, "  ") + "\n\n"
	switch a.pane {
	case paneOrders:
		out += a.renderOrders()
	case paneModes:
		out += a.renderModes()
	case panePayout:
		out += a.renderPayout()
	case paneWallet:
		out += a.renderAdminWallet()
	case paneActivity:
		out += a.renderActivity()
	default:
		out += a.renderListings(false)
	}
	return out + "\n" + mutedStyle.Render(hints(a.keys.NextRole, a.keys.PrevPane, a.keys.NextPane, a.keys.Quit))
}

func (a *App) renderStats() string {
	counts := a.console.Directory.Counts()
	return fmt.Sprintf("Listings %d  pending %d  approved %d  rejected %d  |  open issues %d  |  journal ok %d  ignored %d",
		a.console.Directory.Len(),
		counts[directory.ApprovalPending], counts[directory.ApprovalApproved], counts[directory.ApprovalRejected],
		a.console.Orders.OpenIssues(),
		a.outcomes[apperr.KindOK], ignored(a.outcomes))
}

func ignored(outcomes map[string]int) int {
	n := 0
	for k, v := range outcomes {
		if k != apperr.KindOK {
			n += v
		}
	}
	return n
}

func (a *App) renderListings(compact bool) string {
	title := "Restaurant Listings (Delhi)"
	if a.filter != "" {
		title += " - " + string(a.filter) + " only"
	}
	out := titleStyle.Render(title) + "\n"
	if a.query != "" {
		out += fmt.Sprintf("search: %q\n", a.query)
	}
	list := a.visibleListings()
	if len(list) == 0 {
		out += "No listings match.\n"
		if a.query != "" {
			if s := a.console.Suggestions(a.query); len(s) > 0 {
				names := make([]string, 0, len(s))
				for _, l := range s {
					names = append(names, l.Name)
				}
				out += "Did you mean: " + strings.Join(names, ", ") + "?\n"
			}
		}
	}
	for i, l := range list {
		marker := " "
		if i == a.listCursor {
			marker = "▶"
		}
		operating := okStyle.Render("Open  ")
		if l.Operating == directory.OperatingClosed {
			operating = mutedStyle.Render("Closed")
		}
		line := fmt.Sprintf("%s %-22s %-22s %s", marker,
			ansi.Truncate(l.Name, 22, ""), ansi.Truncate(l.Area, 22, ""), operating)
		if !compact {
			line += "  " + approvalLabel(l.Approval)
		}
		out += line + "\n"
	}
	if a.mapLink != "" {
		out += "\nMap: " + a.mapLink + "\n"
	}
	if compact {
		return out + "\n" + mutedStyle.Render(hints(a.keys.UpDown, a.keys.Search, a.keys.Clear, a.keys.Toggle))
	}
	return out + "\n" + mutedStyle.Render(hints(a.keys.UpDown, a.keys.Search, a.keys.Clear, a.keys.Filter, a.keys.Approve, a.keys.Reject, a.keys.Toggle, a.keys.Map, a.keys.History))
}

func approvalLabel(s directory.ApprovalStatus) string {
	switch s {
	case directory.ApprovalApproved:
		return okStyle.Render("Approved")
	case directory.ApprovalRejected:
		return warnStyle.Render("Rejected")
	default:
		return "Pending"
	}
}

func (a *App) renderOrders() string {
	out := titleStyle.Render("Order Management") + "\n"
	list := a.console.Orders.List()
	if len(list) == 0 {
		return out + "No active orders."
	}
	for i, o := range list {
		marker := " "
		if i == a.orderCursor {
			marker = "▶"
		}
		partner := o.AssignedPartnerID
		if partner == "" {
			partner = "-"
		}
		issue := ""
		if o.HasIssue() {
			issue = warnStyle.Render("Issue: " + o.Issue)
		}
		out += fmt.Sprintf("%s %-10s %-17s ETA %-7s %-16s %5.1f km  partner %-8s %s\n",
			marker, o.ID, o.DeliveryStatus, o.ETA, ansi.Truncate(o.Address, 16, ""), o.DistanceKm, partner, issue)
	}
	if id, ok := a.selectedOrder(); ok {
		if q, err := a.console.OrderPayout(id); err == nil {
			out += fmt.Sprintf("\nPartner payout for %s: %s\n", id, payout.Format(a.cfg.UI.CurrencySymbol, q.Amount))
		}
	}
	return out + "\n" + mutedStyle.Render(hints(a.keys.UpDown, a.keys.Assign, a.keys.Resolve))
}

func (a *App) renderModes() string {
	out := titleStyle.Render("Service Modes") + "\n"
	flags := a.console.Modes.Snapshot()
	for i, f := range modes.All() {
		state := mutedStyle.Render("Disabled")
		if flags.Get(f) {
			state = okStyle.Render("Enabled")
		}
		out += fmt.Sprintf("[%d] %-9s %s\n", i+1, f, state)
	}
	return out + "\n" + mutedStyle.Render(hints(a.keys.Modes))
}

func (a *App) rateLine() string {
	r := a.console.Rates
	sym := a.cfg.UI.CurrencySymbol
	return fmt.Sprintf("Base %s%s + %s%s/km beyond %s km.", sym, r.Base.String(), sym, r.PerKm.String(), r.FreeRadiusKm.String())
}

func (a *App) renderPayout() string {
	out := titleStyle.Render("Partner Payment Calculator") + "\n"
	distance := a.distance
	if distance == "" {
		distance = "-"
	}
	amount := payout.Format(a.cfg.UI.CurrencySymbol, decimal.Zero)
	if a.quote != nil {
		amount = payout.Format(a.cfg.UI.CurrencySymbol, a.quote.Amount)
	}
	out += fmt.Sprintf("Distance: %s km\nCalculated amount: %s\n", distance, amount)
	out += mutedStyle.Render(a.rateLine()) + "\n"
	return out + "\n" + mutedStyle.Render(hints(a.keys.Edit))
}

func (a *App) renderAdminWallet() string {
	out := titleStyle.Render("Wallet & Top-ups") + "\n"
	user := a.topUpUser
	if user == "" {
		user = "-"
	}
	out += fmt.Sprintf("Username: %s\nAmount: %s\n", user, a.amountLabel())
	out += a.renderLink()
	out += "\nRecent top-ups\n" + a.renderEntries(a.console.TopUps)
	return out + "\n" + mutedStyle.Render(hints(a.keys.Username, a.keys.Edit, a.keys.Submit))
}

func (a *App) amountLabel() string {
	if a.topUpAmount == "" {
		return "-"
	}
	return a.cfg.UI.CurrencySymbol + a.topUpAmount
}

func (a *App) renderLink() string {
	if a.link == "" {
		return ""
	}
	return "Send via chat: " + a.link + "\n"
}

func (a *App) renderEntries(entries []wallet.Entry) string {
	if len(entries) == 0 {
		return mutedStyle.Render("No entries.") + "\n"
	}
	out := ""
	for _, e := range entries {
		sign, style := "+", okStyle
		if !e.Credit() {
			sign, style = "-", warnStyle
		}
		amount := style.Render(sign + a.cfg.UI.CurrencySymbol + e.Amount.Abs().String())
		out += fmt.Sprintf("  %-16s %-16s %s\n", ansi.Truncate(e.Account, 16, ""), e.At, amount)
	}
	return out
}

func (a *App) renderUser() string {
	l := a.console.Ledger
	out := titleStyle.Render("My Wallet") + "\n"
	out += fmt.Sprintf("Signed in as %s\nCurrent balance: %s %s\n", a.cfg.UI.Username, a.cfg.UI.CurrencySymbol, l.Balance.String())
	out += "Services: " + a.availableServices() + "\n"
	out += fmt.Sprintf("Top-up amount: %s\n", a.amountLabel())
	out += a.renderLink()
	out += "\n" + titleStyle.Render("Recent Transactions") + "\n" + a.renderEntries(l.Entries)
	return out + "\n" + mutedStyle.Render(hints(a.keys.Edit, a.keys.Submit, a.keys.NextRole, a.keys.Quit))
}

func (a *App) availableServices() string {
	var on []string
	for _, f := range modes.All() {
		if enabled, err := a.console.Modes.Enabled(f); err == nil && enabled {
			on = append(on, string(f))
		}
	}
	if len(on) == 0 {
		return "none"
	}
	return strings.Join(on, ", ")
}

func (a *App) renderRestaurant() string {
	out := a.renderListings(true) + "\n\n" + titleStyle.Render("Guidelines") + "\n"
	for _, g := range guidelines {
		out += "• " + g + "\n"
	}
	return out + "\n" + mutedStyle.Render(hints(a.keys.NextRole, a.keys.Quit))
}

func (a *App) renderPartner() string {
	out := titleStyle.Render("Delivery Verification") + "\n"
	if a.session == nil {
		return out + "No active session."
	}
	snap := a.session.Snapshot()
	out += "Enter 4-digit code shared with customer\n"
	slots := make([]string, 0, verification.CodeLength)
	for i, d := range snap.Digits {
		if d == "" {
			d = " "
		}
		style := slotStyle
		if i == a.slot {
			style = cursorSlot
		}
		slots = append(slots, style.Render(d))
	}
	out += lipgloss.JoinHorizontal(lipgloss.Top, slots...) + "\n"
	out += "Time left: " + snap.Countdown() + "   "
	if snap.State() == verification.Expired {
		out += okStyle.Render("Resend available")
	} else {
		out += mutedStyle.Render("Resend disabled")
	}
	out += "\n\n" + titleStyle.Render("My Earnings (sample)") + "\n"
	d := a.cfg.UI.SampleDistanceKm
	if q, err := a.console.Rates.Quote(d); err == nil {
		out += fmt.Sprintf("Distance: %s km   Amount: %s\n", decimal.NewFromFloat(d).String(), payout.Format(a.cfg.UI.CurrencySymbol, q.Amount))
	}
	out += mutedStyle.Render(a.rateLine()) + "\n"
	return out + "\n" + mutedStyle.Render(hints(a.keys.Digit, a.keys.Backspace, a.keys.Move, a.keys.Resend, a.keys.NextRole, a.keys.Quit))
}

func (a *App) renderActivity() string {
	out := titleStyle.Render("Activity") + "\n"
	if f := a.activityFilter; f.Entity != "" || f.Outcome != "" {
		out += mutedStyle.Render(fmt.Sprintf("Showing %s%s, outcome %s",
			orAll(f.Entity), idSuffix(f.EntityID), orAll(f.Outcome))) + "\n"
	}
	if len(a.activity) == 0 {
		out += "No activity yet.\n"
	}
	for _, r := range a.activity {
		outcome := okStyle.Render(r.Outcome)
		if r.Outcome != apperr.KindOK {
			outcome = warnStyle.Render(r.Outcome)
		}
		out += fmt.Sprintf("%s  %-8s %-10s %-16s %s  %s\n",
			r.CreatedAt.Format("15:04:05"), r.Entity, ansi.Truncate(r.EntityID, 10, ""), r.Action, outcome,
			ansi.Truncate(r.Detail, 40, ""))
	}
	return out + "\n" + mutedStyle.Render(hints(a.keys.Filter, a.keys.Outcome, a.keys.Clear, a.keys.Reload, a.keys.ClearLog))
}

func orAll(v string) string {
	if v == "" {
		return "all"
	}
	return v
}

func idSuffix(id string) string {
	if id == "" {
		return ""
	}
	return " " + id
}
