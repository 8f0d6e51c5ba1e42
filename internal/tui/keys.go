package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	NextRole  key.Binding
	PrevPane  key.Binding
	NextPane  key.Binding
	UpDown    key.Binding
	Search    key.Binding
	Filter    key.Binding
	Approve   key.Binding
	Reject    key.Binding
	Toggle    key.Binding
	Map       key.Binding
	History   key.Binding
	Outcome   key.Binding
	Assign    key.Binding
	Resolve   key.Binding
	Modes     key.Binding
	Edit      key.Binding
	Username  key.Binding
	Submit    key.Binding
	Resend    key.Binding
	Move      key.Binding
	Clear     key.Binding
	ClearLog  key.Binding
	Cancel    key.Binding
	Reload    key.Binding
	Digit     key.Binding
	Backspace key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		NextRole:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next role")),
		PrevPane:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev pane")),
		NextPane:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next pane")),
		UpDown:    key.NewBinding(key.WithKeys("up", "down", "k", "j"), key.WithHelp("j/k", "navigate")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Approve:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
		Reject:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reject")),
		Toggle:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open/closed")),
		Map:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "map link")),
		History:   key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		Outcome:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "outcome")),
		Assign:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "assign partner")),
		Resolve:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resolve issue")),
		Modes:     key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1-3", "toggle mode")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Username:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "username")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "build link")),
		Resend:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "resend code")),
		Move:      key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "move")),
		Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear search")),
		ClearLog:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear journal")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Reload:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "reload")),
		Digit:     key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9", "digit")),
		Backspace: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "clear digit")),
	}
}

// hints renders bindings the way the footer shows them: [k] help.
func hints(bindings ...key.Binding) string {
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += "  "
		}
		h := b.Help()
		out += "[" + h.Key + "] " + h.Desc
	}
	return out
}
