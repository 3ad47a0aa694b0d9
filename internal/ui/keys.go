package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding

	// Cards
	Add        key.Binding
	Delete     key.Binding
	Refetch    key.Binding
	TogglePoll key.Binding
	Find       key.Binding
	Left       key.Binding
	Right      key.Binding

	// Find input
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),

		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add card"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete card"),
		),
		Refetch: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refetch"),
		),
		TogglePoll: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Toggle polling"),
		),
		Find: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Find by name"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "k"),
			key.WithHelp("←/k", "Previous card"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "j"),
			key.WithHelp("→/j", "Next card"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Delete, k.Refetch, k.TogglePoll, k.Find, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right},
		{k.Add, k.Delete, k.Find},
		{k.Refetch, k.TogglePoll},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
