package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PanLeft  key.Binding
	PanRight key.Binding
	Next     key.Binding
	Prev     key.Binding
	Edit     key.Binding
	Save     key.Binding
	Reset    key.Binding
	Help     key.Binding
	Quit     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PanLeft:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan left")),
		PanRight: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan right")),
		Next:     key.NewBinding(key.WithKeys("tab", "j"), key.WithHelp("tab/j", "next card")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab", "k"), key.WithHelp("S-tab/k", "prev card")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit name")),
		Save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PanLeft, k.PanRight, k.Edit, k.Save, k.Reset, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PanLeft, k.PanRight, k.Next, k.Prev},
		{k.Edit, k.Save, k.Reset},
		{k.Help, k.Quit},
	}
}
