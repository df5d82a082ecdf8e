// Package tui is the terminal gallery: a strip of card thumbnails panned
// left and right, with rename, save and reset on the loaded card.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"resource-cards/internal/card"
)

func Run(ctx context.Context, root *card.Card, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()
	m := newAppModel(ctx, root, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
