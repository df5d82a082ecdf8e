package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"resource-cards/internal/card"
	"resource-cards/internal/gallery"
	"resource-cards/internal/mutate"
	"resource-cards/internal/observable"
)

// thumbWidth is the width of one card thumbnail, borders included.
const thumbWidth = 24

const frameInterval = 16 * time.Millisecond

type Options struct {
	// Duration of one pan animation; 0 jumps.
	Duration       time.Duration
	ScrollDistance int
}

type frameMsg time.Time

type savedMsg struct {
	pending card.PendingSave
	resp    json.RawMessage
	err     error
}

type appModel struct {
	ctx  context.Context
	root *card.Card
	opts Options

	keys     keyMap
	help     help.Model
	input    textinput.Model
	editing  bool
	showHelp bool

	pan    *observable.Value[gallery.Direction]
	strip  *gallery.Strip
	unbind func()

	selected int
	width    int
	height   int

	status    string
	statusErr bool
}

func newAppModel(ctx context.Context, root *card.Card, opts Options) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	in := textinput.New()
	in.Prompt = "name: "
	in.CharLimit = 200

	m := appModel{
		ctx:   ctx,
		root:  root,
		opts:  opts,
		keys:  defaultKeyMap(),
		help:  help.New(),
		input: in,
		pan:   observable.Undefined[gallery.Direction](),
		strip: gallery.NewStrip(0, 0),
	}
	m.strip.Resize(m.width, m.contentWidth())
	m.unbind = gallery.Bind(m.pan, m.strip, gallery.Options{ScrollDistance: opts.ScrollDistance, Duration: opts.Duration})
	return m
}

// items are the cards shown as thumbnails: the root's children, or the root
// itself when it has none.
func (m appModel) items() []*card.Card {
	if m.root.IsContainer() {
		return m.root.Cards().Items()
	}
	return []*card.Card{m.root}
}

func (m appModel) contentWidth() int {
	return len(m.items()) * thumbWidth
}

func (m appModel) selectedCard() *card.Card {
	items := m.items()
	if m.selected < 0 || m.selected >= len(items) {
		return nil
	}
	return items[m.selected]
}

func (m appModel) Init() tea.Cmd { return nil }

func tickFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m appModel) animate() tea.Cmd {
	if m.strip.Animating() {
		return tickFrame()
	}
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.strip.Resize(m.width, m.contentWidth())
		return m, nil

	case frameMsg:
		if m.strip.Step(time.Time(msg)) {
			return m, tickFrame()
		}
		return m, nil

	case savedMsg:
		res := m.root.FinishSave(msg.pending, msg.resp, msg.err)
		if res.Status == card.SaveError {
			m.setStatus(fmt.Sprintf("save failed: %v", res.Err), true)
		} else {
			m.setStatus("saved", false)
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m appModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.editing = false
		m.input.Blur()
		c := m.selectedCard()
		if c == nil {
			return m, nil
		}
		res, err := mutate.SetCardName(m.root, c.ID(), m.input.Value())
		switch {
		case err != nil:
			m.setStatus(err.Error(), true)
		case res.Changed:
			m.setStatus("renamed", false)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.unbind()
		return m, tea.Quit
	case key.Matches(msg, m.keys.PanLeft):
		m.pan.Set(gallery.Left)
		return m, m.animate()
	case key.Matches(msg, m.keys.PanRight):
		m.pan.Set(gallery.Right)
		return m, m.animate()
	case key.Matches(msg, m.keys.Next):
		return m.selectBy(1)
	case key.Matches(msg, m.keys.Prev):
		return m.selectBy(-1)
	case key.Matches(msg, m.keys.Edit):
		c := m.selectedCard()
		if c == nil {
			return m, nil
		}
		m.editing = true
		m.input.SetValue(c.Name().Get())
		m.input.CursorEnd()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Save):
		p, err := m.root.BeginSave()
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus("saving…", false)
		ctx := m.ctx
		return m, func() tea.Msg {
			resp, err := p.Do(ctx)
			return savedMsg{pending: p, resp: resp, err: err}
		}
	case key.Matches(msg, m.keys.Reset):
		if err := m.root.Reset(); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		if n := len(m.items()); m.selected >= n {
			m.selected = n - 1
		}
		m.strip.Resize(m.width, m.contentWidth())
		m.setStatus("reset to last saved", false)
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	}
	return m, nil
}

// selectBy moves the selection and pans when the new thumbnail is out of view.
func (m appModel) selectBy(delta int) (tea.Model, tea.Cmd) {
	n := len(m.items())
	if n == 0 {
		return m, nil
	}
	m.selected = (m.selected + delta + n) % n
	left := m.selected * thumbWidth
	right := left + thumbWidth
	view := m.strip.Target()
	switch {
	case m.width <= 0:
	case right > view+m.width:
		m.pan.Set(gallery.Right)
	case left < view:
		m.pan.Set(gallery.Left)
	}
	return m, m.animate()
}

func (m *appModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m appModel) View() string {
	if m.width <= 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.stripView())
	b.WriteString("\n\n")
	b.WriteString(m.detailView())
	if m.editing {
		b.WriteString("\n")
		b.WriteString(m.input.View())
	}
	b.WriteString("\n\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Render(displayName(m.root))
	meta := styleMuted().Render(fmt.Sprintf("%d cards", len(m.items())))
	if m.root.Dirty() {
		meta += " " + lipgloss.NewStyle().Foreground(colorDirty).Render("● unsaved")
	}
	if m.root.Saving() {
		meta += " " + styleMuted().Render("saving")
	}
	return truncateToWidth(title+"  "+meta, m.width)
}

func (m appModel) stripView() string {
	items := m.items()
	thumbs := make([]string, 0, len(items))
	for i, c := range items {
		thumbs = append(thumbs, m.thumbView(c, i == m.selected))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, thumbs...)
	lines := strings.Split(row, "\n")
	off := m.strip.Offset()
	for i, ln := range lines {
		lines[i] = xansi.Cut(ln, off, off+m.width)
	}
	return strings.Join(lines, "\n")
}

func (m appModel) thumbView(c *card.Card, selected bool) string {
	border := colorCardBorder
	if selected {
		border = colorSelectedBorder
	}
	inner := thumbWidth - 4
	name := truncateToWidth(displayName(c), inner)
	meta := fmt.Sprintf("#%d · %d widgets", c.SortOrder().Get(), c.Widgets().Len())
	if c.IsContainer() {
		meta += fmt.Sprintf(" · %d cards", c.Cards().Len())
	}
	body := lipgloss.NewStyle().Bold(selected).Render(name) + "\n" + styleMuted().Render(truncateToWidth(meta, inner))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(thumbWidth - 2).
		Render(body)
}

func (m appModel) detailView() string {
	c := m.selectedCard()
	if c == nil {
		return styleMuted().Render("no cards")
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(displayName(c)))
	if v := strings.TrimSpace(c.Instructions().Get()); v != "" {
		b.WriteString("\n")
		b.WriteString(truncateToWidth(v, m.width))
	}
	for _, w := range c.Widgets().Items() {
		b.WriteString("\n  ")
		label := w.Label().Get()
		if w.Disabled().Get() {
			label = styleMuted().Render(label + " (disabled)")
		}
		b.WriteString(truncateToWidth(label+"  "+styleMuted().Render(w.Node().Datatype()), m.width-2))
	}
	if m.showHelp && c.HelpText().Defined() {
		title := c.HelpTitle().Get()
		if title == "" {
			title = "Help"
		}
		md := "## " + title + "\n\n" + c.HelpText().Get()
		b.WriteString("\n\n")
		b.WriteString(renderMarkdown(md, m.width))
	}
	return b.String()
}

func (m appModel) statusView() string {
	if m.status == "" {
		return ""
	}
	st := lipgloss.NewStyle().Foreground(colorAccent)
	if m.statusErr {
		st = lipgloss.NewStyle().Foreground(colorError)
	}
	return st.Render(truncateToWidth(m.status, m.width))
}

func displayName(c *card.Card) string {
	if n := strings.TrimSpace(c.Name().Get()); n != "" {
		return n
	}
	if id := c.ID(); id != "" {
		return id
	}
	return "(untitled)"
}

func truncateToWidth(s string, w int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if w <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= w {
		return s
	}
	if w <= 1 {
		return "…"
	}
	return xansi.Truncate(s, w, "…")
}
