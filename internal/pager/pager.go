// Package pager is an interactive viewer for rendered content. It
// re-renders on terminal resize and, when following, on file changes.
package pager

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/termtext"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/watcher"
)

// RenderFunc produces the content for a given column budget. It is called
// on start, on resize and after each followed change.
type RenderFunc func(width int) string

// statusHeight is the number of rows reserved for the status line.
const statusHeight = 1

// ChangeMsg carries a followed file change into the model.
type ChangeMsg watcher.Change

type keyMap struct {
	Quit   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

var keys = keyMap{
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
	Top:    key.NewBinding(key.WithKeys("g", "home")),
	Bottom: key.NewBinding(key.WithKeys("G", "end")),
}

// Model is the bubbletea model for the pager.
type Model struct {
	title   string
	render  RenderFunc
	palette *theme.Palette
	logger  *slog.Logger
	changes <-chan watcher.Change

	viewport viewport.Model
	ready    bool
	width    int
	removed  bool
	reloads  int
}

// Option configures a Model.
type Option func(*Model)

// WithChanges makes the pager re-render whenever ch delivers a change.
func WithChanges(ch <-chan watcher.Change) Option {
	return func(m *Model) {
		m.changes = ch
	}
}

// WithColor enables styling of the status line.
func WithColor(color bool) Option {
	return func(m *Model) {
		m.palette = theme.For(color)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a pager model titled title.
func New(title string, render RenderFunc, opts ...Option) Model {
	m := Model{
		title:   title,
		render:  render,
		palette: theme.For(false),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts listening for followed changes.
func (m Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

// Update handles input, resize and change messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, keys.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		height := max(msg.Height-statusHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		if msg.Width != m.width {
			m.width = msg.Width
			m.refresh()
		}
		return m, nil

	case ChangeMsg:
		m.removed = msg.Removed
		if !msg.Removed {
			m.reloads++
			m.logger.Debug("followed file changed; re-rendering", "path", msg.Path)
			m.refresh()
		}
		return m, waitForChange(m.changes)
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// refresh re-renders at the current width and keeps the scroll offset
// within the new content.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	offset := m.viewport.YOffset
	atBottom := m.viewport.AtBottom() && offset > 0

	m.viewport.SetContent(m.render(m.width))

	if atBottom {
		m.viewport.GotoBottom()
		return
	}
	m.viewport.SetYOffset(offset)
}

// View renders the viewport and the status line.
func (m Model) View() string {
	if !m.ready {
		return "loading…"
	}
	return m.viewport.View() + "\n" + m.statusLine()
}

func (m Model) statusLine() string {
	right := fmt.Sprintf(" %3.0f%%", m.viewport.ScrollPercent()*100)
	switch {
	case m.removed:
		right = " [removed]" + right
	case m.changes != nil:
		right = " [following]" + right
	}

	left := termtext.Truncate(m.title, max(m.width-termtext.Width(right), 1))
	gap := max(m.width-termtext.Width(left)-termtext.Width(right), 0)
	line := left + fmt.Sprintf("%*s", gap, "") + right
	return m.palette.Paint(theme.Dim, line)
}

// Reloads returns how many followed changes triggered a re-render.
func (m Model) Reloads() int {
	return m.reloads
}

func waitForChange(ch <-chan watcher.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return ChangeMsg(c)
	}
}

// Run shows the pager full screen until the user quits or ctx is done.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run pager; %w", err)
	}
	return nil
}
