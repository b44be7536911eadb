package pager

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/watcher"
)

func numbered(n int) RenderFunc {
	return func(width int) string {
		lines := make([]string, n)
		for i := range lines {
			lines[i] = fmt.Sprintf("w%d line %d", width, i+1)
		}
		return strings.Join(lines, "\n")
	}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_NotReadyBeforeSize(t *testing.T) {
	m := New("notes.md", numbered(3))
	if got := m.View(); got != "loading…" {
		t.Errorf("View() = %q, want loading placeholder", got)
	}
}

func TestModel_ResizeRerenders(t *testing.T) {
	calls := []int{}
	render := func(width int) string {
		calls = append(calls, width)
		return fmt.Sprintf("width %d", width)
	}

	m := New("notes.md", render)
	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(m.View(), "width 40") {
		t.Errorf("View() = %q, want content rendered at 40", m.View())
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 12})
	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 12})
	if !strings.Contains(m.View(), "width 60") {
		t.Errorf("View() = %q, want content rendered at 60", m.View())
	}

	if len(calls) != 2 || calls[0] != 40 || calls[1] != 60 {
		t.Errorf("render calls = %v, want [40 60] (height-only resize skips)", calls)
	}
}

func TestModel_StatusLine(t *testing.T) {
	m := New("notes.md", numbered(50))
	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})

	lines := strings.Split(m.View(), "\n")
	status := lines[len(lines)-1]
	if !strings.HasPrefix(status, "notes.md") {
		t.Errorf("status = %q, want title first", status)
	}
	if !strings.HasSuffix(status, "  0%") {
		t.Errorf("status = %q, want scroll percent", status)
	}
	if len(status) != 40 {
		t.Errorf("status width = %d, want 40", len(status))
	}
	if strings.Contains(status, "\x1b[") {
		t.Error("status line has escapes without color")
	}
}

func TestModel_Keys(t *testing.T) {
	m := New("notes.md", numbered(50))
	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	if !m.viewport.AtBottom() {
		t.Error("G should scroll to the bottom")
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	if !m.viewport.AtTop() {
		t.Error("g should scroll to the top")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_FollowedChange(t *testing.T) {
	version := 1
	render := func(width int) string { return fmt.Sprintf("version %d", version) }

	ch := make(chan watcher.Change, 1)
	m := New("notes.md", render, WithChanges(ch))
	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 5})

	if !strings.Contains(m.View(), "[following]") {
		t.Errorf("status should show following, got %q", m.View())
	}

	version = 2
	next, cmd := m.Update(ChangeMsg{Path: "/tmp/notes.md", Hash: "abc"})
	m = next.(Model)
	if !strings.Contains(m.View(), "version 2") {
		t.Errorf("View() = %q, want re-rendered content", m.View())
	}
	if m.Reloads() != 1 {
		t.Errorf("Reloads() = %d, want 1", m.Reloads())
	}
	if cmd == nil {
		t.Fatal("change should re-arm the listener")
	}

	ch <- watcher.Change{Path: "/tmp/notes.md", Removed: true}
	msg := cmd()
	m = update(t, m, msg)
	if !strings.Contains(m.View(), "[removed]") {
		t.Errorf("status should show removed, got %q", m.View())
	}
	if m.Reloads() != 1 {
		t.Errorf("Reloads() = %d, removal should not re-render", m.Reloads())
	}
}

func TestModel_InitWithoutFollow(t *testing.T) {
	if cmd := New("x", numbered(1)).Init(); cmd != nil {
		t.Error("Init() should return nil without a change channel")
	}
}

func TestModel_ColorStatus(t *testing.T) {
	m := New("notes.md", numbered(3), WithColor(true))
	m = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 5})
	if !strings.Contains(m.View(), "\x1b[") {
		t.Error("status line should be styled with color")
	}
}
