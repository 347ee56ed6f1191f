package board

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/paywindow-tracker/internal/ledger"
	"github.com/Tiliavir/paywindow-tracker/internal/model"
	"github.com/Tiliavir/paywindow-tracker/internal/storage/storagetest"
)

func newBoard(t *testing.T) (Model, *ledger.Ledger) {
	t.Helper()
	now := time.Date(2024, 9, 30, 9, 0, 0, 0, time.UTC)
	l := ledger.New(storagetest.New(t), ledger.WithClock(func() time.Time { return now }))

	ctx := context.Background()
	for _, e := range []model.NewEntry{
		{DateISO: "2024-09-21", Hours: decimal.NewFromInt(3), WindowEndDate: "2024-09-27"},
		{DateISO: "2024-09-25", Hours: decimal.NewFromInt(5), WindowEndDate: "2024-09-27"},
		{DateISO: "2024-09-29", Hours: decimal.RequireFromString("6.5"), WindowEndDate: "2024-10-06"},
	} {
		_, err := l.Add(ctx, e)
		require.NoError(t, err)
	}

	m := New(l, 0)
	t.Cleanup(m.Close)
	return m, l
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestBoardLoadsSnapshot(t *testing.T) {
	m, _ := newBoard(t)
	assert.Contains(t, m.View(), "Loading")

	m, _ = update(t, m, m.load()())

	assert.Len(t, m.blocks, 2)
	assert.Equal(t, "2024-10-06", m.current.Key)
	assert.True(t, decimal.RequireFromString("6.5").Equal(m.total))

	view := m.View()
	assert.Contains(t, view, "2024-10-12")
	assert.Contains(t, view, "2024-10-03")
	assert.Contains(t, view, "8.0h")
	assert.Contains(t, view, "unpaid")
}

func TestBoardTogglesSelectedWindow(t *testing.T) {
	m, l := newBoard(t)
	ctx := context.Background()
	m, _ = update(t, m, m.load()())

	// Rows are ordered by payday, latest first; move to the older window.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "2024-09-27", sel.WindowEndDate)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	require.NotNil(t, cmd)
	msg := cmd()
	toggled, ok := msg.(ToggledMsg)
	require.True(t, ok)
	require.NoError(t, toggled.Err)

	b, err := l.Block(ctx, "2024-09-27")
	require.NoError(t, err)
	assert.True(t, b.IsPaid)

	// The committed toggle arrives through the subscription and triggers a
	// reload.
	changed := m.waitForChange()()
	require.IsType(t, ChangedMsg{}, changed)
	m, cmd = update(t, m, changed)
	require.NotNil(t, cmd)

	m, _ = update(t, m, m.load()())
	sel, _ = m.Selected()
	assert.True(t, sel.IsPaid)
}

func TestBoardCursorBounds(t *testing.T) {
	m, _ := newBoard(t)
	m, _ = update(t, m, m.load()())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)
	for range 5 {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 1, m.cursor)
}

func TestBoardQuit(t *testing.T) {
	m, _ := newBoard(t)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBoardToggleClearsError(t *testing.T) {
	m, _ := newBoard(t)
	m, _ = update(t, m, m.load()())

	m, _ = update(t, m, ToggledMsg{WindowEndDate: "2024-09-27", Err: errors.New("database is locked")})
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "database is locked")

	m, _ = update(t, m, ToggledMsg{WindowEndDate: "2024-09-27"})
	assert.NoError(t, m.err)
	assert.NotContains(t, m.View(), "database is locked")
}

func TestBoardHelpUsesTheme(t *testing.T) {
	m, _ := newBoard(t)
	assert.True(t, m.help.Styles.ShortDesc.GetItalic())
	assert.True(t, m.help.Styles.FullDesc.GetItalic())
	assert.True(t, m.help.Styles.ShortKey.GetBold())
}
