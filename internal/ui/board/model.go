// Package board implements the live payout board shown by 'pwt watch'.
package board

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/Tiliavir/paywindow-tracker/internal/changes"
	"github.com/Tiliavir/paywindow-tracker/internal/ledger"
	"github.com/Tiliavir/paywindow-tracker/internal/model"
	"github.com/Tiliavir/paywindow-tracker/internal/timecalc"
	"github.com/Tiliavir/paywindow-tracker/internal/ui/theme"
)

// LoadedMsg carries a fresh snapshot of the payout state.
type LoadedMsg struct {
	Blocks  []model.PaidBlock
	Current timecalc.PayWindow
	Total   decimal.Decimal
	Err     error
}

// ChangedMsg is sent when the ledger reports a committed change.
type ChangedMsg changes.Event

// TickMsg triggers a periodic reload.
type TickMsg time.Time

// ToggledMsg reports the outcome of a paid/unpaid change.
type ToggledMsg struct {
	WindowEndDate string
	Err           error
}

type errMsg struct{ err error }

// Model is the payout board.
type Model struct {
	ledger *ledger.Ledger
	sub    *changes.Subscription
	poll   time.Duration
	keys   KeyMap
	help   help.Model

	blocks  []model.PaidBlock
	current timecalc.PayWindow
	total   decimal.Decimal
	cursor  int
	err     error
	loaded  bool
}

// New creates a board reading from l. It subscribes to both collections;
// poll is the interval at which the board also reloads unprompted, to pick
// up writes from other processes.
func New(l *ledger.Ledger, poll time.Duration) Model {
	h := help.New()
	h.Styles.ShortKey = theme.HelpStyle.Bold(true)
	h.Styles.ShortDesc = theme.HelpStyle
	h.Styles.FullKey = theme.HelpStyle.Bold(true)
	h.Styles.FullDesc = theme.HelpStyle
	return Model{
		ledger: l,
		sub:    l.Subscribe(changes.WorkEntries, changes.PaidBlocks),
		poll:   poll,
		keys:   DefaultKeyMap(),
		help:   h,
	}
}

// Close releases the change subscription.
func (m Model) Close() {
	m.sub.Close()
}

// Init loads the first snapshot and starts listening for changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForChange(), m.tick())
}

// Update handles messages for the board.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case LoadedMsg:
		m.loaded = true
		m.err = msg.Err
		if msg.Err == nil {
			m.blocks = msg.Blocks
			m.current = msg.Current
			m.total = msg.Total
		}
		if m.cursor >= len(m.blocks) {
			m.cursor = max(len(m.blocks)-1, 0)
		}
		return m, nil

	case ChangedMsg:
		return m, tea.Batch(m.load(), m.waitForChange())

	case TickMsg:
		return m, tea.Batch(m.load(), m.tick())

	case ToggledMsg:
		m.err = msg.Err
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.blocks)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			if b, ok := m.Selected(); ok {
				return m, m.toggle(b.WindowEndDate, !b.IsPaid)
			}
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refreshAll()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

// Selected returns the block under the cursor.
func (m Model) Selected() (model.PaidBlock, bool) {
	if m.cursor < 0 || m.cursor >= len(m.blocks) {
		return model.PaidBlock{}, false
	}
	return m.blocks[m.cursor], true
}

// View renders the board.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.HeaderStyle.Render("Pay windows"))
	b.WriteString("\n\n")

	if !m.loaded {
		b.WriteString(theme.MutedStyle.Render("Loading…"))
		b.WriteString("\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Current  %s  %s  payday %s\n\n",
		timecalc.FormatRange(m.current),
		timecalc.FormatHours(m.total),
		timecalc.FormatShort(m.current.Payday))

	if len(m.blocks) == 0 {
		b.WriteString(theme.MutedStyle.Render("No pay windows yet. Add hours with 'pwt add'."))
		b.WriteString("\n")
	}
	for i, blk := range m.blocks {
		b.WriteString(m.row(i, blk))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(theme.ErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) row(i int, blk model.PaidBlock) string {
	status := theme.UnpaidStyle.Render("unpaid")
	if blk.IsPaid {
		status = theme.PaidStyle.Render("paid  ")
	}

	window := blk.WindowEndDate
	if w, err := timecalc.WindowForKey(blk.WindowEndDate); err == nil {
		window = timecalc.FormatRange(w)
	}

	line := fmt.Sprintf("%s  %-24s %7s  %s", blk.PaydayDate, window, timecalc.FormatHours(blk.TotalHours), status)
	if i == m.cursor {
		return theme.SelectedRowStyle.Render("> " + line)
	}
	return "  " + line
}

func (m Model) load() tea.Cmd {
	l := m.ledger
	return func() tea.Msg {
		ctx := context.Background()
		blocks, err := l.PayoutStatus(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		current := l.CurrentWindow()
		total, err := l.WindowTotal(ctx, current.Key)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		return LoadedMsg{Blocks: blocks, Current: current, Total: total}
	}
}

func (m Model) waitForChange() tea.Cmd {
	sub := m.sub
	return func() tea.Msg {
		ev, ok := <-sub.C
		if !ok {
			return nil
		}
		return ChangedMsg(ev)
	}
}

func (m Model) tick() tea.Cmd {
	if m.poll <= 0 {
		return nil
	}
	return tea.Tick(m.poll, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) toggle(windowEndDate string, paid bool) tea.Cmd {
	l := m.ledger
	return func() tea.Msg {
		err := l.SetPaid(context.Background(), windowEndDate, paid)
		return ToggledMsg{WindowEndDate: windowEndDate, Err: err}
	}
}

func (m Model) refreshAll() tea.Cmd {
	l := m.ledger
	return func() tea.Msg {
		if _, err := l.RefreshAll(context.Background()); err != nil {
			return errMsg{err}
		}
		return nil
	}
}
