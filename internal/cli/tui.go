package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/erdsync/pkg/dsl"
	"github.com/matzehuels/erdsync/pkg/editor"
	"github.com/matzehuels/erdsync/pkg/pipeline"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDirtyStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Key Bindings
// =============================================================================

// moverKeyMap defines key bindings for the node mover.
type moverKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	North   key.Binding
	South   key.Binding
	Finer   key.Binding
	Coarser key.Binding
	Release key.Binding
	Pin     key.Binding
	Copy    key.Binding
	Quit    key.Binding
}

var moverKeys = moverKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev node")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next node")),
	Left:    key.NewBinding(key.WithKeys("a", "left"), key.WithHelp("a", "left")),
	Right:   key.NewBinding(key.WithKeys("d", "right"), key.WithHelp("d", "right")),
	North:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "up")),
	South:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "down")),
	Finer:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "smaller step")),
	Coarser: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "bigger step")),
	Release: key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "write position")),
	Pin:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin all")),
	Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy text")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

const (
	defaultMoveStep = 10.0
	minMoveStep     = 1.0
	maxMoveStep     = 160.0
)

// =============================================================================
// MoverModel - Interactive node positioning
// =============================================================================

// MoverModel is the bubbletea model for moving nodes of one document. Moves
// are drags on the editor's live model; enter releases the selected node,
// which writes its line and saves the file.
type MoverModel struct {
	ed    *editor.Editor
	parse dsl.Options
	name  string
	save  func(text string) error
	copy  func(text string) error
	snap  editor.Snapshot
	dirty map[string]bool

	Cursor int
	Offset int
	Height int
	Step   float64
	Status string
}

// NewMoverModel returns a mover over ed. parse must match the editor's
// parse options; save persists released text.
func NewMoverModel(ed *editor.Editor, name string, parse dsl.Options, save func(string) error) *MoverModel {
	return &MoverModel{
		ed:     ed,
		parse:  parse,
		name:   name,
		save:   save,
		copy:   clipboard.WriteAll,
		snap:   ed.Flush(),
		dirty:  make(map[string]bool),
		Height: 15,
		Step:   defaultMoveStep,
	}
}

func (m *MoverModel) Init() tea.Cmd {
	return nil
}

func (m *MoverModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, moverKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, moverKeys.Up):
			m.moveCursor(-1)
		case key.Matches(msg, moverKeys.Down):
			m.moveCursor(1)
		case key.Matches(msg, moverKeys.Left):
			m.nudge(-m.Step, 0)
		case key.Matches(msg, moverKeys.Right):
			m.nudge(m.Step, 0)
		case key.Matches(msg, moverKeys.North):
			m.nudge(0, -m.Step)
		case key.Matches(msg, moverKeys.South):
			m.nudge(0, m.Step)
		case key.Matches(msg, moverKeys.Finer):
			m.Step = max(m.Step/2, minMoveStep)
		case key.Matches(msg, moverKeys.Coarser):
			m.Step = min(m.Step*2, maxMoveStep)
		case key.Matches(msg, moverKeys.Release):
			m.release()
		case key.Matches(msg, moverKeys.Pin):
			m.pin()
		case key.Matches(msg, moverKeys.Copy):
			if err := m.copy(m.ed.Text()); err != nil {
				m.Status = "clipboard: " + err.Error()
			} else {
				m.Status = "copied document"
			}
		}
	}
	return m, nil
}

func (m *MoverModel) moveCursor(delta int) {
	n := len(m.snap.Model.Nodes)
	if n == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), n-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// selected returns the id under the cursor, or "".
func (m *MoverModel) selected() string {
	if m.Cursor < 0 || m.Cursor >= len(m.snap.Model.Nodes) {
		return ""
	}
	return m.snap.Model.Nodes[m.Cursor].ID
}

func (m *MoverModel) nudge(dx, dy float64) {
	id := m.selected()
	if id == "" {
		return
	}
	n := m.snap.Model.NodeByID(id)
	if !m.ed.Drag(id, n.X+dx, n.Y+dy) {
		return
	}
	m.dirty[id] = true
	m.snap = m.ed.Snapshot()
	m.Status = ""
}

func (m *MoverModel) release() {
	id := m.selected()
	if id == "" || !m.dirty[id] {
		return
	}
	if !m.ed.Release(id) {
		m.Status = fmt.Sprintf("%s: declaring line is gone", id)
		return
	}
	delete(m.dirty, id)
	m.commit(fmt.Sprintf("wrote %s", id))
}

func (m *MoverModel) pin() {
	text, n := pipeline.Pin(m.ed.Text(), m.parse)
	if n == 0 {
		m.Status = "nothing to pin"
		return
	}
	m.ed.SetText(text)
	m.commit(fmt.Sprintf("pinned %d nodes", n))
}

// commit reparses, saves and keeps unreleased drags on screen.
func (m *MoverModel) commit(status string) {
	pending := make(map[string][2]float64, len(m.dirty))
	for id := range m.dirty {
		if n := m.snap.Model.NodeByID(id); n != nil {
			pending[id] = [2]float64{n.X, n.Y}
		}
	}
	m.snap = m.ed.Flush()
	for id, p := range pending {
		m.ed.Drag(id, p[0], p[1])
	}
	if len(pending) > 0 {
		m.snap = m.ed.Snapshot()
	}

	if err := m.save(m.snap.Text); err != nil {
		m.Status = "save failed: " + err.Error()
		return
	}
	m.Status = status
}

func (m *MoverModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("erdsync · " + m.name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(helpLine(
		moverKeys.Up, moverKeys.Down, moverKeys.North, moverKeys.Left, moverKeys.South, moverKeys.Right,
		moverKeys.Release, moverKeys.Pin, moverKeys.Copy, moverKeys.Quit)))
	b.WriteString("\n\n")

	nodes := m.snap.Model.Nodes
	end := min(m.Offset+m.Height, len(nodes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := ""
		if m.dirty[n.ID] {
			mark = "●"
		}
		rows = append(rows, []string{cursor, n.ID, string(n.Kind), fmt.Sprintf("%g", n.X), fmt.Sprintf("%g", n.Y), mark})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Kind", "X", "Y", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(nodes) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.dirty[nodes[idx].ID]:
				return listDirtyStyle
			case nodes[idx].Placed && (col == 3 || col == 4):
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  step %g", m.Cursor+1, len(nodes), m.Step)))
	if len(m.snap.Ignored) > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d ignored lines", len(m.snap.Ignored))))
	}
	if m.Status != "" {
		b.WriteString("\n  " + StyleHighlight.Render(m.Status))
	}
	return b.String()
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

// =============================================================================
// Command
// =============================================================================

func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui FILE",
		Short: "Move diagram nodes interactively and write positions back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runTUI(ctx context.Context, path string) error {
	if path == "-" {
		return fmt.Errorf("tui needs a file to write back to")
	}
	text, err := readDocument(path)
	if err != nil {
		return err
	}
	cfg, err := c.config()
	if err != nil {
		return err
	}

	parse := dsl.Options{Layout: cfg.LayoutConfig()}
	ed := editor.New(text, editor.Options{
		Debounce: cfg.Debounce(),
		Parse:    parse,
		Logger:   loggerFromContext(ctx),
		Source:   "tui",
	})
	defer ed.Close()

	m := NewMoverModel(ed, displayName(path), parse, func(text string) error {
		return writeDocument(path, text)
	})
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
