package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxVisibleRows = 15

// Terminal shows the candidates as a table in the terminal.
// Enter downloads the highlighted row; q, esc or ctrl+c declines.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

// NewTerminal creates a picker reading keys from in and drawing to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

func (t *Terminal) Present(ctx context.Context, req Request) <-chan Selection {
	out := make(chan Selection, 1)
	go func() {
		defer close(out)
		out <- t.run(ctx, req)
	}()
	return out
}

func (t *Terminal) run(ctx context.Context, req Request) Selection {
	if len(req.Candidates) == 0 {
		return Selection{}
	}

	program := tea.NewProgram(newPickModel(req),
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)
	final, err := program.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, tea.ErrProgramKilled) {
			return Selection{Err: ctxErr}
		}
		return Selection{Err: fmt.Errorf("picker failed: %w", err)}
	}

	m, ok := final.(pickModel)
	if !ok || !m.chosen {
		return Selection{}
	}
	return selected(req, m.index)
}

// pickModel is the bubbletea model behind Terminal.
type pickModel struct {
	title  string
	table  table.Model
	chosen bool
	index  int
	done   bool
}

func newPickModel(req Request) pickModel {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Version", Width: 40},
		{Title: "Quality", Width: 8},
		{Title: "Downloads", Width: 10},
		{Title: "Language", Width: 12},
	}

	rows := make([]table.Row, 0, len(req.Candidates))
	versionWidth := columns[1].Width
	for i, c := range req.Candidates {
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			c.Version,
			c.Quality.String(),
			strconv.Itoa(c.Downloads),
			c.Language,
		})
		versionWidth = max(versionWidth, lipgloss.Width(c.Version))
	}
	columns[1].Width = min(versionWidth, 70)

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows), maxVisibleRows)+1),
		table.WithStyles(tableStyles()),
	)
	return pickModel{title: req.Title, table: t}
}

func (m pickModel) Init() tea.Cmd {
	return nil
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			m.chosen = true
			m.index = m.table.Cursor()
			m.done = true
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m pickModel) View() string {
	if m.done {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.title),
		frameStyle.Render(m.table.View()),
		helpStyle.Render("↑/↓ move • enter download • q skip"),
	) + "\n"
}
