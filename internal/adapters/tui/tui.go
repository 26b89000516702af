// Package tui is an interactive terminal reader built on bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/gamebook/internal/ports/primary"
)

type sessionState int

const (
	stateLoading sessionState = iota
	stateReading
	stateError
	stateClosing
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	imageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	choiceStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	selectedStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true)

	endStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D75FAF")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
)

// Model is the bubbletea model of one reading session.
type Model struct {
	ctx     context.Context
	service primary.ReaderService
	userID  string
	bookID  int

	state    sessionState
	reader   *primary.ReaderState
	cursor   int
	busy     bool
	err      error
	notice   string
	spinner  spinner.Model
	viewport viewport.Model
	width    int
	height   int
}

// NewModel creates the model for userID reading bookID.
func NewModel(ctx context.Context, service primary.ReaderService, userID string, bookID int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		service:  service,
		userID:   userID,
		bookID:   bookID,
		state:    stateLoading,
		spinner:  sp,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
}

// Run starts the interactive reader and blocks until the reader quits.
func Run(ctx context.Context, service primary.ReaderService, userID string, bookID int) error {
	p := tea.NewProgram(NewModel(ctx, service, userID, bookID), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

type stateMsg struct {
	state *primary.ReaderState
	err   error
}

type closedMsg struct {
	err error
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		state, err := m.service.GetState(m.ctx, m.userID, m.bookID)
		return stateMsg{state: state, err: err}
	}
}

func (m Model) choose(idx int) tea.Cmd {
	choice := m.reader.AvailableChoices[idx]
	return func() tea.Msg {
		state, err := m.service.Choose(m.ctx, primary.ChooseRequest{
			UserID:   m.userID,
			BookID:   m.bookID,
			TargetID: choice.Target,
			Text:     choice.Text,
		})
		return stateMsg{state: state, err: err}
	}
}

func (m Model) restart() tea.Cmd {
	return func() tea.Msg {
		state, err := m.service.Restart(m.ctx, m.userID, m.bookID)
		return stateMsg{state: state, err: err}
	}
}

func (m Model) close() tea.Cmd {
	return func() tea.Msg {
		return closedMsg{err: m.service.Close(m.ctx, m.userID, m.bookID)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-8, 3)
		m.refresh()
		return m, nil

	case stateMsg:
		m.busy = false
		if msg.err != nil && msg.state == nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.reader = msg.state
		m.cursor = 0
		m.notice = ""
		if msg.err != nil {
			// The transition failed but the session still has a state to show.
			m.notice = msg.err.Error()
		}
		if m.reader.Error != "" {
			m.state = stateError
			m.err = fmt.Errorf("%s", m.reader.Error)
			return m, nil
		}
		m.state = stateReading
		m.refresh()
		m.viewport.GotoTop()
		return m, nil

	case closedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		if m.state != stateLoading && !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		if m.state == stateReading {
			m.state = stateClosing
			return m, m.close()
		}
		return m, tea.Quit
	}

	if m.state != stateReading || m.busy {
		return m, nil
	}

	n := len(m.reader.AvailableChoices)
	switch key := msg.String(); key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case "enter", " ":
		if n > 0 {
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, m.choose(m.cursor))
		}
	case "r":
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, m.restart())
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			idx := int(key[0] - '1')
			if idx < n {
				m.busy = true
				m.cursor = idx
				return m, tea.Batch(m.spinner.Tick, m.choose(idx))
			}
		}
	}
	return m, nil
}

// refresh re-renders the entry text into the viewport.
func (m *Model) refresh() {
	if m.reader == nil || m.reader.CurrentEntry == nil {
		return
	}
	width := max(m.viewport.Width-2, 20)
	var b strings.Builder
	for _, para := range m.reader.CurrentEntry.Text {
		b.WriteString(textStyle.Width(width).Render(para))
		b.WriteString("\n\n")
	}
	if m.reader.ImageURL != "" {
		alt := m.reader.ImageAltText
		if alt == "" {
			alt = "illustration"
		}
		b.WriteString(imageStyle.Render("[" + alt + "] " + m.reader.ImageURL))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
}

func (m Model) View() string {
	switch m.state {
	case stateLoading:
		return fmt.Sprintf("\n  %s Opening book %d...\n", m.spinner.View(), m.bookID)
	case stateError:
		return "\n  " + errorStyle.Render(m.err.Error()) + "\n\n  " + helpStyle.Render("q: quit") + "\n"
	case stateClosing:
		return "\n  Saving your place...\n"
	}

	var b strings.Builder
	if m.reader.Title != "" {
		b.WriteString(titleStyle.Render(m.reader.Title))
		b.WriteString("\n\n")
	}
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	switch {
	case m.reader.IsTerminal:
		b.WriteString(endStyle.Render("THE END"))
		b.WriteString("\n")
	case len(m.reader.AvailableChoices) == 0:
		b.WriteString(helpStyle.Render("No choices are available from here."))
		b.WriteString("\n")
	default:
		for i, c := range m.reader.AvailableChoices {
			line := fmt.Sprintf("%d) %s", i+1, c.Text)
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString(choiceStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	if m.busy {
		b.WriteString("\n" + m.spinner.View() + " ")
	} else {
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice) + "\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ select • enter choose • 1-9 jump • r restart • q close"))
	return b.String()
}
