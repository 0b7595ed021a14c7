package badge

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/compatctl/internal/ui/styles"
)

// Badge messages sent by ProgramSink.
type (
	TextMsg    string
	ColorMsg   string
	EnabledMsg bool
)

// Model shows the badge, a spinner while it is disabled, and when it last changed.
type Model struct {
	spinner spinner.Model
	text    string
	color   string
	enabled bool
	info    string
	updated time.Time
	now     func() time.Time
}

// NewModel returns a model seeded with the last persisted badge.
func NewModel(text, color string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return Model{
		spinner: s,
		text:    text,
		color:   color,
		enabled: true,
		now:     time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TextMsg:
		m.text = string(msg)
		m.updated = m.now()

	case ColorMsg:
		m.color = string(msg)
		m.updated = m.now()

	case EnabledMsg:
		m.enabled = bool(msg)

	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	line := styles.Badge(m.text, m.color)
	if !m.enabled {
		line = lipgloss.JoinHorizontal(lipgloss.Center, line, " ", m.spinner.View(), styles.MutedText.Render(" checking"))
	}
	b.WriteString(styles.Box.Render(line))
	b.WriteString("\n")

	if m.info != "" {
		b.WriteString(styles.NormalText.Render(m.info))
		b.WriteString("\n")
	}
	if !m.updated.IsZero() {
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("updated %s", m.updated.Format("15:04:05"))))
		b.WriteString("\n")
	}
	b.WriteString(styles.Help.Render("q quit"))
	b.WriteString("\n")
	return b.String()
}

// WithInfo sets the status line shown under the badge.
func (m Model) WithInfo(info string) Model {
	m.info = info
	return m
}

// Text returns the badge text currently displayed.
func (m Model) Text() string { return m.text }

// Color returns the badge color currently displayed.
func (m Model) Color() string { return m.color }

// Enabled reports whether the badge accepts interaction.
func (m Model) Enabled() bool { return m.enabled }
