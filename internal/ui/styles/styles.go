package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/compatctl/internal/compat"
)

// Color palette - coherent with charmbracelet style
var (
	Primary = lipgloss.Color("#7D56F4") // Purple (charmbracelet brand)
	Success = lipgloss.Color("#50FA7B")
	Warning = lipgloss.Color("#FFB86C")
	Error   = lipgloss.Color("#FF5555")
	Muted   = lipgloss.Color("#6272A4")
	Text    = lipgloss.Color("#F8F8F2")
	Subtle  = lipgloss.Color("#44475A")
)

// Base styles
var (
	NormalText = lipgloss.NewStyle().
			Foreground(Text)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	SuccessText = lipgloss.NewStyle().
			Foreground(Success)

	WarningText = lipgloss.NewStyle().
			Foreground(Warning)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)

	Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Subtle).
		Padding(0, 1)

	Help = lipgloss.NewStyle().
		Foreground(Muted)

	Spinner = lipgloss.NewStyle().
		Foreground(Primary)
)

// Symbols
var (
	CheckMark = lipgloss.NewStyle().Foreground(Success).SetString("✓")
	CrossMark = lipgloss.NewStyle().Foreground(Error).SetString("✗")
)

// Detail table styles
var (
	AddonName = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	AddonVersion = lipgloss.NewStyle().
			Foreground(Muted)

	AddonNote = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	ColumnHeader = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
)

// Badge renders the badge text on its badge color, the way the host toolbar
// would show it. Empty text renders as a blank chip.
func Badge(text, color string) string {
	if text == "" {
		text = " "
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(color)).
		Bold(true).
		Padding(0, 1).
		Render(text)
}

// Cell renders one channel cell of the detail table.
func Cell(c compat.Cell) string {
	switch c.State {
	case compat.CellCompatible:
		return SuccessText.Render("✓ " + c.ExtVersion)
	case compat.CellExperimentOnly:
		return WarningText.Render("✓ " + c.ExtVersion + "*")
	case compat.CellIncompatible:
		return ErrorText.Render("✗")
	default:
		return MutedText.Render("-")
	}
}

// FormatSuccess formats a success message
func FormatSuccess(msg string) string {
	return CheckMark.String() + " " + SuccessText.Render(msg)
}

// FormatError formats an error message
func FormatError(msg string) string {
	return CrossMark.String() + " " + ErrorText.Render(msg)
}

// FormatWarning formats a warning message
func FormatWarning(msg string) string {
	return WarningText.Render("! " + msg)
}
