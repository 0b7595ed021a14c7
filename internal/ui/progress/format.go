package progress

import (
	"fmt"
	"io"

	"github.com/bnema/compatctl/internal/ui/styles"
)

// Printer writes styled step lines. The zero value is not usable; use NewPrinter.
type Printer struct {
	w io.Writer
}

// NewPrinter returns a Printer writing to w (usually the command's stdout).
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Step prints a step with the icon and styling of its state.
func (p *Printer) Step(state State, message string) {
	_, _ = fmt.Fprintln(p.w, FormatStep(state, message))
}

// InProgress prints an in-progress step (without spinner animation)
func (p *Printer) InProgress(message string) {
	p.Step(StateInProgress, message)
}

func (p *Printer) Complete(message string) {
	p.Step(StateComplete, message)
}

func (p *Printer) Error(message string) {
	p.Step(StateError, message)
}

func (p *Printer) Warning(message string) {
	_, _ = fmt.Fprintln(p.w, FormatWarning(message))
}

// Title prints a bold header followed by a blank line.
func (p *Printer) Title(title string) {
	_, _ = fmt.Fprintf(p.w, "%s\n\n", styles.NormalText.Bold(true).Render(title))
}

// Detail prints an indented muted line under the previous step.
func (p *Printer) Detail(detail string) {
	_, _ = fmt.Fprintf(p.w, "      %s\n", styles.MutedText.Render(detail))
}

// FormatStep returns a formatted step string
func FormatStep(state State, message string) string {
	icon := StyledIcon(state)
	textStyle := StepStyle(state)
	return fmt.Sprintf("  %s %s", icon, textStyle.Render(message))
}

// FormatWarning returns a formatted warning string
func FormatWarning(message string) string {
	icons := GetIcons()
	icon := IconStyleWarning.Render(icons.Warning)
	return fmt.Sprintf("  %s %s", icon, styles.WarningText.Render(message))
}
