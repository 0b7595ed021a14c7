// Package badge renders the toolbar badge outside the host: as log lines for
// the daemon, or as a small bubbletea view on a terminal.
package badge

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// LogSink records badge transitions and logs each one.
type LogSink struct {
	log *log.Logger

	mu      sync.Mutex
	text    string
	color   string
	enabled bool
}

func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{log: logger, enabled: true}
}

func (s *LogSink) SetText(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
	s.log.Info("Badge text", "text", text)
}

func (s *LogSink) SetColor(color string) {
	s.mu.Lock()
	s.color = color
	s.mu.Unlock()
	s.log.Debug("Badge color", "color", color)
}

func (s *LogSink) Enable() {
	s.mu.Lock()
	s.enabled = true
	s.mu.Unlock()
	s.log.Debug("Badge enabled")
}

func (s *LogSink) Disable() {
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()
	s.log.Debug("Badge disabled")
}

// State returns the last text and color and whether the badge is enabled.
func (s *LogSink) State() (text, color string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text, s.color, s.enabled
}

// Sender is the part of *tea.Program a ProgramSink needs.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramSink forwards badge updates to a running bubbletea program.
type ProgramSink struct {
	p Sender
}

func NewProgramSink(p Sender) *ProgramSink {
	return &ProgramSink{p: p}
}

func (s *ProgramSink) SetText(text string)   { s.p.Send(TextMsg(text)) }
func (s *ProgramSink) SetColor(color string) { s.p.Send(ColorMsg(color)) }
func (s *ProgramSink) Enable()               { s.p.Send(EnabledMsg(true)) }
func (s *ProgramSink) Disable()              { s.p.Send(EnabledMsg(false)) }
