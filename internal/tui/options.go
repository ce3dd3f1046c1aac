package tui

import (
	"time"

	charmLog "github.com/charmbracelet/log"
)

// Option configures a Model.
type Option func(*Model)

// WithDefaultView selects the view shown at start ("board", "timeline" or "project").
func WithDefaultView(name string) Option {
	return func(m *Model) {
		m.view = parseView(name)
	}
}

// WithTickInterval sets how often the header refreshes without input.
func WithTickInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.tickInterval = d
		}
	}
}

// WithMarkdown toggles glamour rendering of note bodies in the detail pane.
func WithMarkdown(enabled bool) Option {
	return func(m *Model) {
		m.renderMarkdown = enabled
	}
}

// WithHelpExpanded starts with the full help visible.
func WithHelpExpanded(expanded bool) Option {
	return func(m *Model) {
		m.help.ShowAll = expanded
	}
}

// WithLogger routes save outcomes to logger.
func WithLogger(logger *charmLog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}
