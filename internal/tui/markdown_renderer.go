package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minMarkdownWidth keeps glamour from wrapping note bodies into slivers.
const minMarkdownWidth = 24

// markdownRenderer renders note bodies for the detail pane and memoizes the last result.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer

	lastSource string
	lastOut    string
}

// render returns body as styled terminal text, or body unchanged when glamour fails.
func (r *markdownRenderer) render(body string, width int) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	wrap := max(minMarkdownWidth, width)
	if r.renderer == nil || r.width != wrap {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return body
		}
		r.renderer = renderer
		r.width = wrap
		r.lastSource = ""
	}
	if r.lastSource == body && r.lastOut != "" {
		return r.lastOut
	}

	out, err := r.renderer.Render(body)
	if err != nil {
		return body
	}
	out = strings.Trim(out, "\n")
	r.lastSource, r.lastOut = body, out
	return out
}
