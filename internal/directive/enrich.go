package directive

import (
	"fmt"
	"regexp"
	"strings"
)

// Renderer supplies the markup for each enrichment. The chat screen passes
// lipgloss-backed functions; tests pass markers; PlainRenderer suits plain
// stdout output.
type Renderer struct {
	// Link renders a navigable reference with a human label.
	Link func(label, url string) string

	// Bold renders emphasized text.
	Bold func(text string) string

	// LineBreak replaces each newline in the source text.
	LineBreak string
}

// PlainRenderer renders enrichments as unstyled text.
func PlainRenderer() Renderer {
	return Renderer{
		Link: func(label, url string) string {
			if label == url {
				return url
			}
			return fmt.Sprintf("%s (%s)", label, url)
		},
		Bold:      func(text string) string { return text },
		LineBreak: "\n",
	}
}

var (
	markdownLinkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	boldRe         = regexp.MustCompile(`\*\*(.*?)\*\*`)

	// rawURLRe deliberately excludes the placeholder delimiter so already
	// rendered segments are never wrapped twice.
	rawURLRe = regexp.MustCompile(`https?://[^\s\x00]+`)
)

// trailingPunct is sentence punctuation excluded from a clickable URL span.
const trailingPunct = ".,;!?)"

// Enrich applies the display-text transforms in the same order as the web
// client: markdown links first, then bold, then line breaks, then raw URLs.
// Markdown links are resolved before the raw-URL pass so a URL consumed by a
// link is not wrapped a second time.
//
// Enrich is pure; all styling lives in the Renderer.
func Enrich(text string, r Renderer) string {
	if text == "" {
		return ""
	}

	// Rendered segments are swapped for placeholders until the end so later
	// passes cannot see (or re-transform) their contents.
	var rendered []string
	protect := func(s string) string {
		rendered = append(rendered, s)
		return fmt.Sprintf("\x00%d\x00", len(rendered)-1)
	}

	out := markdownLinkRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := markdownLinkRe.FindStringSubmatch(m)
		return protect(r.Link(parts[1], parts[2]))
	})

	out = boldRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := boldRe.FindStringSubmatch(m)
		return protect(r.Bold(parts[1]))
	})

	out = strings.ReplaceAll(out, "\n", r.LineBreak)

	out = rawURLRe.ReplaceAllStringFunc(out, func(url string) string {
		suffix := ""
		if len(url) > 0 && strings.ContainsRune(trailingPunct, rune(url[len(url)-1])) {
			suffix = url[len(url)-1:]
			url = url[:len(url)-1]
		}
		return protect(r.Link(url, url)) + suffix
	})

	// Later segments may nest earlier placeholders (a link inside bold), so
	// restore newest first.
	for i := len(rendered) - 1; i >= 0; i-- {
		out = strings.ReplaceAll(out, fmt.Sprintf("\x00%d\x00", i), rendered[i])
	}
	return out
}
