// Package directive recognizes the machine-readable token the assistant
// embeds in otherwise human-readable answer text to request an inline order
// form, and provides the display-text enrichment applied after extraction.
package directive

import (
	"regexp"
	"strings"
)

// Directive identifies the order form a single assistant message spawns.
type Directive struct {
	// RequestID correlates the message with exactly one form's state.
	RequestID string

	// PrefillProduct, when non-empty, pre-populates the first order line.
	PrefillProduct string
}

// tokenRe matches [SHOW_ORDER_FORM:<requestId>] and
// [SHOW_ORDER_FORM:<requestId>|<productName>]. The request id contains
// neither '|' nor ']'; the product name contains no ']'.
var tokenRe = regexp.MustCompile(`\[SHOW_ORDER_FORM:([^|\]]+)(?:\|([^\]]*))?\]`)

// Parse extracts the order-form token from raw assistant text. It returns
// the text with the token removed (surrounding whitespace trimmed) and the
// directive, or nil when no token is present.
//
// If the text somehow carries multiple tokens only the first is honored;
// later occurrences are left in the display text untouched, matching the
// single-match behavior of the web client.
//
// Parse is pure and deterministic.
func Parse(text string) (string, *Directive) {
	loc := tokenRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return strings.TrimSpace(text), nil
	}

	d := &Directive{
		RequestID: text[loc[2]:loc[3]],
	}
	if loc[4] >= 0 {
		d.PrefillProduct = text[loc[4]:loc[5]]
	}

	display := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	return display, d
}
