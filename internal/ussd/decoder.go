// Package ussd implements the stateless session core: path decoding, the
// menu step table, the state machine and the two-prefix reply rendering.
//
// The gateway resends the whole dialed path on every request, so each
// request re-derives the conversation position from the path alone. Nothing
// in this package holds per-session state.
package ussd

import "strings"

// PathDelimiter separates the user's answers inside the cumulative text.
const PathDelimiter = "*"

// SplitPath decodes the cumulative session text into ordered tokens.
// The empty string means first contact and decodes to no tokens. Splitting
// is purely syntactic; meaning is assigned by DeriveStep and the machine.
func SplitPath(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, PathDelimiter)
}
