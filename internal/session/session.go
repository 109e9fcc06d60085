// Package session provides the client-side session identity attached to
// every chat request so the remote service can keep per-session
// conversational memory. A session is not a security boundary and does not
// survive process restarts.
package session

import (
	"fmt"
	"time"
)

// Prefix is shared with the original web front-end so server-side session
// stores treat both clients alike.
const Prefix = "session_"

// New returns a fresh opaque session identifier, one per process.
func New() string {
	return fmt.Sprintf("%s%d", Prefix, time.Now().UnixMilli())
}
