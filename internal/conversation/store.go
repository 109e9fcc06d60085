// Package conversation holds the ordered chat transcript and the side table
// of inline order-form state. The two live together so a full-session clear
// can empty both in one step, and so form state survives any re-render of
// the transcript.
package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raphaelgruber/shopchat/internal/orderform"
)

// Role classifies a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// Message is one immutable transcript entry. Text is the display text after
// directive extraction.
type Message struct {
	ID        int
	Role      Role
	Text      string
	CreatedAt time.Time
}

// Store is the append-only transcript plus the per-request-id form table.
// All methods are safe for concurrent use; in practice everything runs on
// the UI event loop and the only concurrency is snapshot reads.
type Store struct {
	mu       sync.Mutex
	nextID   int
	messages []Message
	forms    map[string]orderform.State
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{forms: make(map[string]orderform.State)}
}

// Append inserts a message at the end of the transcript and returns it.
// IDs increase monotonically within the session; entries are never
// reordered or mutated afterwards.
func (s *Store) Append(role Role, text string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	msg := Message{
		ID:        s.nextID,
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
	s.messages = append(s.messages, msg)
	return msg
}

// Messages returns a snapshot of the transcript in creation order.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len reports the number of transcript entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// GetOrInitForm returns the form state for requestID, creating the default
// state (one line pre-filled from the directive, idle, not submitting) on
// first sight. Calling it again never resets an already-edited form; the
// prefill only applies at creation.
func (s *Store) GetOrInitForm(requestID, prefillProduct string) orderform.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.forms[requestID]
	if !ok {
		st = orderform.NewState(prefillProduct)
		s.forms[requestID] = st
	}
	return snapshot(st)
}

// PatchForm shallow-merges the patch into the state for requestID and
// returns the result. A patch against an unseen requestID initializes the
// default state first. Succeeded forms are permanent and ignore patches.
func (s *Store) PatchForm(requestID string, p orderform.Patch) orderform.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.forms[requestID]
	if !ok {
		st = orderform.NewState("")
	}
	st.Apply(p)
	st = snapshot(st) // own the items, not the caller's slice
	s.forms[requestID] = st
	return snapshot(st)
}

// PurgeFunc asks the remote service to drop session-scoped memory.
type PurgeFunc func(ctx context.Context) error

// Clear empties the transcript and the form table in one step, then reports
// the outcome of the remote purge. The local clear always proceeds: the
// local state is the source of truth for what the user sees, and a failed
// purge only warrants a non-blocking warning.
func (s *Store) Clear(ctx context.Context, purge PurgeFunc) error {
	s.mu.Lock()
	s.messages = nil
	s.forms = make(map[string]orderform.State)
	s.mu.Unlock()

	if purge == nil {
		return nil
	}
	if err := purge(ctx); err != nil {
		return fmt.Errorf("clear remote history: %w", err)
	}
	return nil
}

// snapshot deep-copies the mutable Items slice so callers cannot alias the
// stored state.
func snapshot(st orderform.State) orderform.State {
	items := make([]orderform.Line, len(st.Items))
	copy(items, st.Items)
	st.Items = items
	return st
}
