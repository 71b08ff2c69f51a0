package session

import (
	"strings"
	"sync"
)

// Transcript accumulates incremental transcript fragments per role until
// a turn-complete signal resets both. The most recently appended role is
// the active one for display. State is owned here, not in handler-scoped
// variables, so it survives across callback invocations without hidden
// globals.
type Transcript struct {
	mu     sync.Mutex
	user   strings.Builder
	model  strings.Builder
	active Role
}

// NewTranscript creates an empty accumulator with the user role active.
func NewTranscript() *Transcript {
	return &Transcript{active: RoleUser}
}

// Append adds a fragment to the role's buffer, marks that role active
// and returns the role's full accumulated text.
func (t *Transcript) Append(role Role, text string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = role
	b := t.buffer(role)
	b.WriteString(text)
	return b.String()
}

// ActiveRole returns the most recently appended role.
func (t *Transcript) ActiveRole() Role {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// ActiveText returns the full text of the active role.
func (t *Transcript) ActiveText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buffer(t.active).String()
}

// Text returns the accumulated text for a role.
func (t *Transcript) Text(role Role) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buffer(role).String()
}

// Reset clears both buffers. Called on turn completion and on session
// teardown.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.user.Reset()
	t.model.Reset()
	t.active = RoleUser
}

func (t *Transcript) buffer(role Role) *strings.Builder {
	if role == RoleModel {
		return &t.model
	}
	return &t.user
}
