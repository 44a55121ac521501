package storyflow

import (
	"context"
	"errors"
	"sync"
)

// API is the server surface the machine drives. Implementations translate
// segments to and from the HTTP payloads.
type API interface {
	// StartStory creates a story from an initial prompt and returns its id
	// and first segment.
	StartStory(ctx context.Context, prompt string) (storyID string, segment *Segment, err error)
	// GenerateStory creates a story from a genre and optional custom prompt.
	GenerateStory(ctx context.Context, genre, customPrompt string) (storyID string, segment *Segment, err error)
	// ContinueStory advances the story by one segment from a choice.
	ContinueStory(ctx context.Context, storyID string, choice Choice) (*Segment, error)
}

var (
	// ErrBusy is returned when an operation is attempted while a
	// generation is already in flight. One in-flight generation at a time.
	ErrBusy = errors.New("a generation is already in progress")
	// ErrNoSession is returned when starting a story without an
	// authenticated session.
	ErrNoSession = errors.New("sign in to create stories")
	// ErrNoStory is returned when making a choice before any story exists.
	ErrNoStory = errors.New("no active story")
)

// Machine tracks which segment the user is looking at and the back-navigable
// history behind it. Failed operations leave the visible state untouched and
// only set the error message, so the user can retry.
//
// GoBack is a pure client-side undo: the persisted chapter log is not
// touched, so after going back the server log and the client view diverge
// until the next choice. The next choice always appends after the server's
// latest chapter, not after the segment currently displayed;
// DivergedFromServer reports when that is about to happen.
type Machine struct {
	mu         sync.Mutex
	api        API
	authorized bool
	storyID    string
	state      State
	popped     int
}

// NewMachine creates a machine over the given API client.
func NewMachine(api API) *Machine {
	return &Machine{api: api}
}

// SetAuthorized records whether an authenticated session exists. Starting a
// story requires it.
func (m *Machine) SetAuthorized(authorized bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authorized = authorized
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.state
	snapshot.History = append([]Segment(nil), m.state.History...)
	return snapshot
}

// StoryID returns the identifier of the active story, if any.
func (m *Machine) StoryID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storyID
}

// CanGoBack reports whether backward navigation is possible.
func (m *Machine) CanGoBack() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.History) > 0
}

// DivergedFromServer reports whether the displayed segment is behind the
// persisted log because of backward navigation. The next choice will discard
// the displayed branch.
func (m *Machine) DivergedFromServer() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.popped > 0
}

// StartNewStory creates a fresh story from a prompt. On success the history
// is reset and the first segment becomes current. On failure the previous
// segment stays on screen and only the error message changes.
func (m *Machine) StartNewStory(ctx context.Context, prompt string) error {
	if err := m.begin(true); err != nil {
		return err
	}

	storyID, segment, err := m.api.StartStory(ctx, prompt)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Generating = false
	if err != nil {
		m.state.Err = err.Error()
		return err
	}

	m.storyID = storyID
	m.state.Current = segment
	m.state.History = nil
	m.popped = 0
	return nil
}

// StartGeneratedStory creates a fresh story from a genre via the external
// generator. Same state transitions as StartNewStory.
func (m *Machine) StartGeneratedStory(ctx context.Context, genre, customPrompt string) error {
	if err := m.begin(true); err != nil {
		return err
	}

	storyID, segment, err := m.api.GenerateStory(ctx, genre, customPrompt)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Generating = false
	if err != nil {
		m.state.Err = err.Error()
		return err
	}

	m.storyID = storyID
	m.state.Current = segment
	m.state.History = nil
	m.popped = 0
	return nil
}

// MakeChoice advances the story. On success the superseded segment is pushed
// onto the history and the new one becomes current. On failure neither the
// current segment nor the history changes.
func (m *Machine) MakeChoice(ctx context.Context, choice Choice) error {
	m.mu.Lock()
	if m.state.Generating {
		m.mu.Unlock()
		return ErrBusy
	}
	if m.state.Current == nil || m.storyID == "" {
		m.mu.Unlock()
		return ErrNoStory
	}
	m.state.Generating = true
	m.state.Err = ""
	storyID := m.storyID
	m.mu.Unlock()

	segment, err := m.api.ContinueStory(ctx, storyID, choice)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Generating = false
	if err != nil {
		m.state.Err = err.Error()
		return err
	}

	m.state.History = append(m.state.History, *m.state.Current)
	m.state.Current = segment
	m.popped = 0
	return nil
}

// GoBack pops the most recent history entry into the current position. It is
// a no-op when the history is empty and never talks to the server.
func (m *Machine) GoBack() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.state.History) == 0 {
		return false
	}

	last := m.state.History[len(m.state.History)-1]
	m.state.History = m.state.History[:len(m.state.History)-1]
	m.state.Current = &last
	m.popped++
	return true
}

// begin flips the generating flag, rejecting concurrent operations.
func (m *Machine) begin(needsSession bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Generating {
		return ErrBusy
	}
	if needsSession && !m.authorized {
		m.state.Err = ErrNoSession.Error()
		return ErrNoSession
	}
	m.state.Generating = true
	m.state.Err = ""
	return nil
}
