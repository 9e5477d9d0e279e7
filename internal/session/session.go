// Package session tracks which lookup a chat's next free-text message belongs to.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/looplab/fsm"
)

// Mode is the pending lookup of a chat
type Mode int

const (
	None Mode = iota
	AwaitingID
	AwaitingName
)

func (m Mode) String() string {
	switch m {
	case AwaitingID:
		return stateAwaitingID
	case AwaitingName:
		return stateAwaitingName
	default:
		return stateNone
	}
}

// FSM states and events
const (
	stateNone         = "none"
	stateAwaitingID   = "awaiting_id"
	stateAwaitingName = "awaiting_name"

	eventAwaitID   = "await_id"
	eventAwaitName = "await_name"
	eventConsume   = "consume"
)

var allStates = []string{stateNone, stateAwaitingID, stateAwaitingName}

func newMachine() *fsm.FSM {
	return fsm.NewFSM(
		stateNone,
		fsm.Events{
			{Name: eventAwaitID, Src: allStates, Dst: stateAwaitingID},
			{Name: eventAwaitName, Src: allStates, Dst: stateAwaitingName},
			{Name: eventConsume, Src: []string{stateAwaitingID, stateAwaitingName}, Dst: stateNone},
		},
		fsm.Callbacks{},
	)
}

func modeOf(state string) Mode {
	switch state {
	case stateAwaitingID:
		return AwaitingID
	case stateAwaitingName:
		return AwaitingName
	default:
		return None
	}
}

// Tracker holds one state machine per chat with a pending prompt.
// Chats without an entry are in None.
type Tracker struct {
	mu    sync.Mutex
	chats map[int64]*fsm.FSM
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		chats: make(map[int64]*fsm.FSM),
	}
}

// Set arms the chat with the given mode, replacing any previous one.
// Setting None is the same as Clear.
func (t *Tracker) Set(chatID int64, mode Mode) error {
	var event string
	switch mode {
	case AwaitingID:
		event = eventAwaitID
	case AwaitingName:
		event = eventAwaitName
	case None:
		t.Clear(chatID)
		return nil
	default:
		return fmt.Errorf("unknown session mode %d", mode)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	machine, ok := t.chats[chatID]
	if !ok {
		machine = newMachine()
		t.chats[chatID] = machine
	}

	// re-arming the same mode is not a transition for the FSM
	if err := machine.Event(context.Background(), event); err != nil && !isNoTransition(err) {
		return fmt.Errorf("failed to set session mode %s: %w", mode, err)
	}
	return nil
}

// Take returns the pending mode and resets the chat to None in one step
func (t *Tracker) Take(chatID int64) Mode {
	t.mu.Lock()
	defer t.mu.Unlock()

	machine, ok := t.chats[chatID]
	if !ok {
		return None
	}
	delete(t.chats, chatID)

	mode := modeOf(machine.Current())
	if mode != None {
		_ = machine.Event(context.Background(), eventConsume)
	}
	return mode
}

// Peek returns the pending mode without consuming it
func (t *Tracker) Peek(chatID int64) Mode {
	t.mu.Lock()
	defer t.mu.Unlock()

	machine, ok := t.chats[chatID]
	if !ok {
		return None
	}
	return modeOf(machine.Current())
}

// Clear drops any pending mode for the chat
func (t *Tracker) Clear(chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.chats, chatID)
}

// Pending returns the number of chats waiting for input
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.chats)
}

func isNoTransition(err error) bool {
	var noTransition fsm.NoTransitionError
	return errors.As(err, &noTransition)
}
