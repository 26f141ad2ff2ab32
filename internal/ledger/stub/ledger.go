// Package stub provides a recording Dispatcher for tests.
package stub

import (
	"context"
	"errors"
	"sync"

	"bridge-port/internal/ledger"
)

// Dispatcher records every submitted dispatch and can simulate host failures.
type Dispatcher struct {
	mu         sync.Mutex
	dispatches []ledger.Dispatch

	// SubmitErr, when set, is returned by every Submit call.
	SubmitErr error
}

// NewDispatcher creates a new recording dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Submit records the dispatch.
func (d *Dispatcher) Submit(_ context.Context, dispatch ledger.Dispatch) error {
	if d.SubmitErr != nil {
		return d.SubmitErr
	}
	if _, err := dispatch.Op.Type(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.dispatches = append(d.dispatches, dispatch)
	return nil
}

// Dispatches returns a copy of everything submitted so far.
func (d *Dispatcher) Dispatches() []ledger.Dispatch {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ledger.Dispatch(nil), d.dispatches...)
}

// Last returns the most recent dispatch.
func (d *Dispatcher) Last() (ledger.Dispatch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.dispatches) == 0 {
		return ledger.Dispatch{}, errors.New("no dispatches recorded")
	}
	return d.dispatches[len(d.dispatches)-1], nil
}

// Reset forgets all recorded dispatches.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dispatches = nil
}

// CallbackFor builds the completion callback the host would deliver for a
// recorded WithCallback dispatch.
func CallbackFor(d ledger.Dispatch, outcome ledger.Outcome, hostErr string) ledger.Callback {
	return ledger.Callback{
		DispatchID: d.ID,
		Kind:       d.Kind,
		Outcome:    outcome,
		Error:      hostErr,
		Payload:    d.Payload,
	}
}

var _ ledger.Dispatcher = (*Dispatcher)(nil)
