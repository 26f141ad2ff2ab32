// Package engine implements the bridge saga engine: directive processing,
// inbound mint tickets, outbound redemption sequencing, and the continuation
// handler that resumes multi-step workflows from host ledger callbacks.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"bridge-port/internal/domain"
	"bridge-port/internal/idhash"
	"bridge-port/internal/ledger"
	"bridge-port/internal/observability"
	"bridge-port/internal/storage"
)

// Engine drives the bridge ledger. Invocations are sequential and
// transactional: each handler mutates a cloned root record and the clone is
// committed only when the handler succeeds.
type Engine struct {
	states     storage.StateStore
	tickets    storage.TicketRequestStore
	dispatcher ledger.Dispatcher

	// selfAddr is the engine's own host-ledger account. It owns the factory
	// denoms and holds assets mid-transmute.
	selfAddr string

	now    func() time.Time
	height func(ctx context.Context) (uint64, error)
	logger *log.Logger
}

// Options for creating an Engine.
type Options struct {
	// Required.
	StateStore         storage.StateStore
	TicketRequestStore storage.TicketRequestStore
	Dispatcher         ledger.Dispatcher
	SelfAddr           string

	// Optional.
	Now    func() time.Time                           // defaults to time.Now
	Height func(ctx context.Context) (uint64, error)  // defaults to 0
	Logger *log.Logger                                // defaults to log.Default
}

// New creates an Engine.
func New(opts Options) *Engine {
	e := &Engine{
		states:     opts.StateStore,
		tickets:    opts.TicketRequestStore,
		dispatcher: opts.Dispatcher,
		selfAddr:   opts.SelfAddr,
		now:        opts.Now,
		height:     opts.Height,
		logger:     opts.Logger,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.height == nil {
		e.height = func(context.Context) (uint64, error) { return 0, nil }
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	return e
}

// Response is the outcome of a successful invocation: the events emitted and
// the operations dispatched to the host ledger.
type Response struct {
	Events     []domain.Event
	Dispatches []ledger.Dispatch

	// tickets drawn during the invocation, persisted after the state commit
	// and before any dispatch is submitted.
	tickets []*domain.OutboundTicketRequest
}

func (r *Response) emit(e domain.Event) {
	r.Events = append(r.Events, e)
}

// Init creates the root record. Fails with ErrAlreadyInitialized if one exists.
func (e *Engine) Init(ctx context.Context, route, admin string, chainID domain.ChainID, chainKey []byte) (*Response, error) {
	if _, err := e.states.Load(ctx); err == nil {
		return nil, ErrAlreadyInitialized
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("load state: %w", err)
	}

	st := domain.NewState(route, admin, chainID, chainKey)
	if err := e.states.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	resp := &Response{}
	resp.emit(domain.NewEvent(domain.EventInitialized,
		"route", route,
		"chain_id", string(chainID),
	))
	e.logger.Printf("Initialized: chain_id=%s route=%s", chainID, route)
	return resp, nil
}

// invoke runs one transactional invocation: load, clone, handle, commit.
// The handler's tentative mutations are discarded on any error. Ticket
// records are persisted after the state commit (the drawn sequence survives
// either way, gaps are accepted) and dispatch submission runs last so the
// dedup markers are durable before the host sees the operation.
func (e *Engine) invoke(ctx context.Context, fn func(s *domain.State, resp *Response) error) (*Response, error) {
	st, err := e.states.Load(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("load state: %w", err)
	}

	resp := &Response{}
	if err := fn(st, resp); err != nil {
		return nil, err
	}

	if err := e.states.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	for _, req := range resp.tickets {
		if err := e.tickets.Insert(ctx, req); err != nil {
			return nil, fmt.Errorf("persist ticket request seq %d: %w", req.Seq, err)
		}
	}

	for _, d := range resp.Dispatches {
		opType, _ := d.Op.Type()
		err := e.dispatcher.Submit(ctx, d)
		observability.RecordDispatch(opType, err)
		if err != nil {
			return nil, fmt.Errorf("submit %s dispatch: %w", opType, err)
		}
	}

	return resp, nil
}

// view runs a read-only invocation.
func (e *Engine) view(ctx context.Context, fn func(s *domain.State) error) error {
	st, err := e.states.Load(ctx)
	if err != nil {
		if isNotFound(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("load state: %w", err)
	}
	return fn(st)
}

// newDispatch builds a dispatch with a deterministic id and an encoded
// continuation payload.
func newDispatch(mode ledger.DispatchMode, kind ledger.CallbackKind, op ledger.Op, payload interface{}) (ledger.Dispatch, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return ledger.Dispatch{}, fmt.Errorf("encode continuation payload: %w", err)
		}
		raw = data
	}

	opType, err := op.Type()
	if err != nil {
		return ledger.Dispatch{}, err
	}

	return ledger.Dispatch{
		ID:      idhash.ComputeDispatchID(string(kind), opType, raw),
		Mode:    mode,
		Kind:    kind,
		Op:      op,
		Payload: raw,
	}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
