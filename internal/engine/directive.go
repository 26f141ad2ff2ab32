package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"bridge-port/internal/domain"
	"bridge-port/internal/observability"
	"bridge-port/internal/sigverify"
)

// DirectiveSignBytes returns the canonical bytes a governance directive is
// signed over. Clients sign exactly these bytes with the chain key.
func DirectiveSignBytes(seq uint64, d domain.Directive) ([]byte, error) {
	msg := struct {
		Seq       uint64           `json:"seq"`
		Directive domain.Directive `json:"directive"`
	}{Seq: seq, Directive: d}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode directive sign bytes: %w", err)
	}
	return data, nil
}

// ExecDirective applies a governance configuration change. Directives are
// strictly exactly-once: a replayed sequence fails with
// ErrDirectiveAlreadyHandled and leaves state unchanged.
func (e *Engine) ExecDirective(ctx context.Context, sender string, seq uint64, d domain.Directive, sig []byte) (*Response, error) {
	return e.invoke(ctx, func(s *domain.State, resp *Response) error {
		if !s.IsGovernance(sender) {
			return ErrUnauthorized
		}

		if len(s.ChainKey) > 0 {
			msg, err := DirectiveSignBytes(seq, d)
			if err != nil {
				return err
			}
			if err := sigverify.Verify(s.ChainKey, msg, sig); err != nil {
				return fmt.Errorf("directive %d: %w", seq, err)
			}
		}

		if s.HandledDirectives[seq] {
			return fmt.Errorf("%w: seq %d", ErrDirectiveAlreadyHandled, seq)
		}

		kind, err := d.Kind()
		if err != nil {
			return err
		}

		switch kind {
		case domain.DirectiveAddToken:
			dispatches, err := e.registerToken(s, *d.AddToken)
			if err != nil {
				return err
			}
			resp.Dispatches = append(resp.Dispatches, dispatches...)

		case domain.DirectiveUpdateToken:
			dispatches, err := e.upsertToken(s, *d.UpdateToken)
			if err != nil {
				return err
			}
			resp.Dispatches = append(resp.Dispatches, dispatches...)

		case domain.DirectiveAddChain, domain.DirectiveUpdateChain:
			c := d.AddChain
			if c == nil {
				c = d.UpdateChain
			}
			mergeChain(s, *c)

		case domain.DirectiveToggleChainState:
			if err := toggleChain(s, *d.ToggleChainState); err != nil {
				return err
			}

		case domain.DirectiveUpdateFee:
			if err := updateFee(s, *d.UpdateFee); err != nil {
				return err
			}
		}

		// The dedup marker commits atomically with the application above:
		// both live in the same cloned snapshot.
		s.HandledDirectives[seq] = true

		resp.emit(domain.NewEvent(domain.EventDirectiveExecuted,
			"seq", strconv.FormatUint(seq, 10),
			"kind", string(kind),
		))
		observability.RecordDirectiveApplied(string(kind))
		return nil
	})
}
