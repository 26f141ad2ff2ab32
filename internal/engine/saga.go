package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"bridge-port/internal/domain"
	"bridge-port/internal/ledger"
	"bridge-port/internal/observability"
)

// OnReply resumes a workflow from a host ledger callback. The callback
// payload is the continuation context attached at dispatch time; which step
// runs next depends only on the callback kind and outcome. Callbacks for
// unknown kinds panic: they mean the dispatch table and the kind enumeration
// drifted apart, which no retry can fix.
func (e *Engine) OnReply(ctx context.Context, cb ledger.Callback) (*Response, error) {
	resp, err := e.invoke(ctx, func(s *domain.State, resp *Response) error {
		observability.RecordSagaStep(string(cb.Kind), string(cb.Outcome))
		switch cb.Kind {
		case ledger.CallbackRedeemBurn:
			return e.onRedeemBurn(cb, resp)
		case ledger.CallbackGenerateTicket:
			return e.onGenerateTicket(cb, resp)
		case ledger.CallbackMintToken:
			return e.onMintToken(s, cb, resp)
		case ledger.CallbackSwapToTarget:
			return e.onSwapToTarget(s, cb, resp)
		case ledger.CallbackSendAfterSwap:
			return e.onSendAfterSwap(cb, resp)
		case ledger.CallbackSwapToSource:
			return e.onSwapToSource(ctx, s, cb, resp)
		default:
			panic(fmt.Sprintf("callback for unknown kind %q (dispatch %s)", cb.Kind, cb.DispatchID))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("handle %s callback: %w", cb.Kind, err)
	}
	return resp, nil
}

func decodePayload(cb ledger.Callback, v interface{}) error {
	if err := json.Unmarshal(cb.Payload, v); err != nil {
		return fmt.Errorf("decode %s continuation payload: %w", cb.Kind, err)
	}
	return nil
}

// onRedeemBurn finishes an outbound redeem or transfer. The durable record
// already exists; the callback only reports whether the burn landed.
func (e *Engine) onRedeemBurn(cb ledger.Callback, resp *Response) error {
	var req domain.OutboundTicketRequest
	if err := decodePayload(cb, &req); err != nil {
		return err
	}

	if cb.Outcome != ledger.OutcomeOk {
		resp.emit(domain.NewEvent(domain.EventRedeemFailed,
			"seq", strconv.FormatUint(req.Seq, 10),
			"token_id", string(req.TokenID),
			"sender", req.Sender,
			"reason", cb.Error,
		))
		return nil
	}

	resp.emit(tokenBurnedEvent(req))
	resp.emit(domain.NewEvent(domain.EventRedeemRequested,
		"seq", strconv.FormatUint(req.Seq, 10),
		"token_id", string(req.TokenID),
		"sender", req.Sender,
		"receiver", req.Receiver,
		"amount", req.Amount.String(),
		"target_chain_id", string(req.TargetChainID),
	))
	resp.emit(ticketRequestedEvent(req))
	return nil
}

// onGenerateTicket finishes a generic outbound transfer.
func (e *Engine) onGenerateTicket(cb ledger.Callback, resp *Response) error {
	var req domain.OutboundTicketRequest
	if err := decodePayload(cb, &req); err != nil {
		return err
	}

	if cb.Outcome != ledger.OutcomeOk {
		resp.emit(domain.NewEvent(domain.EventGenerateTicketFailed,
			"seq", strconv.FormatUint(req.Seq, 10),
			"token_id", string(req.TokenID),
			"sender", req.Sender,
			"reason", cb.Error,
		))
		return nil
	}

	resp.emit(tokenBurnedEvent(req))
	resp.emit(ticketRequestedEvent(req))
	return nil
}

func tokenBurnedEvent(req domain.OutboundTicketRequest) domain.Event {
	return domain.NewEvent(domain.EventTokenBurned,
		"token_id", string(req.TokenID),
		"sender", req.Sender,
		"amount", req.Amount.String(),
	)
}

func ticketRequestedEvent(req domain.OutboundTicketRequest) domain.Event {
	return domain.NewEvent(domain.EventGenerateTicketRequested,
		"seq", strconv.FormatUint(req.Seq, 10),
		"action", string(req.Action),
		"token_id", string(req.TokenID),
		"sender", req.Sender,
		"receiver", req.Receiver,
		"amount", req.Amount.String(),
		"target_chain_id", string(req.TargetChainID),
		"timestamp", strconv.FormatInt(req.Timestamp, 10),
		"memo", req.Memo,
	)
}

// onMintToken finishes a plain mint, or starts the transmute swap. A failed
// mint is terminal: the ticket stays marked handled and the failure is left
// to the host ledger's own records.
func (e *Engine) onMintToken(s *domain.State, cb ledger.Callback, resp *Response) error {
	var p domain.MintTokenPayload
	if err := decodePayload(cb, &p); err != nil {
		return err
	}

	if cb.Outcome != ledger.OutcomeOk {
		e.logger.Printf("Mint failed: ticket_id=%s token=%s err=%s", p.TicketID, p.TokenID, cb.Error)
		return nil
	}

	if p.TransmuteTarget == "" {
		resp.emit(domain.NewEvent(domain.EventTokenMinted,
			"ticket_id", p.TicketID,
			"token_id", string(p.TokenID),
			"receiver", p.Receiver,
			"amount", p.Amount.String(),
		))
		observability.RecordTicketMinted()
		return nil
	}

	swap, err := newDispatch(ledger.WithCallback, ledger.CallbackSwapToTarget, ledger.Op{
		Swap: &ledger.SwapOp{
			Sender:       e.selfAddr,
			PoolID:       s.TransmutePoolID,
			InDenom:      e.tokenDenom(p.TokenID),
			OutDenom:     p.TransmuteTarget,
			Amount:       p.Amount.String(),
			MinOutAmount: p.Amount.String(),
		},
	}, p)
	if err != nil {
		return err
	}
	resp.Dispatches = append(resp.Dispatches, swap)
	return nil
}

// onSwapToTarget forwards the swapped funds to the receiver.
func (e *Engine) onSwapToTarget(s *domain.State, cb ledger.Callback, resp *Response) error {
	var p domain.MintTokenPayload
	if err := decodePayload(cb, &p); err != nil {
		return err
	}

	if cb.Outcome != ledger.OutcomeOk {
		// The minted funds stay on the engine account for an admin refund.
		resp.emit(domain.NewEvent(domain.EventSwapToTargetFailed,
			"ticket_id", p.TicketID,
			"receiver", p.Receiver,
			"amount", p.Amount.String(),
			"reason", cb.Error,
		))
		return nil
	}

	send, err := newDispatch(ledger.WithCallback, ledger.CallbackSendAfterSwap, ledger.Op{
		BankSend: &ledger.BankSendOp{
			Sender:    e.selfAddr,
			Denom:     p.TransmuteTarget,
			Amount:    p.Amount.String(),
			Recipient: p.Receiver,
		},
	}, p)
	if err != nil {
		return err
	}
	resp.Dispatches = append(resp.Dispatches, send)
	return nil
}

// onSendAfterSwap finishes the transmute delivery.
func (e *Engine) onSendAfterSwap(cb ledger.Callback, resp *Response) error {
	var p domain.MintTokenPayload
	if err := decodePayload(cb, &p); err != nil {
		return err
	}

	if cb.Outcome != ledger.OutcomeOk {
		resp.emit(domain.NewEvent(domain.EventSagaStepFailed,
			"step", string(cb.Kind),
			"ticket_id", p.TicketID,
			"reason", cb.Error,
		))
		return nil
	}

	resp.emit(domain.NewEvent(domain.EventTokenMinted,
		"ticket_id", p.TicketID,
		"token_id", string(p.TokenID),
		"receiver", p.Receiver,
		"amount", p.Amount.String(),
		"transmuted_to", p.TransmuteTarget,
	))
	observability.RecordTicketMinted()
	return nil
}

// onSwapToSource resumes a pooled redeem after the swap back to the source
// token. The sequence is drawn and the record persisted here, before the burn
// is dispatched.
func (e *Engine) onSwapToSource(ctx context.Context, s *domain.State, cb ledger.Callback, resp *Response) error {
	var p domain.RedeemSwapPayload
	if err := decodePayload(cb, &p); err != nil {
		return err
	}

	if cb.Outcome != ledger.OutcomeOk {
		resp.emit(domain.NewEvent(domain.EventSwapToSourceFailed,
			"sender", p.Sender,
			"receiver", p.Receiver,
			"amount", p.Amount.String(),
			"target_chain_id", string(p.TargetChain),
			"reason", cb.Error,
		))
		return nil
	}

	_, err := e.drawOutbound(ctx, s, resp, domain.OutboundTicketRequest{
		TargetChainID: p.TargetChain,
		Sender:        p.Sender,
		Receiver:      p.Receiver,
		TokenID:       s.OriginalTokenID(s.TransmuteSourceTokenID),
		Amount:        p.Amount,
		Action:        domain.ActionRedeemPooled,
		FeeToken:      p.FeeToken,
		FeeAmount:     p.FeeAmount,
	})
	if err != nil {
		return err
	}

	// The swapped funds sit on the engine account; burn from self.
	burn, err := newDispatch(ledger.WithCallback, ledger.CallbackRedeemBurn, ledger.Op{
		Burn: &ledger.BurnOp{
			Sender: e.selfAddr,
			Denom:  e.tokenDenom(s.TransmuteSourceTokenID),
			Amount: p.Amount.String(),
			Source: e.selfAddr,
		},
	}, resp.tickets[len(resp.tickets)-1])
	if err != nil {
		return err
	}
	resp.Dispatches = append(resp.Dispatches, burn)
	return nil
}
