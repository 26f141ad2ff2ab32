package engine

import (
	"context"
	"fmt"

	"bridge-port/internal/domain"
	"bridge-port/internal/fee"
	"bridge-port/internal/ledger"
	"bridge-port/internal/observability"
)

// checkOutbound validates the shared preconditions of an outbound transfer:
// this chain and the destination chain are active, and the amount clears the
// configured minimum for the (token, chain) pair.
func checkOutbound(s *domain.State, tokenID domain.TokenID, target domain.ChainID, amount domain.Amount) error {
	if s.ChainState != domain.ChainStateActive {
		return ErrChainInactive
	}
	c, ok := s.Counterparties[target]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTargetChainNotFound, target)
	}
	if c.ChainState != domain.ChainStateActive {
		return fmt.Errorf("%w: %s", ErrTargetChainInactive, target)
	}
	if min, ok := s.RedeemMinAmount[domain.RedeemMinKey(tokenID, target)]; ok && amount < min {
		return &RedeemBelowMinimumError{Min: min, Got: amount}
	}
	return nil
}

// drawOutbound draws the next sequence number and queues the durable outbound
// record. Drawn sequences are never reused; a later dispatch failure leaves a
// gap, not a reissue.
func (e *Engine) drawOutbound(ctx context.Context, s *domain.State, resp *Response, req domain.OutboundTicketRequest) (uint64, error) {
	height, err := e.height(ctx)
	if err != nil {
		return 0, fmt.Errorf("query block height: %w", err)
	}

	req.Seq = s.TicketSeq
	req.Timestamp = e.now().UnixNano()
	req.BlockHeight = height
	s.TicketSeq++

	resp.tickets = append(resp.tickets, &req)
	observability.RecordOutboundIntent(string(req.Action))
	return req.Seq, nil
}

// RedeemToken burns a bridged asset on this chain and records the intent to
// release it on the target chain. The attached funds must carry the exact fee.
func (e *Engine) RedeemToken(ctx context.Context, sender string, funds []domain.Coin, tokenID domain.TokenID, receiver string, target domain.ChainID, amount domain.Amount) (*Response, error) {
	return e.outbound(ctx, sender, funds, tokenID, receiver, target, amount, domain.ActionRedeem, "", ledger.CallbackRedeemBurn)
}

// GenerateTicket records a generic outbound transfer intent, burning the
// bridged asset. Unlike RedeemToken the caller chooses the relayer action and
// may attach a memo.
func (e *Engine) GenerateTicket(ctx context.Context, sender string, funds []domain.Coin, tokenID domain.TokenID, receiver string, target domain.ChainID, amount domain.Amount, action domain.TxAction, memo string) (*Response, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	return e.outbound(ctx, sender, funds, tokenID, receiver, target, amount, action, memo, ledger.CallbackGenerateTicket)
}

// outbound is the shared burn-then-record path behind RedeemToken and
// GenerateTicket.
func (e *Engine) outbound(ctx context.Context, sender string, funds []domain.Coin, tokenID domain.TokenID, receiver string, target domain.ChainID, amount domain.Amount, action domain.TxAction, memo string, kind ledger.CallbackKind) (*Response, error) {
	return e.invoke(ctx, func(s *domain.State, resp *Response) error {
		t, err := resolveToken(s, tokenID)
		if err != nil {
			return err
		}
		if err := checkOutbound(s, t.TokenID, target, amount); err != nil {
			return err
		}
		feeToken, feeAmount, err := fee.CheckFee(s, funds, target)
		if err != nil {
			return err
		}

		seq, err := e.drawOutbound(ctx, s, resp, domain.OutboundTicketRequest{
			TargetChainID: target,
			Sender:        sender,
			Receiver:      receiver,
			TokenID:       s.OriginalTokenID(t.TokenID),
			Amount:        amount,
			Action:        action,
			Memo:          memo,
			FeeToken:      feeToken,
			FeeAmount:     feeAmount,
		})
		if err != nil {
			return err
		}

		burn, err := newDispatch(ledger.WithCallback, kind, ledger.Op{
			Burn: &ledger.BurnOp{
				Sender: e.selfAddr,
				Denom:  e.tokenDenom(t.TokenID),
				Amount: amount.String(),
				Source: sender,
			},
		}, resp.tickets[len(resp.tickets)-1])
		if err != nil {
			return err
		}
		resp.Dispatches = append(resp.Dispatches, burn)
		e.logger.Printf("Outbound intent: seq=%d action=%s token=%s target=%s", seq, action, t.TokenID, target)
		return nil
	})
}

// RedeemPooledToken redeems a pooled asset: the attached target-denom funds
// are swapped back to the transmute source token first, and the burn plus the
// outbound record follow from the swap callback. The fee is validated and
// captured up front.
func (e *Engine) RedeemPooledToken(ctx context.Context, sender string, funds []domain.Coin, receiver string, target domain.ChainID, amount domain.Amount) (*Response, error) {
	return e.invoke(ctx, func(s *domain.State, resp *Response) error {
		if s.TransmuteSourceTokenID == "" || s.TransmuteTargetDenom == "" {
			return fmt.Errorf("%w: no transmute pair configured", ErrUnsupportedTransmute)
		}
		if err := checkOutbound(s, s.TransmuteSourceTokenID, target, amount); err != nil {
			return err
		}
		feeToken, feeAmount, err := fee.CheckFee(s, funds, target)
		if err != nil {
			return err
		}

		var attached domain.Amount
		for _, c := range funds {
			if c.Denom != s.TransmuteTargetDenom {
				continue
			}
			attached, err = attached.CheckedAdd(c.Amount)
			if err != nil {
				return fmt.Errorf("sum attached funds: %w", err)
			}
		}
		if attached != amount {
			return fmt.Errorf("attached %s of %s, expected %s", attached, s.TransmuteTargetDenom, amount)
		}

		swap, err := newDispatch(ledger.WithCallback, ledger.CallbackSwapToSource, ledger.Op{
			Swap: &ledger.SwapOp{
				Sender:       e.selfAddr,
				PoolID:       s.TransmutePoolID,
				InDenom:      s.TransmuteTargetDenom,
				OutDenom:     e.tokenDenom(s.TransmuteSourceTokenID),
				Amount:       amount.String(),
				MinOutAmount: amount.String(),
			},
		}, domain.RedeemSwapPayload{
			Sender:      sender,
			Receiver:    receiver,
			Amount:      amount,
			TargetChain: target,
			FeeToken:    feeToken,
			FeeAmount:   feeAmount,
		})
		if err != nil {
			return err
		}
		resp.Dispatches = append(resp.Dispatches, swap)
		return nil
	})
}

// SetRedeemMinAmount sets the minimum redeemable amount for a (token, chain)
// pair. Admin only.
func (e *Engine) SetRedeemMinAmount(ctx context.Context, sender string, tokenID domain.TokenID, target domain.ChainID, min domain.Amount) (*Response, error) {
	return e.invoke(ctx, func(s *domain.State, resp *Response) error {
		if sender != s.Admin {
			return ErrUnauthorized
		}
		canonical, _ := domain.CanonicalTokenID(tokenID)
		s.RedeemMinAmount[domain.RedeemMinKey(canonical, target)] = min
		return nil
	})
}

// UpdateRoute changes the governance route identity. Admin only.
func (e *Engine) UpdateRoute(ctx context.Context, sender, route string) (*Response, error) {
	return e.invoke(ctx, func(s *domain.State, resp *Response) error {
		if sender != s.Admin {
			return ErrUnauthorized
		}
		s.Route = route
		resp.emit(domain.NewEvent(domain.EventRouteUpdated, "route", route))
		return nil
	})
}

// UpdateTokenMetadata lets the admin correct a token's display metadata
// outside the directive channel. Registers the token when absent.
func (e *Engine) UpdateTokenMetadata(ctx context.Context, sender string, t domain.Token) (*Response, error) {
	return e.invoke(ctx, func(s *domain.State, resp *Response) error {
		if sender != s.Admin {
			return ErrUnauthorized
		}
		dispatches, err := e.upsertToken(s, t)
		if err != nil {
			return err
		}
		resp.Dispatches = append(resp.Dispatches, dispatches...)
		return nil
	})
}

// Refund returns stranded funds from the engine's account. Admin only.
func (e *Engine) Refund(ctx context.Context, sender, receiver string, c domain.Coin) (*Response, error) {
	return e.invoke(ctx, func(s *domain.State, resp *Response) error {
		if sender != s.Admin {
			return ErrUnauthorized
		}
		send, err := newDispatch(ledger.FireAndForget, "", ledger.Op{
			BankSend: &ledger.BankSendOp{
				Sender:    e.selfAddr,
				Denom:     c.Denom,
				Amount:    c.Amount.String(),
				Recipient: receiver,
			},
		}, nil)
		if err != nil {
			return err
		}
		resp.Dispatches = append(resp.Dispatches, send)
		resp.emit(domain.NewEvent(domain.EventRefunded,
			"receiver", receiver,
			"denom", c.Denom,
			"amount", c.Amount.String(),
		))
		return nil
	})
}

// Migrate bumps the stored root record to the current schema version. Fails
// with ErrVersionGuard unless the stored version is strictly lower.
func (e *Engine) Migrate(ctx context.Context, sender string) (*Response, error) {
	return e.invoke(ctx, func(s *domain.State, resp *Response) error {
		if sender != s.Admin {
			return ErrUnauthorized
		}
		if s.Version >= domain.SchemaVersion {
			return fmt.Errorf("%w: stored %d, current %d", ErrVersionGuard, s.Version, domain.SchemaVersion)
		}
		from := s.Version
		s.Version = domain.SchemaVersion
		resp.emit(domain.NewEvent(domain.EventMigrated,
			"from_version", fmt.Sprintf("%d", from),
			"to_version", fmt.Sprintf("%d", domain.SchemaVersion),
		))
		return nil
	})
}
