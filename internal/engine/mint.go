package engine

import (
	"context"
	"fmt"

	"bridge-port/internal/domain"
	"bridge-port/internal/ledger"
	"bridge-port/internal/observability"
)

// PrivilegeMintToken processes an inbound cross-chain ticket by minting the
// bridged asset to the receiver. Tickets are exactly-once by ticket id.
//
// When transmuteTarget names the configured target denom and the token is the
// configured transmute source, the mint lands on the engine's own account and
// the continuation engine swaps it to the target denom before delivery.
func (e *Engine) PrivilegeMintToken(ctx context.Context, sender, ticketID string, tokenID domain.TokenID, receiver string, amount domain.Amount, transmuteTarget string) (*Response, error) {
	return e.invoke(ctx, func(s *domain.State, resp *Response) error {
		if !s.IsGovernance(sender) {
			return ErrUnauthorized
		}
		if s.HandledTickets[ticketID] {
			return fmt.Errorf("%w: %s", ErrTicketAlreadyHandled, ticketID)
		}

		t, err := resolveToken(s, tokenID)
		if err != nil {
			return err
		}

		recipient := receiver
		if transmuteTarget != "" {
			if t.TokenID != s.TransmuteSourceTokenID || transmuteTarget != s.TransmuteTargetDenom {
				return fmt.Errorf("%w: %s -> %s", ErrUnsupportedTransmute, t.TokenID, transmuteTarget)
			}
			// Mint to self and deliver after the swap completes.
			recipient = e.selfAddr
		}

		s.HandledTickets[ticketID] = true

		mint, err := newDispatch(ledger.WithCallback, ledger.CallbackMintToken, ledger.Op{
			Mint: &ledger.MintOp{
				Sender:    e.selfAddr,
				Denom:     e.tokenDenom(t.TokenID),
				Amount:    amount.String(),
				Recipient: recipient,
			},
		}, domain.MintTokenPayload{
			TicketID:        ticketID,
			TokenID:         t.TokenID,
			Receiver:        receiver,
			Amount:          amount,
			TransmuteTarget: transmuteTarget,
		})
		if err != nil {
			return err
		}
		resp.Dispatches = append(resp.Dispatches, mint)
		observability.RecordTicketAccepted()
		return nil
	})
}
