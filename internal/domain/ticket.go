package domain

// TxAction classifies an outbound transfer intent for off-chain relayers.
type TxAction string

// Transfer actions.
const (
	ActionTransfer     TxAction = "transfer"
	ActionRedeem       TxAction = "redeem"
	ActionBurn         TxAction = "burn"
	ActionRedeemPooled TxAction = "redeem_pooled"
)

// Valid reports whether a is one of the declared transfer actions.
func (a TxAction) Valid() bool {
	switch a {
	case ActionTransfer, ActionRedeem, ActionBurn, ActionRedeemPooled:
		return true
	}
	return false
}

// OutboundTicketRequest is the durable record of an outbound transfer intent,
// keyed by its sequence number. Immutable once created; it is persisted when
// the sequence is drawn, before the burn is dispatched, so the record survives
// even if the dispatched operation never completes.
// Corresponds to the outbound_ticket_requests table.
type OutboundTicketRequest struct {
	Seq           uint64   `json:"seq"`
	TargetChainID ChainID  `json:"target_chain_id"`
	Sender        string   `json:"sender"`
	Receiver      string   `json:"receiver"`
	TokenID       TokenID  `json:"token_id"`
	Amount        Amount   `json:"amount"`
	Action        TxAction `json:"action"`
	Timestamp     int64    `json:"timestamp"`    // Unix nanoseconds at intent time
	BlockHeight   uint64   `json:"block_height"` // host ledger height at intent time
	Memo          string   `json:"memo,omitempty"`
	FeeToken      TokenID  `json:"fee_token"`
	FeeAmount     Amount   `json:"fee_amount"`
}
