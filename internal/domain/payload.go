package domain

// Continuation payloads: serialized snapshots of in-flight workflow context,
// attached to a dispatched operation and returned unchanged with its outcome.
// They are the only context that survives the async gap between dispatch and
// callback, so every field needed to resume must be carried here.

// MintTokenPayload resumes the mint → (swap → send) workflow.
type MintTokenPayload struct {
	TicketID        string  `json:"ticket_id"`
	TokenID         TokenID `json:"token_id"`
	Receiver        string  `json:"receiver"`
	Amount          Amount  `json:"amount"`
	TransmuteTarget string  `json:"transmute_target,omitempty"` // target denom, empty when no transmute
}

// RedeemSwapPayload resumes the swap → burn workflow of a pooled-asset redeem.
// The fee was already validated and captured before the swap was dispatched.
type RedeemSwapPayload struct {
	Sender      string  `json:"sender"`
	Receiver    string  `json:"receiver"`
	Amount      Amount  `json:"amount"`
	TargetChain ChainID `json:"target_chain"`
	FeeToken    TokenID `json:"fee_token"`
	FeeAmount   Amount  `json:"fee_amount"`
}
