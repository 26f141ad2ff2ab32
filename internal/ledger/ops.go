// Package ledger defines the boundary with the host ledger: the operations the
// engine dispatches, the callbacks the host delivers, and clients for both
// directions.
package ledger

import (
	"encoding/json"
	"errors"
)

// CreateDenomOp registers a new token-factory denomination.
type CreateDenomOp struct {
	Sender   string `json:"sender"`
	Subdenom string `json:"subdenom"`
}

// SetDenomMetadataOp attaches display metadata to a denomination.
type SetDenomMetadataOp struct {
	Sender      string `json:"sender"`
	Denom       string `json:"denom"`
	Description string `json:"description"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	Icon        string `json:"icon,omitempty"`
}

// MintOp mints amount of denom to the recipient.
type MintOp struct {
	Sender    string `json:"sender"`
	Denom     string `json:"denom"`
	Amount    string `json:"amount"`
	Recipient string `json:"recipient"`
}

// BurnOp burns amount of denom from the source account.
type BurnOp struct {
	Sender string `json:"sender"`
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
	Source string `json:"source"`
}

// SwapOp swaps amount of InDenom for OutDenom through a pool.
type SwapOp struct {
	Sender       string `json:"sender"`
	PoolID       uint64 `json:"pool_id"`
	InDenom      string `json:"in_denom"`
	OutDenom     string `json:"out_denom"`
	Amount       string `json:"amount"`
	MinOutAmount string `json:"min_out_amount"`
}

// BankSendOp transfers amount of denom to the recipient.
type BankSendOp struct {
	Sender    string `json:"sender"`
	Denom     string `json:"denom"`
	Amount    string `json:"amount"`
	Recipient string `json:"recipient"`
}

// Op is the operation union. Exactly one field must be set.
type Op struct {
	CreateDenom      *CreateDenomOp      `json:"create_denom,omitempty"`
	SetDenomMetadata *SetDenomMetadataOp `json:"set_denom_metadata,omitempty"`
	Mint             *MintOp             `json:"mint,omitempty"`
	Burn             *BurnOp             `json:"burn,omitempty"`
	Swap             *SwapOp             `json:"swap,omitempty"`
	BankSend         *BankSendOp         `json:"bank_send,omitempty"`
}

// ErrMalformedOp is returned when an Op does not carry exactly one variant.
var ErrMalformedOp = errors.New("op must carry exactly one variant")

// Type returns the variant name, or an error if the op is malformed.
func (o Op) Type() (string, error) {
	var name string
	n := 0
	if o.CreateDenom != nil {
		name, n = "create_denom", n+1
	}
	if o.SetDenomMetadata != nil {
		name, n = "set_denom_metadata", n+1
	}
	if o.Mint != nil {
		name, n = "mint", n+1
	}
	if o.Burn != nil {
		name, n = "burn", n+1
	}
	if o.Swap != nil {
		name, n = "swap", n+1
	}
	if o.BankSend != nil {
		name, n = "bank_send", n+1
	}
	if n != 1 {
		return "", ErrMalformedOp
	}
	return name, nil
}

// CallbackKind identifies the saga step a dispatched operation belongs to.
// The continuation engine dispatches on this enumeration; an unknown kind in a
// callback means the dispatch table and the enumeration drifted apart.
type CallbackKind string

// Callback kinds, one per saga step.
const (
	CallbackRedeemBurn     CallbackKind = "redeem_burn"
	CallbackGenerateTicket CallbackKind = "generate_ticket"
	CallbackMintToken      CallbackKind = "mint_token"
	CallbackSwapToTarget   CallbackKind = "swap_to_target"
	CallbackSendAfterSwap  CallbackKind = "send_after_swap"
	CallbackSwapToSource   CallbackKind = "swap_to_source"
)

// DispatchMode selects the delivery mode of a dispatched operation.
type DispatchMode string

// Dispatch modes.
const (
	// FireAndForget surfaces errors only as the submitting call failing.
	FireAndForget DispatchMode = "fire_and_forget"
	// WithCallback delivers both success and failure to the continuation
	// engine later, carrying back the payload attached at dispatch time.
	WithCallback DispatchMode = "with_callback"
)

// Dispatch is one operation request handed to the host ledger.
type Dispatch struct {
	ID      string          `json:"id"`
	Mode    DispatchMode    `json:"mode"`
	Kind    CallbackKind    `json:"kind,omitempty"` // set when Mode == WithCallback
	Op      Op              `json:"op"`
	Payload json.RawMessage `json:"payload,omitempty"` // continuation payload
}

// Outcome is the result of a dispatched operation.
type Outcome string

// Outcomes.
const (
	OutcomeOk  Outcome = "ok"
	OutcomeErr Outcome = "err"
)

// Callback is the completion notification for a WithCallback dispatch. The
// payload is the exact payload attached at dispatch time.
type Callback struct {
	DispatchID string          `json:"dispatch_id"`
	Kind       CallbackKind    `json:"kind"`
	Outcome    Outcome         `json:"outcome"`
	Error      string          `json:"error,omitempty"` // host error text when Outcome == err
	Payload    json.RawMessage `json:"payload,omitempty"`
}
