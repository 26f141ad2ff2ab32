package domain

import "errors"

// DirectiveKind names the variant carried by a Directive.
type DirectiveKind string

// Directive kinds.
const (
	DirectiveAddToken         DirectiveKind = "add_token"
	DirectiveUpdateToken      DirectiveKind = "update_token"
	DirectiveAddChain         DirectiveKind = "add_chain"
	DirectiveUpdateChain      DirectiveKind = "update_chain"
	DirectiveToggleChainState DirectiveKind = "toggle_chain_state"
	DirectiveUpdateFee        DirectiveKind = "update_fee"
)

// Directive is a governance-originated configuration change, deduplicated by
// sequence number. Exactly one variant field must be set.
type Directive struct {
	AddToken         *Token       `json:"add_token,omitempty"`
	UpdateToken      *Token       `json:"update_token,omitempty"`
	AddChain         *Chain       `json:"add_chain,omitempty"`
	UpdateChain      *Chain       `json:"update_chain,omitempty"`
	ToggleChainState *ToggleState `json:"toggle_chain_state,omitempty"`
	UpdateFee        *Factor      `json:"update_fee,omitempty"`
}

// ErrMalformedDirective is returned when a directive does not carry exactly
// one variant.
var ErrMalformedDirective = errors.New("directive must carry exactly one variant")

// Kind returns the variant kind, or an error if the directive is malformed.
func (d Directive) Kind() (DirectiveKind, error) {
	var kind DirectiveKind
	n := 0
	if d.AddToken != nil {
		kind, n = DirectiveAddToken, n+1
	}
	if d.UpdateToken != nil {
		kind, n = DirectiveUpdateToken, n+1
	}
	if d.AddChain != nil {
		kind, n = DirectiveAddChain, n+1
	}
	if d.UpdateChain != nil {
		kind, n = DirectiveUpdateChain, n+1
	}
	if d.ToggleChainState != nil {
		kind, n = DirectiveToggleChainState, n+1
	}
	if d.UpdateFee != nil {
		kind, n = DirectiveUpdateFee, n+1
	}
	if n != 1 {
		return "", ErrMalformedDirective
	}
	return kind, nil
}

// Factor is a fee-configuration update: either the global fee-token factor or
// a per-chain factor. Exactly one field must be set.
type Factor struct {
	FeeTokenFactor    *FeeTokenFactor    `json:"fee_token_factor,omitempty"`
	TargetChainFactor *TargetChainFactor `json:"target_chain_factor,omitempty"`
}

// FeeTokenFactor sets the fee token and its global factor.
type FeeTokenFactor struct {
	FeeToken       TokenID `json:"fee_token"`
	FeeTokenFactor Amount  `json:"fee_token_factor"`
}

// TargetChainFactor sets the factor for one destination chain.
type TargetChainFactor struct {
	TargetChainID     ChainID `json:"target_chain_id"`
	TargetChainFactor Amount  `json:"target_chain_factor"`
}
