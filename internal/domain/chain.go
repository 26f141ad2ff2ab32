package domain

// ChainState is the operational state of a chain record.
type ChainState string

// Chain states.
const (
	ChainStateActive   ChainState = "active"
	ChainStateInactive ChainState = "inactive"
)

// ToggleAction selects the target state of a ToggleChainState directive.
type ToggleAction string

// Toggle actions.
const (
	ToggleActivate   ToggleAction = "activate"
	ToggleDeactivate ToggleAction = "deactivate"
)

// State returns the chain state a toggle action transitions to.
func (a ToggleAction) State() ChainState {
	if a == ToggleDeactivate {
		return ChainStateInactive
	}
	return ChainStateActive
}

// Chain is a chain record: either the self chain or a registered counterparty.
// Corresponds to the counterparties map in the bridge_state root record.
type Chain struct {
	ChainID        ChainID    `json:"chain_id"`
	Counterparties []ChainID  `json:"counterparties,omitempty"`
	ChainState     ChainState `json:"chain_state"`
	FeeToken       TokenID    `json:"fee_token,omitempty"`
}

// ToggleState is the payload of a ToggleChainState directive.
type ToggleState struct {
	ChainID ChainID      `json:"chain_id"`
	Action  ToggleAction `json:"action"`
}
