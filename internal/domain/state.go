package domain

// SchemaVersion is the current version of the persisted root record.
// Migrate refuses to run unless the stored version is strictly lower.
const SchemaVersion = 2

// State is the versioned root record of the bridge engine: registry, dedup
// sets, fee configuration and the outbound sequence counter. Handlers mutate a
// clone; the clone is committed atomically when the handler succeeds.
// Corresponds to the bridge_state table (single row).
type State struct {
	Version int `json:"version"`

	// Governance identities. Either may authorize governance operations.
	Route string `json:"route"`
	Admin string `json:"admin"`

	// ChainKey is the ed25519 public key directives are signed with.
	ChainKey []byte `json:"chain_key,omitempty"`

	// Self chain identity and operational state.
	ChainID    ChainID    `json:"chain_id"`
	ChainState ChainState `json:"chain_state"`

	// Token registry, keyed by canonical token id.
	Tokens map[TokenID]Token `json:"tokens"`

	// ReplacedIDs maps canonical token id back to the original external id
	// for ids that contained the reserved separator.
	ReplacedIDs map[TokenID]TokenID `json:"replaced_ids"`

	// Counterparty chain registry.
	Counterparties map[ChainID]Chain `json:"counterparties"`

	// Exactly-once guards. Append-only, never shrink.
	HandledDirectives map[uint64]bool `json:"handled_directives"`
	HandledTickets    map[string]bool `json:"handled_tickets"`

	// Fee configuration. Both factors must be set for fee computation.
	FeeToken          TokenID            `json:"fee_token,omitempty"`
	FeeTokenFactor    *Amount            `json:"fee_token_factor,omitempty"`
	TargetChainFactor map[ChainID]Amount `json:"target_chain_factor"`

	// Minimum redeem amounts keyed by RedeemMinKey(token, chain).
	RedeemMinAmount map[string]Amount `json:"redeem_min_amount"`

	// TicketSeq is the next outbound sequence number. Drawn values are never
	// reused, even when the dispatched burn later fails.
	TicketSeq uint64 `json:"ticket_seq"`

	// Transmute whitelist: the single supported source token / target denom
	// pair and the pool the swap routes through.
	TransmuteSourceTokenID TokenID `json:"transmute_source_token_id,omitempty"`
	TransmuteTargetDenom   string  `json:"transmute_target_denom,omitempty"`
	TransmutePoolID        uint64  `json:"transmute_pool_id,omitempty"`
}

// NewState returns an initialized root record at the current schema version.
func NewState(route, admin string, chainID ChainID, chainKey []byte) *State {
	return &State{
		Version:           SchemaVersion,
		Route:             route,
		Admin:             admin,
		ChainKey:          chainKey,
		ChainID:           chainID,
		ChainState:        ChainStateActive,
		Tokens:            make(map[TokenID]Token),
		ReplacedIDs:       make(map[TokenID]TokenID),
		Counterparties:    make(map[ChainID]Chain),
		HandledDirectives: make(map[uint64]bool),
		HandledTickets:    make(map[string]bool),
		TargetChainFactor: make(map[ChainID]Amount),
		RedeemMinAmount:   make(map[string]Amount),
	}
}

// RedeemMinKey builds the composite key of the minimum-redeem-amount map.
func RedeemMinKey(tokenID TokenID, chainID ChainID) string {
	return string(tokenID) + "/" + string(chainID)
}

// OriginalTokenID restores the original external id for a canonical id, or
// returns the id unchanged when no rewrite was recorded.
func (s *State) OriginalTokenID(id TokenID) TokenID {
	if orig, ok := s.ReplacedIDs[id]; ok {
		return orig
	}
	return id
}

// IsGovernance reports whether sender is an authorized governance identity.
func (s *State) IsGovernance(sender string) bool {
	return sender != "" && (sender == s.Route || sender == s.Admin)
}

// Clone returns a deep copy. Handlers operate on clones so a failed invocation
// discards all of its tentative mutations.
func (s *State) Clone() *State {
	c := *s
	c.ChainKey = append([]byte(nil), s.ChainKey...)
	c.Tokens = make(map[TokenID]Token, len(s.Tokens))
	for k, v := range s.Tokens {
		c.Tokens[k] = v
	}
	c.ReplacedIDs = make(map[TokenID]TokenID, len(s.ReplacedIDs))
	for k, v := range s.ReplacedIDs {
		c.ReplacedIDs[k] = v
	}
	c.Counterparties = make(map[ChainID]Chain, len(s.Counterparties))
	for k, v := range s.Counterparties {
		v.Counterparties = append([]ChainID(nil), v.Counterparties...)
		c.Counterparties[k] = v
	}
	c.HandledDirectives = make(map[uint64]bool, len(s.HandledDirectives))
	for k := range s.HandledDirectives {
		c.HandledDirectives[k] = true
	}
	c.HandledTickets = make(map[string]bool, len(s.HandledTickets))
	for k := range s.HandledTickets {
		c.HandledTickets[k] = true
	}
	c.TargetChainFactor = make(map[ChainID]Amount, len(s.TargetChainFactor))
	for k, v := range s.TargetChainFactor {
		c.TargetChainFactor[k] = v
	}
	c.RedeemMinAmount = make(map[string]Amount, len(s.RedeemMinAmount))
	for k, v := range s.RedeemMinAmount {
		c.RedeemMinAmount[k] = v
	}
	if s.FeeTokenFactor != nil {
		f := *s.FeeTokenFactor
		c.FeeTokenFactor = &f
	}
	return &c
}
