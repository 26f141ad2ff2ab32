package engine

import (
	"fmt"

	"bridge-port/internal/domain"
	"bridge-port/internal/ledger"
)

// registerToken adds a token to the registry and returns the fire-and-forget
// dispatches that set up its denomination on the host ledger. The incoming id
// is canonicalized; the reverse mapping is recorded so outbound records can
// restore the original external id.
func (e *Engine) registerToken(s *domain.State, t domain.Token) ([]ledger.Dispatch, error) {
	canonical, rewritten := domain.CanonicalTokenID(t.TokenID)
	if _, exists := s.Tokens[canonical]; exists {
		return nil, fmt.Errorf("%w: %s", ErrTokenAlreadyExists, canonical)
	}

	original := t.TokenID
	t.TokenID = canonical
	s.Tokens[canonical] = t
	if rewritten {
		s.ReplacedIDs[canonical] = original
	}

	subdenom := domain.SubdenomForToken(canonical)
	denom := domain.FactoryDenom(e.selfAddr, subdenom)

	createDenom, err := newDispatch(ledger.FireAndForget, "", ledger.Op{
		CreateDenom: &ledger.CreateDenomOp{
			Sender:   e.selfAddr,
			Subdenom: subdenom,
		},
	}, nil)
	if err != nil {
		return nil, err
	}

	setMetadata, err := newDispatch(ledger.FireAndForget, "", ledger.Op{
		SetDenomMetadata: &ledger.SetDenomMetadataOp{
			Sender:      e.selfAddr,
			Denom:       denom,
			Description: t.Name,
			Symbol:      t.Symbol,
			Decimals:    t.Decimals,
			Icon:        t.Icon,
		},
	}, nil)
	if err != nil {
		return nil, err
	}

	return []ledger.Dispatch{createDenom, setMetadata}, nil
}

// upsertToken updates a registered token's metadata, or registers it when
// absent. Returns the set-metadata dispatch (plus create-denom on the
// register path).
func (e *Engine) upsertToken(s *domain.State, t domain.Token) ([]ledger.Dispatch, error) {
	canonical, _ := domain.CanonicalTokenID(t.TokenID)
	if _, exists := s.Tokens[canonical]; !exists {
		// Update of an unknown token registers it.
		return e.registerToken(s, t)
	}

	t.TokenID = canonical
	s.Tokens[canonical] = t

	setMetadata, err := newDispatch(ledger.FireAndForget, "", ledger.Op{
		SetDenomMetadata: &ledger.SetDenomMetadataOp{
			Sender:      e.selfAddr,
			Denom:       domain.FactoryDenom(e.selfAddr, domain.SubdenomForToken(canonical)),
			Description: t.Name,
			Symbol:      t.Symbol,
			Decimals:    t.Decimals,
			Icon:        t.Icon,
		},
	}, nil)
	if err != nil {
		return nil, err
	}
	return []ledger.Dispatch{setMetadata}, nil
}

// mergeChain inserts or replaces a chain record. When the record is for the
// self chain it sets the engine's own operational state instead.
func mergeChain(s *domain.State, c domain.Chain) {
	if c.ChainState == "" {
		c.ChainState = domain.ChainStateActive
	}
	if c.ChainID == s.ChainID {
		s.ChainState = c.ChainState
		return
	}
	s.Counterparties[c.ChainID] = c
}

// toggleChain sets the operational state of a chain. Toggling the self chain
// id sets the engine's own state; an unknown counterparty fails with
// ErrChainNotFound.
func toggleChain(s *domain.State, t domain.ToggleState) error {
	if t.ChainID == s.ChainID {
		s.ChainState = t.Action.State()
		return nil
	}
	c, ok := s.Counterparties[t.ChainID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrChainNotFound, t.ChainID)
	}
	c.ChainState = t.Action.State()
	s.Counterparties[t.ChainID] = c
	return nil
}

// updateFee applies a fee factor update.
func updateFee(s *domain.State, f domain.Factor) error {
	switch {
	case f.FeeTokenFactor != nil:
		s.FeeToken = f.FeeTokenFactor.FeeToken
		factor := f.FeeTokenFactor.FeeTokenFactor
		s.FeeTokenFactor = &factor
		return nil
	case f.TargetChainFactor != nil:
		s.TargetChainFactor[f.TargetChainFactor.TargetChainID] = f.TargetChainFactor.TargetChainFactor
		return nil
	default:
		return fmt.Errorf("fee factor update carries no variant")
	}
}

// resolveToken looks up a token by external or canonical id.
func resolveToken(s *domain.State, id domain.TokenID) (domain.Token, error) {
	canonical, _ := domain.CanonicalTokenID(id)
	t, ok := s.Tokens[canonical]
	if !ok {
		return domain.Token{}, fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}
	return t, nil
}

// tokenDenom returns the host-ledger denom of a registered token.
func (e *Engine) tokenDenom(id domain.TokenID) string {
	return domain.FactoryDenom(e.selfAddr, domain.SubdenomForToken(id))
}
