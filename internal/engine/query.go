package engine

import (
	"context"
	"sort"

	"bridge-port/internal/domain"
	"bridge-port/internal/fee"
)

// GetState returns a copy of the root record.
func (e *Engine) GetState(ctx context.Context) (*domain.State, error) {
	var out *domain.State
	err := e.view(ctx, func(s *domain.State) error {
		out = s.Clone()
		return nil
	})
	return out, err
}

// GetTokenList returns all registered tokens ordered by canonical id.
func (e *Engine) GetTokenList(ctx context.Context) ([]domain.Token, error) {
	var out []domain.Token
	err := e.view(ctx, func(s *domain.State) error {
		out = make([]domain.Token, 0, len(s.Tokens))
		for _, t := range s.Tokens {
			out = append(out, t)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].TokenID < out[j].TokenID })
		return nil
	})
	return out, err
}

// FeeInfo is the configured fee schedule.
type FeeInfo struct {
	FeeToken          domain.TokenID                  `json:"fee_token,omitempty"`
	FeeTokenFactor    *domain.Amount                  `json:"fee_token_factor,omitempty"`
	TargetChainFactor map[domain.ChainID]domain.Amount `json:"target_chain_factor"`
}

// GetFeeInfo returns the configured fee schedule.
func (e *Engine) GetFeeInfo(ctx context.Context) (*FeeInfo, error) {
	var out *FeeInfo
	err := e.view(ctx, func(s *domain.State) error {
		info := &FeeInfo{
			FeeToken:          s.FeeToken,
			TargetChainFactor: make(map[domain.ChainID]domain.Amount, len(s.TargetChainFactor)),
		}
		if s.FeeTokenFactor != nil {
			f := *s.FeeTokenFactor
			info.FeeTokenFactor = &f
		}
		for k, v := range s.TargetChainFactor {
			info.TargetChainFactor[k] = v
		}
		out = info
		return nil
	})
	return out, err
}

// TargetChainFee is the effective fee for one destination chain. FeeAmount is
// nil when the fee is not fully configured for the chain.
type TargetChainFee struct {
	TargetChainID domain.ChainID `json:"target_chain_id"`
	FeeToken      domain.TokenID `json:"fee_token,omitempty"`
	FeeAmount     *domain.Amount `json:"fee_amount,omitempty"`
}

// GetTargetChainFee computes the effective fee for a destination chain.
func (e *Engine) GetTargetChainFee(ctx context.Context, target domain.ChainID) (*TargetChainFee, error) {
	var out *TargetChainFee
	err := e.view(ctx, func(s *domain.State) error {
		out = &TargetChainFee{TargetChainID: target, FeeToken: s.FeeToken}
		amount, err := fee.CalculateFee(s, target)
		if err != nil {
			// An unconfigured fee is a valid query answer, not a failure.
			return nil
		}
		out.FeeAmount = &amount
		return nil
	})
	return out, err
}
