// Package fee computes and validates redemption fees.
package fee

import (
	"errors"
	"fmt"
	"strings"

	"bridge-port/internal/domain"
)

// ErrFeeNotSet is returned when either the global fee-token factor or the
// chain-specific factor is not configured.
var ErrFeeNotSet = errors.New("fee not set")

// IncorrectFeeError reports an attached payment that does not exactly match
// the required fee. Funds carries the full attached coin set for diagnostics.
type IncorrectFeeError struct {
	Required domain.Amount
	Attached domain.Amount
	Funds    []domain.Coin
}

func (e *IncorrectFeeError) Error() string {
	parts := make([]string, 0, len(e.Funds))
	for _, c := range e.Funds {
		parts = append(parts, c.Amount.String()+c.Denom)
	}
	return fmt.Sprintf("incorrect fee: required %s, attached %s, funds [%s]",
		e.Required, e.Attached, strings.Join(parts, ","))
}

// CalculateFee returns the required fee for a destination chain:
// fee_token_factor × chain_factor. Fails with ErrFeeNotSet unless both
// factors are configured.
func CalculateFee(s *domain.State, target domain.ChainID) (domain.Amount, error) {
	if s.FeeTokenFactor == nil || s.FeeToken == "" {
		return 0, ErrFeeNotSet
	}
	chainFactor, ok := s.TargetChainFactor[target]
	if !ok {
		return 0, ErrFeeNotSet
	}
	amount, err := s.FeeTokenFactor.CheckedMul(chainFactor)
	if err != nil {
		return 0, fmt.Errorf("calculate fee for %s: %w", target, err)
	}
	return amount, nil
}

// CheckFee validates the payment attached to a fee-bearing operation. The sum
// of attached funds in the fee token must exactly equal the required fee.
// Returns the fee token and amount captured for the outbound record.
func CheckFee(s *domain.State, funds []domain.Coin, target domain.ChainID) (domain.TokenID, domain.Amount, error) {
	required, err := CalculateFee(s, target)
	if err != nil {
		return "", 0, err
	}

	var attached domain.Amount
	for _, c := range funds {
		if c.Denom != string(s.FeeToken) {
			continue
		}
		attached, err = attached.CheckedAdd(c.Amount)
		if err != nil {
			return "", 0, fmt.Errorf("sum attached fee: %w", err)
		}
	}

	if attached != required {
		return "", 0, &IncorrectFeeError{Required: required, Attached: attached, Funds: funds}
	}
	return s.FeeToken, required, nil
}
