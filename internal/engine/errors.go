package engine

import (
	"errors"
	"fmt"

	"bridge-port/internal/domain"
)

// Engine errors. Every error aborts the current invocation and discards its
// tentative mutations; none are retried by the engine itself.
var (
	// ErrUnauthorized is returned when the caller is not a governance identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotInitialized is returned when no root record exists yet.
	ErrNotInitialized = errors.New("engine not initialized")

	// ErrAlreadyInitialized is returned when Init finds an existing root record.
	ErrAlreadyInitialized = errors.New("engine already initialized")

	// ErrTokenAlreadyExists is returned when adding a token whose id is registered.
	ErrTokenAlreadyExists = errors.New("token already exists")

	// ErrTokenNotFound is returned when a token id is not registered.
	ErrTokenNotFound = errors.New("token not found")

	// ErrChainNotFound is returned when toggling an unknown chain.
	ErrChainNotFound = errors.New("chain not found")

	// ErrTargetChainNotFound is returned when a destination chain is not a
	// registered counterparty.
	ErrTargetChainNotFound = errors.New("target chain not found")

	// ErrTargetChainInactive is returned when a destination chain is deactivated.
	ErrTargetChainInactive = errors.New("target chain inactive")

	// ErrChainInactive is returned when this chain itself is deactivated.
	ErrChainInactive = errors.New("chain inactive")

	// ErrDirectiveAlreadyHandled is returned on a replayed directive sequence.
	ErrDirectiveAlreadyHandled = errors.New("directive already handled")

	// ErrTicketAlreadyHandled is returned on a replayed mint ticket.
	ErrTicketAlreadyHandled = errors.New("ticket already handled")

	// ErrUnsupportedTransmute is returned when a mint requests a transmute
	// pair outside the configured whitelist.
	ErrUnsupportedTransmute = errors.New("unsupported transmute pair")

	// ErrInvalidAction is returned when a ticket request carries an action
	// outside the TxAction enum.
	ErrInvalidAction = errors.New("invalid transfer action")

	// ErrVersionGuard is returned when Migrate finds a stored version that is
	// not strictly lower than the current schema version.
	ErrVersionGuard = errors.New("stored version is not older than current")
)

// RedeemBelowMinimumError reports a redeem amount under the configured minimum
// for the (token, target chain) pair.
type RedeemBelowMinimumError struct {
	Min domain.Amount
	Got domain.Amount
}

func (e *RedeemBelowMinimumError) Error() string {
	return fmt.Sprintf("redeem amount below minimum: min %s, got %s", e.Min, e.Got)
}
