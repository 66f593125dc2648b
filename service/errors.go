// Package service implements the event lifecycle and the capacity-limited
// admission engine: participation requests are created, canceled and
// moderated here, and the number of confirmed participants is never allowed
// to pass an event's participant limit.
package service

import (
	"errors"
	"eventhub/data/repository"
	"fmt"
)

// The four error kinds every operation in this package reports. Callers
// dispatch on them with errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrNotFound: a referenced event, request, user or category does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation: input is malformed or out of policy (date too soon, bad status).
	ErrValidation = errors.New("invalid input")
	// ErrConflict: the operation is disallowed by current state (wrong lifecycle
	// state, wrong request status, limit reached, duplicate request, self-request).
	ErrConflict = errors.New("operation conflicts with current state")
	// ErrForbidden: the caller is not the initiator/owner the action requires.
	ErrForbidden = errors.New("forbidden")
)

// mapRepoErr translates repository sentinels into this package's error kinds.
// Anything unrecognized passes through unchanged.
func mapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNoRecord):
		return fmt.Errorf("%v: %w", err, ErrNotFound)
	case errors.Is(err, repository.ErrDuplicateRequest):
		return fmt.Errorf("%v: %w", err, ErrConflict)
	default:
		return err
	}
}
