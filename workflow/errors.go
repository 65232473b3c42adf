package workflow

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying every failure the approval workflow can
// produce. Controllers map these onto HTTP statuses.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
)

func invalidState(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, msg)
}

func unauthorized(msg string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
}

func validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
