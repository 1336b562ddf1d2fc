package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrTransport           = errors.New("transport failure")
	ErrTemporary           = errors.New("temporary failure")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInteractionNotFound = errors.New("interaction not found")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
