package application

import (
	"errors"
	"fmt"

	"github.com/partsflow/procurement-api/internal/domains/orders/domain"
)

// ErrValidation signals the request violated a domain invariant and can be
// corrected by the caller.
var ErrValidation = errors.New("invalid order input")

// ErrConflict signals the order or one of its line items is in a state that
// forbids the requested change. Callers should refetch and retry with a
// fresh view.
var ErrConflict = errors.New("order state conflict")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyOrderNo),
		errors.Is(err, domain.ErrEmptyItems),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrNothingSelected),
		errors.Is(err, domain.ErrNoArrivalRefs),
		errors.Is(err, domain.ErrInquiryDeadline),
		errors.Is(err, domain.ErrItemNotFound):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrItemRegression),
		errors.Is(err, domain.ErrAlreadySelected),
		errors.Is(err, domain.ErrQuantityLocked),
		errors.Is(err, domain.ErrNotAssigned),
		errors.Is(err, domain.ErrAlreadyArrived):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
