package newsletter

import apperrors "github.com/hudsondigital/hds-platform/pkg/errors"

func NewSubscriberNotFoundError(err error) *apperrors.AppError {
	return apperrors.NewNotFoundError("subscription not found", err)
}
