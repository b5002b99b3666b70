package sequences

import apperrors "github.com/hudsondigital/hds-platform/pkg/errors"

func NewUnknownSequenceError(name string) *apperrors.AppError {
	return apperrors.NewInvalidRequestError("unknown email sequence: "+name, nil)
}

func NewEnrollmentNotFoundError(err error) *apperrors.AppError {
	return apperrors.NewNotFoundError("enrollment not found", err)
}
