package leads

import apperrors "github.com/hudsondigital/hds-platform/pkg/errors"

func NewLeadNotFoundError(err error) *apperrors.AppError {
	return apperrors.NewNotFoundError("lead not found", err)
}

func NewNothingToUpdateError() *apperrors.AppError {
	return apperrors.NewInvalidRequestError("at least one of status or score must be provided", nil)
}
