package gdpr

import apperrors "github.com/hudsondigital/hds-platform/pkg/errors"

func NewRequestNotFoundError(err error) *apperrors.AppError {
	return apperrors.NewNotFoundError("privacy request not found", err)
}

func NewAlreadyCompletedError() *apperrors.AppError {
	return apperrors.NewConflictError("privacy request has already been completed", nil)
}

func NewTokenExpiredError() *apperrors.AppError {
	return apperrors.NewGoneError("verification link has expired, please submit a new request", nil)
}
