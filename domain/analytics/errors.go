package analytics

import apperrors "github.com/hudsondigital/hds-platform/pkg/errors"

func NewInvalidWebVitalError(reason string) *apperrors.AppError {
	return apperrors.NewInvalidRequestError("invalid web_vital event: "+reason, nil)
}

func NewInvalidRangeError(reason string) *apperrors.AppError {
	return apperrors.NewInvalidRequestError("invalid date range: "+reason, nil)
}
