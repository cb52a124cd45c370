package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidState     = errors.New("invalid state")
	ErrValidation       = errors.New("validation failed")

	ErrSurveyInactive   = fmt.Errorf("%w: survey is not active", ErrInvalidState)
	ErrResponseConflict = fmt.Errorf("%w: response conflicts with an existing one", ErrInvalidState)
)
