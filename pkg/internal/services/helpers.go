package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

func wrapRecordError(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("unable to get %s: %v", what, err)
}
