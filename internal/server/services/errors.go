package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/learnprogress/internal/common"
)

// storeError passes taxonomy errors from the repositories through and turns
// anything else into ErrorInternal, keeping the cause for logs.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrConflict),
		errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrForbidden):
		return err
	}
	return fmt.Errorf("%w: %s: %w", common.ErrorInternal, op, err)
}

// requireFields returns ErrValidation naming the first blank field.
// Arguments are name/value pairs.
func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("%w: %s is required", common.ErrValidation, pairs[i])
		}
	}
	return nil
}
