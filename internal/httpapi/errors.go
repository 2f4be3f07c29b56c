package httpapi

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQueryOption is the cause of every rejected $top, $skip or $skiptoken.
	ErrInvalidQueryOption = errors.New("invalid query option")

	errSkipAndSkipToken = fmt.Errorf("%w: $skip and $skiptoken cannot be combined", ErrInvalidQueryOption)
)

func errNotNonNegative(text string) error {
	return fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidQueryOption, text)
}

func errTopTooLarge(maxTop int) error {
	return fmt.Errorf("%w: must not exceed %d", ErrInvalidQueryOption, maxTop)
}
