package sequence

import "errors"

var (
	// ErrInvalidParams is returned for sizes, degrees or exponents outside the model's domain.
	ErrInvalidParams = errors.New("sequence: invalid parameters")
)
