package dist

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpec reports an unknown family, wrong parameter names or an
	// out-of-domain parameter value.
	ErrInvalidSpec = errors.New("invalid distribution spec")

	// ErrSamplerDomain reports parameters whose samples can overflow float64,
	// or a validation sample drawn at construction that was undefined.
	ErrSamplerDomain = errors.New("sampler domain error")
)

func specErrorf(f Family, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidSpec, f, fmt.Sprintf(format, args...))
}

func domainErrorf(f Family, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrSamplerDomain, f, fmt.Sprintf(format, args...))
}
