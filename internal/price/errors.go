package price

import (
	"errors"

	"github.com/mtlprog/pricebot/internal/domain"
)

var (
	// ErrConfigurationMissing indicates no price config is stored for the scope.
	ErrConfigurationMissing = errors.New("Price config not found. Admin or Owner can set new price config.")
	// ErrUnknownToken indicates a selector that is not in the token registry.
	ErrUnknownToken = errors.New("Token not found in the available token list")
	// ErrUpstreamUnavailable matches every UpstreamError.
	ErrUpstreamUnavailable = errors.New("upstream price source unavailable")
)

// UpstreamError is a failed adapter call. Its text is the adapter's message.
type UpstreamError struct {
	Provider domain.Provider
	Err      error
}

func (e *UpstreamError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstreamUnavailable, e.Err}
}
