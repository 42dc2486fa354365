package tmdb

import (
	"errors"
	"fmt"
	"net/url"

	"moviehub/internal/core/domain"
)

var errInvalidPayload = errors.New("provider returned a non-JSON body")

// StatusError is a non-2xx answer from the provider.
type StatusError struct {
	StatusCode int
	StatusText string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("TMDb API error: %d %s", e.StatusCode, e.StatusText)
}

func (e *StatusError) Unwrap() error { return domain.ErrProviderStatus }

// TransportError is a failure to get any answer from the provider.
type TransportError struct {
	Err error
}

// newTransportError drops the *url.Error wrapper, whose message repeats
// the request URL and with it the API key.
func newTransportError(err error) *TransportError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return &TransportError{Err: err}
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	return target == domain.ErrProviderUnavailable
}

// isRetryable accepts transport failures and provider 5xx answers.
func isRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
