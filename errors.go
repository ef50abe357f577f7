package go_wish

import (
	"errors"
	"fmt"

	"github.com/stremovskyy/go-wish/consts"
)

// ErrMissingKey is wrapped by the *ParamError returned when no API key is configured.
var ErrMissingKey = errors.New("api key is not configured")

// ParamError indicates a missing or invalid call parameter. It is returned
// before any request is sent.
type ParamError struct {
	Param   string
	Message string
	Err     error
}

func (e *ParamError) Error() string {
	if e == nil {
		return "param error"
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Param == "" {
		return fmt.Sprintf("param error: %s", msg)
	}
	return fmt.Sprintf("param error: %s: %s", e.Param, msg)
}

func (e *ParamError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsParamError checks whether err is a *ParamError.
func IsParamError(err error) bool {
	var pe *ParamError
	return errors.As(err, &pe)
}

// IsMissingKey reports whether err was caused by an unconfigured API key.
func IsMissingKey(err error) bool {
	return errors.Is(err, ErrMissingKey)
}

// HTTPError is a transport failure or a non-2xx response.
//
// StatusCode is 0 when no response was received (network error, timeout).
// When the error body was a Wish envelope, Err holds the decoded *APIError.
type HTTPError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "wish http error"
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("wish http error: %v", e.Err)
	}
	if len(e.Body) == 0 {
		return fmt.Sprintf("wish http error: status %d", e.StatusCode)
	}
	b := e.Body
	if len(b) > 1024 {
		b = b[:1024]
	}
	return fmt.Sprintf("wish http error: status %d: %s", e.StatusCode, string(b))
}

func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// APIError is a well-formed envelope with a nonzero code.
type APIError struct {
	Code    int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e == nil {
		return "wish api error"
	}
	if e.Message == "" {
		return fmt.Sprintf("wish api error: code %d", e.Code)
	}
	return fmt.Sprintf("wish api error: code %d: %s", e.Code, e.Message)
}

func (e *APIError) APICode() consts.APICode {
	if e == nil {
		return consts.CodeSuccess
	}
	return consts.APICode(e.Code)
}

// IsAPIError checks whether err carries an *APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsNotFound reports whether the API said the requested resource does not exist.
func IsNotFound(err error) bool {
	ae, ok := IsAPIError(err)
	return ok && ae.APICode() == consts.CodeNotFound
}

// IsUnauthorized reports whether the API rejected the key.
func IsUnauthorized(err error) bool {
	ae, ok := IsAPIError(err)
	if !ok {
		return false
	}
	switch ae.APICode() {
	case consts.CodeUnauthorized, consts.CodeInvalidKey, consts.CodeTokenExpired:
		return true
	}
	return false
}

// ServerError is a response that is not a usable envelope.
type ServerError struct {
	Body []byte
	Err  error
}

func (e *ServerError) Error() string {
	if e == nil {
		return "wish server error"
	}
	b := e.Body
	if len(b) > 1024 {
		b = b[:1024]
	}
	if e.Err == nil {
		return fmt.Sprintf("wish server error: unexpected response: %s", string(b))
	}
	return fmt.Sprintf("wish server error: %v: %s", e.Err, string(b))
}

func (e *ServerError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
