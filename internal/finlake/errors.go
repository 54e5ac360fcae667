// SPDX-License-Identifier: MIT

package finlake

import (
	"errors"
	"fmt"
)

// BusinessError is a non-retryable failure signaled by the Finlake
// response envelope (responseCode other than "00").
type BusinessError struct {
	Code    string
	Message string
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("finlake responseCode=%s message=%s", e.Code, e.Message)
}

// IsBusiness reports whether err is a Finlake business failure.
func IsBusiness(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}

// transientHTTPError marks HTTP statuses that warrant a retry.
type transientHTTPError struct {
	status int
	body   string
}

func (e *transientHTTPError) Error() string {
	return fmt.Sprintf("finlake HTTP %d: %s", e.status, e.body)
}

// transportError wraps network-level failures (timeouts, resets) so the
// retry policy can tell them apart from malformed responses.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return "finlake transport: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }
