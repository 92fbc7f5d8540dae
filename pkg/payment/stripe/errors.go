package stripe

import "errors"

var (
	// ErrInvalidRequest is returned when the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrPaymentFailed is returned when the payment process fails
	ErrPaymentFailed = errors.New("payment failed")

	// ErrSessionNotFound is returned when the checkout session does not exist
	ErrSessionNotFound = errors.New("checkout session not found")

	// ErrSessionNotPaid is returned when the checkout session has not been paid
	ErrSessionNotPaid = errors.New("checkout session not paid")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrUnauthorized is returned when the API key is invalid
	ErrUnauthorized = errors.New("unauthorized: invalid API key")
)
