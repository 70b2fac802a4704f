package livestream

import "errors"

var (
	// ErrAuthentication is returned when a webhook signature is missing,
	// malformed or does not match.
	ErrAuthentication = errors.New("invalid webhook signature")

	// ErrMalformedPayload is returned when a recognized event lacks the
	// fields its type requires, or the body is not a JSON object.
	ErrMalformedPayload = errors.New("malformed webhook payload")

	// ErrUnrecognizedEvent marks an event type the service does not act on.
	// It is acknowledged to the sender and never surfaced as a failure.
	ErrUnrecognizedEvent = errors.New("unrecognized webhook event type")

	// ErrMisconfiguredSecret is returned when no shared secret is configured.
	// Every signature check fails closed while it is unset.
	ErrMisconfiguredSecret = errors.New("webhook secret is not configured")
)
