package apperror

import "errors"

// The closed set of failure kinds in this service. Every failure is terminal
// for the single event or job being processed; nothing in here is retried.
var (
	ErrUpstreamLookup = errors.New("upstream user lookup failed")
	ErrPersistence    = errors.New("store operation failed")
	ErrNotification   = errors.New("notification delivery failed")
	ErrMalformedEvent = errors.New("malformed event")
)

// Kind maps an error to a stable label for logs and metrics.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrUpstreamLookup):
		return "upstream_lookup"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrNotification):
		return "notification"
	case errors.Is(err, ErrMalformedEvent):
		return "malformed_event"
	default:
		return "unknown"
	}
}
