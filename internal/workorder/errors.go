// File path: internal/workorder/errors.go
package workorder

import "errors"

// ErrLookupInFlight is returned when a second lookup starts while one is
// still pending. There is no queueing and no cancellation; the caller retries
// once the pending lookup resolves.
var ErrLookupInFlight = errors.New("a lookup is already in progress")

// ValidationError blocks a lookup before any network call: malformed id or
// missing portal credentials.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
