package checkout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrGateway wraps provider call failures. Surfaced to the caller with a
// generic retry suggestion, never silently swallowed.
var ErrGateway = errors.New("payment provider request failed")

// ValidationError reports missing required checkout fields. When raised, no
// network call has been made.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}
