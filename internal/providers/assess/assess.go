// Package assess holds the pronunciation-assessment vendor adapters. Each
// vendor mode is its own Provider implementation; the normalizer consumes
// the raw response so adding a vendor is a new adapter, not new conditionals
// in the pipeline.
package assess

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnreachable marks timeouts and transport failures. This is the single
// retry/fallback boundary: providers never retry, the caller decides.
var ErrUnreachable = errors.New("assess: vendor unreachable")

// RejectedError is a non-2xx vendor response. The caller is expected to
// degrade to a fallback result rather than surface this to the end user.
type RejectedError struct {
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("assess: vendor rejected request: status %d: %s", e.Status, e.Body)
}

// RawResult is one unparsed vendor response body.
type RawResult struct {
	Body []byte
}

// Provider submits one audio payload with its reference text and awaits
// exactly one response. Strictly request/response: no streaming, no partial
// results, no retries.
type Provider interface {
	Assess(ctx context.Context, audio []byte, mimeType, referenceText string) (*RawResult, error)
	Configured() bool
	Close() error
}
