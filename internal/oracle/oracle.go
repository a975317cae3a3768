// Package oracle provides the classification strategies. Both strategies
// satisfy Classifier and both hand back an untrusted RawVerdict; only the
// validator decides what a verdict actually says.
package oracle

import (
	"context"
	"fmt"

	"casetrail/internal/domain"
	"casetrail/internal/semantic"
)

// Classifier is the single contract every strategy implements. Selection
// between strategies is a constructor-time decision in the pipeline, never a
// runtime type switch.
type Classifier interface {
	Classify(ctx context.Context, sc semantic.Context) (RawVerdict, error)
}

// RawVerdict is oracle-supplied output, possibly malformed. Payload stays an
// opaque byte slice until the validator has parsed and normalized it.
type RawVerdict struct {
	Source  domain.VerdictSource
	Payload []byte
}

// TransportError covers timeouts, network failures, auth rejections and
// service errors from the remote oracle. The pipeline recovers from these by
// switching to the fallback strategy; they are never fatal on their own.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("oracle transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
