// Package cases provides read-only access to the case store. The pipeline
// treats cases as externally owned: nothing here mutates them.
package cases

import (
	"context"

	"casetrail/internal/domain"
)

// Source is the narrow view of the external case store the pipeline needs.
type Source interface {
	Get(ctx context.Context, caseID string) (domain.Case, error)
	List(ctx context.Context) ([]domain.Case, error)
}
