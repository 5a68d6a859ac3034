package judiciary

import (
	"context"
	"fmt"
)

// CaseRecordSource is the public case-record search service (DataJud).
type CaseRecordSource interface {
	// FindCase returns the first hit for caseID, or nil when the court has no
	// public record of it.
	FindCase(ctx context.Context, route Route, caseID string) (*CaseSource, error)
	// ListByBody returns the most recent records of an adjudicating body,
	// newest filing first.
	ListByBody(ctx context.Context, route Route, body BodyRef, size int) ([]CaseSource, error)
}

// CourtRejectedError reports a non-success HTTP status from the court API.
type CourtRejectedError struct {
	Court      string
	StatusCode int
}

func (e *CourtRejectedError) Error() string {
	return fmt.Sprintf("court %s answered HTTP %d", e.Court, e.StatusCode)
}

//Personal.AI order the ending
