package ports

import (
	"context"

	"github.com/mikey/lead-qualifier/internal/core"
)

// SubmissionServer defines the interface for transports that accept submissions
type SubmissionServer interface {
	// ProcessSubmission runs a submission through the qualification pipeline
	ProcessSubmission(ctx context.Context, sub *core.Submission) (*core.Outcome, error)

	// Start starts the server
	Start() error

	// Stop stops the server
	Stop() error
}
