package interfaces

import (
	"context"

	"github.com/rstatelabs/playnews/internal/models"
)

// ReviewClient submits one persisted record to the external review workflow.
// Implementations must not return an error for "not approved"; transport
// failures are reported inside the response, mirroring the endpoint's own
// error envelope.
type ReviewClient interface {
	SubmitForReview(ctx context.Context, recordID uint64) *models.ReviewResponse
}
