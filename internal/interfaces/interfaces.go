// Package interfaces defines the client and service contracts consumed
// by the server layer.
package interfaces

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/sonsoflibertyy/lda/internal/models"
)

// WalkOptions bounds a pagination traversal.
type WalkOptions struct {
	MaxRows  int
	MaxPages int
}

// WalkResult is the outcome of a pagination traversal: the accumulated
// row sequence, the realized page count, and a non-fatal capping warning
// when a budget truncated the walk.
type WalkResult struct {
	Rows    []json.RawMessage
	Pages   int
	Warning string
}

// RegistryClient is the upstream lobbying-disclosure registry API.
type RegistryClient interface {
	// GetJSON issues a single rewritten, rate-limited, retried GET.
	GetJSON(ctx context.Context, path string, params url.Values, result interface{}) error
	// Walk traverses a paginated collection, carrying the caller's
	// filters forward onto every next-page URL.
	Walk(ctx context.Context, path string, params url.Values, opts WalkOptions) (*WalkResult, error)
}

// RollupService produces aggregated summaries from raw registry rows.
type RollupService interface {
	Summary(ctx context.Context, req models.SummaryRequest) (*models.SummaryPayload, error)
	Contributions(ctx context.Context, req models.ContributionRollupRequest) (*models.ContributionRollupPayload, error)
}
