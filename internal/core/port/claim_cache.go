package port

import (
	"context"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
)

// ClaimCache is the fast-read secondary store for per-user claim bags. It is
// write-through with no staleness guarantee of its own.
type ClaimCache interface {
	// Load returns the cached bag for username, or repository.ErrNotFound
	// when no bag exists.
	Load(ctx context.Context, tenantID int, username string) (*domain.UserClaimBag, error)

	// Store writes the whole bag back.
	Store(ctx context.Context, tenantID int, bag *domain.UserClaimBag) error

	// UpdateClaim loads the existing bag (creating a fresh one when absent),
	// sets the claim, and stores the bag back.
	UpdateClaim(ctx context.Context, tenantID int, username, claimURI, value string) error
}
