package port

import (
	"context"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
)

// MetadataStore exposes durable persistence for per-user claim values and
// windowed idle-user lookups.
type MetadataStore interface {
	// UpsertClaim durably writes value for (username, claimURI) within the
	// tenant, overwriting any prior value. Repeating the same write is a
	// no-op observable effect.
	UpsertClaim(ctx context.Context, tenantID int, username, claimURI, value string) error

	// ListIdleUsers returns, in storage iteration order, the usernames in
	// the tenant whose claimURI value falls inside the window. Rows with a
	// blank username are skipped silently.
	ListIdleUsers(ctx context.Context, tenantID int, claimURI string, window domain.ActivityWindow) ([]string, error)
}
