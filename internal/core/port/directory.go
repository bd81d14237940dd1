package port

import (
	"context"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
)

// UserStoreManager grants scoped access to one tenant user store inside the
// external directory service.
type UserStoreManager interface {
	// DomainName returns the store's configured domain name; implementations
	// may return the empty string when none is configured.
	DomainName(ctx context.Context) (string, error)

	// UserClaimValue reads a single claim for username. An absent claim
	// yields the empty string, not an error.
	UserClaimValue(ctx context.Context, username, claimURI string) (string, error)

	// SetUserClaimValue writes a single claim for username directly on the
	// directory.
	SetUserClaimValue(ctx context.Context, username, claimURI, value string) error
}

// RealmService resolves the active user-store manager for a tenant.
type RealmService interface {
	UserStoreManager(ctx context.Context, tenantID int) (UserStoreManager, error)
}

// TenantResolver maps a tenant domain name onto the tenant record.
type TenantResolver interface {
	ResolveTenant(ctx context.Context, tenantDomain string) (domain.Tenant, error)
}
