package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
	"github.com/ZiyamSanthosh/identity-governance/internal/core/port"
)

// DirectoryResolver answers store-domain ownership questions and fetches
// directory claims for individual users.
type DirectoryResolver struct {
	realm  port.RealmService
	logger *zap.Logger
}

// NewDirectoryResolver constructs a resolver over the given realm service.
func NewDirectoryResolver(realm port.RealmService, logger *zap.Logger) *DirectoryResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryResolver{realm: realm, logger: logger}
}

// StoreDomain resolves the store domain owning username, defaulting to the
// primary store when the username carries no prefix.
func (r *DirectoryResolver) StoreDomain(username string) string {
	return domain.StoreDomainOrPrimary(username)
}

// FetchEmail returns the directory email claim for username when the
// tenant's active store owns it. A username owned by a secondary store this
// resolver cannot reach yields the username itself, a deliberate
// degraded-mode placeholder. Directory access failures propagate.
func (r *DirectoryResolver) FetchEmail(ctx context.Context, tenantID int, username string) (string, error) {
	manager, err := r.realm.UserStoreManager(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("resolve user store manager for tenant %d: %w", tenantID, err)
	}

	storeDomain, err := manager.DomainName(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve store domain for tenant %d: %w", tenantID, err)
	}
	if strings.TrimSpace(storeDomain) == "" {
		storeDomain = domain.PrimaryUserStoreDomain
	}

	if !strings.EqualFold(storeDomain, r.StoreDomain(username)) {
		r.logger.Debug("username owned by unreachable secondary store, returning placeholder",
			zap.String("username", username),
			zap.String("store_domain", storeDomain))
		return username, nil
	}

	email, err := manager.UserClaimValue(ctx, username, domain.ClaimEmailAddress)
	if err != nil {
		return "", fmt.Errorf("fetch email claim for %s: %w", username, err)
	}

	return email, nil
}
