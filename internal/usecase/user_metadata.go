package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
	"github.com/ZiyamSanthosh/identity-governance/internal/core/port"
	"github.com/ZiyamSanthosh/identity-governance/internal/epoch"
)

// RecorderPriority orders this handler among co-registered handlers for the
// same event; lower values run first.
const RecorderPriority = 50

// RecorderSettings configures the activity recorder. The values are fixed at
// construction and never mutated at runtime.
type RecorderSettings struct {
	// Enabled is the master switch; a disabled recorder ignores every event.
	Enabled bool
	// DurableWrites selects the dual-write path (metadata store + claim
	// cache) over setting the claim directly on the directory.
	DurableWrites bool
}

type eventHandler func(ctx context.Context, event domain.UserLifecycleEvent) error

// UserMetadataRecorder reacts to authentication and credential-update
// lifecycle events by stamping the matching activity claim with the current
// epoch time. It keeps no state across events beyond its configuration.
type UserMetadataRecorder struct {
	cfg       RecorderSettings
	store     port.MetadataStore
	cache     port.ClaimCache
	realm     port.RealmService
	converter *epoch.Converter
	logger    *zap.Logger
	handlers  map[string]eventHandler
}

// NewUserMetadataRecorder constructs the recorder with its dispatch table.
func NewUserMetadataRecorder(cfg RecorderSettings, store port.MetadataStore, cache port.ClaimCache, realm port.RealmService, converter *epoch.Converter, logger *zap.Logger) *UserMetadataRecorder {
	if converter == nil {
		converter = epoch.NewConverter("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &UserMetadataRecorder{
		cfg:       cfg,
		store:     store,
		cache:     cache,
		realm:     realm,
		converter: converter,
		logger:    logger,
	}
	r.handlers = map[string]eventHandler{
		domain.EventPostAuthentication:          r.handlePostAuthentication,
		domain.EventPostUpdateCredential:        r.handleCredentialUpdate,
		domain.EventPostUpdateCredentialByAdmin: r.handleCredentialUpdate,
	}
	return r
}

// Name identifies the handler on the event bus.
func (r *UserMetadataRecorder) Name() string { return "user-metadata-recorder" }

// Priority returns the handler's relative ordering value.
func (r *UserMetadataRecorder) Priority() int { return RecorderPriority }

// HandleEvent consumes one lifecycle event. Unrecognized events and events
// arriving while the recorder is disabled are ignored without error.
func (r *UserMetadataRecorder) HandleEvent(ctx context.Context, event domain.UserLifecycleEvent) error {
	if !r.cfg.Enabled {
		r.logger.Debug("user metadata recorder is disabled, ignoring event", zap.String("event", event.Name))
		return nil
	}

	handler, ok := r.handlers[event.Name]
	if !ok {
		return nil
	}

	return handler(ctx, event)
}

func (r *UserMetadataRecorder) handlePostAuthentication(ctx context.Context, event domain.UserLifecycleEvent) error {
	if !event.OperationSuccess {
		return nil
	}
	return r.recordClaim(ctx, event, domain.ClaimLastLoginTime)
}

func (r *UserMetadataRecorder) handleCredentialUpdate(ctx context.Context, event domain.UserLifecycleEvent) error {
	return r.recordClaim(ctx, event, domain.ClaimLastPasswordUpdateTime)
}

func (r *UserMetadataRecorder) recordClaim(ctx context.Context, event domain.UserLifecycleEvent, claimURI string) error {
	now := r.converter.Now()

	if !r.cfg.DurableWrites {
		return r.setDirectoryClaim(ctx, event, claimURI, now)
	}

	username := event.QualifiedUsername()
	if domain.IsReservedAccount(username) {
		r.logger.Debug("skipping reserved account", zap.String("username", username))
		return nil
	}

	if err := r.store.UpsertClaim(ctx, event.TenantID, username, claimURI, now); err != nil {
		return domain.NewServerError(domain.ErrCodeStorageFailure,
			fmt.Sprintf("record %s for %s", claimURI, username), err)
	}

	// The durable write and the cache update are independent; when the
	// cache write fails the stores diverge until the next successful write
	// wins. The durable value is already safe, so the event is not failed.
	if err := r.cache.UpdateClaim(ctx, event.TenantID, username, claimURI, now); err != nil {
		r.logger.Warn("claim cache update failed after durable write",
			zap.String("username", username),
			zap.String("claim", claimURI),
			zap.Error(err))
	}

	return nil
}

// setDirectoryClaim is the legacy single-write path: the claim goes straight
// to the tenant's user store.
func (r *UserMetadataRecorder) setDirectoryClaim(ctx context.Context, event domain.UserLifecycleEvent, claimURI, value string) error {
	manager, err := r.realm.UserStoreManager(ctx, event.TenantID)
	if err != nil {
		return domain.NewServerError(domain.ErrCodeDirectoryFailure,
			fmt.Sprintf("resolve user store manager for tenant %d", event.TenantID), err)
	}

	if err := manager.SetUserClaimValue(ctx, event.Username, claimURI, value); err != nil {
		return domain.NewServerError(domain.ErrCodeDirectoryFailure,
			fmt.Sprintf("set %s for %s", claimURI, event.Username), err)
	}

	return nil
}
