package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
	"github.com/ZiyamSanthosh/identity-governance/internal/core/port"
	"github.com/ZiyamSanthosh/identity-governance/internal/epoch"
	"github.com/ZiyamSanthosh/identity-governance/internal/repository"
)

// InactiveUserService answers tenant-scoped, time-windowed idle-account
// queries and enriches every hit through the user directory.
type InactiveUserService struct {
	store     port.MetadataStore
	tenants   port.TenantResolver
	directory *DirectoryResolver
	converter *epoch.Converter
	workers   int
	logger    *zap.Logger
}

// NewInactiveUserService constructs the idle-account query service.
func NewInactiveUserService(store port.MetadataStore, tenants port.TenantResolver, directory *DirectoryResolver, converter *epoch.Converter, logger *zap.Logger) *InactiveUserService {
	if converter == nil {
		converter = epoch.NewConverter("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InactiveUserService{
		store:     store,
		tenants:   tenants,
		directory: directory,
		converter: converter,
		workers:   1,
		logger:    logger,
	}
}

// WithResolverWorkers enables pooled directory resolution with up to n
// concurrent lookups. At n <= 1 resolution stays sequential and the first
// directory failure aborts the whole query. Above 1, a per-user failure is
// logged and that entry is dropped instead of discarding the batch.
func (s *InactiveUserService) WithResolverWorkers(n int) *InactiveUserService {
	if n > 1 {
		s.workers = n
	}
	return s
}

// GetInactiveUsers returns every account in the tenant whose last login
// falls inside the window described by the two dates. excludeBefore may be
// empty; when set, accounts already idle before it are left out so periodic
// jobs can walk non-overlapping slices. Results keep storage return order.
func (s *InactiveUserService) GetInactiveUsers(ctx context.Context, tenantDomain, inactiveAfter, excludeBefore string) ([]domain.InactiveUser, error) {
	tenantDomain = strings.TrimSpace(tenantDomain)
	if tenantDomain == "" {
		return nil, domain.NewClientError(domain.ErrCodeInvalidTenantDomain, "tenant domain is required", nil)
	}

	window := domain.ActivityWindow{}
	value, err := s.converter.ToEpochSeconds(inactiveAfter)
	if err != nil {
		return nil, domain.NewClientError(domain.ErrCodeInvalidDateFormat, "invalid inactiveAfter date", err)
	}
	window.InactiveAfter = value

	if excludeBefore != "" {
		value, err := s.converter.ToEpochSeconds(excludeBefore)
		if err != nil {
			return nil, domain.NewClientError(domain.ErrCodeInvalidDateFormat, "invalid excludeBefore date", err)
		}
		window.ExcludeBefore = value
	}

	tenant, err := s.tenants.ResolveTenant(ctx, tenantDomain)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewClientError(domain.ErrCodeInvalidTenantDomain, "unknown tenant domain "+tenantDomain, err)
		}
		return nil, domain.NewServerError(domain.ErrCodeStorageFailure, "resolve tenant "+tenantDomain, err)
	}

	usernames, err := s.store.ListIdleUsers(ctx, tenant.ID, domain.ClaimLastLoginTime, window)
	if err != nil {
		return nil, domain.NewServerError(domain.ErrCodeStorageFailure, "list idle users", err)
	}

	if s.workers > 1 {
		return s.resolvePooled(ctx, tenant, usernames)
	}
	return s.resolveSequential(ctx, tenant, usernames)
}

func (s *InactiveUserService) resolveSequential(ctx context.Context, tenant domain.Tenant, usernames []string) ([]domain.InactiveUser, error) {
	entries := make([]domain.InactiveUser, 0, len(usernames))
	for _, username := range usernames {
		email, err := s.directory.FetchEmail(ctx, tenant.ID, username)
		if err != nil {
			return nil, domain.NewServerError(domain.ErrCodeDirectoryFailure, "fetch email for "+username, err)
		}
		entries = append(entries, domain.InactiveUser{
			Username:        username,
			UserStoreDomain: s.directory.StoreDomain(username),
			Email:           email,
		})
	}
	return entries, nil
}

// resolvePooled dispatches each directory lookup to a bounded worker pool.
// Failed lookups drop only the affected entry; successes keep storage order.
func (s *InactiveUserService) resolvePooled(ctx context.Context, tenant domain.Tenant, usernames []string) ([]domain.InactiveUser, error) {
	type result struct {
		entry domain.InactiveUser
		err   error
	}

	results := make([]result, len(usernames))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, username := range usernames {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, username string) {
			defer wg.Done()
			defer func() { <-sem }()

			email, err := s.directory.FetchEmail(ctx, tenant.ID, username)
			if err != nil {
				results[i] = result{err: err}
				return
			}
			results[i] = result{entry: domain.InactiveUser{
				Username:        username,
				UserStoreDomain: s.directory.StoreDomain(username),
				Email:           email,
			}}
		}(i, username)
	}
	wg.Wait()

	entries := make([]domain.InactiveUser, 0, len(usernames))
	for i, res := range results {
		if res.err != nil {
			s.logger.Warn("directory lookup failed, dropping entry",
				zap.String("username", usernames[i]),
				zap.String("tenant_domain", tenant.Domain),
				zap.Error(res.err))
			continue
		}
		entries = append(entries, res.entry)
	}

	return entries, nil
}
