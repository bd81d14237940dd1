package usecase

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
	"github.com/ZiyamSanthosh/identity-governance/internal/epoch"
	"github.com/ZiyamSanthosh/identity-governance/internal/repository"
)

type metadataStoreStub struct {
	upserts      []claimWrite
	upsertErr    error
	idleUsers    []string
	listErr      error
	listCalls    int
	lastTenantID int
	lastClaim    string
	lastWindow   domain.ActivityWindow
}

func (m *metadataStoreStub) UpsertClaim(_ context.Context, tenantID int, username, claimURI, value string) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts = append(m.upserts, claimWrite{tenantID: tenantID, username: username, claimURI: claimURI, value: value})
	return nil
}

func (m *metadataStoreStub) ListIdleUsers(_ context.Context, tenantID int, claimURI string, window domain.ActivityWindow) ([]string, error) {
	m.listCalls++
	m.lastTenantID = tenantID
	m.lastClaim = claimURI
	m.lastWindow = window
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.idleUsers, nil
}

type tenantResolverStub struct {
	tenants map[string]domain.Tenant
	err     error
}

func (r *tenantResolverStub) ResolveTenant(_ context.Context, tenantDomain string) (domain.Tenant, error) {
	if r.err != nil {
		return domain.Tenant{}, r.err
	}
	tenant, ok := r.tenants[tenantDomain]
	if !ok {
		return domain.Tenant{}, repository.ErrNotFound
	}
	return tenant, nil
}

func acmeResolver() *tenantResolverStub {
	return &tenantResolverStub{tenants: map[string]domain.Tenant{
		"acme": {ID: 1, Domain: "acme"},
	}}
}

func epochOf(t *testing.T, date string) string {
	t.Helper()
	parsed, err := time.Parse(epoch.DefaultLayout, date)
	if err != nil {
		t.Fatalf("parse %s: %v", date, err)
	}
	return strconv.FormatInt(parsed.Unix(), 10)
}

func TestGetInactiveUsersSingleBound(t *testing.T) {
	store := &metadataStoreStub{idleUsers: []string{"PRIMARY/alice"}}
	manager := &storeManagerStub{
		domainName: "PRIMARY",
		claims: map[string]map[string]string{
			"PRIMARY/alice": {domain.ClaimEmailAddress: "alice@acme.test"},
		},
	}
	svc := NewInactiveUserService(store, acmeResolver(),
		NewDirectoryResolver(&realmStub{manager: manager}, nil), nil, zaptest.NewLogger(t))

	entries, err := svc.GetInactiveUsers(context.Background(), "acme", "2023-01-01", "")
	if err != nil {
		t.Fatalf("GetInactiveUsers returned error: %v", err)
	}

	if store.lastTenantID != 1 || store.lastClaim != domain.ClaimLastLoginTime {
		t.Fatalf("unexpected store scope: tenant=%d claim=%s", store.lastTenantID, store.lastClaim)
	}
	if store.lastWindow.InactiveAfter != epochOf(t, "2023-01-01") {
		t.Fatalf("unexpected inactiveAfter epoch: %s", store.lastWindow.InactiveAfter)
	}
	if store.lastWindow.Bounded() {
		t.Fatalf("expected single-bound window, got excludeBefore=%s", store.lastWindow.ExcludeBefore)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Username != "PRIMARY/alice" || entry.UserStoreDomain != "PRIMARY" || entry.Email != "alice@acme.test" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestGetInactiveUsersBoundedWindow(t *testing.T) {
	store := &metadataStoreStub{idleUsers: []string{"PRIMARY/carol"}}
	manager := &storeManagerStub{
		domainName: "PRIMARY",
		claims: map[string]map[string]string{
			"PRIMARY/carol": {domain.ClaimEmailAddress: "carol@acme.test"},
		},
	}
	svc := NewInactiveUserService(store, acmeResolver(),
		NewDirectoryResolver(&realmStub{manager: manager}, nil), nil, zaptest.NewLogger(t))

	entries, err := svc.GetInactiveUsers(context.Background(), "acme", "2023-06-01", "2023-01-01")
	if err != nil {
		t.Fatalf("GetInactiveUsers returned error: %v", err)
	}

	if store.lastWindow.InactiveAfter != epochOf(t, "2023-06-01") {
		t.Fatalf("unexpected inactiveAfter epoch: %s", store.lastWindow.InactiveAfter)
	}
	if store.lastWindow.ExcludeBefore != epochOf(t, "2023-01-01") {
		t.Fatalf("unexpected excludeBefore epoch: %s", store.lastWindow.ExcludeBefore)
	}
	if len(entries) != 1 || entries[0].Username != "PRIMARY/carol" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestGetInactiveUsersInvalidDateSkipsStorage(t *testing.T) {
	store := &metadataStoreStub{}
	svc := NewInactiveUserService(store, acmeResolver(),
		NewDirectoryResolver(&realmStub{}, nil), nil, zaptest.NewLogger(t))

	_, err := svc.GetInactiveUsers(context.Background(), "acme", "not-a-date", "")
	var ce *domain.ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ClientError, got %v", err)
	}
	if ce.Code != domain.ErrCodeInvalidDateFormat {
		t.Fatalf("expected code %s, got %s", domain.ErrCodeInvalidDateFormat, ce.Code)
	}
	if store.listCalls != 0 {
		t.Fatalf("storage must not be queried on invalid input")
	}
}

func TestGetInactiveUsersBlankTenantDomain(t *testing.T) {
	svc := NewInactiveUserService(&metadataStoreStub{}, acmeResolver(),
		NewDirectoryResolver(&realmStub{}, nil), nil, zaptest.NewLogger(t))

	_, err := svc.GetInactiveUsers(context.Background(), "   ", "2023-01-01", "")
	if !domain.IsClientError(err) {
		t.Fatalf("expected ClientError, got %v", err)
	}
}

func TestGetInactiveUsersUnknownTenant(t *testing.T) {
	svc := NewInactiveUserService(&metadataStoreStub{}, acmeResolver(),
		NewDirectoryResolver(&realmStub{}, nil), nil, zaptest.NewLogger(t))

	_, err := svc.GetInactiveUsers(context.Background(), "globex", "2023-01-01", "")
	if !domain.IsClientError(err) {
		t.Fatalf("expected ClientError for unknown tenant, got %v", err)
	}
}

func TestGetInactiveUsersStorageFailure(t *testing.T) {
	store := &metadataStoreStub{listErr: repository.NewStorageError("query idle users", errors.New("down"))}
	svc := NewInactiveUserService(store, acmeResolver(),
		NewDirectoryResolver(&realmStub{}, nil), nil, zaptest.NewLogger(t))

	_, err := svc.GetInactiveUsers(context.Background(), "acme", "2023-01-01", "")
	var se *domain.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if se.Code != domain.ErrCodeStorageFailure {
		t.Fatalf("expected code %s, got %s", domain.ErrCodeStorageFailure, se.Code)
	}
}

func TestGetInactiveUsersDirectoryFailureAbortsBatch(t *testing.T) {
	store := &metadataStoreStub{idleUsers: []string{"PRIMARY/alice", "PRIMARY/bob"}}
	manager := &storeManagerStub{
		domainName: "PRIMARY",
		failFor:    map[string]error{"PRIMARY/alice": errors.New("ldap timeout")},
	}
	svc := NewInactiveUserService(store, acmeResolver(),
		NewDirectoryResolver(&realmStub{manager: manager}, nil), nil, zaptest.NewLogger(t))

	entries, err := svc.GetInactiveUsers(context.Background(), "acme", "2023-01-01", "")
	if !domain.IsServerError(err) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if entries != nil {
		t.Fatalf("expected no partial result, got %+v", entries)
	}
}

func TestGetInactiveUsersSecondaryStoreFallback(t *testing.T) {
	store := &metadataStoreStub{idleUsers: []string{"SECONDARY/dave"}}
	manager := &storeManagerStub{domainName: "PRIMARY"}
	svc := NewInactiveUserService(store, acmeResolver(),
		NewDirectoryResolver(&realmStub{manager: manager}, nil), nil, zaptest.NewLogger(t))

	entries, err := svc.GetInactiveUsers(context.Background(), "acme", "2023-01-01", "")
	if err != nil {
		t.Fatalf("GetInactiveUsers returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Email != "SECONDARY/dave" || entries[0].UserStoreDomain != "SECONDARY" {
		t.Fatalf("unexpected fallback entry: %+v", entries[0])
	}
}

func TestGetInactiveUsersPooledDropsFailedLookups(t *testing.T) {
	store := &metadataStoreStub{idleUsers: []string{"PRIMARY/alice", "PRIMARY/bob", "PRIMARY/carol"}}
	manager := &storeManagerStub{
		domainName: "PRIMARY",
		claims: map[string]map[string]string{
			"PRIMARY/alice": {domain.ClaimEmailAddress: "alice@acme.test"},
			"PRIMARY/carol": {domain.ClaimEmailAddress: "carol@acme.test"},
		},
		failFor: map[string]error{"PRIMARY/bob": errors.New("ldap timeout")},
	}
	svc := NewInactiveUserService(store, acmeResolver(),
		NewDirectoryResolver(&realmStub{manager: manager}, nil), nil, zaptest.NewLogger(t)).
		WithResolverWorkers(4)

	entries, err := svc.GetInactiveUsers(context.Background(), "acme", "2023-01-01", "")
	if err != nil {
		t.Fatalf("GetInactiveUsers returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after dropping the failed lookup, got %d", len(entries))
	}
	if entries[0].Username != "PRIMARY/alice" || entries[1].Username != "PRIMARY/carol" {
		t.Fatalf("storage order not preserved: %+v", entries)
	}
}
