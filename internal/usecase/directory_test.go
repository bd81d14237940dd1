package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
	"github.com/ZiyamSanthosh/identity-governance/internal/core/port"
)

type claimWrite struct {
	tenantID int
	username string
	claimURI string
	value    string
}

type storeManagerStub struct {
	domainName string
	domainErr  error
	claims     map[string]map[string]string
	failFor    map[string]error
	setCalls   []claimWrite
	setErr     error
}

func (m *storeManagerStub) DomainName(context.Context) (string, error) {
	return m.domainName, m.domainErr
}

func (m *storeManagerStub) UserClaimValue(_ context.Context, username, claimURI string) (string, error) {
	if err := m.failFor[username]; err != nil {
		return "", err
	}
	return m.claims[username][claimURI], nil
}

func (m *storeManagerStub) SetUserClaimValue(_ context.Context, username, claimURI, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setCalls = append(m.setCalls, claimWrite{username: username, claimURI: claimURI, value: value})
	return nil
}

type realmStub struct {
	manager port.UserStoreManager
	err     error
}

func (r *realmStub) UserStoreManager(context.Context, int) (port.UserStoreManager, error) {
	return r.manager, r.err
}

func TestDirectoryResolverStoreDomain(t *testing.T) {
	resolver := NewDirectoryResolver(&realmStub{}, nil)

	if got := resolver.StoreDomain("SECONDARY/dave"); got != "SECONDARY" {
		t.Fatalf("expected SECONDARY, got %s", got)
	}
	if got := resolver.StoreDomain("alice"); got != domain.PrimaryUserStoreDomain {
		t.Fatalf("expected primary default, got %s", got)
	}
}

func TestDirectoryResolverFetchEmailMatch(t *testing.T) {
	manager := &storeManagerStub{
		domainName: "primary",
		claims: map[string]map[string]string{
			"PRIMARY/alice": {domain.ClaimEmailAddress: "alice@example.com"},
		},
	}
	resolver := NewDirectoryResolver(&realmStub{manager: manager}, nil)

	email, err := resolver.FetchEmail(context.Background(), 1, "PRIMARY/alice")
	if err != nil {
		t.Fatalf("FetchEmail returned error: %v", err)
	}
	if email != "alice@example.com" {
		t.Fatalf("expected alice@example.com, got %s", email)
	}
}

func TestDirectoryResolverFetchEmailBlankDomainDefaultsPrimary(t *testing.T) {
	manager := &storeManagerStub{
		claims: map[string]map[string]string{
			"alice": {domain.ClaimEmailAddress: "alice@example.com"},
		},
	}
	resolver := NewDirectoryResolver(&realmStub{manager: manager}, nil)

	email, err := resolver.FetchEmail(context.Background(), 1, "alice")
	if err != nil {
		t.Fatalf("FetchEmail returned error: %v", err)
	}
	if email != "alice@example.com" {
		t.Fatalf("expected alice@example.com, got %s", email)
	}
}

func TestDirectoryResolverFetchEmailSecondaryStoreFallback(t *testing.T) {
	manager := &storeManagerStub{domainName: "PRIMARY"}
	resolver := NewDirectoryResolver(&realmStub{manager: manager}, nil)

	email, err := resolver.FetchEmail(context.Background(), 1, "SECONDARY/dave")
	if err != nil {
		t.Fatalf("FetchEmail returned error: %v", err)
	}
	if email != "SECONDARY/dave" {
		t.Fatalf("expected the username placeholder, got %s", email)
	}
}

func TestDirectoryResolverFetchEmailAbsentClaim(t *testing.T) {
	manager := &storeManagerStub{domainName: "PRIMARY"}
	resolver := NewDirectoryResolver(&realmStub{manager: manager}, nil)

	email, err := resolver.FetchEmail(context.Background(), 1, "PRIMARY/bob")
	if err != nil {
		t.Fatalf("FetchEmail returned error: %v", err)
	}
	if email != "" {
		t.Fatalf("expected empty email for absent claim, got %s", email)
	}
}

func TestDirectoryResolverFetchEmailRealmFailure(t *testing.T) {
	resolver := NewDirectoryResolver(&realmStub{err: errors.New("directory unavailable")}, nil)

	if _, err := resolver.FetchEmail(context.Background(), 1, "PRIMARY/alice"); err == nil {
		t.Fatalf("expected error when realm resolution fails")
	}
}

func TestDirectoryResolverFetchEmailClaimFailure(t *testing.T) {
	manager := &storeManagerStub{
		domainName: "PRIMARY",
		failFor:    map[string]error{"PRIMARY/alice": errors.New("ldap timeout")},
	}
	resolver := NewDirectoryResolver(&realmStub{manager: manager}, nil)

	if _, err := resolver.FetchEmail(context.Background(), 1, "PRIMARY/alice"); err == nil {
		t.Fatalf("expected error when claim lookup fails")
	}
}
