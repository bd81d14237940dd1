package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
	"github.com/ZiyamSanthosh/identity-governance/internal/core/port"
	"github.com/ZiyamSanthosh/identity-governance/internal/repository"
)

// TenantRepository resolves tenant domains against the um_tenant table.
type TenantRepository struct {
	db      pgClient
	builder squirrel.StatementBuilderType
}

// NewTenantRepository wires a PostgreSQL-backed tenant resolver.
func NewTenantRepository(db pgClient) *TenantRepository {
	return &TenantRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ResolveTenant maps a tenant domain name onto its record.
func (r *TenantRepository) ResolveTenant(ctx context.Context, tenantDomain string) (domain.Tenant, error) {
	tenantDomain = strings.TrimSpace(tenantDomain)
	if tenantDomain == "" {
		return domain.Tenant{}, fmt.Errorf("tenant domain is required")
	}

	stmt, args, err := r.builder.Select("id", "domain").
		From("um_tenant").
		Where(squirrel.Eq{"domain": tenantDomain}).
		ToSql()
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("build select tenant sql: %w", err)
	}

	var tenant domain.Tenant
	if err := r.db.QueryRow(ctx, stmt, args...).Scan(&tenant.ID, &tenant.Domain); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tenant{}, repository.ErrNotFound
		}
		return domain.Tenant{}, repository.NewStorageError("select tenant", err)
	}

	return tenant, nil
}

// DirectoryRepository implements port.RealmService over the um_user_store
// and um_user_attribute tables. Production deployments substitute the real
// directory service; this adapter keeps single-binary setups working.
type DirectoryRepository struct {
	db      pgClient
	builder squirrel.StatementBuilderType
}

// NewDirectoryRepository wires a PostgreSQL-backed realm service.
func NewDirectoryRepository(db pgClient) *DirectoryRepository {
	return &DirectoryRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// UserStoreManager returns a manager scoped to the tenant's active store.
func (r *DirectoryRepository) UserStoreManager(_ context.Context, tenantID int) (port.UserStoreManager, error) {
	return &storeManager{db: r.db, builder: r.builder, tenantID: tenantID}, nil
}

type storeManager struct {
	db       pgClient
	builder  squirrel.StatementBuilderType
	tenantID int
}

// DomainName reads the store's configured domain name. A missing row means
// the domain was never configured and yields the empty string.
func (m *storeManager) DomainName(ctx context.Context) (string, error) {
	stmt, args, err := m.builder.Select("domain_name").
		From("um_user_store").
		Where(squirrel.Eq{"tenant_id": m.tenantID}).
		Where(squirrel.Eq{"active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build select store domain sql: %w", err)
	}

	var name string
	if err := m.db.QueryRow(ctx, stmt, args...).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", repository.NewStorageError("select store domain", err)
	}

	return name, nil
}

// UserClaimValue reads one claim for username; an absent claim yields "".
func (m *storeManager) UserClaimValue(ctx context.Context, username, claimURI string) (string, error) {
	stmt, args, err := m.builder.Select("attr_value").
		From("um_user_attribute").
		Where(squirrel.Eq{"tenant_id": m.tenantID}).
		Where(squirrel.Eq{"user_name": username}).
		Where(squirrel.Eq{"attr_name": claimURI}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build select user claim sql: %w", err)
	}

	var value string
	if err := m.db.QueryRow(ctx, stmt, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", repository.NewStorageError("select user claim", err)
	}

	return value, nil
}

// SetUserClaimValue overwrites one claim for username.
func (m *storeManager) SetUserClaimValue(ctx context.Context, username, claimURI, value string) error {
	stmt, args, err := m.builder.Insert("um_user_attribute").
		Columns("tenant_id", "user_name", "attr_name", "attr_value").
		Values(m.tenantID, username, claimURI, value).
		Suffix("ON CONFLICT (tenant_id, user_name, attr_name) DO UPDATE SET attr_value = EXCLUDED.attr_value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert user claim sql: %w", err)
	}

	if _, err := m.db.Exec(ctx, stmt, args...); err != nil {
		return repository.NewStorageError("upsert user claim", err)
	}

	return nil
}

var (
	_ port.TenantResolver   = (*TenantRepository)(nil)
	_ port.RealmService     = (*DirectoryRepository)(nil)
	_ port.UserStoreManager = (*storeManager)(nil)
)
