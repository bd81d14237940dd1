package postgres

import (
	"context"
	"fmt"
	"strings"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
	"github.com/ZiyamSanthosh/identity-governance/internal/core/port"
	"github.com/ZiyamSanthosh/identity-governance/internal/repository"
)

const metadataTable = "idn_identity_user_data"

// MetadataRepository implements port.MetadataStore using PostgreSQL.
type MetadataRepository struct {
	db      pgClient
	builder squirrel.StatementBuilderType
}

// NewMetadataRepository wires a PostgreSQL-backed metadata store.
func NewMetadataRepository(db pgClient) *MetadataRepository {
	return &MetadataRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// UpsertClaim overwrites the stored value for (username, claimURI) within
// the tenant. Writing the same value again is a no-op observable effect.
func (r *MetadataRepository) UpsertClaim(ctx context.Context, tenantID int, username, claimURI, value string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if strings.TrimSpace(claimURI) == "" {
		return fmt.Errorf("claim uri is required")
	}

	stmt, args, err := r.builder.Insert(metadataTable).
		Columns("tenant_id", "user_name", "data_key", "data_value").
		Values(tenantID, username, claimURI, value).
		Suffix("ON CONFLICT (tenant_id, user_name, data_key) DO UPDATE SET data_value = EXCLUDED.data_value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert claim sql: %w", err)
	}

	if _, err := r.db.Exec(ctx, stmt, args...); err != nil {
		return repository.NewStorageError("upsert claim", err)
	}

	return nil
}

// ListIdleUsers returns the usernames whose claimURI value falls inside the
// window, in ascending activity order. Comparison happens numerically on the
// stored epoch strings, so differing string widths cannot skew the result.
// The lookup runs in one read-only transaction that is always closed.
func (r *MetadataRepository) ListIdleUsers(ctx context.Context, tenantID int, claimURI string, window domain.ActivityWindow) ([]string, error) {
	query := r.builder.Select("user_name").
		From(metadataTable).
		Where(squirrel.Eq{"data_key": claimURI}).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where("user_name <> ''").
		Where(squirrel.Expr("CAST(data_value AS BIGINT) < CAST(? AS BIGINT)", window.InactiveAfter)).
		OrderBy("CAST(data_value AS BIGINT) ASC", "user_name ASC")

	if window.Bounded() {
		query = query.Where(squirrel.Expr("CAST(data_value AS BIGINT) >= CAST(? AS BIGINT)", window.ExcludeBefore))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list idle users sql: %w", err)
	}

	var usernames []string
	err = r.withReadOnlyTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, stmt, args...)
		if err != nil {
			return repository.NewStorageError("query idle users", err)
		}
		defer rows.Close()

		for rows.Next() {
			var username string
			if err := rows.Scan(&username); err != nil {
				return repository.NewStorageError("scan idle user", err)
			}
			if strings.TrimSpace(username) == "" {
				continue
			}
			usernames = append(usernames, username)
		}

		if err := rows.Err(); err != nil {
			return repository.NewStorageError("iterate idle users", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return usernames, nil
}

// withReadOnlyTx runs fn inside a read-only transaction, guaranteeing
// commit-or-rollback on every exit path.
func (r *MetadataRepository) withReadOnlyTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return repository.NewStorageError("begin", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return repository.NewStorageError("commit", err)
	}

	return nil
}

var _ port.MetadataStore = (*MetadataRepository)(nil)
