package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commerce-kit/backoffice-core/internal/domain"
)

// PostgresCredentialRepository stores the records in a tiny key-value table.
// Each record lives in one row and is replaced with a single upsert.
type PostgresCredentialRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCredentialRepository builds the postgres backend.
func NewPostgresCredentialRepository(pool *pgxpool.Pool) *PostgresCredentialRepository {
	return &PostgresCredentialRepository{pool: pool}
}

func (r *PostgresCredentialRepository) LoadCredential(ctx context.Context) (*domain.Credential, error) {
	var record credentialRecord
	found, err := r.load(ctx, KeyCredential, &record)
	if err != nil || !found {
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *PostgresCredentialRepository) SaveCredential(ctx context.Context, cred *domain.Credential) error {
	return r.save(ctx, KeyCredential, toCredentialRecord(cred))
}

func (r *PostgresCredentialRepository) LoadIdentity(ctx context.Context) (*domain.Identity, error) {
	var record identityRecord
	found, err := r.load(ctx, KeyIdentity, &record)
	if err != nil || !found {
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *PostgresCredentialRepository) SaveIdentity(ctx context.Context, identity *domain.Identity) error {
	return r.save(ctx, KeyIdentity, toIdentityRecord(identity))
}

func (r *PostgresCredentialRepository) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM session_records WHERE record_key = ANY($1)`,
		[]string{KeyCredential, KeyIdentity})
	if err != nil {
		return fmt.Errorf("clear session records: %w", err)
	}
	return nil
}

func (r *PostgresCredentialRepository) load(ctx context.Context, key string, out any) (bool, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT payload FROM session_records WHERE record_key = $1`, key).Scan(&payload)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s record: %w", key, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode %s record: %w", key, err)
	}
	return true, nil
}

func (r *PostgresCredentialRepository) save(ctx context.Context, key string, record any) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", key, err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO session_records (record_key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (record_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		key, payload)
	if err != nil {
		return fmt.Errorf("save %s record: %w", key, err)
	}
	return nil
}
