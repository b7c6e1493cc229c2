package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/commerce-kit/backoffice-core/internal/domain"
)

const redisKeyPrefix = "backoffice:session:"

// RedisCredentialRepository stores the records as JSON strings in Redis. Each
// record is written with a single SET, so replacement is atomic.
type RedisCredentialRepository struct {
	client *redis.Client
}

// NewRedisCredentialRepository builds the redis backend.
func NewRedisCredentialRepository(client *redis.Client) *RedisCredentialRepository {
	return &RedisCredentialRepository{client: client}
}

func (r *RedisCredentialRepository) LoadCredential(ctx context.Context) (*domain.Credential, error) {
	var record credentialRecord
	found, err := r.load(ctx, KeyCredential, &record)
	if err != nil || !found {
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *RedisCredentialRepository) SaveCredential(ctx context.Context, cred *domain.Credential) error {
	return r.save(ctx, KeyCredential, toCredentialRecord(cred))
}

func (r *RedisCredentialRepository) LoadIdentity(ctx context.Context) (*domain.Identity, error) {
	var record identityRecord
	found, err := r.load(ctx, KeyIdentity, &record)
	if err != nil || !found {
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *RedisCredentialRepository) SaveIdentity(ctx context.Context, identity *domain.Identity) error {
	return r.save(ctx, KeyIdentity, toIdentityRecord(identity))
}

func (r *RedisCredentialRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, redisKeyPrefix+KeyCredential, redisKeyPrefix+KeyIdentity).Err(); err != nil {
		return fmt.Errorf("clear session records: %w", err)
	}
	return nil
}

func (r *RedisCredentialRepository) load(ctx context.Context, key string, out any) (bool, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s record: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s record: %w", key, err)
	}
	return true, nil
}

func (r *RedisCredentialRepository) save(ctx context.Context, key string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", key, err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("save %s record: %w", key, err)
	}
	return nil
}
