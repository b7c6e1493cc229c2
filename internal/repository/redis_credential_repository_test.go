package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commerce-kit/backoffice-core/internal/domain"
)

func newRedisRepo(t *testing.T) *RedisCredentialRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCredentialRepository(client)
}

func TestRedisRepositoryRoundTrip(t *testing.T) {
	repo := newRedisRepo(t)
	ctx := context.Background()

	cred, err := repo.LoadCredential(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred)

	require.NoError(t, repo.SaveCredential(ctx, &domain.Credential{AccessToken: "a1", RefreshToken: "r1"}))
	require.NoError(t, repo.SaveIdentity(ctx, &domain.Identity{
		ID:     "op-1",
		Email:  "admin@example.com",
		Role:   domain.RoleAdmin,
		Status: domain.AccountStatusActive,
	}))

	cred, err = repo.LoadCredential(ctx)
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "a1", cred.AccessToken)

	identity, err := repo.LoadIdentity(ctx)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, domain.RoleAdmin, identity.Role)
	assert.Equal(t, domain.AccountStatusActive, identity.Status)
}

func TestRedisRepositoryClearRemovesBothRecords(t *testing.T) {
	repo := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveCredential(ctx, &domain.Credential{AccessToken: "a1", RefreshToken: "r1"}))
	require.NoError(t, repo.SaveIdentity(ctx, &domain.Identity{ID: "op-1", Role: domain.RoleStaff}))
	require.NoError(t, repo.Clear(ctx))

	cred, err := repo.LoadCredential(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred)
	identity, err := repo.LoadIdentity(ctx)
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestRedisRepositorySaveReplacesWholeRecord(t *testing.T) {
	repo := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveCredential(ctx, &domain.Credential{AccessToken: "a1", RefreshToken: "r1"}))
	require.NoError(t, repo.SaveCredential(ctx, &domain.Credential{AccessToken: "a2", RefreshToken: "r2"}))

	cred, err := repo.LoadCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a2", cred.AccessToken)
	assert.Equal(t, "r2", cred.RefreshToken)
}
