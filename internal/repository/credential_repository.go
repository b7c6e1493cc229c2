package repository

import (
	"context"
	"time"

	"github.com/commerce-kit/backoffice-core/internal/domain"
)

// Store record keys. The credential is one named record replaced as a whole;
// the identity is cached under its own key and re-validated on bootstrap.
const (
	KeyCredential = "credential"
	KeyIdentity   = "identity"
)

// CredentialRepository persists the operator's credential pair and cached
// identity across restarts. Absence is reported as (nil, nil), not an error.
// The session manager is the only writer; saves replace the whole record.
type CredentialRepository interface {
	LoadCredential(ctx context.Context) (*domain.Credential, error)
	SaveCredential(ctx context.Context, cred *domain.Credential) error
	LoadIdentity(ctx context.Context) (*domain.Identity, error)
	SaveIdentity(ctx context.Context, identity *domain.Identity) error
	Clear(ctx context.Context) error
}

// credentialRecord is the stored form of a credential.
type credentialRecord struct {
	AccessToken       string     `json:"access_token"`
	RefreshToken      string     `json:"refresh_token"`
	ExpiresAtEstimate *time.Time `json:"expires_at_estimate,omitempty"`
}

// identityRecord is the stored form of a cached identity.
type identityRecord struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

func toCredentialRecord(cred *domain.Credential) credentialRecord {
	return credentialRecord{
		AccessToken:       cred.AccessToken,
		RefreshToken:      cred.RefreshToken,
		ExpiresAtEstimate: cred.ExpiresAtEstimate,
	}
}

func (r credentialRecord) toDomain() *domain.Credential {
	return &domain.Credential{
		AccessToken:       r.AccessToken,
		RefreshToken:      r.RefreshToken,
		ExpiresAtEstimate: r.ExpiresAtEstimate,
	}
}

func toIdentityRecord(identity *domain.Identity) identityRecord {
	return identityRecord{
		ID:       identity.ID,
		Email:    identity.Email,
		FullName: identity.FullName,
		Role:     string(identity.Role),
		Status:   string(identity.Status),
	}
}

func (r identityRecord) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:       r.ID,
		Email:    r.Email,
		FullName: r.FullName,
		Role:     domain.Role(r.Role),
		Status:   domain.AccountStatus(r.Status),
	}
}
