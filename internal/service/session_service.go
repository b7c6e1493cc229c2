package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/commerce-kit/backoffice-core/internal/auth"
	"github.com/commerce-kit/backoffice-core/internal/config"
	"github.com/commerce-kit/backoffice-core/internal/domain"
	"github.com/commerce-kit/backoffice-core/internal/events"
	"github.com/commerce-kit/backoffice-core/internal/observability"
	"github.com/commerce-kit/backoffice-core/internal/remote"
	"github.com/commerce-kit/backoffice-core/internal/repository"
	apperrors "github.com/commerce-kit/backoffice-core/pkg/util"
)

// SessionManager owns the operator's credential lifecycle: login, logout,
// bootstrap validation, and single-flight renewal. It is the only writer of
// the credential repository.
type SessionManager struct {
	api        *remote.Client
	creds      repository.CredentialRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	pipeline   *remote.Pipeline

	mu       sync.RWMutex
	current  *domain.Credential
	identity *domain.Identity

	renewGroup singleflight.Group
}

// SessionDependencies bundles collaborators for the session manager.
type SessionDependencies struct {
	APIClient      *remote.Client
	CredentialRepo repository.CredentialRepository
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
}

// NewSessionManager constructs the manager and its authorized pipeline.
func NewSessionManager(cfg config.SessionConfig, deps SessionDependencies, logger *zap.Logger) *SessionManager {
	s := &SessionManager{
		api:        deps.APIClient,
		creds:      deps.CredentialRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
	}
	s.pipeline = remote.NewPipeline(deps.APIClient, s, cfg.RenewBuffer(), logger)
	return s
}

// Pipeline returns the authorized request pipeline bound to this session.
func (s *SessionManager) Pipeline() *remote.Pipeline {
	return s.pipeline
}

// Login authenticates the operator. A successful remote login with a
// Customer-roled identity is discarded and fails RoleNotPermitted; the back
// office is for Admin and Staff only.
func (s *SessionManager) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	identity := result.Identity
	if !identity.IsBackOffice() {
		s.logger.Warn("login rejected for non back-office role",
			zap.String("email", email), zap.String("role", string(identity.Role)))
		return nil, apperrors.NewRoleNotPermitted(string(identity.Role))
	}
	if !identity.IsActive() {
		return nil, apperrors.NewRoleNotPermitted(string(identity.Role))
	}

	// A caller that navigated away must not end up owning a session.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cred := &domain.Credential{
		AccessToken:       result.AccessToken,
		RefreshToken:      result.RefreshToken,
		ExpiresAtEstimate: auth.EstimateExpiry(result.AccessToken),
	}
	if err := s.creds.SaveCredential(ctx, cred); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.creds.SaveIdentity(ctx, identity); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.mu.Lock()
	s.current = cred
	s.identity = identity
	s.mu.Unlock()

	s.publishEvent(ctx, events.Event{
		Type:  events.EventSessionStarted,
		Actor: events.Actor{OperatorID: identity.ID, Role: identity.Role},
		Payload: events.SessionStartedPayload{
			Email: identity.Email,
			Role:  identity.Role,
		},
	})
	s.logger.Info("session started",
		zap.String("operator_id", identity.ID), zap.String("role", string(identity.Role)))
	return identity, nil
}

// Logout invalidates the remote session best-effort and always clears local
// state. A failed remote invalidation is logged, never surfaced.
func (s *SessionManager) Logout(ctx context.Context) error {
	cred := s.CurrentCredential()
	if cred != nil {
		if err := s.api.Logout(ctx, cred.AccessToken); err != nil {
			s.logger.Warn("remote logout failed; server-side session may remain active", zap.Error(err))
		}
	}
	return s.clear(ctx, "logout")
}

// CheckSession validates a persisted credential on process start. It never
// returns an error: absence, expiry, revocation, or a wrong role all yield nil
// with the store left empty.
func (s *SessionManager) CheckSession(ctx context.Context) *domain.Identity {
	cred, err := s.creds.LoadCredential(ctx)
	if err != nil {
		s.logger.Warn("failed to read persisted credential", zap.Error(err))
		return nil
	}
	if cred == nil {
		return nil
	}

	s.mu.Lock()
	s.current = cred
	s.mu.Unlock()

	// The pipeline renews a stale access token transparently, so a restart
	// inside the refresh window does not force a new login.
	identity, err := s.pipeline.Me(ctx)
	if err != nil {
		s.logger.Info("persisted session is no longer valid", zap.Error(err))
		if clearErr := s.clear(ctx, "invalid persisted session"); clearErr != nil {
			s.logger.Warn("failed to clear invalid session", zap.Error(clearErr))
		}
		return nil
	}
	if !identity.IsBackOffice() || !identity.IsActive() {
		s.logger.Warn("persisted identity no longer permitted",
			zap.String("role", string(identity.Role)), zap.String("status", string(identity.Status)))
		if clearErr := s.clear(ctx, "identity no longer permitted"); clearErr != nil {
			s.logger.Warn("failed to clear rejected session", zap.Error(clearErr))
		}
		return nil
	}

	if err := s.creds.SaveIdentity(ctx, identity); err != nil {
		s.logger.Warn("failed to cache identity", zap.Error(err))
	}
	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()

	s.logger.Info("session restored", zap.String("operator_id", identity.ID))
	return identity
}

// Renew is the single-flight renewal primitive. Concurrent callers share one
// refresh network call and one result; a failed renewal clears all stored
// credentials and every waiter receives SessionExpired.
func (s *SessionManager) Renew(ctx context.Context) (*domain.Credential, error) {
	ch := s.renewGroup.DoChan("renew", func() (any, error) {
		// Detached from the triggering caller: one caller's cancellation
		// must neither abort other waiters nor half-write the store.
		return s.renewOnce(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.metrics.RecordRenewSharedWait()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Credential), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *SessionManager) renewOnce(ctx context.Context) (*domain.Credential, error) {
	cred := s.CurrentCredential()
	if cred == nil || cred.RefreshToken == "" {
		return nil, apperrors.NewSessionExpired(nil)
	}

	s.metrics.RecordRenewAttempt()
	accessToken, refreshToken, err := s.api.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		s.metrics.RecordRenewOutcome(false)
		s.logger.Warn("session renewal failed", zap.Error(err))
		if clearErr := s.clear(ctx, "renewal failed"); clearErr != nil {
			s.logger.Warn("failed to clear credentials after renewal failure", zap.Error(clearErr))
		}
		return nil, apperrors.NewSessionExpired(err)
	}

	renewed := &domain.Credential{
		AccessToken:       accessToken,
		RefreshToken:      refreshToken,
		ExpiresAtEstimate: auth.EstimateExpiry(accessToken),
	}
	if err := s.creds.SaveCredential(ctx, renewed); err != nil {
		// The session stays valid in memory; only durability degraded.
		s.logger.Warn("failed to persist renewed credential", zap.Error(err))
	}

	s.mu.Lock()
	s.current = renewed
	identity := s.identity
	s.mu.Unlock()

	s.metrics.RecordRenewOutcome(true)
	event := events.Event{Type: events.EventSessionRenewed}
	if identity != nil {
		event.Actor = events.Actor{OperatorID: identity.ID, Role: identity.Role}
	}
	s.publishEvent(ctx, event)
	return renewed, nil
}

// Invalidate clears the session after the server rejected a freshly renewed
// credential.
func (s *SessionManager) Invalidate(ctx context.Context) error {
	return s.clear(ctx, "credential rejected after renewal")
}

// CurrentCredential returns the in-memory credential, nil when unauthenticated.
func (s *SessionManager) CurrentCredential() *domain.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cred := *s.current
	return &cred
}

// CurrentIdentity returns the in-memory identity, nil when unauthenticated.
func (s *SessionManager) CurrentIdentity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	identity := *s.identity
	return &identity
}

// clear drops memory and store state. It runs on a detached context so that a
// cancelled caller cannot leave a stale credential behind.
func (s *SessionManager) clear(ctx context.Context, reason string) error {
	s.mu.Lock()
	identity := s.identity
	s.current = nil
	s.identity = nil
	s.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	err := s.creds.Clear(detached)

	event := events.Event{
		Type:    events.EventSessionEnded,
		Payload: events.SessionEndedPayload{Reason: reason},
	}
	if identity != nil {
		event.Actor = events.Actor{OperatorID: identity.ID, Role: identity.Role}
	}
	s.publishEvent(detached, event)
	return err
}

func (s *SessionManager) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
