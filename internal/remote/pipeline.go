package remote

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/commerce-kit/backoffice-core/internal/domain"
	apperrors "github.com/commerce-kit/backoffice-core/pkg/util"
)

// SessionRenewer is the slice of the session manager the pipeline needs:
// read the current credential, renew it, or declare the session dead.
type SessionRenewer interface {
	CurrentCredential() *domain.Credential
	Renew(ctx context.Context) (*domain.Credential, error)
	Invalidate(ctx context.Context) error
}

// Pipeline wraps authorized calls to the commerce API: attach the current
// access token, dispatch, and on a rejected credential renew once and retry
// once. Retry state is a local of each Do invocation, so one caller's retry
// never suppresses another's.
type Pipeline struct {
	client      *Client
	sessions    SessionRenewer
	renewBuffer time.Duration
	logger      *zap.Logger
}

// NewPipeline builds the authorized request pipeline.
func NewPipeline(client *Client, sessions SessionRenewer, renewBuffer time.Duration, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		client:      client,
		sessions:    sessions,
		renewBuffer: renewBuffer,
		logger:      logger,
	}
}

// Do issues one authorized call. Non-authorization failures pass through
// unretried; a credential rejected twice in a row surfaces as SessionExpired.
func (p *Pipeline) Do(ctx context.Context, method, path string, body, out any) error {
	cred := p.sessions.CurrentCredential()
	if cred == nil {
		return apperrors.NewUnauthenticated("no active session")
	}

	// Advisory early renewal; the 401 path below stays authoritative.
	if p.renewBuffer > 0 && cred.ExpiresWithin(p.renewBuffer) {
		renewed, err := p.sessions.Renew(ctx)
		if err != nil {
			return err
		}
		cred = renewed
	}

	err := p.client.do(ctx, method, path, cred.AccessToken, body, out)
	if !IsAuthRejected(err) {
		return p.translate(err)
	}

	p.logger.Debug("access token rejected; renewing session",
		zap.String("method", method), zap.String("path", path))

	renewed, renewErr := p.sessions.Renew(ctx)
	if renewErr != nil {
		return renewErr
	}

	err = p.client.do(ctx, method, path, renewed.AccessToken, body, out)
	if IsAuthRejected(err) {
		// A freshly renewed token was still rejected; the session is dead.
		if invErr := p.sessions.Invalidate(ctx); invErr != nil {
			p.logger.Warn("failed to clear credentials after rejected retry", zap.Error(invErr))
		}
		return apperrors.NewSessionExpired(err)
	}
	return p.translate(err)
}

// translate maps residual API errors into the gateway taxonomy. Transport
// failures arrive already wrapped as NetworkFailure.
func (p *Pipeline) translate(err error) error {
	if err == nil {
		return nil
	}
	if apiErr, ok := asAPIError(err); ok {
		return apperrors.NewRemoteRejected(apiErr.Message, apiErr.StatusCode)
	}
	return err
}
