package remote

import (
	"context"
	"net/http"

	"github.com/commerce-kit/backoffice-core/internal/domain"
)

// Me fetches the identity through the authorized pipeline, so a stale access
// token is renewed and retried before the call is given up on.
func (p *Pipeline) Me(ctx context.Context) (*domain.Identity, error) {
	var resp identityPayload
	if err := p.Do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}
