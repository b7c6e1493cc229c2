package remote

import (
	"context"
	"net/http"

	"github.com/commerce-kit/backoffice-core/internal/domain"
	apperrors "github.com/commerce-kit/backoffice-core/pkg/util"
)

// identityPayload mirrors the API's identity representation.
type identityPayload struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

func (p identityPayload) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:       p.ID,
		Email:    p.Email,
		FullName: p.FullName,
		Role:     domain.Role(p.Role),
		Status:   domain.AccountStatus(p.Status),
	}
}

// LoginResult is the outcome of a successful remote login.
type LoginResult struct {
	Identity     *domain.Identity
	AccessToken  string
	RefreshToken string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Identity     identityPayload `json:"identity"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
}

// Login authenticates against POST /auth/login. Rejected credentials surface
// as InvalidCredentials; transport trouble as NetworkFailure.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		if apiErr, ok := asAPIError(err); ok {
			if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
				return nil, apperrors.NewInvalidCredentials()
			}
			return nil, apperrors.NewRemoteRejected(apiErr.Message, apiErr.StatusCode)
		}
		return nil, err
	}
	return &LoginResult{
		Identity:     resp.Identity.toDomain(),
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges the refresh token via POST /auth/refresh.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, err error) {
	var resp refreshResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", refreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return "", "", err
	}
	return resp.AccessToken, resp.RefreshToken, nil
}

// Me fetches the identity behind the access token via GET /auth/me.
func (c *Client) Me(ctx context.Context, token string) (*domain.Identity, error) {
	var resp identityPayload
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

// Logout invalidates the server-side session via POST /auth/logout.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}
