package auth

import (
	"github.com/commerce-kit/backoffice-core/internal/domain"
	apperrors "github.com/commerce-kit/backoffice-core/pkg/util"
)

// Authorize checks that identity holds one of the allowed roles. It is pure:
// no side effects, no network access. A nil identity fails Unauthenticated; a
// present identity with the wrong role fails Forbidden, so callers can
// distinguish "log in" from "you lack permission".
func Authorize(identity *domain.Identity, allowed ...domain.Role) error {
	if identity == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, role := range allowed {
		if identity.Role == role {
			return nil
		}
	}
	return apperrors.NewForbidden("insufficient role")
}
