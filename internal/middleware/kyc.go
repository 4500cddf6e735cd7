package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/pkg/response"
)

// VerificationChecker reports whether a user has an approved identity verification
type VerificationChecker interface {
	IsVerified(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RequireKYC blocks investing and trading endpoints for users without an
// approved identity verification.
func RequireKYC(checker VerificationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == uuid.Nil {
				response.Unauthorized(w, "Authentication required")
				return
			}

			verified, err := checker.IsVerified(r.Context(), userID)
			if err != nil {
				response.InternalError(w)
				return
			}

			if !verified {
				response.Error(w, http.StatusForbidden, "KYC_REQUIRED", "Identity verification is required for this action")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
