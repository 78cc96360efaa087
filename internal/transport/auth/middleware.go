package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"debtkeeper/internal/domain"
	"debtkeeper/internal/repository"
)

type ctxKey string

const OwnerIDKey ctxKey = "ownerID"

// TokenMiddleware authenticates requests with a bearer API token. The token
// is also accepted as a ?token= query parameter, which is how websocket
// clients pass it.
func TokenMiddleware(tokenRepo *repository.ApiTokenRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token *domain.ApiToken

			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				plain := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
				if plain != "" {
					if t, err := tokenRepo.FindByPlainToken(r.Context(), plain); err == nil {
						token = t
					}
				}
			}

			if token == nil {
				if plain := r.URL.Query().Get("token"); plain != "" {
					if t, err := tokenRepo.FindByPlainToken(r.Context(), plain); err == nil {
						token = t
					}
				}
			}

			if token == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), OwnerIDKey, token.OwnerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetOwnerID(ctx context.Context) (int64, error) {
	ownerID, ok := ctx.Value(OwnerIDKey).(int64)
	if !ok {
		return 0, errors.New("ownerID not found in context")
	}
	return ownerID, nil
}
