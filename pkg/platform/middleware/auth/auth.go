package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "leicca/pkg/domain-errors"
	"leicca/pkg/platform/httputil"
	"leicca/pkg/requestcontext"
)

// Claims are the access-token claims for sensitive endpoints. Actor names the
// human or system operating the token; it flows into audit events.
type Claims struct {
	Actor string `json:"actor"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HMAC-signed access tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
}

// NewTokenService creates a TokenService with the given signing key.
func NewTokenService(signingKey, issuer string) *TokenService {
	return &TokenService{signingKey: []byte(signingKey), issuer: issuer}
}

// Generate issues a token for the given actor.
func (s *TokenService) Generate(actor string, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Actor: actor,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// Validate parses and verifies a token, returning its claims.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// RequireToken guards sensitive endpoints: a valid bearer token is required
// and its actor is placed in the request context for audit attribution.
func RequireToken(tokens *TokenService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "bearer token required"))
				return
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				if logger != nil {
					logger.WarnContext(r.Context(), "token rejected",
						"request_id", requestcontext.RequestID(r.Context()),
						"error", err,
					)
				}
				httputil.WriteError(w, err)
				return
			}

			ctx := requestcontext.WithActor(r.Context(), claims.Actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
