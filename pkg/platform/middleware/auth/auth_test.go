package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leicca/pkg/platform/middleware/auth"
	"leicca/pkg/requestcontext"
)

func newGuardedHandler(t *testing.T, tokens *auth.TokenService) (http.Handler, *string) {
	t.Helper()
	var seenActor string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenActor = requestcontext.Actor(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return auth.RequireToken(tokens, nil)(inner), &seenActor
}

func TestRequireTokenAcceptsValidToken(t *testing.T) {
	tokens := auth.NewTokenService("test-signing-key", "leicca")
	guarded, seenActor := newGuardedHandler(t, tokens)

	token, err := tokens.Generate("auditor@example.org", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "auditor@example.org", *seenActor, "the actor claim flows into the request context")
}

func TestRequireTokenRejectsMissingHeader(t *testing.T) {
	tokens := auth.NewTokenService("test-signing-key", "leicca")
	guarded, _ := newGuardedHandler(t, tokens)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireTokenRejectsWrongKey(t *testing.T) {
	tokens := auth.NewTokenService("test-signing-key", "leicca")
	other := auth.NewTokenService("different-key", "leicca")
	guarded, _ := newGuardedHandler(t, tokens)

	token, err := other.Generate("intruder", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireTokenRejectsExpiredToken(t *testing.T) {
	tokens := auth.NewTokenService("test-signing-key", "leicca")
	guarded, _ := newGuardedHandler(t, tokens)

	token, err := tokens.Generate("auditor", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateRoundTrip(t *testing.T) {
	tokens := auth.NewTokenService("test-signing-key", "leicca")

	token, err := tokens.Generate("auditor", time.Minute)
	require.NoError(t, err)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "auditor", claims.Actor)
	assert.Equal(t, "leicca", claims.Issuer)
}
