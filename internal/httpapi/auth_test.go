package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "alice-pass")

	rec := env.postForm(t, "/auth/token", url.Values{
		"username": {"alice@example.com"},
		"password": {"alice-pass"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[tokenResponse](t, rec)
	assert.Equal(t, "bearer", body.TokenType)
	require.NotEmpty(t, body.AccessToken)

	subject, err := env.tokens.Validate(body.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)
}

func TestLogin_Rejected(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "alice-pass")

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "alice@example.com", "incorrect_password"},
		{"unknown email", "incorrect@email.com", "alice-pass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.postForm(t, "/auth/token", url.Values{
				"username": {tt.email},
				"password": {tt.password},
			}, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Incorrect email or password", detailOf(t, rec))
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm(t, "/auth/token", url.Values{"username": {"alice@example.com"}}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "password: field required", detailOf(t, rec))
}

func TestRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "alice-pass")
	token := env.login(t, "alice@example.com", "alice-pass")
	oldExp := expiresAt(t, token)

	env.clock.Advance(10 * time.Minute)

	rec := env.do(t, http.MethodPost, "/auth/refresh-token", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[tokenResponse](t, rec)
	assert.Equal(t, "bearer", body.TokenType)

	subject, err := env.tokens.Validate(body.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)

	newExp := expiresAt(t, body.AccessToken)
	assert.True(t, newExp.After(oldExp))
}

func TestRefreshToken_Expired(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "alice-pass")
	token := env.login(t, "alice@example.com", "alice-pass")

	env.clock.Advance(31 * time.Minute)

	refresh := env.do(t, http.MethodPost, "/auth/refresh-token", nil, token)
	assert.Equal(t, http.StatusUnauthorized, refresh.Code)
	assert.Equal(t, "Could not authenticate user", detailOf(t, refresh))
	assert.Equal(t, "Bearer", refresh.Header().Get("WWW-Authenticate"))

	// Same outcome as using the expired token on any protected route.
	direct := env.do(t, http.MethodGet, "/todos", nil, token)
	assert.Equal(t, refresh.Code, direct.Code)
	assert.Equal(t, refresh.Body.String(), direct.Body.String())
}

func TestProtectedRoute_AuthFailures(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "alice@example.com", "alice-pass")
	valid := env.login(t, "alice@example.com", "alice-pass")

	foreign, err := env.tokens.Issue("ghost@example.com")
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/todos", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authenticated", detailOf(t, rec))
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/todos")
		req.Header.Set("Authorization", "Basic "+valid)
		rec := serve(env, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authenticated", detailOf(t, rec))
	})

	// Malformed, unknown subject and expired all look the same to the client.
	cases := map[string]string{
		"malformed":       "not.a.jwt",
		"unknown subject": foreign,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/todos", nil, token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Could not authenticate user", detailOf(t, rec))
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		})
	}

	t.Run("user deleted after issuance", func(t *testing.T) {
		require.NoError(t, env.store.DeleteUser(context.Background(), alice.ID))
		rec := env.do(t, http.MethodGet, "/todos", nil, valid)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Could not authenticate user", detailOf(t, rec))
	})
}
