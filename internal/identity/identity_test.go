package identity_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tripline/internal/identity"
)

const secret = "test-secret"

func token(t *testing.T, u identity.User) string {
	t.Helper()

	tok, err := identity.Sign(u, []byte(secret))
	require.NoError(t, err)

	return tok
}

func TestParse(t *testing.T) {
	u := identity.User{ID: "agent-7", Role: identity.RoleAgent}

	got, err := identity.Parse(token(t, u), []byte(secret))
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = identity.Parse(token(t, u), []byte("other"))
	assert.ErrorIs(t, err, identity.ErrInvalidToken)

	_, err = identity.Parse(token(t, identity.User{ID: "x", Role: "pilot"}), []byte(secret))
	assert.ErrorIs(t, err, identity.ErrInvalidToken)

	_, err = identity.Parse(token(t, identity.User{Role: identity.RoleAgent}), []byte(secret))
	assert.ErrorIs(t, err, identity.ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, identity.Claims{
		Role:             identity.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "mallory"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = identity.Parse(none, []byte(secret))
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	var seen identity.User

	h := identity.Middleware(secret)(
		identity.Require(identity.RoleOperator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = identity.FromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		})),
	)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "NoHeader", want: http.StatusUnauthorized},
		{name: "Garbage", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "Agent", header: "Bearer " + token(t, identity.User{ID: "a1", Role: identity.RoleAgent}), want: http.StatusForbidden},
		{name: "Operator", header: "Bearer " + token(t, identity.User{ID: "o1", Role: identity.RoleOperator}), want: http.StatusNoContent},
		{name: "Admin", header: "Bearer " + token(t, identity.User{ID: "root", Role: identity.RoleAdmin}), want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}

	assert.Equal(t, "root", seen.ID)
}
