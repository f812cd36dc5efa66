package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goormcoder/ieum/backend/internal/auth"
	"github.com/goormcoder/ieum/backend/internal/domain"
)

const secret = "test-secret"

func TestVerifier_RoundTrip(t *testing.T) {
	v := auth.NewVerifier(secret)
	member := uuid.New()

	token, err := v.Issue(member, time.Minute)
	require.NoError(t, err)

	got, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, member, got)
}

func TestVerifier_Rejects(t *testing.T) {
	v := auth.NewVerifier(secret)
	member := uuid.New()

	otherKey, err := auth.NewVerifier("another-secret").Issue(member, time.Minute)
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   member.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: member.String(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   member.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not.a.token",
		"wrong key":    otherKey,
		"expired":      expired,
		"no expiry":    noExpiry,
		"bad subject":  badSubject,
		"wrong algo":   wrongAlg,
		"empty string": "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			require.ErrorIs(t, err, auth.ErrInvalidToken)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestVerifier_IssueRejectsNonPositiveTTL(t *testing.T) {
	_, err := auth.NewVerifier(secret).Issue(uuid.New(), 0)
	assert.Error(t, err)
}

// ---- Middleware ------------------------------------------------------------

func newProtected(t *testing.T, v *auth.Verifier) (http.Handler, *error) {
	t.Helper()
	var failure error
	onFail := func(w http.ResponseWriter, _ *http.Request, err error) {
		failure = err
		w.WriteHeader(http.StatusUnauthorized)
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.MemberID(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(id.String()))
	})
	return auth.Middleware(v, onFail)(next), &failure
}

func TestMiddleware_BearerHeader(t *testing.T) {
	v := auth.NewVerifier(secret)
	member := uuid.New()
	token, err := v.Issue(member, time.Minute)
	require.NoError(t, err)
	h, _ := newProtected(t, v)

	req := httptest.NewRequest(http.MethodGet, "/plans", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, member.String(), rec.Body.String())
}

func TestMiddleware_QueryParameter(t *testing.T) {
	v := auth.NewVerifier(secret)
	member := uuid.New()
	token, err := v.Issue(member, time.Minute)
	require.NoError(t, err)
	h, _ := newProtected(t, v)

	req := httptest.NewRequest(http.MethodGet, "/plans/x/share?access_token="+token, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, member.String(), rec.Body.String())
}

func TestMiddleware_Missing(t *testing.T) {
	h, failure := newProtected(t, auth.NewVerifier(secret))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, errors.Is(*failure, auth.ErrMissingToken))
}

func TestMiddleware_WrongScheme(t *testing.T) {
	h, failure := newProtected(t, auth.NewVerifier(secret))

	req := httptest.NewRequest(http.MethodGet, "/plans", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.ErrorIs(t, *failure, auth.ErrInvalidToken)
}

func TestMemberID_Absent(t *testing.T) {
	_, ok := auth.MemberID(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
