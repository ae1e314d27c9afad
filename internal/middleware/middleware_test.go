package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inucreativehrd21/FINAL-SERVER/pkg/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuth(t *testing.T) {
	var gotUser int64
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   int64
	}{
		{"missing header", "", http.StatusUnauthorized, 0},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, 0},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, 0},
		{"wrong secret", "Bearer " + signToken(t, "other", &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "7"}}), http.StatusUnauthorized, 0},
		{"expired", "Bearer " + signToken(t, testSecret, &Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}), http.StatusUnauthorized, 0},
		{"non numeric subject", "Bearer " + signToken(t, testSecret, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}}), http.StatusUnauthorized, 0},
		{"subject", "Bearer " + signToken(t, testSecret, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "7"}}), http.StatusOK, 7},
		{"user_id claim", "bearer " + signToken(t, testSecret, &Claims{UserID: 42}), http.StatusOK, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = 0
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, gotUser)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"success":false`)
			}
		})
	}
}

func TestLogging_CorrelationID(t *testing.T) {
	var seen string
	handler := Logging(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(CorrelationIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(CorrelationIDHeader))
}

func TestLogging_SeesAuthenticatedUser(t *testing.T) {
	var slot *int64
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slot, _ = r.Context().Value(userSlotKey).(*int64)
		w.WriteHeader(http.StatusOK)
	})
	handler := Logging(logger.NewNop())(Auth(testSecret)(inner))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, &Claims{UserID: 9}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, slot)
	assert.Equal(t, int64(9), *slot)
}

func TestRateLimit_PerUser(t *testing.T) {
	limited := RateLimit(1, time.Minute)(http.HandlerFunc(ok))

	call := func(userID int64) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithUserID(req.Context(), userID))
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call(1))
	assert.Equal(t, http.StatusTooManyRequests, call(1))
	assert.Equal(t, http.StatusOK, call(2))
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(ok)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestValidate(t *testing.T) {
	type feedback struct {
		MessageID int64  `json:"message_id" validate:"required,gt=0"`
		Comment   string `json:"feedback_comment" validate:"max=5"`
	}

	require.NoError(t, Validate(feedback{MessageID: 1}))

	err := Validate(feedback{})
	require.Error(t, err)
	assert.Equal(t, "message_id is required", err.Error())

	err = Validate(feedback{MessageID: 1, Comment: "too long"})
	require.Error(t, err)
	assert.Equal(t, "feedback_comment must be at most 5", err.Error())
}
