package handle

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/xpkg/logger"
)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func echoSession() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := core.SessionFrom(r.Context())
		fmt.Fprintf(w, "%s/%s", sess.UserID, sess.Role)
	})
}

func bearer(tok string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func TestAuthenticate(t *testing.T) {
	sh := NewSessionHandler("secret", logger.Nop())
	h := sh.Authenticate(echoSession())
	secret := []byte("secret")
	valid := jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	expired := jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}
	cookie := sign(t, jwt.SigningMethodHS256, secret, Claims{RegisteredClaims: valid})

	tests := []struct {
		name  string
		setup func(r *http.Request)
		code  int
		body  string
	}{
		{
			name:  "bearer header",
			setup: bearer(sign(t, jwt.SigningMethodHS256, secret, Claims{Role: "Admin", RegisteredClaims: valid})),
			code:  http.StatusOK,
			body:  "u1/Admin",
		},
		{
			name: "cookie defaults to user role",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: cookie})
			},
			code: http.StatusOK,
			body: "u1/User",
		},
		{
			name:  "missing token",
			setup: func(*http.Request) {},
			code:  http.StatusUnauthorized,
		},
		{
			name:  "wrong secret",
			setup: bearer(sign(t, jwt.SigningMethodHS256, []byte("other"), Claims{RegisteredClaims: valid})),
			code:  http.StatusUnauthorized,
		},
		{
			name:  "expired",
			setup: bearer(sign(t, jwt.SigningMethodHS256, secret, Claims{RegisteredClaims: expired})),
			code:  http.StatusUnauthorized,
		},
		{
			name:  "other algorithm",
			setup: bearer(sign(t, jwt.SigningMethodHS384, secret, Claims{RegisteredClaims: valid})),
			code:  http.StatusUnauthorized,
		},
		{
			name:  "unknown role",
			setup: bearer(sign(t, jwt.SigningMethodHS256, secret, Claims{Role: "Root", RegisteredClaims: valid})),
			code:  http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	sh := NewSessionHandler("secret", logger.Nop())
	h := sh.RequireAdmin(echoSession())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(core.WithSession(req.Context(), core.Session{UserID: "u1", Role: core.RoleUser})))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(core.WithSession(req.Context(), core.Session{UserID: "a1", Role: core.RoleAdmin})))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMaxConcurrent(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	h := MaxConcurrent(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}()
	<-entered

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	close(release)
	wg.Wait()
}

func TestRateLimiterPerVisitor(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	call := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(core.WithSession(req.Context(), core.Session{UserID: user}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("u1"))
	assert.Equal(t, http.StatusOK, call("u1"))
	assert.Equal(t, http.StatusTooManyRequests, call("u1"))
	assert.Equal(t, http.StatusOK, call("u2"))

	assert.Nil(t, NewRateLimiter(0, 0))
}

func TestCorsPreflight(t *testing.T) {
	h := Cors([]string{"http://localhost:5173"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight reached the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/orders", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("x: %w", core.ErrFieldIsEmpty), http.StatusBadRequest},
		{core.ErrInvalidTransition, http.StatusBadRequest},
		{fmt.Errorf("%q: %w", "Burger", core.ErrOutOfStock), http.StatusConflict},
		{core.ErrItemNotFound, http.StatusNotFound},
		{core.ErrOrderNotFound, http.StatusNotFound},
		{core.ErrUnauthorized, http.StatusUnauthorized},
		{core.ErrForbidden, http.StatusForbidden},
		{core.ErrMaxConcurrentExceeded, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: boom", core.ErrStorage), http.StatusInternalServerError},
		{errors.New("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, StatusFor(tt.err), tt.err.Error())
	}
}
