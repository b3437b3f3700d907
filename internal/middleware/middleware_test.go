package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/config"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/response"
	"github.com/projectk/projectk-backend/internal/service"
	"github.com/projectk/projectk-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error, w.Body.String())
	return body.Error.Code
}

func newAuth(t *testing.T) (*service.AuthService, *config.Config) {
	t.Helper()
	cfg := &config.Config{JWTSecret: "mw-secret", JWTExpiry: time.Hour, BcryptCost: bcrypt.MinCost}
	return service.NewAuthService(cfg, testutil.NewStores().Tokens), cfg
}

func sign(t *testing.T, auth *service.AuthService, userType model.UserType) string {
	t.Helper()
	u := &model.User{ID: uuid.New(), UserType: userType}
	tok, err := auth.GenerateToken(context.Background(), u)
	require.NoError(t, err)
	return tok.AccessToken
}

func issue(t *testing.T, auth *service.AuthService, userType model.UserType) (string, *service.Claims) {
	t.Helper()
	token := sign(t, auth, userType)
	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	return token, claims
}

func protectedEngine(auth *service.AuthService, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{RequireAuth(auth)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"user_id": GetClaims(c).UserID})
	})
	r.GET("/protected", handlers...)
	r.GET("/ws", RequireWSAuth(auth), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestRequireAuth(t *testing.T) {
	auth, cfg := newAuth(t)
	r := protectedEngine(auth)
	valid, claims := issue(t, auth, model.UserTypeStudent)

	cfg.JWTExpiry = -time.Minute
	expired := sign(t, auth, model.UserTypeStudent)
	cfg.JWTExpiry = time.Hour
	_, err := auth.ValidateToken(expired)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	cases := []struct {
		name   string
		header string
		status int
		code   response.ErrCode
	}{
		{"missing", "", http.StatusUnauthorized, response.ErrTokenRequired},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, response.ErrTokenRequired},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, response.ErrTokenInvalid},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, response.ErrTokenExpired},
		{"valid", "Bearer " + valid, http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.code != "" {
				assert.Equal(t, tc.code, errorCode(t, w))
			}
		})
	}

	require.NoError(t, auth.RevokeToken(context.Background(), claims))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrSessionInvalidated, errorCode(t, w))
}

func TestRequireWSAuthReadsQueryToken(t *testing.T) {
	auth, _ := newAuth(t)
	r := protectedEngine(auth)
	token, _ := issue(t, auth, model.UserTypeStudent)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrTokenRequired, errorCode(t, w))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireRole(t *testing.T) {
	auth, _ := newAuth(t)
	r := protectedEngine(auth, RequireRole(model.UserTypeTeacher))
	student, _ := issue(t, auth, model.UserTypeStudent)
	teacher, _ := issue(t, auth, model.UserTypeTeacher)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+student)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.ErrForbidden, errorCode(t, w))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+teacher)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3)
	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	send := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, send("10.0.0.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2"))

	rl.idleTTL = 0
	rl.Cleanup()
	assert.Empty(t, rl.visitors)
}

func TestBrotli(t *testing.T) {
	big := strings.Repeat("practice makes progress ", 200)
	r := gin.New()
	r.Use(Brotli())
	r.GET("/big", func(c *gin.Context) { c.String(http.StatusOK, big) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=0.9")
	r.ServeHTTP(w, req)

	assert.Equal(t, "br", w.Header().Get("Content-Encoding"))
	decoded, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, big, string(decoded))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/big", nil))
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, big, w.Body.String())
}
