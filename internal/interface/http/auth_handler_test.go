package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timelogger-api/internal/application"
	"timelogger-api/internal/domain/entity"
	"timelogger-api/internal/domain/repository"
	"timelogger-api/internal/interface/middleware"
	"timelogger-api/pkg/helpers"
	"timelogger-api/pkg/validation"
)

// fakeUserRepo gives the handler stack real single-slot refresh semantics
// without a database.
type fakeUserRepo struct {
	mu   sync.Mutex
	byID map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.IsActive = true
	u.TokenVersion = "0"
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) SetRefreshToken(_ context.Context, id, hash, jti string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.byID[id]
	u.RefreshTokenHash, u.RefreshJTI = &hash, &jti
	return nil
}

func (r *fakeUserRepo) RotateRefreshToken(_ context.Context, id, oldJTI, newHash, newJTI string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.byID[id]
	if u.RefreshJTI == nil || *u.RefreshJTI != oldJTI {
		return false, nil
	}
	u.RefreshTokenHash, u.RefreshJTI = &newHash, &newJTI
	return true, nil
}

func (r *fakeUserRepo) ClearRefreshToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.byID[id]
	u.RefreshTokenHash, u.RefreshJTI = nil, nil
	return nil
}

func (r *fakeUserRepo) BumpTokenVersion(_ context.Context, id, newVersion string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.byID[id]
	u.TokenVersion = newVersion
	u.RefreshTokenHash, u.RefreshJTI = nil, nil
	return nil
}

func (r *fakeUserRepo) UpdateTimeIncrement(_ context.Context, id string, minutes int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id].TimeIncrementMinutes = minutes
	return nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

// newAuthRouter stands up the auth routes the way the module wires them,
// minus the redis rate limiter.
func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	jwt := helpers.NewJWTManager("test-secret", 10*time.Minute, 14*24*time.Hour)
	cookies := helpers.NewCookieManager("", false, "", 10*time.Minute, 14*24*time.Hour)
	svc := application.NewAuthService(newFakeUserRepo(), jwt, logger)
	h := NewAuthHandler(svc, cookies, logger)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/refresh", h.Refresh)
	api.POST("/auth/logout", middleware.CSRF(), h.Logout)

	auth := api.Group("/")
	auth.Use(middleware.Auth(svc))
	auth.GET("/auth/me", h.Me)
	auth.PATCH("/auth/me/settings", middleware.CSRF(), h.UpdateSettings)
	auth.POST("/auth/revoke_all", h.RevokeAll)
	return r
}

func do(r *gin.Engine, method, path, body string, cookies []*http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cookieMap(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, ck := range w.Result().Cookies() {
		out[ck.Name] = ck
	}
	return out
}

func register(t *testing.T, r *gin.Engine) map[string]*http.Cookie {
	t.Helper()
	w := do(r, http.MethodPost, "/api/auth/register",
		`{"email":"a@example.com","password":"password123"}`, nil, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return cookieMap(w)
}

func sessionOf(m map[string]*http.Cookie) []*http.Cookie {
	return []*http.Cookie{
		m[helpers.CookieAccessToken],
		m[helpers.CookieRefreshToken],
		m[helpers.CookieCSRFToken],
	}
}

func TestRegister_SetsSessionCookies(t *testing.T) {
	r := newAuthRouter()
	cookies := register(t, r)

	require.Len(t, cookies, 3)
	assert.True(t, cookies[helpers.CookieAccessToken].HttpOnly)
	assert.True(t, cookies[helpers.CookieRefreshToken].HttpOnly)
	assert.False(t, cookies[helpers.CookieCSRFToken].HttpOnly)
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	r := newAuthRouter()
	w := do(r, http.MethodPost, "/api/auth/register",
		`{"email":"a@example.com","password":"short"}`, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "password")
}

func TestRegister_DuplicateEmailConflict(t *testing.T) {
	r := newAuthRouter()
	register(t, r)
	w := do(r, http.MethodPost, "/api/auth/register",
		`{"email":"a@example.com","password":"password123"}`, nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	r := newAuthRouter()
	register(t, r)
	w := do(r, http.MethodPost, "/api/auth/login",
		`{"email":"a@example.com","password":"not-the-password"}`, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_RequiresAccessCookie(t *testing.T) {
	r := newAuthRouter()
	cookies := register(t, r)

	w := do(r, http.MethodGet, "/api/auth/me", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/auth/me", "", sessionOf(cookies), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a@example.com")
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "refresh")
}

func TestRefresh_RotatesCookiesAndKillsOldToken(t *testing.T) {
	r := newAuthRouter()
	first := register(t, r)

	w := do(r, http.MethodPost, "/api/auth/refresh", "", sessionOf(first), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := cookieMap(w)
	require.Len(t, second, 3)
	assert.NotEqual(t, first[helpers.CookieRefreshToken].Value, second[helpers.CookieRefreshToken].Value)

	// replaying the consumed refresh cookie is unauthorized
	w = do(r, http.MethodPost, "/api/auth/refresh", "", sessionOf(first), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// the rotated one still works
	w = do(r, http.MethodPost, "/api/auth/refresh", "", sessionOf(second), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefresh_WithoutCookie(t *testing.T) {
	r := newAuthRouter()
	w := do(r, http.MethodPost, "/api/auth/refresh", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateSettings_CSRFGuard(t *testing.T) {
	r := newAuthRouter()
	cookies := register(t, r)
	body := `{"time_increment_minutes":5}`

	// authenticated but no CSRF header
	w := do(r, http.MethodPatch, "/api/auth/me/settings", body, sessionOf(cookies), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// header must match the cookie value
	w = do(r, http.MethodPatch, "/api/auth/me/settings", body, sessionOf(cookies),
		map[string]string{middleware.CSRFHeader: "forged"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPatch, "/api/auth/me/settings", body, sessionOf(cookies),
		map[string]string{middleware.CSRFHeader: cookies[helpers.CookieCSRFToken].Value})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"time_increment_minutes":5`)
}

func TestUpdateSettings_RejectsBadIncrement(t *testing.T) {
	r := newAuthRouter()
	cookies := register(t, r)
	w := do(r, http.MethodPatch, "/api/auth/me/settings", `{"time_increment_minutes":7}`,
		sessionOf(cookies), map[string]string{middleware.CSRFHeader: cookies[helpers.CookieCSRFToken].Value})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRevokeAll_InvalidatesAccessToken(t *testing.T) {
	r := newAuthRouter()
	cookies := register(t, r)

	w := do(r, http.MethodPost, "/api/auth/revoke_all", "", sessionOf(cookies), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// cleared cookies in the response
	for _, ck := range cookieMap(w) {
		assert.Negative(t, ck.MaxAge)
	}

	// the pre-revoke access token now fails the version check
	w = do(r, http.MethodGet, "/api/auth/me", "", sessionOf(cookies), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_ClearsCookiesAndRefreshSlot(t *testing.T) {
	r := newAuthRouter()
	cookies := register(t, r)

	w := do(r, http.MethodPost, "/api/auth/logout", "", sessionOf(cookies),
		map[string]string{middleware.CSRFHeader: cookies[helpers.CookieCSRFToken].Value})
	require.Equal(t, http.StatusOK, w.Code)
	for _, ck := range cookieMap(w) {
		assert.Negative(t, ck.MaxAge)
	}

	// refresh slot was invalidated server-side
	w = do(r, http.MethodPost, "/api/auth/refresh", "", sessionOf(cookies), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
