package application

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timelogger-api/internal/domain/entity"
	"timelogger-api/internal/domain/repository"
	"timelogger-api/pkg/helpers"
)

// memUserRepo mirrors the Postgres repository semantics in memory, including
// the conditional rotate used to detect refresh races.
type memUserRepo struct {
	mu   sync.Mutex
	byID map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*entity.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	cp.IsActive = true
	cp.TokenVersion = "0"
	cp.LastPasswordChange = time.Now().UTC()
	r.byID[u.ID] = &cp
	*u = cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
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

func (r *memUserRepo) SetRefreshToken(_ context.Context, id, hash, jti string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.byID[id]
	u.RefreshTokenHash, u.RefreshJTI = &hash, &jti
	return nil
}

func (r *memUserRepo) RotateRefreshToken(_ context.Context, id, oldJTI, newHash, newJTI string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.byID[id]
	if u.RefreshJTI == nil || *u.RefreshJTI != oldJTI {
		return false, nil
	}
	u.RefreshTokenHash, u.RefreshJTI = &newHash, &newJTI
	return true, nil
}

func (r *memUserRepo) ClearRefreshToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.byID[id]
	u.RefreshTokenHash, u.RefreshJTI = nil, nil
	return nil
}

func (r *memUserRepo) BumpTokenVersion(_ context.Context, id, newVersion string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.byID[id]
	u.TokenVersion = newVersion
	u.RefreshTokenHash, u.RefreshJTI = nil, nil
	return nil
}

func (r *memUserRepo) UpdateTimeIncrement(_ context.Context, id string, minutes int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id].TimeIncrementMinutes = minutes
	return nil
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newAuthFixture() (*AuthService, *memUserRepo) {
	repo := newMemUserRepo()
	jwt := helpers.NewJWTManager("test-secret", 10*time.Minute, 14*24*time.Hour)
	return NewAuthService(repo, jwt, quietLogger()), repo
}

func TestRegister_IssuesSessionAndStoresSlot(t *testing.T) {
	svc, repo := newAuthFixture()
	ctx := context.Background()

	u, tokens, err := svc.Register(ctx, "a@example.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "0", u.TokenVersion)
	assert.Equal(t, 15, u.TimeIncrementMinutes)
	assert.NotEmpty(t, tokens.Access)
	assert.NotEmpty(t, tokens.Refresh)
	assert.NotEmpty(t, tokens.CSRF)

	stored, _ := repo.GetByID(ctx, u.ID)
	require.NotNil(t, stored.RefreshTokenHash)
	require.NotNil(t, stored.RefreshJTI)
	assert.True(t, helpers.CompareHashAndToken(*stored.RefreshTokenHash, tokens.Refresh))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "a@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "a@example.com", "otherpassword")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

// raceUserRepo simulates losing a concurrent-registration race: the email
// lookup sees nothing, the insert hits the unique index.
type raceUserRepo struct {
	*memUserRepo
}

func (r *raceUserRepo) GetByEmail(context.Context, string) (*entity.User, error) {
	return nil, nil
}

func (r *raceUserRepo) Create(context.Context, *entity.User) error {
	return ErrEmailTaken
}

func TestRegister_ConcurrentDuplicateSurfacesConflict(t *testing.T) {
	jwt := helpers.NewJWTManager("test-secret", 10*time.Minute, 14*24*time.Hour)
	svc := NewAuthService(&raceUserRepo{newMemUserRepo()}, jwt, quietLogger())

	_, _, err := svc.Register(context.Background(), "a@example.com", "password123")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, repo := newAuthFixture()
	ctx := context.Background()

	u, _, err := svc.Register(ctx, "a@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// a disabled account looks the same as bad credentials
	repo.mu.Lock()
	repo.byID[u.ID].IsActive = false
	repo.mu.Unlock()
	_, _, err = svc.Login(ctx, "a@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_RotatesRefreshSlot(t *testing.T) {
	svc, repo := newAuthFixture()
	ctx := context.Background()

	u, first, err := svc.Register(ctx, "a@example.com", "password123")
	require.NoError(t, err)
	before, _ := repo.GetByID(ctx, u.ID)

	_, second, err := svc.Login(ctx, "a@example.com", "password123")
	require.NoError(t, err)
	after, _ := repo.GetByID(ctx, u.ID)

	assert.NotEqual(t, first.Refresh, second.Refresh)
	assert.NotEqual(t, *before.RefreshJTI, *after.RefreshJTI)

	// the pre-login refresh token no longer matches the slot
	_, _, err = svc.Refresh(ctx, first.Refresh)
	assert.ErrorIs(t, err, ErrRefreshReused)
}

func TestRefresh_RotatesAndKillsPrevious(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, first, err := svc.Register(ctx, "a@example.com", "password123")
	require.NoError(t, err)

	u, second, err := svc.Refresh(ctx, first.Refresh)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotEmpty(t, second.Access)
	assert.NotEqual(t, first.Refresh, second.Refresh)
	assert.NotEqual(t, first.CSRF, second.CSRF)

	// replaying the consumed token must fail
	_, _, err = svc.Refresh(ctx, first.Refresh)
	assert.ErrorIs(t, err, ErrRefreshReused)

	// the fresh one still works
	_, _, err = svc.Refresh(ctx, second.Refresh)
	assert.NoError(t, err)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, tokens, err := svc.Register(ctx, "a@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Refresh(ctx, tokens.Access)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestRefresh_MissingAndMalformed(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, _, err := svc.Refresh(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, _, err = svc.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, helpers.ErrInvalidToken)
}

func TestRevokeAll_InvalidatesEverything(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	u, tokens, err := svc.Register(ctx, "a@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAll(ctx, u))
	assert.Equal(t, "1", u.TokenVersion)

	// the refresh slot is emptied by the bump
	_, _, err = svc.Refresh(ctx, tokens.Refresh)
	assert.ErrorIs(t, err, ErrRefreshInvalidated)

	// outstanding access tokens carry the old version snapshot
	_, err = svc.AuthenticateAccess(ctx, tokens.Access)
	assert.ErrorIs(t, err, ErrVersionRevoked)

	// a fresh login works and mints tokens for the new version
	_, fresh, err := svc.Login(ctx, "a@example.com", "password123")
	require.NoError(t, err)
	got, err := svc.AuthenticateAccess(ctx, fresh.Access)
	require.NoError(t, err)
	assert.Equal(t, "1", got.TokenVersion)
}

func TestLogout_ClearsRefreshSlot(t *testing.T) {
	svc, repo := newAuthFixture()
	ctx := context.Background()

	u, tokens, err := svc.Register(ctx, "a@example.com", "password123")
	require.NoError(t, err)

	svc.Logout(ctx, tokens.Access)

	stored, _ := repo.GetByID(ctx, u.ID)
	assert.Nil(t, stored.RefreshTokenHash)
	assert.Nil(t, stored.RefreshJTI)

	_, _, err = svc.Refresh(ctx, tokens.Refresh)
	assert.ErrorIs(t, err, ErrRefreshInvalidated)

	// logout with garbage input is a no-op
	svc.Logout(ctx, "nonsense")
}

func TestAuthenticateAccess(t *testing.T) {
	svc, repo := newAuthFixture()
	ctx := context.Background()

	u, tokens, err := svc.Register(ctx, "a@example.com", "password123")
	require.NoError(t, err)

	got, err := svc.AuthenticateAccess(ctx, tokens.Access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.AuthenticateAccess(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = svc.AuthenticateAccess(ctx, tokens.Refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	// disabled and deleted accounts fail differently but both read as 401
	repo.mu.Lock()
	repo.byID[u.ID].IsActive = false
	repo.mu.Unlock()
	_, err = svc.AuthenticateAccess(ctx, tokens.Access)
	assert.ErrorIs(t, err, ErrUserDisabled)

	repo.mu.Lock()
	delete(repo.byID, u.ID)
	repo.mu.Unlock()
	_, err = svc.AuthenticateAccess(ctx, tokens.Access)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateTimeIncrement(t *testing.T) {
	svc, repo := newAuthFixture()
	ctx := context.Background()

	u, _, err := svc.Register(ctx, "a@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateTimeIncrement(ctx, u, 5))
	assert.Equal(t, 5, u.TimeIncrementMinutes)
	stored, _ := repo.GetByID(ctx, u.ID)
	assert.Equal(t, 5, stored.TimeIncrementMinutes)

	// out-of-range values fall back to the default
	require.NoError(t, svc.UpdateTimeIncrement(ctx, u, 42))
	assert.Equal(t, 15, u.TimeIncrementMinutes)
}
