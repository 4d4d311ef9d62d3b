package application

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"timelogger-api/internal/domain/entity"
	"timelogger-api/internal/domain/repository"
	"timelogger-api/pkg/helpers"
)

const defaultTimeIncrement = 15

// AuthService orchestrates register/login/refresh/revoke/logout and the
// access-token guard. Token signing is stateless (JWTManager); everything
// stateful — token version, the single refresh slot — lives on the user row.
type AuthService struct {
	Users  repository.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewAuthService(users repository.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Logger: logger}
}

// SessionTokens is the issued cookie payload for one login/refresh.
type SessionTokens struct {
	Access  string
	Refresh string
	CSRF    string
}

// issueTokens mints an access/refresh pair for the user's current token
// version, persists the refresh slot (bcrypt hash + jti) and returns the
// values destined for cookies.
func (s *AuthService) issueTokens(ctx context.Context, u *entity.User) (SessionTokens, error) {
	access, _, err := s.JWT.CreateAccessToken(u.ID, u.TokenVersion)
	if err != nil {
		return SessionTokens{}, err
	}
	refresh, jti, _, err := s.JWT.CreateRefreshToken(u.ID, u.TokenVersion)
	if err != nil {
		return SessionTokens{}, err
	}
	hash, err := helpers.HashToken(refresh)
	if err != nil {
		return SessionTokens{}, err
	}
	if err := s.Users.SetRefreshToken(ctx, u.ID, hash, jti); err != nil {
		return SessionTokens{}, err
	}
	csrf, err := helpers.NewCSRFToken()
	if err != nil {
		return SessionTokens{}, err
	}
	return SessionTokens{Access: access, Refresh: refresh, CSRF: csrf}, nil
}

// Register creates the account and performs an implicit login issuance.
func (s *AuthService) Register(ctx context.Context, email, password string) (*entity.User, SessionTokens, error) {
	existing, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, SessionTokens{}, err
	}
	if existing != nil {
		return nil, SessionTokens{}, ErrEmailTaken
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, SessionTokens{}, err
	}
	u := &entity.User{
		ID:                   uuid.NewString(),
		Email:                email,
		Password:             hash,
		TimeIncrementMinutes: defaultTimeIncrement,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, SessionTokens{}, err
	}
	tokens, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, SessionTokens{}, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("user registered")
	return u, tokens, nil
}

// Login verifies credentials and rotates any prior refresh state
// unconditionally.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, SessionTokens, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, SessionTokens{}, err
	}
	if u == nil || !u.IsActive || !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, SessionTokens{}, ErrInvalidCredentials
	}
	tokens, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, SessionTokens{}, err
	}
	return u, tokens, nil
}

// Refresh validates the presented refresh token against the stored slot and
// rotates it. Single-slot semantics: after rotation the previous token is
// dead, and of two concurrent calls with the same token only one can win the
// conditional update — the other fails with ErrRefreshReused.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*entity.User, SessionTokens, error) {
	if rawRefresh == "" {
		return nil, SessionTokens{}, ErrMissingToken
	}
	claims, err := s.JWT.Decode(rawRefresh)
	if err != nil {
		return nil, SessionTokens{}, err
	}
	if claims.TokenType != helpers.TokenTypeRefresh {
		return nil, SessionTokens{}, ErrWrongTokenType
	}
	u, err := s.Users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, SessionTokens{}, err
	}
	if u == nil {
		return nil, SessionTokens{}, ErrUserNotFound
	}
	if u.RefreshTokenHash == nil || u.RefreshJTI == nil {
		return nil, SessionTokens{}, ErrRefreshInvalidated
	}
	if claims.TokenVersion != u.TokenVersion {
		return nil, SessionTokens{}, ErrVersionRevoked
	}
	if claims.ID != *u.RefreshJTI || !helpers.CompareHashAndToken(*u.RefreshTokenHash, rawRefresh) {
		return nil, SessionTokens{}, ErrRefreshReused
	}

	access, _, err := s.JWT.CreateAccessToken(u.ID, u.TokenVersion)
	if err != nil {
		return nil, SessionTokens{}, err
	}
	refresh, jti, _, err := s.JWT.CreateRefreshToken(u.ID, u.TokenVersion)
	if err != nil {
		return nil, SessionTokens{}, err
	}
	hash, err := helpers.HashToken(refresh)
	if err != nil {
		return nil, SessionTokens{}, err
	}
	ok, err := s.Users.RotateRefreshToken(ctx, u.ID, claims.ID, hash, jti)
	if err != nil {
		return nil, SessionTokens{}, err
	}
	if !ok {
		// lost the race: someone rotated the slot between verify and update
		return nil, SessionTokens{}, ErrRefreshReused
	}
	csrf, err := helpers.NewCSRFToken()
	if err != nil {
		return nil, SessionTokens{}, err
	}
	return u, SessionTokens{Access: access, Refresh: refresh, CSRF: csrf}, nil
}

// RevokeAll bumps the user's token version, killing every outstanding access
// and refresh token at once, and empties the refresh slot.
func (s *AuthService) RevokeAll(ctx context.Context, u *entity.User) error {
	cur, err := strconv.Atoi(u.TokenVersion)
	if err != nil {
		cur = 0
	}
	next := strconv.Itoa(cur + 1)
	if err := s.Users.BumpTokenVersion(ctx, u.ID, next); err != nil {
		return err
	}
	u.TokenVersion = next
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "token_version": next}).Info("all tokens revoked")
	return nil
}

// Logout is best-effort server-side: when the access token still resolves,
// the refresh slot is cleared so the session cannot be silently renewed.
// Outstanding access tokens stay valid until natural expiry; failures are
// logged and swallowed.
func (s *AuthService) Logout(ctx context.Context, rawAccess string) {
	u, err := s.AuthenticateAccess(ctx, rawAccess)
	if err != nil {
		return
	}
	if err := s.Users.ClearRefreshToken(ctx, u.ID); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("logout: clearing refresh state failed")
	}
}

// AuthenticateAccess is the guard for every protected endpoint: decode the
// access cookie, resolve the user, and compare the version snapshot against
// the stored one.
func (s *AuthService) AuthenticateAccess(ctx context.Context, rawAccess string) (*entity.User, error) {
	if rawAccess == "" {
		return nil, ErrMissingToken
	}
	claims, err := s.JWT.Decode(rawAccess)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != helpers.TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	u, err := s.Users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if !u.IsActive {
		return nil, ErrUserDisabled
	}
	if claims.TokenVersion != u.TokenVersion {
		return nil, ErrVersionRevoked
	}
	return u, nil
}

// UpdateTimeIncrement stores the user's rounding preference.
func (s *AuthService) UpdateTimeIncrement(ctx context.Context, u *entity.User, minutes int) error {
	if !helpers.AllowedIncrements[minutes] {
		minutes = defaultTimeIncrement
	}
	if err := s.Users.UpdateTimeIncrement(ctx, u.ID, minutes); err != nil {
		return err
	}
	u.TimeIncrementMinutes = minutes
	return nil
}
