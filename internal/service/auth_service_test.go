package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumafit/coach-api/internal/models"
	appErrors "github.com/lumafit/coach-api/pkg/errors"
)

type authRepoStub struct {
	usersByEmail  map[string]*models.User
	usersByID     map[string]*models.User
	created       []*models.User
	refreshTokens map[string]*models.RefreshToken
	revoked       []string
	auditLogs     []*models.AuditLog
}

func newAuthRepoStub() *authRepoStub {
	return &authRepoStub{
		usersByEmail:  map[string]*models.User{},
		usersByID:     map[string]*models.User{},
		refreshTokens: map[string]*models.RefreshToken{},
	}
}

func (s *authRepoStub) addUser(user *models.User) {
	s.usersByEmail[user.Email] = user
	s.usersByID[user.ID] = user
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := s.usersByID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user_" + user.Email
	}
	s.created = append(s.created, user)
	s.addUser(user)
	return nil
}

func (s *authRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (s *authRepoStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	s.revoked = append(s.revoked, userID)
	return nil
}

func (s *authRepoStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.refreshTokens[token.Token] = token
	return nil
}

func (s *authRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := s.refreshTokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, t := range s.refreshTokens {
		if t.ID == id {
			t.Revoked = true
			t.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (s *authRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.auditLogs = append(s.auditLogs, log)
	return nil
}

func testAuthService(repo *authRepoStub) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret:  "test_secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "coach-api",
	})
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newAuthRepoStub()
	svc := testAuthService(repo)

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "Jamie@Example.com",
		Password: "correct horse",
		FullName: "Jamie Doe",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, models.RoleMember, res.User.Role)

	require.Len(t, repo.created, 1)
	assert.Equal(t, "jamie@example.com", repo.created[0].Email)
	assert.True(t, repo.created[0].Active)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "jamie@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)

	claims, err := svc.ValidateToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, repo.created[0].ID, claims.UserID)
	assert.Equal(t, models.RoleMember, claims.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newAuthRepoStub()
	repo.addUser(&models.User{ID: "user_1", Email: "taken@example.com", Active: true})
	svc := testAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "taken@example.com",
		Password: "long enough",
		FullName: "Someone",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, repo.created)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := testAuthService(newAuthRepoStub())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "new@example.com",
		Password: "short",
		FullName: "Someone",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right password"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := newAuthRepoStub()
	repo.addUser(&models.User{ID: "user_1", Email: "jamie@example.com", PasswordHash: string(hash), Active: true})
	svc := testAuthService(repo)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "jamie@example.com", Password: "wrong"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right password"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := newAuthRepoStub()
	repo.addUser(&models.User{ID: "user_1", Email: "jamie@example.com", PasswordHash: string(hash), Active: false})
	svc := testAuthService(repo)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "jamie@example.com", Password: "right password"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestRefreshTokenRotation(t *testing.T) {
	repo := newAuthRepoStub()
	svc := testAuthService(repo)

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "jamie@example.com",
		Password: "correct horse",
		FullName: "Jamie Doe",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: res.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, res.RefreshToken, refreshed.RefreshToken)

	// The old token is revoked by rotation.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: res.RefreshToken})
	require.Error(t, err)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := testAuthService(newAuthRepoStub())

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)

	other := NewAuthService(newAuthRepoStub(), nil, nil, AuthConfig{
		AccessTokenSecret: "other_secret",
		AccessTokenExpiry: time.Hour,
	})
	res, err := other.Register(context.Background(), models.RegisterRequest{
		Email:    "jamie@example.com",
		Password: "correct horse",
		FullName: "Jamie Doe",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.AccessToken)
	require.Error(t, err)
}
