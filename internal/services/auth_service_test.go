package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T) (*AuthService, *TokenService) {
	t.Helper()
	tokens := NewTokenService("test-secret")
	return NewAuthService(testutil.DB(t), tokens), tokens
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, tokens := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{Username: "  aina ", Password: "pass"})
	require.NoError(t, err)
	assert.True(t, reg.Success)
	assert.Equal(t, "aina", reg.Username)
	assert.NotZero(t, reg.UserID)

	id, err := tokens.Verify(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, id.UserID)

	login, err := svc.Login(ctx, &dto.LoginRequest{Username: "aina", Password: "pass"})
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, login.UserID)
}

func TestAuthService_PasswordIsHashed(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Username: "aina", Password: "pass"})
	require.NoError(t, err)

	var user models.User
	require.NoError(t, svc.db.Where("username = ?", "aina").Take(&user).Error)
	assert.NotEqual(t, "pass", user.PasswordHash)
	assert.Contains(t, user.PasswordHash, "$2")
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Username: "aina", Password: "pass"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Username: "aina", Password: "other"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)

	tests := []struct {
		name string
		req  dto.RegisterRequest
		msg  string
	}{
		{"blank username", dto.RegisterRequest{Username: "   ", Password: "pass"}, "username and password required"},
		{"empty password", dto.RegisterRequest{Username: "aina"}, "username and password required"},
		{"blank password", dto.RegisterRequest{Username: "aina", Password: "    "}, "username and password required"},
		{"short password", dto.RegisterRequest{Username: "aina", Password: "abc"}, "password must be at least 4 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), &tt.req)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.msg, verr.Message)
		})
	}

	var count int64
	require.NoError(t, svc.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAuthService_RegisterInsertRace(t *testing.T) {
	svc, _ := newAuthService(t)

	// Another registration of the same name lands between the pre-check and
	// the insert.
	cb := svc.db.Callback().Create().Before("gorm:create")
	require.NoError(t, cb.Register("test:concurrent_register", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*models.User); !ok {
			return
		}
		err := tx.Session(&gorm.Session{NewDB: true, SkipHooks: true}).
			Exec("INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)", "aina", "x", time.Now()).Error
		require.NoError(t, err)
	}))

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Username: "aina", Password: "pass"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Username: "aina", Password: "pass"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "pass"})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "aina", Password: "wrong"})
	assert.ErrorIs(t, err, ErrBadPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
