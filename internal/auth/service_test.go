package auth

import (
	"context"
	"testing"
	"time"

	"skybook/internal/shared/config"
	"skybook/internal/users"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryUserRepo is an in-memory auth Repository for service tests.
type memoryUserRepo struct {
	users map[string]*users.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*users.User)}
}

func (m *memoryUserRepo) CreateUser(ctx context.Context, user *users.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	m.users[user.ID.String()] = &copied
	return nil
}

func (m *memoryUserRepo) GetUserByUsername(ctx context.Context, username string) (*users.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memoryUserRepo) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memoryUserRepo) UpdateUserPassword(ctx context.Context, userID string, hashedPassword string) error {
	user, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.Password = hashedPassword
	return nil
}

func (m *memoryUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.GetUserByUsername(ctx, username)
	return err == nil, nil
}

func (m *memoryUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	for _, user := range m.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			JWTExpiresIn:     15 * time.Minute,
			RefreshExpiresIn: 24 * time.Hour,
		},
	}
}

func registerRequest() *RegisterRequest {
	return &RegisterRequest{
		Username: "alice",
		Email:    "alice@skybook.dev",
		Password: "hunter22",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with tokens", func(t *testing.T) {
		svc := NewService(newMemoryUserRepo(), testConfig())

		resp, err := svc.Register(ctx, registerRequest())

		require.NoError(t, err)
		assert.Equal(t, "alice", resp.User.Username)
		assert.Equal(t, string(users.RoleUser), resp.User.Role)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("honors admin role", func(t *testing.T) {
		svc := NewService(newMemoryUserRepo(), testConfig())
		req := registerRequest()
		req.Role = "admin"

		resp, err := svc.Register(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, string(users.RoleAdmin), resp.User.Role)
	})

	t.Run("unknown role falls back to user", func(t *testing.T) {
		svc := NewService(newMemoryUserRepo(), testConfig())
		req := registerRequest()
		req.Role = "SUPERVISOR"

		resp, err := svc.Register(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, string(users.RoleUser), resp.User.Role)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		svc := NewService(newMemoryUserRepo(), testConfig())

		_, err := svc.Register(ctx, registerRequest())
		require.NoError(t, err)

		req := registerRequest()
		req.Email = "other@skybook.dev"
		_, err = svc.Register(ctx, req)

		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc := NewService(newMemoryUserRepo(), testConfig())

		_, err := svc.Register(ctx, registerRequest())
		require.NoError(t, err)

		req := registerRequest()
		req.Username = "alice2"
		_, err = svc.Register(ctx, req)

		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) Service {
		svc := NewService(newMemoryUserRepo(), testConfig())
		_, err := svc.Register(ctx, registerRequest())
		require.NoError(t, err)
		return svc
	}

	t.Run("valid credentials", func(t *testing.T) {
		svc := setup(t)

		resp, err := svc.Login(ctx, &LoginRequest{Username: "alice", Password: "hunter22"})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)

		claims, err := svc.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "access", claims.Type)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.Login(ctx, &LoginRequest{Username: "alice", Password: "wrong"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.Login(ctx, &LoginRequest{Username: "nobody", Password: "hunter22"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryUserRepo(), testConfig())

	resp, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	t.Run("refresh token yields new pair", func(t *testing.T) {
		pair, err := svc.RefreshToken(ctx, resp.RefreshToken)

		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
	})

	t.Run("access token is rejected", func(t *testing.T) {
		_, err := svc.RefreshToken(ctx, resp.AccessToken)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := svc.RefreshToken(ctx, "not-a-token")

		assert.Error(t, err)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryUserRepo(), testConfig())

	resp, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	userID := resp.User.ID

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, userID, &ChangePasswordRequest{
			CurrentPassword: "wrong",
			NewPassword:     "newpassword1",
		})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("changes and logs in with new password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, userID, &ChangePasswordRequest{
			CurrentPassword: "hunter22",
			NewPassword:     "newpassword1",
		})
		require.NoError(t, err)

		_, err = svc.Login(ctx, &LoginRequest{Username: "alice", Password: "hunter22"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(ctx, &LoginRequest{Username: "alice", Password: "newpassword1"})
		assert.NoError(t, err)
	})
}
