package auth_test

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tiendago/auth"
	"golang.org/x/crypto/bcrypt"
)

func cheapHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestAuthenticator(users auth.Users) *auth.Auther {
	cfg := auth.Config{SigningKey: testSigningKey}
	return auth.NewAuthenticator(users, cfg).WithLogger(silentLogger{})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and issues token", func(t *testing.T) {
		users := new(MockUsers)
		stored := &auth.User{
			ID:       uuid.New(),
			Email:    "ada@x.com",
			FullName: "Ada Lovelace",
			IsActive: true,
			Roles:    []string{auth.RoleUser},
		}

		users.On("Create", mock.Anything, mock.AnythingOfType("*auth.User")).
			Run(func(args mock.Arguments) {
				record := args.Get(1).(*auth.User)
				assert.Equal(t, "ada@x.com", record.Email)
				assert.NotEmpty(t, record.PasswordHash)
				assert.NotEqual(t, "Abc12345", record.PasswordHash)
			}).
			Return(stored, nil)

		svc := newTestAuthenticator(users)
		payload, err := svc.Register(ctx, auth.RegisterMessage{
			Email:    "  Ada@X.com ",
			Password: "Abc12345",
			FullName: "Ada Lovelace",
		})
		require.NoError(t, err)

		assert.Equal(t, stored.ID, payload.User.ID)
		assert.Empty(t, payload.User.PasswordHash)
		require.NotEmpty(t, payload.Token)

		claims, err := svc.TokenService().Validate(payload.Token)
		require.NoError(t, err)
		assert.Equal(t, stored.ID.String(), claims.UserID())

		users.AssertExpectations(t)
	})

	t.Run("duplicate email surfaces as conflict", func(t *testing.T) {
		users := new(MockUsers)
		users.On("Create", mock.Anything, mock.Anything).
			Return(nil, auth.ErrDuplicateEmail)

		svc := newTestAuthenticator(users)
		_, err := svc.Register(ctx, auth.RegisterMessage{
			Email:    "ada@x.com",
			Password: "Abc12345",
			FullName: "Ada Lovelace",
		})

		var richErr *goerrors.Error
		require.ErrorAs(t, err, &richErr)
		assert.Equal(t, auth.TextCodeDuplicateEmail, richErr.TextCode)
	})

	t.Run("store failure becomes server error", func(t *testing.T) {
		users := new(MockUsers)
		users.On("Create", mock.Anything, mock.Anything).
			Return(nil, errors.New("disk on fire"))

		svc := newTestAuthenticator(users)
		_, err := svc.Register(ctx, auth.RegisterMessage{
			Email:    "ada@x.com",
			Password: "Abc12345",
			FullName: "Ada Lovelace",
		})

		var richErr *goerrors.Error
		require.ErrorAs(t, err, &richErr)
		assert.Equal(t, goerrors.CategoryInternal, richErr.Category)
	})

	t.Run("empty password never reaches the store", func(t *testing.T) {
		users := new(MockUsers)

		svc := newTestAuthenticator(users)
		_, err := svc.Register(ctx, auth.RegisterMessage{
			Email:    "ada@x.com",
			FullName: "Ada Lovelace",
		})

		assert.ErrorIs(t, err, auth.ErrNoEmptyString)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials issue a token", func(t *testing.T) {
		stored := &auth.User{
			ID:           uuid.New(),
			Email:        "ada@x.com",
			PasswordHash: cheapHash(t, "Abc12345"),
			IsActive:     true,
			Roles:        []string{auth.RoleUser},
		}

		users := new(MockUsers)
		users.On("GetByEmail", mock.Anything, "ada@x.com").Return(stored, nil)

		svc := newTestAuthenticator(users)
		payload, err := svc.Login(ctx, "ada@x.com", "Abc12345")
		require.NoError(t, err)

		assert.Equal(t, stored.ID, payload.User.ID)
		assert.Empty(t, payload.User.PasswordHash)
		assert.NotEmpty(t, payload.Token)
	})

	t.Run("unknown email", func(t *testing.T) {
		users := new(MockUsers)
		users.On("GetByEmail", mock.Anything, mock.Anything).
			Return(nil, auth.NewRecordNotFound("email", "ghost@x.com"))

		svc := newTestAuthenticator(users)
		_, err := svc.Login(ctx, "ghost@x.com", "Abc12345")

		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		stored := &auth.User{
			ID:           uuid.New(),
			Email:        "ada@x.com",
			PasswordHash: cheapHash(t, "Abc12345"),
			IsActive:     true,
		}

		users := new(MockUsers)
		users.On("GetByEmail", mock.Anything, "ada@x.com").Return(stored, nil)

		svc := newTestAuthenticator(users)
		_, err := svc.Login(ctx, "ada@x.com", "Abc12346")

		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("store failure becomes server error", func(t *testing.T) {
		users := new(MockUsers)
		users.On("GetByEmail", mock.Anything, mock.Anything).
			Return(nil, errors.New("connection refused"))

		svc := newTestAuthenticator(users)
		_, err := svc.Login(ctx, "ada@x.com", "Abc12345")

		var richErr *goerrors.Error
		require.ErrorAs(t, err, &richErr)
		assert.Equal(t, goerrors.CategoryInternal, richErr.Category)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("re-issues for authenticated user", func(t *testing.T) {
		svc := newTestAuthenticator(new(MockUsers))
		user := &auth.User{ID: uuid.New(), Email: "ada@x.com", IsActive: true}

		payload, err := svc.Refresh(ctx, user)
		require.NoError(t, err)

		assert.NotEmpty(t, payload.Token)
		claims, err := svc.TokenService().Validate(payload.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID())
	})

	t.Run("nil user rejected", func(t *testing.T) {
		svc := newTestAuthenticator(new(MockUsers))
		_, err := svc.Refresh(ctx, nil)
		assert.ErrorIs(t, err, auth.ErrMissingAuthUser)
	})
}

func TestWithTokenService(t *testing.T) {
	shared := auth.NewTokenService(auth.Config{SigningKey: testSigningKey}, silentLogger{})
	svc := newTestAuthenticator(new(MockUsers)).WithTokenService(shared)

	assert.Same(t, shared, svc.TokenService())
}
