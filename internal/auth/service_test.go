package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"weave-server/internal/auth"
	"weave-server/internal/clients/weave"
	"weave-server/internal/models"
	repoMocks "weave-server/internal/repository/mocks"
	serviceMocks "weave-server/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-signing"

func newAuthService(userRepo *repoMocks.UserRepository, client *serviceMocks.GenerationClient) auth.Service {
	return auth.NewService(userRepo, client, zap.NewNop(), testSecret, time.Hour, 10)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a user with starting credits", func(t *testing.T) {
		userRepo := new(repoMocks.UserRepository)
		client := new(serviceMocks.GenerationClient)
		svc := newAuthService(userRepo, client)

		synced := make(chan struct{})
		userRepo.On("GetByEmail", ctx, "reader@example.com").Return(nil, models.ErrNotFound).Once()
		userRepo.On("Create", ctx, mock.MatchedBy(func(user *models.User) bool {
			assert.Equal(t, "reader@example.com", user.Email)
			assert.Equal(t, "Reader", user.Name)
			assert.Equal(t, 10, user.Credits)
			assert.NotEmpty(t, user.PasswordHash)
			assert.NotEqual(t, "longenoughpassword", user.PasswordHash)
			return true
		})).Return(nil).Once()
		client.On("RegisterPreferences", mock.Anything, mock.MatchedBy(func(req weave.RegisterRequest) bool {
			return req.Email == "reader@example.com"
		})).Run(func(mock.Arguments) { close(synced) }).Return(nil).Once()

		user, err := svc.Register(ctx, "Reader@Example.com ", "Reader", "longenoughpassword")

		require.NoError(t, err)
		assert.Equal(t, "reader@example.com", user.Email)

		select {
		case <-synced:
		case <-time.After(time.Second):
			t.Fatal("preference sync was never attempted")
		}
		userRepo.AssertExpectations(t)
	})

	t.Run("Registration succeeds even when preference sync fails", func(t *testing.T) {
		userRepo := new(repoMocks.UserRepository)
		client := new(serviceMocks.GenerationClient)
		svc := newAuthService(userRepo, client)

		synced := make(chan struct{})
		userRepo.On("GetByEmail", ctx, mock.Anything).Return(nil, models.ErrNotFound).Once()
		userRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
		client.On("RegisterPreferences", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { close(synced) }).
			Return(&weave.UpstreamError{StatusCode: 500, Detail: "boom"}).Once()

		user, err := svc.Register(ctx, "other@example.com", "Other", "longenoughpassword")

		require.NoError(t, err)
		assert.NotNil(t, user)
		<-synced
	})

	t.Run("Invalid email is a validation error", func(t *testing.T) {
		userRepo := new(repoMocks.UserRepository)
		svc := newAuthService(userRepo, new(serviceMocks.GenerationClient))

		_, err := svc.Register(ctx, "not-an-email", "Reader", "longenoughpassword")

		assert.True(t, errors.Is(err, models.ErrValidation))
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Short password is a validation error", func(t *testing.T) {
		userRepo := new(repoMocks.UserRepository)
		svc := newAuthService(userRepo, new(serviceMocks.GenerationClient))

		_, err := svc.Register(ctx, "reader@example.com", "Reader", "short")

		assert.True(t, errors.Is(err, models.ErrValidation))
	})

	t.Run("Duplicate email is rejected", func(t *testing.T) {
		userRepo := new(repoMocks.UserRepository)
		svc := newAuthService(userRepo, new(serviceMocks.GenerationClient))

		userRepo.On("GetByEmail", ctx, "reader@example.com").
			Return(&models.User{ID: uuid.New(), Email: "reader@example.com"}, nil).Once()

		_, err := svc.Register(ctx, "reader@example.com", "Reader", "longenoughpassword")

		assert.True(t, errors.Is(err, models.ErrUserAlreadyExists))
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_LoginAndVerify(t *testing.T) {
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("longenoughpassword"), bcrypt.MinCost)
	require.NoError(t, err)
	storedUser := &models.User{
		ID:           uuid.New(),
		Email:        "reader@example.com",
		Name:         "Reader",
		PasswordHash: string(hashed),
		Credits:      10,
	}

	t.Run("Valid credentials produce a verifiable token", func(t *testing.T) {
		userRepo := new(repoMocks.UserRepository)
		svc := newAuthService(userRepo, new(serviceMocks.GenerationClient))

		userRepo.On("GetByEmail", ctx, "reader@example.com").Return(storedUser, nil).Once()

		token, user, err := svc.Login(ctx, "reader@example.com", "longenoughpassword")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, storedUser.ID, user.ID)

		userID, err := svc.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, storedUser.ID, userID)
	})

	t.Run("Wrong password yields invalid credentials", func(t *testing.T) {
		userRepo := new(repoMocks.UserRepository)
		svc := newAuthService(userRepo, new(serviceMocks.GenerationClient))

		userRepo.On("GetByEmail", ctx, "reader@example.com").Return(storedUser, nil).Once()

		_, _, err := svc.Login(ctx, "reader@example.com", "wrongpassword")

		assert.True(t, errors.Is(err, models.ErrInvalidCredentials))
	})

	t.Run("Unknown email yields invalid credentials, not a 404", func(t *testing.T) {
		userRepo := new(repoMocks.UserRepository)
		svc := newAuthService(userRepo, new(serviceMocks.GenerationClient))

		userRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, models.ErrNotFound).Once()

		_, _, err := svc.Login(ctx, "ghost@example.com", "longenoughpassword")

		assert.True(t, errors.Is(err, models.ErrInvalidCredentials))
	})

	t.Run("Garbage token is unauthorized", func(t *testing.T) {
		svc := newAuthService(new(repoMocks.UserRepository), new(serviceMocks.GenerationClient))

		_, err := svc.VerifyToken("not.a.token")

		assert.True(t, errors.Is(err, models.ErrUnauthorized))
	})

	t.Run("Token signed with a different secret is unauthorized", func(t *testing.T) {
		other := auth.NewService(new(repoMocks.UserRepository), new(serviceMocks.GenerationClient),
			zap.NewNop(), "a-completely-different-secret", time.Hour, 10)
		userRepo := new(repoMocks.UserRepository)
		userRepo.On("GetByEmail", ctx, "reader@example.com").Return(storedUser, nil).Once()
		token, _, err := newAuthService(userRepo, new(serviceMocks.GenerationClient)).
			Login(ctx, "reader@example.com", "longenoughpassword")
		require.NoError(t, err)

		_, err = other.VerifyToken(token)

		assert.True(t, errors.Is(err, models.ErrUnauthorized))
	})
}
