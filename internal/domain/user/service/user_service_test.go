package service

import (
	"context"
	"os"
	"testing"

	"shop_api/internal/domain/user/model"
	"shop_api/internal/pkg/config"
	"shop_api/pkg/apperr"
	"shop_api/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MockUserRepository is a mock of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetList(offset, limit int) ([]model.User, int64, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

// MockTokenStore is a mock of TokenStore
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Save(ctx context.Context, userID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockTokenStore) Verify(ctx context.Context, userID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockTokenStore) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func TestMain(m *testing.M) {
	config.GlobalConfig.JWT.Secret = "test-access-secret-0123456789abcdef"
	config.GlobalConfig.JWT.RefreshSecret = "test-refresh-secret-0123456789abcdef"
	os.Exit(m.Run())
}

func createTestUser(id, email, password string) *model.User {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		FullName: "Test User",
		Email:    email,
		Password: string(hashed),
		Role:     model.RoleCustomer,
	}
	user.ID = id
	return user
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("New user gets token pair", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockTokenStore)
		service := NewUserService(mockRepo, mockTokens)

		mockRepo.On("GetByEmail", "new@example.com").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("Create", mock.AnythingOfType("*model.User")).
			Run(func(args mock.Arguments) {
				args.Get(0).(*model.User).ID = "user-1"
			}).
			Return(nil)
		mockTokens.On("Save", mock.Anything, "user-1", mock.AnythingOfType("string")).Return(nil)

		user, pair, err := service.Signup(ctx, "Test User", "new@example.com", "password123")

		assert.NoError(t, err)
		assert.Equal(t, model.RoleCustomer, user.Role)
		assert.NotEqual(t, "password123", user.Password)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		mockRepo.AssertExpectations(t)
		mockTokens.AssertExpectations(t)
	})

	t.Run("Existing email rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockTokenStore)
		service := NewUserService(mockRepo, mockTokens)

		mockRepo.On("GetByEmail", "taken@example.com").
			Return(createTestUser("user-1", "taken@example.com", "password123"), nil)

		_, _, err := service.Signup(ctx, "Test User", "taken@example.com", "password123")

		assert.Error(t, err)
		appErr, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Equal(t, "User already exists", appErr.Message)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("Concurrent duplicate insert rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockTokenStore)
		service := NewUserService(mockRepo, mockTokens)

		mockRepo.On("GetByEmail", "race@example.com").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("Create", mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)

		_, _, err := service.Signup(ctx, "Test User", "race@example.com", "password123")

		assert.Error(t, err)
		appErr, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Equal(t, "User already exists", appErr.Message)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid credentials return token pair", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockTokenStore)
		service := NewUserService(mockRepo, mockTokens)

		mockRepo.On("GetByEmail", "user@example.com").
			Return(createTestUser("user-1", "user@example.com", "password123"), nil)
		mockTokens.On("Save", mock.Anything, "user-1", mock.AnythingOfType("string")).Return(nil)

		user, pair, err := service.Login(ctx, "user@example.com", "password123")

		assert.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		assert.NotEmpty(t, pair.AccessToken)
		mockTokens.AssertExpectations(t)
	})

	t.Run("Wrong password rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockTokenStore)
		service := NewUserService(mockRepo, mockTokens)

		mockRepo.On("GetByEmail", "user@example.com").
			Return(createTestUser("user-1", "user@example.com", "password123"), nil)

		_, _, err := service.Login(ctx, "user@example.com", "wrong")

		assert.Error(t, err)
		appErr, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	})

	t.Run("Unknown email rejected with same message", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockTokenStore)
		service := NewUserService(mockRepo, mockTokens)

		mockRepo.On("GetByEmail", "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

		_, _, err := service.Login(ctx, "nobody@example.com", "password123")

		assert.Error(t, err)
		appErr, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	})
}

func TestRefreshTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid refresh token rotates the pair", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockTokenStore)
		service := NewUserService(mockRepo, mockTokens)

		refreshToken, err := utils.GenerateRefreshToken("user-1")
		assert.NoError(t, err)

		mockTokens.On("Verify", mock.Anything, "user-1", refreshToken).Return(nil)
		mockRepo.On("GetByID", "user-1").
			Return(createTestUser("user-1", "user@example.com", "password123"), nil)
		mockTokens.On("Save", mock.Anything, "user-1", mock.AnythingOfType("string")).Return(nil)

		pair, err := service.RefreshTokens(ctx, refreshToken)

		assert.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		mockTokens.AssertExpectations(t)
	})

	t.Run("Rotated token no longer accepted", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockTokenStore)
		service := NewUserService(mockRepo, mockTokens)

		refreshToken, err := utils.GenerateRefreshToken("user-1")
		assert.NoError(t, err)

		mockTokens.On("Verify", mock.Anything, "user-1", refreshToken).
			Return(ErrRefreshTokenMismatch)

		_, err = service.RefreshTokens(ctx, refreshToken)

		assert.Error(t, err)
		appErr, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Equal(t, "Invalid refresh token", appErr.Message)
	})

	t.Run("Garbage token rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockTokenStore)
		service := NewUserService(mockRepo, mockTokens)

		_, err := service.RefreshTokens(ctx, "not-a-jwt")

		assert.Error(t, err)
		appErr, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Equal(t, "Invalid refresh token", appErr.Message)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("Password change invalidates refresh tokens", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockTokenStore)
		service := NewUserService(mockRepo, mockTokens)

		mockRepo.On("GetByID", "user-1").
			Return(createTestUser("user-1", "user@example.com", "oldpass"), nil)
		mockRepo.On("Update", mock.AnythingOfType("*model.User")).Return(nil)
		mockTokens.On("Delete", mock.Anything, "user-1").Return(nil)

		err := service.ChangePassword(ctx, "user-1", "oldpass", "newpass123")

		assert.NoError(t, err)
		mockTokens.AssertExpectations(t)
	})

	t.Run("Wrong old password rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockTokenStore)
		service := NewUserService(mockRepo, mockTokens)

		mockRepo.On("GetByID", "user-1").
			Return(createTestUser("user-1", "user@example.com", "oldpass"), nil)

		err := service.ChangePassword(ctx, "user-1", "wrong", "newpass123")

		assert.Error(t, err)
		appErr, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Equal(t, "Invalid credentials", appErr.Message)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything)
	})
}

func TestGetUsers(t *testing.T) {
	t.Run("Defaults applied to page and limit", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockTokenStore)
		service := NewUserService(mockRepo, mockTokens)

		mockRepo.On("GetList", 0, 10).Return([]model.User{
			*createTestUser("user-1", "a@example.com", "password123"),
		}, int64(1), nil)

		users, total, err := service.GetUsers(0, 0)

		assert.NoError(t, err)
		assert.Len(t, users, 1)
		assert.Equal(t, int64(1), total)
		mockRepo.AssertExpectations(t)
	})
}
