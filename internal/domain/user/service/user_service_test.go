package service

import (
	"testing"

	"marketplace_backend/internal/domain/user/model"
	"marketplace_backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
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

func (m *MockUserRepository) GetByID(id uint) (*model.User, error) {
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

func (m *MockUserRepository) UpdateRole(userID uint, role int) error {
	args := m.Called(userID, role)
	return args.Error(0)
}

func (m *MockUserRepository) EmailByID(id uint) (string, error) {
	args := m.Called(id)
	return args.String(0), args.Error(1)
}

func createTestUser(id uint, email string) *model.User {
	hash, _ := utils.HashPassword("correct-password")
	return &model.User{
		Model:    gorm.Model{ID: id},
		Name:     "TestUser",
		Email:    email,
		Password: hash,
		Role:     model.RoleCustomer,
		Status:   model.StatusNormal,
	}
}

func TestRegister(t *testing.T) {
	t.Run("New user registration success", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)

		mockRepo.On("GetByEmail", "new@example.com").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("Create", mock.AnythingOfType("*model.User")).Return(nil)

		user, err := service.Register("Alice", "new@example.com", "secret123")

		assert.NoError(t, err)
		assert.Equal(t, model.RoleCustomer, user.Role)
		assert.NotEqual(t, "secret123", user.Password)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Duplicate email is rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)

		mockRepo.On("GetByEmail", "taken@example.com").Return(createTestUser(1, "taken@example.com"), nil)

		_, err := service.Register("Bob", "taken@example.com", "secret123")

		assert.ErrorIs(t, err, ErrEmailTaken)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	t.Run("Login success returns token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)
		user := createTestUser(1, "alice@example.com")

		mockRepo.On("GetByEmail", "alice@example.com").Return(user, nil)

		token, err := service.Login("alice@example.com", "correct-password")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("Wrong password fails", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)
		user := createTestUser(1, "alice@example.com")

		mockRepo.On("GetByEmail", "alice@example.com").Return(user, nil)

		token, err := service.Login("alice@example.com", "wrong-password")

		assert.ErrorIs(t, err, ErrAuthFailed)
		assert.Empty(t, token)
	})

	t.Run("Unknown email fails with the same error", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)

		mockRepo.On("GetByEmail", "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

		_, err := service.Login("ghost@example.com", "whatever")

		assert.ErrorIs(t, err, ErrAuthFailed)
	})

	t.Run("Banned account cannot log in", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)
		user := createTestUser(1, "banned@example.com")
		user.Status = model.StatusBanned

		mockRepo.On("GetByEmail", "banned@example.com").Return(user, nil)

		_, err := service.Login("banned@example.com", "correct-password")

		assert.Error(t, err)
	})
}

func TestGetUsers(t *testing.T) {
	t.Run("Pagination maps to offset", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)

		users := []model.User{*createTestUser(1, "a@example.com"), *createTestUser(2, "b@example.com")}
		mockRepo.On("GetList", 10, 10).Return(users, int64(12), nil)

		result, total, err := service.GetUsers(2, 10)

		assert.NoError(t, err)
		assert.Len(t, result, 2)
		assert.Equal(t, int64(12), total)
		mockRepo.AssertExpectations(t)
	})
}
