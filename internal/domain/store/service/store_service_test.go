package service

import (
	"testing"

	"marketplace_backend/internal/domain/store/model"
	"marketplace_backend/internal/domain/store/repository"
	userModel "marketplace_backend/internal/domain/user/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockStoreRepository is a mock of StoreRepository
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) CreateStore(store *model.Store) error {
	args := m.Called(store)
	return args.Error(0)
}

func (m *MockStoreRepository) GetStoreByID(id uint) (*model.Store, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Store), args.Error(1)
}

func (m *MockStoreRepository) GetStoreByOwner(ownerID uint) (*model.Store, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Store), args.Error(1)
}

func (m *MockStoreRepository) ListStores(status string, offset, limit int) ([]model.Store, int64, error) {
	args := m.Called(status, offset, limit)
	return args.Get(0).([]model.Store), args.Get(1).(int64), args.Error(2)
}

func (m *MockStoreRepository) ReviewStore(storeID, reviewerID uint, status, note string) error {
	args := m.Called(storeID, reviewerID, status, note)
	return args.Error(0)
}

func (m *MockStoreRepository) CreateProduct(product *model.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockStoreRepository) GetProduct(id uint) (*model.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockStoreRepository) ListProducts(storeID uint, offset, limit int) ([]model.Product, int64, error) {
	args := m.Called(storeID, offset, limit)
	return args.Get(0).([]model.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockStoreRepository) UpdateProduct(product *model.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

// MockUserRepository is a mock of the user repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *userModel.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*userModel.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userModel.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*userModel.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userModel.User), args.Error(1)
}

func (m *MockUserRepository) GetList(offset, limit int) ([]userModel.User, int64, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]userModel.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(user *userModel.User) error {
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

// noopNotifier swallows all notifications
type noopNotifier struct{}

func (noopNotifier) Notify(recipientID *uint, role, title, body, category, deepLink string) {}

func approvedStore(id, ownerID uint) *model.Store {
	return &model.Store{
		Model:   gorm.Model{ID: id},
		OwnerID: ownerID,
		Name:    "Test Store",
		Status:  model.StoreStatusApproved,
	}
}

func TestRegisterStore(t *testing.T) {
	t.Run("New store starts pending and promotes the owner", func(t *testing.T) {
		mockRepo := new(MockStoreRepository)
		mockUsers := new(MockUserRepository)
		service := NewStoreService(mockRepo, mockUsers, noopNotifier{})

		mockRepo.On("GetStoreByOwner", uint(7)).Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("CreateStore", mock.AnythingOfType("*model.Store")).Return(nil)
		mockUsers.On("UpdateRole", uint(7), userModel.RoleStoreOwner).Return(nil)

		store, err := service.RegisterStore(7, "My Shop", "stuff")

		assert.NoError(t, err)
		assert.Equal(t, model.StoreStatusPending, store.Status)
		mockRepo.AssertExpectations(t)
		mockUsers.AssertExpectations(t)
	})

	t.Run("Second store per owner is rejected", func(t *testing.T) {
		mockRepo := new(MockStoreRepository)
		mockUsers := new(MockUserRepository)
		service := NewStoreService(mockRepo, mockUsers, noopNotifier{})

		mockRepo.On("GetStoreByOwner", uint(7)).Return(approvedStore(1, 7), nil)

		_, err := service.RegisterStore(7, "Another Shop", "")

		assert.ErrorIs(t, err, ErrStoreExists)
		mockRepo.AssertNotCalled(t, "CreateStore", mock.Anything)
	})
}

func TestReviewStore(t *testing.T) {
	t.Run("Approval flips status", func(t *testing.T) {
		mockRepo := new(MockStoreRepository)
		mockUsers := new(MockUserRepository)
		service := NewStoreService(mockRepo, mockUsers, noopNotifier{})

		mockRepo.On("ReviewStore", uint(1), uint(9), model.StoreStatusApproved, "looks good").Return(nil)
		mockRepo.On("GetStoreByID", uint(1)).Return(approvedStore(1, 7), nil)

		store, err := service.ReviewStore(1, 9, true, "looks good")

		assert.NoError(t, err)
		assert.Equal(t, model.StoreStatusApproved, store.Status)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Already reviewed store cannot be reviewed again", func(t *testing.T) {
		mockRepo := new(MockStoreRepository)
		mockUsers := new(MockUserRepository)
		service := NewStoreService(mockRepo, mockUsers, noopNotifier{})

		mockRepo.On("ReviewStore", uint(1), uint(9), model.StoreStatusRejected, "").
			Return(repository.ErrStoreNotPending)

		_, err := service.ReviewStore(1, 9, false, "")

		assert.ErrorIs(t, err, repository.ErrStoreNotPending)
	})
}

func TestAddProduct(t *testing.T) {
	t.Run("Approved store can list products", func(t *testing.T) {
		mockRepo := new(MockStoreRepository)
		mockUsers := new(MockUserRepository)
		service := NewStoreService(mockRepo, mockUsers, noopNotifier{})

		mockRepo.On("GetStoreByOwner", uint(7)).Return(approvedStore(1, 7), nil)
		mockRepo.On("CreateProduct", mock.AnythingOfType("*model.Product")).Return(nil)

		product, err := service.AddProduct(7, "Widget", "", 30.00, 10, "")

		assert.NoError(t, err)
		assert.Equal(t, uint(1), product.StoreID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Pending store cannot list products", func(t *testing.T) {
		mockRepo := new(MockStoreRepository)
		mockUsers := new(MockUserRepository)
		service := NewStoreService(mockRepo, mockUsers, noopNotifier{})

		store := approvedStore(1, 7)
		store.Status = model.StoreStatusPending
		mockRepo.On("GetStoreByOwner", uint(7)).Return(store, nil)

		_, err := service.AddProduct(7, "Widget", "", 30.00, 10, "")

		assert.ErrorIs(t, err, ErrStoreNotApproved)
		mockRepo.AssertNotCalled(t, "CreateProduct", mock.Anything)
	})
}

func TestUpdateProduct(t *testing.T) {
	t.Run("Other store's product is rejected", func(t *testing.T) {
		mockRepo := new(MockStoreRepository)
		mockUsers := new(MockUserRepository)
		service := NewStoreService(mockRepo, mockUsers, noopNotifier{})

		mockRepo.On("GetStoreByOwner", uint(7)).Return(approvedStore(1, 7), nil)
		mockRepo.On("GetProduct", uint(5)).Return(&model.Product{
			Model:   gorm.Model{ID: 5},
			StoreID: 2,
			Name:    "Foreign",
			Price:   10,
		}, nil)

		_, err := service.UpdateProduct(7, 5, 12.00, 3)

		assert.ErrorIs(t, err, ErrNotStoreOwner)
		mockRepo.AssertNotCalled(t, "UpdateProduct", mock.Anything)
	})
}
