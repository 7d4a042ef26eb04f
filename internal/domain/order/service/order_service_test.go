package service

import (
	"testing"

	"marketplace_backend/internal/domain/order/model"
	storeModel "marketplace_backend/internal/domain/store/model"
	"marketplace_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func init() {
	logger.Init("test")
}

// MockOrderRepository is a mock of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(order *model.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(id uint) (*model.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByNo(orderNo string) (*model.Order, error) {
	args := m.Called(orderNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByCustomer(customerID uint, offset, limit int) ([]model.Order, int64, error) {
	args := m.Called(customerID, offset, limit)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) List(status string, offset, limit int) ([]model.Order, int64, error) {
	args := m.Called(status, offset, limit)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(orderID uint, from []string, to string) error {
	args := m.Called(orderID, from, to)
	return args.Error(0)
}

func (m *MockOrderRepository) Cancel(orderID uint) error {
	args := m.Called(orderID)
	return args.Error(0)
}

// MockStoreRepository is a mock of the store repository
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) CreateStore(store *storeModel.Store) error {
	args := m.Called(store)
	return args.Error(0)
}

func (m *MockStoreRepository) GetStoreByID(id uint) (*storeModel.Store, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storeModel.Store), args.Error(1)
}

func (m *MockStoreRepository) GetStoreByOwner(ownerID uint) (*storeModel.Store, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storeModel.Store), args.Error(1)
}

func (m *MockStoreRepository) ListStores(status string, offset, limit int) ([]storeModel.Store, int64, error) {
	args := m.Called(status, offset, limit)
	return args.Get(0).([]storeModel.Store), args.Get(1).(int64), args.Error(2)
}

func (m *MockStoreRepository) ReviewStore(storeID, reviewerID uint, status, note string) error {
	args := m.Called(storeID, reviewerID, status, note)
	return args.Error(0)
}

func (m *MockStoreRepository) CreateProduct(product *storeModel.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockStoreRepository) GetProduct(id uint) (*storeModel.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storeModel.Product), args.Error(1)
}

func (m *MockStoreRepository) ListProducts(storeID uint, offset, limit int) ([]storeModel.Product, int64, error) {
	args := m.Called(storeID, offset, limit)
	return args.Get(0).([]storeModel.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockStoreRepository) UpdateProduct(product *storeModel.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func testProduct(id, storeID uint, price float64, stock int) *storeModel.Product {
	return &storeModel.Product{
		Model:   gorm.Model{ID: id},
		StoreID: storeID,
		Name:    "Widget",
		Price:   price,
		Stock:   stock,
	}
}

func uintPtr(v uint) *uint { return &v }

func TestCreateOrder(t *testing.T) {
	t.Run("Total is recomputed from current product prices", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		mockStores := new(MockStoreRepository)
		service := NewOrderService(mockOrders, mockStores, nil)

		mockStores.On("GetProduct", uint(1)).Return(testProduct(1, 5, 30.00, 10), nil)
		mockStores.On("GetProduct", uint(2)).Return(testProduct(2, 5, 20.00, 10), nil)
		mockOrders.On("Create", mock.AnythingOfType("*model.Order")).Return(nil)

		order, err := service.CreateOrder(uintPtr(7), model.ChannelStripe, "pi_123",
			[]OrderItemInput{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}})

		assert.NoError(t, err)
		assert.Equal(t, 80.00, order.TotalAmount)
		assert.Equal(t, model.OrderStatusConfirmed, order.Status)
		assert.Len(t, order.Items, 2)
		assert.Equal(t, 60.00, order.Items[0].Subtotal)
		assert.NotEmpty(t, order.OrderNo)
		mockOrders.AssertExpectations(t)
	})

	t.Run("Items from different stores are rejected", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		mockStores := new(MockStoreRepository)
		service := NewOrderService(mockOrders, mockStores, nil)

		mockStores.On("GetProduct", uint(1)).Return(testProduct(1, 5, 30.00, 10), nil)
		mockStores.On("GetProduct", uint(3)).Return(testProduct(3, 6, 10.00, 10), nil)

		_, err := service.CreateOrder(uintPtr(7), model.ChannelStripe, "",
			[]OrderItemInput{{ProductID: 1, Quantity: 1}, {ProductID: 3, Quantity: 1}})

		assert.ErrorIs(t, err, ErrMixedStores)
		mockOrders.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("Unknown payment channel is rejected", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		mockStores := new(MockStoreRepository)
		service := NewOrderService(mockOrders, mockStores, nil)

		_, err := service.CreateOrder(uintPtr(7), "paypal", "",
			[]OrderItemInput{{ProductID: 1, Quantity: 1}})

		assert.ErrorIs(t, err, ErrInvalidChannel)
	})

	t.Run("Empty order is rejected", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		mockStores := new(MockStoreRepository)
		service := NewOrderService(mockOrders, mockStores, nil)

		_, err := service.CreateOrder(uintPtr(7), model.ChannelStripe, "", nil)

		assert.ErrorIs(t, err, ErrEmptyOrder)
	})

	t.Run("Missing product reads as not found", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		mockStores := new(MockStoreRepository)
		service := NewOrderService(mockOrders, mockStores, nil)

		mockStores.On("GetProduct", uint(404)).Return(nil, gorm.ErrRecordNotFound)

		_, err := service.CreateOrder(uintPtr(7), model.ChannelStripe, "",
			[]OrderItemInput{{ProductID: 404, Quantity: 1}})

		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestCancelOrder(t *testing.T) {
	t.Run("Owner cancels own order", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		mockStores := new(MockStoreRepository)
		service := NewOrderService(mockOrders, mockStores, nil)

		order := &model.Order{ID: 10, CustomerID: uintPtr(7), Status: model.OrderStatusPending}
		mockOrders.On("GetByID", uint(10)).Return(order, nil)
		mockOrders.On("Cancel", uint(10)).Return(nil)

		err := service.CancelOrder(uintPtr(7), 10)

		assert.NoError(t, err)
		mockOrders.AssertExpectations(t)
	})

	t.Run("Other customer's order reads as not found", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		mockStores := new(MockStoreRepository)
		service := NewOrderService(mockOrders, mockStores, nil)

		order := &model.Order{ID: 10, CustomerID: uintPtr(7), Status: model.OrderStatusPending}
		mockOrders.On("GetByID", uint(10)).Return(order, nil)

		err := service.CancelOrder(uintPtr(99), 10)

		assert.ErrorIs(t, err, ErrOrderNotFound)
		mockOrders.AssertNotCalled(t, "Cancel", mock.Anything)
	})
}

func TestUpdateFulfillment(t *testing.T) {
	t.Run("Shipped requires confirmed", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		mockStores := new(MockStoreRepository)
		service := NewOrderService(mockOrders, mockStores, nil)

		order := &model.Order{ID: 10, Status: model.OrderStatusShipped}
		mockOrders.On("UpdateStatus", uint(10), []string{model.OrderStatusConfirmed}, model.OrderStatusShipped).Return(nil)
		mockOrders.On("GetByID", uint(10)).Return(order, nil)

		result, err := service.UpdateFulfillment(10, model.OrderStatusShipped)

		assert.NoError(t, err)
		assert.Equal(t, model.OrderStatusShipped, result.Status)
		mockOrders.AssertExpectations(t)
	})

	t.Run("Arbitrary status is rejected", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		mockStores := new(MockStoreRepository)
		service := NewOrderService(mockOrders, mockStores, nil)

		_, err := service.UpdateFulfillment(10, "lost")

		assert.Error(t, err)
		mockOrders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
