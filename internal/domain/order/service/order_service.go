package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketplace_backend/internal/domain/order/model"
	"marketplace_backend/internal/domain/order/repository"
	storeRepo "marketplace_backend/internal/domain/store/repository"
	"marketplace_backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrProductNotFound = errors.New("product not found")
	ErrMixedStores     = errors.New("all items must belong to the same store")
	ErrInvalidChannel  = errors.New("unsupported payment channel")
)

// OrderItemInput 下单行输入，价格由服务端按商品当前售价计算
type OrderItemInput struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// OrderService 订单服务接口
type OrderService interface {
	CreateOrder(customerID *uint, channel, paymentRef string, items []OrderItemInput) (*model.Order, error)
	GetOrder(id uint) (*model.Order, error)
	ListMyOrders(customerID uint, page, limit int) ([]model.Order, int64, error)
	ListOrders(status string, page, limit int) ([]model.Order, int64, error)
	UpdateFulfillment(orderID uint, status string) (*model.Order, error)
	CancelOrder(customerID *uint, orderID uint) error
}

type orderService struct {
	repo   repository.OrderRepository
	stores storeRepo.StoreRepository
	rdb    *redis.Client
}

func NewOrderService(repo repository.OrderRepository, stores storeRepo.StoreRepository, rdb *redis.Client) OrderService {
	return &orderService{repo: repo, stores: stores, rdb: rdb}
}

// 缓存键常量
const (
	orderCacheKeyPrefix = "order:"
	orderCacheTTL       = time.Minute * 10
)

func orderCacheKey(id uint) string {
	return fmt.Sprintf("%s%d", orderCacheKeyPrefix, id)
}

// CreateOrder 创建订单
// 金额完全由服务端根据商品当前售价重新计算，不信任客户端传入的金额
func (s *orderService) CreateOrder(customerID *uint, channel, paymentRef string, items []OrderItemInput) (*model.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	switch channel {
	case model.ChannelStripe, model.ChannelAlipay, model.ChannelWechat:
	default:
		return nil, ErrInvalidChannel
	}

	var (
		storeID    uint
		total      float64
		orderItems []model.OrderItem
	)
	for _, in := range items {
		product, err := s.stores.GetProduct(in.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		if storeID == 0 {
			storeID = product.StoreID
		} else if storeID != product.StoreID {
			return nil, ErrMixedStores
		}

		subtotal := product.Price * float64(in.Quantity)
		total += subtotal
		orderItems = append(orderItems, model.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  in.Quantity,
			Subtotal:  subtotal,
		})
	}

	status := model.OrderStatusPending
	if paymentRef != "" {
		status = model.OrderStatusConfirmed
	}

	order := &model.Order{
		OrderNo:      fmt.Sprintf("%s%s", time.Now().Format("20060102150405"), uuid.New().String()[:8]),
		CustomerID:   customerID,
		StoreID:      storeID,
		TotalAmount:  total,
		Status:       status,
		RefundStatus: model.RefundStatusNone,
		Channel:      channel,
		PaymentRef:   paymentRef,
		Items:        orderItems,
	}

	if err := s.repo.Create(order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder 获取订单详情 (Redis 读穿缓存)
func (s *orderService) GetOrder(id uint) (*model.Order, error) {
	ctx := context.Background()
	key := orderCacheKey(id)

	if s.rdb != nil {
		if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var cached model.Order
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	order, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(order); err == nil {
			if err := s.rdb.Set(ctx, key, data, orderCacheTTL).Err(); err != nil {
				logger.Log.Warn("order cache set failed", zap.Uint("order", id), zap.Error(err))
			}
		}
	}

	return order, nil
}

func (s *orderService) ListMyOrders(customerID uint, page, limit int) ([]model.Order, int64, error) {
	offset := (page - 1) * limit
	return s.repo.ListByCustomer(customerID, offset, limit)
}

func (s *orderService) ListOrders(status string, page, limit int) ([]model.Order, int64, error) {
	offset := (page - 1) * limit
	return s.repo.List(status, offset, limit)
}

// UpdateFulfillment 店家更新履约状态 (confirmed → shipped → delivered)
func (s *orderService) UpdateFulfillment(orderID uint, status string) (*model.Order, error) {
	var from []string
	switch status {
	case model.OrderStatusShipped:
		from = []string{model.OrderStatusConfirmed}
	case model.OrderStatusDelivered:
		from = []string{model.OrderStatusShipped}
	default:
		return nil, fmt.Errorf("invalid fulfillment status: %s", status)
	}

	if err := s.repo.UpdateStatus(orderID, from, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	s.invalidateCache(orderID)
	return s.repo.GetByID(orderID)
}

// CancelOrder 顾客取消自己的订单
func (s *orderService) CancelOrder(customerID *uint, orderID uint) error {
	order, err := s.repo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	// 归属校验与"不存在"刻意返回同一个错误，避免泄露他人订单
	if customerID != nil && (order.CustomerID == nil || *order.CustomerID != *customerID) {
		return ErrOrderNotFound
	}

	if err := s.repo.Cancel(orderID); err != nil {
		return err
	}

	s.invalidateCache(orderID)
	return nil
}

func (s *orderService) invalidateCache(orderID uint) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(context.Background(), orderCacheKey(orderID)).Err(); err != nil {
		logger.Log.Warn("order cache invalidation failed", zap.Uint("order", orderID), zap.Error(err))
	}
}
