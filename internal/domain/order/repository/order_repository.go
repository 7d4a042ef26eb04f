package repository

import (
	"errors"

	"marketplace_backend/internal/domain/order/model"
	storeModel "marketplace_backend/internal/domain/store/model"

	"gorm.io/gorm"
)

var (
	// ErrInsufficientStock 下单时库存不足
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrOrderNotCancellable 订单状态不允许取消
	ErrOrderNotCancellable = errors.New("order cannot be cancelled")
)

type OrderRepository interface {
	// Create 创建订单并扣减库存，整体在一个事务内完成
	Create(order *model.Order) error
	GetByID(id uint) (*model.Order, error)
	GetByNo(orderNo string) (*model.Order, error)
	ListByCustomer(customerID uint, offset, limit int) ([]model.Order, int64, error)
	List(status string, offset, limit int) ([]model.Order, int64, error)
	UpdateStatus(orderID uint, from []string, to string) error
	Cancel(orderID uint) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create 创建订单
// 库存扣减使用条件更新，任一行库存不足则整个事务回滚
func (r *orderRepository) Create(order *model.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			result := tx.Model(&storeModel.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}

		// Items 通过关联一并写入
		return tx.Create(order).Error
	})
}

func (r *orderRepository) GetByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByNo(orderNo string) (*model.Order, error) {
	var order model.Order
	if err := r.db.Preload("Items").Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByCustomer(customerID uint, offset, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := r.db.Model(&model.Order{}).Where("customer_id = ?", customerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) List(status string, offset, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := r.db.Model(&model.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus 条件状态流转，from 为空表示不限制前置状态
func (r *orderRepository) UpdateStatus(orderID uint, from []string, to string) error {
	query := r.db.Model(&model.Order{}).Where("id = ?", orderID)
	if len(from) > 0 {
		query = query.Where("status IN ?", from)
	}

	result := query.Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Cancel 取消订单并回补库存
func (r *orderRepository) Cancel(orderID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Order{}).
			Where("id = ? AND status IN ?", orderID,
				[]string{model.OrderStatusPending, model.OrderStatusConfirmed}).
			Update("status", model.OrderStatusCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOrderNotCancellable
		}

		var items []model.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			if err := tx.Model(&storeModel.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
