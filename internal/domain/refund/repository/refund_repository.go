package repository

import (
	"errors"
	"time"

	orderModel "marketplace_backend/internal/domain/order/model"
	"marketplace_backend/internal/domain/refund/model"

	"gorm.io/gorm"
)

var (
	// ErrRefundConflict 订单已存在活跃退款单 (pending / processing)
	ErrRefundConflict = errors.New("order already has a live refund")
	// ErrRefundNotPending 退款单不在 pending 状态，无法执行该操作
	ErrRefundNotPending = errors.New("refund is not pending")
	// ErrRefundNotProcessing 退款单不在 processing 状态
	ErrRefundNotProcessing = errors.New("refund is not processing")
)

type RefundRepository interface {
	// CreateRequest 创建退款单并同步订单退款状态，整体在一个事务内完成
	CreateRequest(refund *model.Refund) error
	GetByID(id uint) (*model.Refund, error)
	List(status string, offset, limit int) ([]model.Refund, int64, error)
	ListByCustomer(customerID uint, offset, limit int) ([]model.Refund, int64, error)
	// SumCompleted 订单已完成退款的累计金额
	SumCompleted(orderID uint) (float64, error)
	// MarkProcessing 条件流转 pending → processing，并发重复处理只有一个会成功
	MarkProcessing(refundID uint, processedBy uint) error
	// Finalize 网关退款成功后的终态落库：completed + 订单退款状态
	Finalize(refundID uint, gatewayRefundID, orderRefundStatus string) error
	// MarkFailed 网关退款失败的终态落库
	// 订单的 refund_status 保持 requested 不变，提示管理员需要人工重试
	MarkFailed(refundID uint, note string) error
	// Cancel 条件流转 pending → cancelled，记录操作人并回退订单退款状态
	Cancel(refundID uint, actorID uint, note string) error
	// ListStaleProcessing 停留在 processing 超过 olderThan 的退款单 (对账任务使用)
	ListStaleProcessing(olderThan time.Duration, limit int) ([]model.Refund, error)
}

type refundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) RefundRepository {
	return &refundRepository{db: db}
}

// CreateRequest 创建退款单
// refunds 表上有部分唯一索引 (order_id WHERE status IN ('pending','processing'))，
// 并发提交同一订单的退款时由数据库保证只有一个成功
func (r *refundRepository) CreateRequest(refund *model.Refund) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(refund).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrRefundConflict
			}
			return err
		}

		return tx.Model(&orderModel.Order{}).
			Where("id = ?", refund.OrderID).
			Update("refund_status", orderModel.RefundStatusRequested).Error
	})
}

func (r *refundRepository) GetByID(id uint) (*model.Refund, error) {
	var refund model.Refund
	if err := r.db.Preload("Items").First(&refund, id).Error; err != nil {
		return nil, err
	}
	return &refund, nil
}

func (r *refundRepository) List(status string, offset, limit int) ([]model.Refund, int64, error) {
	var refunds []model.Refund
	var total int64

	query := r.db.Model(&model.Refund{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&refunds).Error; err != nil {
		return nil, 0, err
	}
	return refunds, total, nil
}

func (r *refundRepository) ListByCustomer(customerID uint, offset, limit int) ([]model.Refund, int64, error) {
	var refunds []model.Refund
	var total int64

	query := r.db.Model(&model.Refund{}).Where("customer_id = ?", customerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&refunds).Error; err != nil {
		return nil, 0, err
	}
	return refunds, total, nil
}

func (r *refundRepository) SumCompleted(orderID uint) (float64, error) {
	var sum float64
	err := r.db.Model(&model.Refund{}).
		Where("order_id = ? AND status = ?", orderID, model.StatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

// MarkProcessing 抢占退款单
// 条件更新保证并发的两次处理请求只有一个能从 pending 走到 processing
func (r *refundRepository) MarkProcessing(refundID uint, processedBy uint) error {
	now := time.Now()
	result := r.db.Model(&model.Refund{}).
		Where("id = ? AND status = ?", refundID, model.StatusPending).
		Updates(map[string]interface{}{
			"status":       model.StatusProcessing,
			"processed_by": processedBy,
			"processed_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRefundNotPending
	}
	return nil
}

func (r *refundRepository) Finalize(refundID uint, gatewayRefundID, orderRefundStatus string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var refund model.Refund
		if err := tx.First(&refund, refundID).Error; err != nil {
			return err
		}

		result := tx.Model(&model.Refund{}).
			Where("id = ? AND status = ?", refundID, model.StatusProcessing).
			Updates(map[string]interface{}{
				"status":            model.StatusCompleted,
				"gateway_refund_id": gatewayRefundID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRefundNotProcessing
		}

		return tx.Model(&orderModel.Order{}).
			Where("id = ?", refund.OrderID).
			Update("refund_status", orderRefundStatus).Error
	})
}

func (r *refundRepository) MarkFailed(refundID uint, note string) error {
	result := r.db.Model(&model.Refund{}).
		Where("id = ? AND status = ?", refundID, model.StatusProcessing).
		Updates(map[string]interface{}{
			"status":     model.StatusFailed,
			"admin_note": note,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRefundNotProcessing
	}
	return nil
}

func (r *refundRepository) Cancel(refundID uint, actorID uint, note string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var refund model.Refund
		if err := tx.First(&refund, refundID).Error; err != nil {
			return err
		}

		result := tx.Model(&model.Refund{}).
			Where("id = ? AND status = ?", refundID, model.StatusPending).
			Updates(map[string]interface{}{
				"status":       model.StatusCancelled,
				"processed_by": actorID,
				"processed_at": time.Now(),
				"admin_note":   note,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRefundNotPending
		}

		return r.revertOrderRefundStatus(tx, refund.OrderID)
	})
}

// revertOrderRefundStatus 活跃退款单离场 (failed / cancelled) 后回写订单退款状态：
// 有历史完成的部分退款则回到 partial，否则回到 none
func (r *refundRepository) revertOrderRefundStatus(tx *gorm.DB, orderID uint) error {
	var completed int64
	if err := tx.Model(&model.Refund{}).
		Where("order_id = ? AND status = ?", orderID, model.StatusCompleted).
		Count(&completed).Error; err != nil {
		return err
	}

	status := orderModel.RefundStatusNone
	if completed > 0 {
		status = orderModel.RefundStatusPartial
	}
	return tx.Model(&orderModel.Order{}).
		Where("id = ?", orderID).
		Update("refund_status", status).Error
}

func (r *refundRepository) ListStaleProcessing(olderThan time.Duration, limit int) ([]model.Refund, error) {
	var refunds []model.Refund
	cutoff := time.Now().Add(-olderThan)
	err := r.db.Preload("Items").
		Where("status = ? AND processed_at < ?", model.StatusProcessing, cutoff).
		Order("processed_at ASC").
		Limit(limit).
		Find(&refunds).Error
	return refunds, err
}
