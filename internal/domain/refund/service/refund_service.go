package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	orderModel "marketplace_backend/internal/domain/order/model"
	orderRepo "marketplace_backend/internal/domain/order/repository"
	"marketplace_backend/internal/domain/refund/model"
	"marketplace_backend/internal/domain/refund/repository"
	"marketplace_backend/internal/pkg/gateway"
	"marketplace_backend/internal/pkg/notify"
	"marketplace_backend/pkg/logger"
	"marketplace_backend/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound 订单不存在或不属于当前请求人 (刻意不区分，避免探测他人订单)
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderCancelled 已取消的订单不能退款
	ErrOrderCancelled = errors.New("cancelled order cannot be refunded")
	// ErrAlreadyRefunded 订单已全额退款
	ErrAlreadyRefunded = errors.New("order has already been refunded")
	// ErrInvalidRequest 退款类型非法或部分退款缺少明细
	ErrInvalidRequest = errors.New("invalid refund request")
	// ErrInvalidAmount 退款金额不合法
	ErrInvalidAmount = errors.New("invalid refund amount")
	// ErrRefundNotFound 退款单不存在
	ErrRefundNotFound = errors.New("refund not found")
	// ErrGatewayFailed 支付网关退款失败，退款单已落为 failed
	ErrGatewayFailed = errors.New("payment gateway refund failed")
)

// RefundItemInput 部分退款明细输入
// 只接受商品和数量，金额由服务端按订单行成交价重算
type RefundItemInput struct {
	ProductID uint   `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Reason    string `json:"reason"`
}

// RefundService 退款编排服务
type RefundService interface {
	RequestRefund(orderID uint, requesterID *uint, reason, refundType string, items []RefundItemInput) (*model.Refund, error)
	ProcessRefund(ctx context.Context, refundID, actorID uint, notes string) (*model.Refund, error)
	CancelRefund(refundID, actorID uint, cancelReason string) (*model.Refund, error)
	GetRefund(id uint) (*model.Refund, error)
	ListRefunds(status string, page, limit int) ([]model.Refund, int64, error)
	ListMyRefunds(customerID uint, page, limit int) ([]model.Refund, int64, error)
	// ReconcileStale 对账停留在 processing 的退款单 (后台任务调用)
	ReconcileStale(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

type refundService struct {
	repo     repository.RefundRepository
	orders   orderRepo.OrderRepository
	gateways *gateway.Registry
	notifier notify.Notifier
}

func NewRefundService(repo repository.RefundRepository, orders orderRepo.OrderRepository,
	gateways *gateway.Registry, notifier notify.Notifier) RefundService {
	return &refundService{repo: repo, orders: orders, gateways: gateways, notifier: notifier}
}

// RequestRefund 创建退款请求
// requesterID 为 nil 表示管理员/后台发起，跳过订单归属校验
func (s *refundService) RequestRefund(orderID uint, requesterID *uint, reason, refundType string,
	items []RefundItemInput) (*model.Refund, error) {

	if reason == "" {
		return nil, ErrInvalidRequest
	}

	order, err := s.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if requesterID != nil && (order.CustomerID == nil || *order.CustomerID != *requesterID) {
		return nil, ErrOrderNotFound
	}
	if order.IsCancelled() {
		return nil, ErrOrderCancelled
	}
	if order.RefundStatus == orderModel.RefundStatusCompleted {
		return nil, ErrAlreadyRefunded
	}

	var (
		amount      float64
		refundItems []model.RefundItem
	)
	switch refundType {
	case model.TypeFull:
		amount = order.TotalAmount
	case model.TypePartial:
		if len(items) == 0 {
			return nil, ErrInvalidRequest
		}
		amount, refundItems, err = recomputePartial(order, items)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidRequest
	}

	if amount <= 0 || amount > order.TotalAmount {
		return nil, ErrInvalidAmount
	}

	// 历史已完成的部分退款也计入上限，累计不能超过订单总额
	refunded, err := s.repo.SumCompleted(orderID)
	if err != nil {
		return nil, err
	}
	if refunded+amount > order.TotalAmount {
		return nil, ErrInvalidAmount
	}

	requestedBy := model.RequestedByAdmin
	if requesterID != nil {
		requestedBy = model.RequestedByCustomer
	}

	refund := &model.Refund{
		OrderID:     orderID,
		CustomerID:  order.CustomerID,
		Amount:      amount,
		Reason:      reason,
		Type:        refundType,
		Status:      model.StatusPending,
		Channel:     order.Channel,
		PaymentRef:  order.PaymentRef,
		RequestedBy: requestedBy,
		Items:       refundItems,
	}

	if err := s.repo.CreateRequest(refund); err != nil {
		return nil, err
	}

	// 事务外的尽力通知，失败不影响已创建的退款单
	s.notifier.Notify(nil, notify.RoleAdmin,
		"New refund request",
		fmt.Sprintf("Refund #%d for order #%d (%.2f) is awaiting review", refund.ID, orderID, amount),
		"refund_requested",
		fmt.Sprintf("/admin/refunds/%d", refund.ID))

	return refund, nil
}

// recomputePartial 按订单行成交价重算部分退款金额
// 不信任客户端传入的金额，数量超出订单行数量视为非法
func recomputePartial(order *orderModel.Order, items []RefundItemInput) (float64, []model.RefundItem, error) {
	lines := make(map[uint]orderModel.OrderItem, len(order.Items))
	for _, li := range order.Items {
		lines[li.ProductID] = li
	}

	var (
		total       float64
		refundItems []model.RefundItem
	)
	for _, in := range items {
		line, ok := lines[in.ProductID]
		if !ok {
			return 0, nil, ErrInvalidRequest
		}
		if in.Quantity <= 0 || in.Quantity > line.Quantity {
			return 0, nil, ErrInvalidAmount
		}

		itemAmount := line.Price * float64(in.Quantity)
		total += itemAmount
		refundItems = append(refundItems, model.RefundItem{
			OrderItemID: line.ID,
			ProductID:   line.ProductID,
			Name:        line.Name,
			Quantity:    in.Quantity,
			Amount:      itemAmount,
			Reason:      in.Reason,
		})
	}
	return total, refundItems, nil
}

// ProcessRefund 执行退款
// 两段事务：先抢占为 processing 并提交，网关调用不持有任何数据库事务，
// 结束后再用第二个事务落终态。崩溃可能留下 processing 状态，由对账任务兜底
func (s *refundService) ProcessRefund(ctx context.Context, refundID, actorID uint, notes string) (*model.Refund, error) {
	refund, err := s.repo.GetByID(refundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefundNotFound
		}
		return nil, err
	}

	if err := s.repo.MarkProcessing(refundID, actorID); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(refund.OrderID)
	if err != nil {
		return nil, err
	}

	gw, err := s.gateways.Get(refund.Channel)
	if err != nil {
		s.failRefund(refundID, err.Error())
		return nil, fmt.Errorf("%w: %s", ErrGatewayFailed, err.Error())
	}

	req := gatewayRequest(refund, order, notes)

	start := time.Now()
	gatewayRefundID, gwErr := gw.CreateRefund(ctx, req)
	result := "success"
	if gwErr != nil {
		result = "error"
	}
	metrics.GatewayCallDuration.WithLabelValues(refund.Channel, result).Observe(time.Since(start).Seconds())

	if gwErr != nil {
		// 先把失败事实落库，再向调用方透出错误
		s.failRefund(refundID, gwErr.Error())
		s.notifyCustomer(refund, "Refund failed",
			fmt.Sprintf("Your refund of %.2f for order #%d could not be processed", refund.Amount, refund.OrderID),
			"refund_failed")
		return nil, fmt.Errorf("%w: %s", ErrGatewayFailed, gwErr.Error())
	}

	orderStatus := orderModel.RefundStatusPartial
	if refund.Type == model.TypeFull {
		orderStatus = orderModel.RefundStatusCompleted
	}
	if err := s.repo.Finalize(refundID, gatewayRefundID, orderStatus); err != nil {
		// 网关已扣款但本地落库失败，留在 processing 等对账任务收敛
		logger.Log.Error("refund finalize failed after gateway success",
			zap.Uint("refund", refundID), zap.String("gateway_refund", gatewayRefundID), zap.Error(err))
		return nil, err
	}
	metrics.RefundsTotal.WithLabelValues("completed").Inc()

	s.notifyCustomer(refund, "Refund completed",
		fmt.Sprintf("Your refund of %.2f for order #%d has been issued", refund.Amount, refund.OrderID),
		"refund_completed")

	return s.repo.GetByID(refundID)
}

// CancelRefund 取消待处理的退款单
func (s *refundService) CancelRefund(refundID, actorID uint, cancelReason string) (*model.Refund, error) {
	refund, err := s.repo.GetByID(refundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefundNotFound
		}
		return nil, err
	}

	if err := s.repo.Cancel(refundID, actorID, cancelReason); err != nil {
		return nil, err
	}
	metrics.RefundsTotal.WithLabelValues("cancelled").Inc()

	s.notifyCustomer(refund, "Refund cancelled",
		fmt.Sprintf("Your refund request for order #%d was cancelled", refund.OrderID),
		"refund_cancelled")

	return s.repo.GetByID(refundID)
}

func (s *refundService) GetRefund(id uint) (*model.Refund, error) {
	refund, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefundNotFound
		}
		return nil, err
	}
	return refund, nil
}

func (s *refundService) ListRefunds(status string, page, limit int) ([]model.Refund, int64, error) {
	offset := (page - 1) * limit
	return s.repo.List(status, offset, limit)
}

func (s *refundService) ListMyRefunds(customerID uint, page, limit int) ([]model.Refund, int64, error) {
	offset := (page - 1) * limit
	return s.repo.ListByCustomer(customerID, offset, limit)
}

// ReconcileStale 收敛停留在 processing 的退款单
// 以幂等单号向网关查询：渠道侧成功则补落 completed，明确失败或查无此单则落 failed
func (s *refundService) ReconcileStale(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	stale, err := s.repo.ListStaleProcessing(olderThan, limit)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for i := range stale {
		refund := &stale[i]

		gw, err := s.gateways.Get(refund.Channel)
		if err != nil {
			logger.Log.Warn("reconcile: no gateway for channel",
				zap.Uint("refund", refund.ID), zap.String("channel", refund.Channel))
			continue
		}

		order, err := s.orders.GetByID(refund.OrderID)
		if err != nil {
			logger.Log.Warn("reconcile: order lookup failed",
				zap.Uint("refund", refund.ID), zap.Error(err))
			continue
		}

		query, err := gw.QueryRefund(ctx, gatewayRequest(refund, order, ""))
		if err != nil {
			logger.Log.Warn("reconcile: gateway query failed",
				zap.Uint("refund", refund.ID), zap.Error(err))
			continue
		}

		switch {
		case query.Found && query.Succeeded:
			orderStatus := orderModel.RefundStatusPartial
			if refund.Type == model.TypeFull {
				orderStatus = orderModel.RefundStatusCompleted
			}
			if err := s.repo.Finalize(refund.ID, query.GatewayRefundID, orderStatus); err != nil {
				logger.Log.Error("reconcile: finalize failed", zap.Uint("refund", refund.ID), zap.Error(err))
				continue
			}
			metrics.RefundsTotal.WithLabelValues("completed").Inc()
			s.notifyCustomer(refund, "Refund completed",
				fmt.Sprintf("Your refund of %.2f for order #%d has been issued", refund.Amount, refund.OrderID),
				"refund_completed")

		case query.Found:
			s.failRefund(refund.ID, "gateway reports refund failed")

		default:
			// 渠道侧没有任何记录，说明崩溃发生在网关调用之前
			s.failRefund(refund.ID, "no gateway attempt found during reconciliation")
		}

		resolved++
		logger.Log.Info("reconciled stale refund",
			zap.Uint("refund", refund.ID), zap.Bool("found", query.Found), zap.Bool("succeeded", query.Succeeded))
	}
	return resolved, nil
}

func (s *refundService) failRefund(refundID uint, note string) {
	if err := s.repo.MarkFailed(refundID, note); err != nil {
		logger.Log.Error("failed to mark refund as failed",
			zap.Uint("refund", refundID), zap.String("note", note), zap.Error(err))
		return
	}
	metrics.RefundsTotal.WithLabelValues("failed").Inc()
}

func (s *refundService) notifyCustomer(refund *model.Refund, title, body, category string) {
	if refund.CustomerID == nil {
		return
	}
	s.notifier.Notify(refund.CustomerID, notify.RoleCustomer, title, body, category,
		fmt.Sprintf("/refunds/%d", refund.ID))
}

// gatewayRequest 构造网关退款参数，金额换算为最小货币单位
func gatewayRequest(refund *model.Refund, order *orderModel.Order, notes string) gateway.RefundRequest {
	reason := refund.Reason
	if notes != "" {
		reason = notes
	}
	return gateway.RefundRequest{
		PaymentRef:  refund.PaymentRef,
		AmountCents: toCents(refund.Amount),
		TotalCents:  toCents(order.TotalAmount),
		Reason:      reason,
		Metadata: map[string]string{
			"refund_id": fmt.Sprintf("%d", refund.ID),
			"order_id":  fmt.Sprintf("%d", refund.OrderID),
			"type":      refund.Type,
		},
	}
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
