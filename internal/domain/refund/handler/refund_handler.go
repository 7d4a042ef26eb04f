package handler

import (
	"errors"
	"net/http"
	"strconv"

	"marketplace_backend/internal/domain/refund/repository"
	"marketplace_backend/internal/domain/refund/service"
	"marketplace_backend/internal/pkg/middleware"
	"marketplace_backend/pkg/response"
	"marketplace_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type RefundHandler struct {
	service service.RefundService
}

func NewRefundHandler(s service.RefundService) *RefundHandler {
	return &RefundHandler{service: s}
}

// RequestRefundInput 退款申请输入
type RequestRefundInput struct {
	OrderID uint                      `json:"orderId" binding:"required"`
	Reason  string                    `json:"reason" binding:"required"`
	Type    string                    `json:"type" binding:"required,oneof=full partial"`
	Items   []service.RefundItemInput `json:"items" binding:"omitempty,dive"`
}

// RequestRefund 顾客发起退款申请
func (h *RefundHandler) RequestRefund(c *gin.Context) {
	var input RequestRefundInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	requesterID := middleware.CurrentUserID(c)
	refund, err := h.service.RequestRefund(input.OrderID, &requesterID, input.Reason, input.Type, input.Items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "Order not found")
		case errors.Is(err, service.ErrOrderCancelled):
			response.Error(c, http.StatusBadRequest, response.ErrOrderCancelled, "Cancelled order cannot be refunded")
		case errors.Is(err, service.ErrAlreadyRefunded):
			response.Error(c, http.StatusBadRequest, response.ErrAlreadyRefunded, "Order has already been refunded")
		case errors.Is(err, service.ErrInvalidAmount):
			response.Error(c, http.StatusBadRequest, response.ErrRefundAmount, "Invalid refund amount")
		case errors.Is(err, service.ErrInvalidRequest):
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		case errors.Is(err, repository.ErrRefundConflict):
			response.Error(c, http.StatusBadRequest, response.ErrRefundConflict, "Order already has a refund in progress")
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to create refund")
		}
		return
	}

	response.SuccessWithMessage(c, "Refund request submitted", gin.H{
		"refundId": refund.ID,
		"status":   refund.Status,
		"amount":   refund.Amount,
	})
}

// ProcessRefundInput 退款处理输入
type ProcessRefundInput struct {
	Notes string `json:"notes"`
}

// ProcessRefund 管理员/店家执行退款
func (h *RefundHandler) ProcessRefund(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid refund id")
		return
	}

	// 请求体可选
	var input ProcessRefundInput
	_ = c.ShouldBindJSON(&input)

	refund, err := h.service.ProcessRefund(c.Request.Context(), uint(id), middleware.CurrentUserID(c), input.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefundNotFound):
			response.Error(c, http.StatusNotFound, response.ErrRefundNotFound, "Refund not found")
		case errors.Is(err, repository.ErrRefundNotPending):
			response.Error(c, http.StatusBadRequest, response.ErrRefundNotPending, "Refund is not pending")
		case errors.Is(err, service.ErrGatewayFailed):
			// 失败事实已落库，这里向调用方透出以便人工重试
			response.Error(c, http.StatusInternalServerError, response.ErrRefundProcessing, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to process refund")
		}
		return
	}

	response.SuccessWithMessage(c, "Refund processed", gin.H{
		"refundId":        refund.ID,
		"gatewayRefundId": refund.GatewayRefundID,
		"amount":          refund.Amount,
		"status":          refund.Status,
	})
}

// CancelRefundInput 退款取消输入
type CancelRefundInput struct {
	Reason string `json:"reason"`
}

// CancelRefund 管理员/店家取消待处理退款
func (h *RefundHandler) CancelRefund(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid refund id")
		return
	}

	var input CancelRefundInput
	_ = c.ShouldBindJSON(&input)

	refund, err := h.service.CancelRefund(uint(id), middleware.CurrentUserID(c), input.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefundNotFound):
			response.Error(c, http.StatusNotFound, response.ErrRefundNotFound, "Refund not found")
		case errors.Is(err, repository.ErrRefundNotPending):
			response.Error(c, http.StatusNotFound, response.ErrRefundNotPending, "Refund not found or not pending")
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to cancel refund")
		}
		return
	}

	response.SuccessWithMessage(c, "Refund cancelled", gin.H{"refundId": refund.ID})
}

// ListRefunds 管理员退款列表 (可按状态过滤)
func (h *RefundHandler) ListRefunds(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	_, limit := p.GetPageOffset()

	refunds, total, err := h.service.ListRefunds(c.Query("status"), p.Page, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, utils.NewPageResult(refunds, total, p.Page, limit))
}

// GetRefund 退款详情 (partial 类型包含明细行)
func (h *RefundHandler) GetRefund(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid refund id")
		return
	}

	refund, err := h.service.GetRefund(uint(id))
	if err != nil {
		response.Error(c, http.StatusNotFound, response.ErrRefundNotFound, "Refund not found")
		return
	}
	response.Success(c, refund)
}

// ListMyRefunds 当前顾客的退款列表
func (h *RefundHandler) ListMyRefunds(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	_, limit := p.GetPageOffset()

	refunds, total, err := h.service.ListMyRefunds(middleware.CurrentUserID(c), p.Page, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, utils.NewPageResult(refunds, total, p.Page, limit))
}
