package handler

import (
	"errors"
	"net/http"
	"strconv"

	"marketplace_backend/internal/domain/order/service"
	"marketplace_backend/internal/pkg/middleware"
	"marketplace_backend/pkg/response"
	"marketplace_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

// CreateOrderInput 下单输入，不含金额字段，金额由服务端计算
type CreateOrderInput struct {
	Channel    string                   `json:"channel" binding:"required,oneof=stripe alipay wechat"`
	PaymentRef string                   `json:"paymentRef"`
	Items      []service.OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// CreateOrder 创建订单
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	customerID := middleware.CurrentUserID(c)
	order, err := h.service.CreateOrder(&customerID, input.Channel, input.PaymentRef, input.Items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			response.Error(c, http.StatusNotFound, response.ErrProductNotFound, "Product not found")
		case errors.Is(err, service.ErrMixedStores), errors.Is(err, service.ErrEmptyOrder):
			response.Error(c, http.StatusBadRequest, response.ErrEmptyOrder, err.Error())
		default:
			// 库存不足在仓储层以 ErrInsufficientStock 透出
			response.Fail(c, response.ErrOutOfStock, err.Error())
		}
		return
	}

	response.SuccessWithMessage(c, "Order created", order)
}

// GetOrder 订单详情
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid order id")
		return
	}

	order, err := h.service.GetOrder(uint(id))
	if err != nil {
		response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "Order not found")
		return
	}
	response.Success(c, order)
}

// ListMyOrders 当前顾客的订单列表
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	_, limit := p.GetPageOffset()

	orders, total, err := h.service.ListMyOrders(middleware.CurrentUserID(c), p.Page, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, utils.NewPageResult(orders, total, p.Page, limit))
}

// ListOrders 管理员订单列表
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	_, limit := p.GetPageOffset()

	orders, total, err := h.service.ListOrders(c.Query("status"), p.Page, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, utils.NewPageResult(orders, total, p.Page, limit))
}

// UpdateFulfillmentInput 履约状态更新输入
type UpdateFulfillmentInput struct {
	Status string `json:"status" binding:"required,oneof=shipped delivered"`
}

// UpdateFulfillment 店家/管理员更新履约状态
func (h *OrderHandler) UpdateFulfillment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid order id")
		return
	}

	var input UpdateFulfillmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	order, err := h.service.UpdateFulfillment(uint(id), input.Status)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "Order not found or not in a valid state")
			return
		}
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	response.Success(c, order)
}

// CancelOrder 顾客取消订单
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid order id")
		return
	}

	customerID := middleware.CurrentUserID(c)
	if err := h.service.CancelOrder(&customerID, uint(id)); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "Order not found")
			return
		}
		response.Fail(c, response.ErrOrderCancelled, err.Error())
		return
	}
	response.SuccessWithMessage(c, "Order cancelled", nil)
}
