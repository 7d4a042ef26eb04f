package handler

import (
	"errors"
	"net/http"
	"strconv"

	"marketplace_backend/internal/domain/store/service"
	"marketplace_backend/internal/pkg/middleware"
	"marketplace_backend/pkg/response"
	"marketplace_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type StoreHandler struct {
	service service.StoreService
}

func NewStoreHandler(s service.StoreService) *StoreHandler {
	return &StoreHandler{service: s}
}

// RegisterStoreInput 店铺注册输入
type RegisterStoreInput struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description"`
}

// RegisterStore 注册店铺
func (h *StoreHandler) RegisterStore(c *gin.Context) {
	var input RegisterStoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	store, err := h.service.RegisterStore(middleware.CurrentUserID(c), input.Name, input.Description)
	if err != nil {
		if errors.Is(err, service.ErrStoreExists) {
			response.Fail(c, response.ErrStoreExists, "You already have a store")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.SuccessWithMessage(c, "Store submitted for review", store)
}

// ReviewStoreInput 店铺审核输入
type ReviewStoreInput struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
	Note     string `json:"note"`
}

// ReviewStore 管理员审核店铺
func (h *StoreHandler) ReviewStore(c *gin.Context) {
	storeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid store id")
		return
	}

	var input ReviewStoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	store, err := h.service.ReviewStore(uint(storeID), middleware.CurrentUserID(c), input.Decision == "approve", input.Note)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrStoreNotFound, err.Error())
		return
	}

	response.Success(c, store)
}

// GetStore 获取店铺详情
func (h *StoreHandler) GetStore(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid store id")
		return
	}

	store, err := h.service.GetStore(uint(id))
	if err != nil {
		response.Error(c, http.StatusNotFound, response.ErrStoreNotFound, "Store not found")
		return
	}
	response.Success(c, store)
}

// ListStores 店铺列表 (status 过滤为管理员审核队列服务)
func (h *StoreHandler) ListStores(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	_, limit := p.GetPageOffset()

	stores, total, err := h.service.ListStores(c.Query("status"), p.Page, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, utils.NewPageResult(stores, total, p.Page, limit))
}

// AddProductInput 上架商品输入
type AddProductInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" binding:"required,min=0"`
	ImageURL    string  `json:"imageUrl"`
}

// AddProduct 上架商品
func (h *StoreHandler) AddProduct(c *gin.Context) {
	var input AddProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	product, err := h.service.AddProduct(middleware.CurrentUserID(c),
		input.Name, input.Description, input.Price, input.Stock, input.ImageURL)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotApproved) {
			response.Fail(c, response.ErrStoreNotApproved, "Store is not approved yet")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, product)
}

// UpdateProductInput 更新商品输入
type UpdateProductInput struct {
	Price float64 `json:"price" binding:"required,gt=0"`
	Stock int     `json:"stock" binding:"required,min=0"`
}

// UpdateProduct 更新商品价格/库存
func (h *StoreHandler) UpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid product id")
		return
	}

	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	product, err := h.service.UpdateProduct(middleware.CurrentUserID(c), uint(productID), input.Price, input.Stock)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrProductNotFound, "Product not found")
			return
		}
		response.Error(c, http.StatusForbidden, response.ErrNoPermission, err.Error())
		return
	}
	response.Success(c, product)
}

// GetProduct 商品详情
func (h *StoreHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid product id")
		return
	}

	product, err := h.service.GetProduct(uint(id))
	if err != nil {
		response.Error(c, http.StatusNotFound, response.ErrProductNotFound, "Product not found")
		return
	}
	response.Success(c, product)
}

// ListProducts 商品列表 (可按店铺过滤)
func (h *StoreHandler) ListProducts(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	_, limit := p.GetPageOffset()

	storeID, _ := strconv.ParseUint(c.Query("storeId"), 10, 64)

	products, total, err := h.service.ListProducts(uint(storeID), p.Page, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, utils.NewPageResult(products, total, p.Page, limit))
}
