package handler

import (
	"net/http"

	"shop_api/internal/domain/cart/service"
	"shop_api/pkg/apperr"
	"shop_api/pkg/response"

	"github.com/gin-gonic/gin"
)

// CartHandler 购物车处理器
type CartHandler struct {
	service service.CartService
}

// NewCartHandler 创建处理器
func NewCartHandler(service service.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// AddToCartInput 加购输入
type AddToCartInput struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateQuantityInput 改数量输入
type UpdateQuantityInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart 获取购物车
func (h *CartHandler) GetCart(c *gin.Context) {
	summary, err := h.service.GetCart(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, summary)
}

// AddToCart 添加商品
func (h *CartHandler) AddToCart(c *gin.Context) {
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if input.Quantity == 0 {
		input.Quantity = 1
	}

	summary, err := h.service.AddToCart(c.Request.Context(), c.GetString("userID"), input.ProductID, input.Quantity)
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, summary)
}

// UpdateQuantity 修改数量 (0 表示移除)
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var input UpdateQuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	summary, err := h.service.UpdateQuantity(c.Request.Context(), c.GetString("userID"), c.Param("productId"), *input.Quantity)
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, summary)
}

// RemoveFromCart 移除商品
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	summary, err := h.service.RemoveFromCart(c.Request.Context(), c.GetString("userID"), c.Param("productId"))
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, summary)
}

// ClearCart 清空购物车
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.service.ClearCart(c.Request.Context(), c.GetString("userID")); err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, true)
}
