package handler

import (
	"net/http"

	"shop_api/internal/domain/payment/model"
	"shop_api/internal/domain/payment/service"
	"shop_api/pkg/apperr"
	"shop_api/pkg/logger"
	"shop_api/pkg/response"
	"shop_api/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler 支付/订单处理器
type PaymentHandler struct {
	service service.PaymentService
}

// NewPaymentHandler 创建处理器
func NewPaymentHandler(service service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// CheckoutProductInput 结账商品行
type CheckoutProductInput struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gte=1"`
}

// CreateSessionInput 创建会话输入
type CreateSessionInput struct {
	Products   []CheckoutProductInput `json:"products" binding:"required,min=1,dive"`
	Channel    string                 `json:"channel" binding:"required,oneof=alipay wechat"`
	CouponCode string                 `json:"couponCode"`
}

// CheckoutSuccessInput 结账完成输入
type CheckoutSuccessInput struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// UpdateStatusInput 更新订单状态输入
type UpdateStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// CreateCheckoutSession 创建结账会话
// @Summary 创建结账会话
// @Tags Payment
// @Accept json
// @Produce json
// @Router /api/payments/create-checkout-session [post]
func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	var input CreateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	products := make([]service.CheckoutProduct, 0, len(input.Products))
	for _, p := range input.Products {
		products = append(products, service.CheckoutProduct{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
		})
	}

	session, err := h.service.CreateCheckoutSession(
		c.Request.Context(),
		c.GetString("userID"),
		input.Channel,
		products,
		input.CouponCode,
	)
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, session)
}

// CheckoutSuccess 支付完成落单
func (h *PaymentHandler) CheckoutSuccess(c *gin.Context) {
	var input CheckoutSuccessInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	order, err := h.service.HandleCheckoutSuccess(c.Request.Context(), input.SessionID)
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, order)
}

// AlipayNotify 支付宝异步回调
func (h *PaymentHandler) AlipayNotify(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "fail")
		return
	}

	if err := h.service.HandleNotify(c.Request.Context(), model.ChannelAlipay, c.Request.Form); err != nil {
		logger.Log.Error("alipay notify failed", zap.Error(err))
		c.String(http.StatusBadRequest, "fail")
		return
	}
	// 支付宝要求返回纯文本 success
	c.String(http.StatusOK, "success")
}

// WechatNotify 微信支付异步回调
func (h *PaymentHandler) WechatNotify(c *gin.Context) {
	if err := h.service.HandleNotify(c.Request.Context(), model.ChannelWechat, c.Request); err != nil {
		logger.Log.Error("wechat notify failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"code": "FAIL", "message": "notify processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": "SUCCESS"})
}

// GetMyOrders 当前用户订单列表
func (h *PaymentHandler) GetMyOrders(c *gin.Context) {
	orders, err := h.service.GetUserOrders(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, orders)
}

// GetOrder 查看单个订单
func (h *PaymentHandler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrderByID(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, order)
}

// GetAllOrders 全部订单 (管理员)
func (h *PaymentHandler) GetAllOrders(c *gin.Context) {
	var query utils.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	orders, total, err := h.service.GetAllOrders(c.Request.Context(), query.Page, query.Limit)
	if err != nil {
		apperr.Handle(c, err)
		return
	}

	response.Success(c, utils.PageResult{
		List:  orders,
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
	})
}

// UpdateOrderStatus 更新订单状态 (管理员)
func (h *PaymentHandler) UpdateOrderStatus(c *gin.Context) {
	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	order, err := h.service.UpdateOrderStatus(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		apperr.Handle(c, err)
		return
	}
	response.Success(c, order)
}
