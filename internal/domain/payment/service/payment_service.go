package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	cartService "shop_api/internal/domain/cart/service"
	couponService "shop_api/internal/domain/coupon/service"
	"shop_api/internal/domain/payment/model"
	"shop_api/internal/domain/payment/repository"
	"shop_api/internal/domain/payment/strategy"
	productRepo "shop_api/internal/domain/product/repository"
	"shop_api/internal/pkg/push"
	"shop_api/pkg/apperr"
	"shop_api/pkg/logger"
	"shop_api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaxRate 结账税率
const TaxRate = 0.08

// CheckoutProduct 结账商品行输入
type CheckoutProduct struct {
	ProductID string
	Quantity  int
}

// CheckoutSessionResponse 创建会话响应
type CheckoutSessionResponse struct {
	SessionID string  `json:"sessionId"`
	PayURL    string  `json:"payUrl"`
	Subtotal  float64 `json:"subtotal"`
	Discount  float64 `json:"discount"`
	Tax       float64 `json:"tax"`
	Total     float64 `json:"total"`
}

// PaymentService 支付/订单服务接口
type PaymentService interface {
	CreateCheckoutSession(ctx context.Context, userID, channel string, products []CheckoutProduct, couponCode string) (*CheckoutSessionResponse, error)
	HandleCheckoutSuccess(ctx context.Context, sessionID string) (*model.Order, error)
	HandleNotify(ctx context.Context, channel string, params interface{}) error
	GetUserOrders(ctx context.Context, userID string) ([]model.Order, error)
	GetOrderByID(ctx context.Context, orderID, userID string) (*model.Order, error)
	GetAllOrders(ctx context.Context, page, limit int) ([]model.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) (*model.Order, error)
}

// paymentService 实现
type paymentService struct {
	orders     repository.OrderRepository
	products   productRepo.ProductRepository
	coupons    couponService.CouponService
	cart       cartService.CartService
	sessions   strategy.SessionStore
	strategies map[string]strategy.PaymentStrategy
	rewards    *RewardIssuer
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	orders repository.OrderRepository,
	products productRepo.ProductRepository,
	coupons couponService.CouponService,
	cart cartService.CartService,
	sessions strategy.SessionStore,
	strategies map[string]strategy.PaymentStrategy,
	rewards *RewardIssuer,
) PaymentService {
	return &paymentService{
		orders:     orders,
		products:   products,
		coupons:    coupons,
		cart:       cart,
		sessions:   sessions,
		strategies: strategies,
		rewards:    rewards,
	}
}

// CreateCheckoutSession 创建结账会话
// 金额以数据库价格为准，优惠券在此只校验不消费
func (s *paymentService) CreateCheckoutSession(ctx context.Context, userID, channel string, products []CheckoutProduct, couponCode string) (*CheckoutSessionResponse, error) {
	if len(products) == 0 {
		return nil, apperr.Validation("Cart is empty")
	}

	channelStrategy, ok := s.strategies[channel]
	if !ok {
		return nil, apperr.PaymentChannel(fmt.Sprintf("Unsupported payment channel: %s", channel))
	}

	productIDs := make([]string, 0, len(products))
	for _, p := range products {
		if p.Quantity < 1 {
			return nil, apperr.Validation("Quantity must be at least 1")
		}
		productIDs = append(productIDs, p.ProductID)
	}

	dbProducts, err := s.products.GetByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	if len(dbProducts) != len(products) {
		return nil, apperr.Validation("Some products are no longer available")
	}

	priceMap := make(map[string]float64, len(dbProducts))
	nameMap := make(map[string]string, len(dbProducts))
	for _, p := range dbProducts {
		priceMap[p.ID] = p.Price
		nameMap[p.ID] = p.Name
	}

	var subtotal float64
	items := make([]strategy.SessionItem, 0, len(products))
	for _, p := range products {
		price := priceMap[p.ProductID]
		subtotal += price * float64(p.Quantity)
		items = append(items, strategy.SessionItem{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
			Price:     price,
		})
	}
	subtotal = utils.Round2(subtotal)

	// 优惠券校验
	var discount float64
	if couponCode != "" {
		validation, err := s.coupons.ValidateCoupon(ctx, userID, couponCode, subtotal)
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			return nil, apperr.Validation(validation.Message)
		}
		discount = validation.Coupon.DiscountAmount
	}

	taxable := subtotal - discount
	tax := utils.Round2(taxable * TaxRate)
	total := utils.Round2(taxable + tax)

	// 本地生成会话ID，同时作为渠道侧的商户单号
	sessionID := time.Now().Format("20060102150405") + uuid.New().String()[:8]
	subject := fmt.Sprintf("Order of %d item(s)", len(items))
	if len(items) == 1 {
		subject = nameMap[items[0].ProductID]
	}

	payURL, err := channelStrategy.CreateSession(ctx, sessionID, total, subject)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Save(ctx, &strategy.SessionData{
		SessionID:  sessionID,
		UserID:     userID,
		Channel:    channel,
		Items:      items,
		CouponCode: couponCode,
		Subtotal:   subtotal,
		Discount:   discount,
		Tax:        tax,
		Total:      total,
		CreatedAt:  time.Now(),
	}); err != nil {
		return nil, err
	}

	// 大额会话先行发放奖励券
	s.rewards.IssueIfEligible(ctx, userID, total)

	return &CheckoutSessionResponse{
		SessionID: sessionID,
		PayURL:    payURL,
		Subtotal:  subtotal,
		Discount:  utils.Round2(discount),
		Tax:       tax,
		Total:     total,
	}, nil
}

// HandleCheckoutSuccess 支付完成后的落单，按会话ID幂等
func (s *paymentService) HandleCheckoutSuccess(ctx context.Context, sessionID string) (*model.Order, error) {
	// 先查已落单，会话缓存过期后重复确认仍要拿到原订单
	if existing, err := s.orders.GetBySessionID(sessionID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, strategy.ErrSessionNotFound) {
			return nil, apperr.NotFound("Checkout session not found")
		}
		return nil, err
	}

	channelStrategy, ok := s.strategies[session.Channel]
	if !ok {
		return nil, fmt.Errorf("no strategy for channel %s", session.Channel)
	}

	paid, paidAmount, err := channelStrategy.QueryPaid(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, apperr.PaymentIncomplete("Payment not completed")
	}

	items := make([]model.OrderItem, 0, len(session.Items))
	for _, item := range session.Items {
		items = append(items, model.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	now := time.Now()
	sid := sessionID
	// 订单金额取渠道实收，不取本地会话快照
	order := &model.Order{
		UserID:         session.UserID,
		Items:          items,
		TotalAmount:    paidAmount,
		SessionID:      &sid,
		CouponCode:     session.CouponCode,
		DiscountAmount: session.Discount,
		Status:         model.StatusCompleted,
		Channel:        session.Channel,
		PaidAt:         &now,
	}

	if err := s.orders.Create(order); err != nil {
		// 并发回调撞上唯一索引，返回已有订单
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.orders.GetBySessionID(sessionID)
		}
		return nil, err
	}

	// 订单落库之后再消费优惠券，失败只记日志
	if session.CouponCode != "" {
		if err := s.coupons.ApplyCoupon(ctx, session.UserID, session.CouponCode); err != nil {
			logger.Log.Warn("failed to apply coupon after checkout",
				zap.String("session_id", sessionID),
				zap.String("code", session.CouponCode),
				zap.Error(err),
			)
		}
	}

	// 达标发放奖励券
	s.rewards.IssueIfEligible(ctx, session.UserID, order.TotalAmount)

	// 清空购物车，失败不影响订单
	if err := s.cart.ClearCart(ctx, session.UserID); err != nil {
		logger.Log.Warn("failed to clear cart after checkout",
			zap.String("user_id", session.UserID),
			zap.Error(err),
		)
	}

	s.notifyOrderCompleted(session.UserID, order)

	return order, nil
}

// HandleNotify 处理渠道异步回调
func (s *paymentService) HandleNotify(ctx context.Context, channel string, params interface{}) error {
	channelStrategy, ok := s.strategies[channel]
	if !ok {
		return fmt.Errorf("no strategy for channel %s", channel)
	}

	sessionID, amount, success, err := channelStrategy.Notify(params)
	if err != nil {
		return err
	}
	if !success {
		logger.Log.Info("payment notify with non-success state",
			zap.String("channel", channel),
			zap.String("session_id", sessionID),
		)
		return nil
	}

	logger.Log.Info("payment notify received",
		zap.String("channel", channel),
		zap.String("session_id", sessionID),
		zap.Float64("amount", amount),
	)

	_, err = s.HandleCheckoutSuccess(ctx, sessionID)
	return err
}

// GetUserOrders 用户订单列表
func (s *paymentService) GetUserOrders(ctx context.Context, userID string) ([]model.Order, error) {
	return s.orders.GetByUser(userID)
}

// GetOrderByID 用户查看自己的订单
func (s *paymentService) GetOrderByID(ctx context.Context, orderID, userID string) (*model.Order, error) {
	order, err := s.orders.GetByIDAndUser(orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, err
	}
	return order, nil
}

// GetAllOrders 全部订单 (管理员)
func (s *paymentService) GetAllOrders(ctx context.Context, page, limit int) ([]model.Order, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return s.orders.GetAll((page-1)*limit, limit)
}

// UpdateOrderStatus 更新订单状态 (管理员)
func (s *paymentService) UpdateOrderStatus(ctx context.Context, orderID, status string) (*model.Order, error) {
	if !model.ValidStatuses[status] {
		return nil, apperr.Validation(fmt.Sprintf("%s is not a valid order status", status))
	}

	order, err := s.orders.UpdateStatus(orderID, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, err
	}
	return order, nil
}

// notifyOrderCompleted 推送订单完成通知，尽力而为
func (s *paymentService) notifyOrderCompleted(userID string, order *model.Order) {
	if push.GlobalPushService == nil {
		return
	}

	err := push.GlobalPushService.PushToAccount(
		userID,
		"Order confirmed",
		fmt.Sprintf("Your order has been placed. Total: $%.2f", order.TotalAmount),
		map[string]string{"orderId": order.ID},
	)
	if err != nil {
		logger.Log.Warn("failed to push order notification",
			zap.String("user_id", userID),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}
