package service

import (
	"context"
	"strings"
	"testing"
	"time"

	cartModel "shop_api/internal/domain/cart/model"
	couponModel "shop_api/internal/domain/coupon/model"
	couponService "shop_api/internal/domain/coupon/service"
	"shop_api/internal/domain/payment/model"
	"shop_api/internal/domain/payment/strategy"
	productModel "shop_api/internal/domain/product/model"
	productRepo "shop_api/internal/domain/product/repository"
	"shop_api/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockOrderRepository is a mock of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(order *model.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(id string) (*model.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByIDAndUser(id, userID string) (*model.Order, error) {
	args := m.Called(id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetBySessionID(sessionID string) (*model.Order, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByUser(userID string) ([]model.Order, error) {
	args := m.Called(userID)
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAll(offset, limit int) ([]model.Order, int64, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(id, status string) (*model.Order, error) {
	args := m.Called(id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockProductRepository is a mock of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(product *productModel.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(id string) (*productModel.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*productModel.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ids []string) ([]productModel.Product, error) {
	args := m.Called(ids)
	return args.Get(0).([]productModel.Product), args.Error(1)
}

func (m *MockProductRepository) GetList(filter productRepo.ProductFilter) ([]productModel.Product, error) {
	args := m.Called(filter)
	return args.Get(0).([]productModel.Product), args.Error(1)
}

func (m *MockProductRepository) GetFeatured() ([]productModel.Product, error) {
	args := m.Called()
	return args.Get(0).([]productModel.Product), args.Error(1)
}

func (m *MockProductRepository) GetByCategory(category string) ([]productModel.Product, error) {
	args := m.Called(category)
	return args.Get(0).([]productModel.Product), args.Error(1)
}

func (m *MockProductRepository) GetRandom(limit int) ([]productModel.Product, error) {
	args := m.Called(limit)
	return args.Get(0).([]productModel.Product), args.Error(1)
}

func (m *MockProductRepository) Update(product *productModel.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(product *productModel.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

// MockCouponService is a mock of CouponService
type MockCouponService struct {
	mock.Mock
}

func (m *MockCouponService) GetUserCoupon(ctx context.Context, userID string) (*couponModel.Coupon, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*couponModel.Coupon), args.Error(1)
}

func (m *MockCouponService) GetAllUserCoupons(ctx context.Context, userID string) ([]couponModel.Coupon, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]couponModel.Coupon), args.Error(1)
}

func (m *MockCouponService) ValidateCoupon(ctx context.Context, userID, code string, cartTotal float64) (*couponModel.ValidationResult, error) {
	args := m.Called(ctx, userID, code, cartTotal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*couponModel.ValidationResult), args.Error(1)
}

func (m *MockCouponService) ApplyCoupon(ctx context.Context, userID, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}

func (m *MockCouponService) CreateCoupon(ctx context.Context, input couponService.CreateCouponInput) (*couponModel.Coupon, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*couponModel.Coupon), args.Error(1)
}

func (m *MockCouponService) CreateBulkCoupons(ctx context.Context, input couponService.BulkCouponInput) ([]couponModel.Coupon, error) {
	args := m.Called(ctx, input)
	return args.Get(0).([]couponModel.Coupon), args.Error(1)
}

func (m *MockCouponService) DeactivateCoupon(ctx context.Context, couponID string) error {
	args := m.Called(ctx, couponID)
	return args.Error(0)
}

func (m *MockCouponService) DeleteCoupon(ctx context.Context, couponID string) error {
	args := m.Called(ctx, couponID)
	return args.Error(0)
}

func (m *MockCouponService) GetAllCoupons(ctx context.Context) ([]couponModel.Coupon, error) {
	args := m.Called(ctx)
	return args.Get(0).([]couponModel.Coupon), args.Error(1)
}

func (m *MockCouponService) CleanupExpiredCoupons(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockCouponRepository is a mock of the coupon repository, only the reward
// lookup is exercised from this package
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) Create(coupon *couponModel.Coupon) error {
	args := m.Called(coupon)
	return args.Error(0)
}

func (m *MockCouponRepository) GetByID(id string) (*couponModel.Coupon, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*couponModel.Coupon), args.Error(1)
}

func (m *MockCouponRepository) GetByCode(code string) (*couponModel.Coupon, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*couponModel.Coupon), args.Error(1)
}

func (m *MockCouponRepository) GetActiveByCodeAndUser(code, userID string) (*couponModel.Coupon, error) {
	args := m.Called(code, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*couponModel.Coupon), args.Error(1)
}

func (m *MockCouponRepository) GetActiveByUser(userID string) (*couponModel.Coupon, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*couponModel.Coupon), args.Error(1)
}

func (m *MockCouponRepository) GetActiveByUserAndPrefix(userID, codePrefix string) (*couponModel.Coupon, error) {
	args := m.Called(userID, codePrefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*couponModel.Coupon), args.Error(1)
}

func (m *MockCouponRepository) GetAllByUser(userID string) ([]couponModel.Coupon, error) {
	args := m.Called(userID)
	return args.Get(0).([]couponModel.Coupon), args.Error(1)
}

func (m *MockCouponRepository) GetAll() ([]couponModel.Coupon, error) {
	args := m.Called()
	return args.Get(0).([]couponModel.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Update(coupon *couponModel.Coupon) error {
	args := m.Called(coupon)
	return args.Error(0)
}

func (m *MockCouponRepository) Delete(coupon *couponModel.Coupon) error {
	args := m.Called(coupon)
	return args.Error(0)
}

func (m *MockCouponRepository) IncrementUsage(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockCouponRepository) DeactivateExpired(now time.Time) (int64, error) {
	args := m.Called(now)
	return args.Get(0).(int64), args.Error(1)
}

// MockCartService is a mock of CartService
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetCart(ctx context.Context, userID string) (*cartModel.CartSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartModel.CartSummary), args.Error(1)
}

func (m *MockCartService) AddToCart(ctx context.Context, userID, productID string, quantity int) (*cartModel.CartSummary, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartModel.CartSummary), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*cartModel.CartSummary, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartModel.CartSummary), args.Error(1)
}

func (m *MockCartService) RemoveFromCart(ctx context.Context, userID, productID string) (*cartModel.CartSummary, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartModel.CartSummary), args.Error(1)
}

func (m *MockCartService) ClearCart(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockSessionStore is a mock of SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Save(ctx context.Context, data *strategy.SessionData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockSessionStore) Get(ctx context.Context, sessionID string) (*strategy.SessionData, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*strategy.SessionData), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// MockPaymentStrategy is a mock of PaymentStrategy
type MockPaymentStrategy struct {
	mock.Mock
}

func (m *MockPaymentStrategy) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPaymentStrategy) CreateSession(ctx context.Context, sessionID string, amount float64, subject string) (string, error) {
	args := m.Called(ctx, sessionID, amount, subject)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentStrategy) QueryPaid(ctx context.Context, sessionID string) (bool, float64, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Get(1).(float64), args.Error(2)
}

func (m *MockPaymentStrategy) Notify(params interface{}) (string, float64, bool, error) {
	args := m.Called(params)
	return args.String(0), args.Get(1).(float64), args.Bool(2), args.Error(3)
}

type paymentMocks struct {
	orders     *MockOrderRepository
	products   *MockProductRepository
	coupons    *MockCouponService
	couponRepo *MockCouponRepository
	cart       *MockCartService
	sessions   *MockSessionStore
	alipay     *MockPaymentStrategy
}

func newTestPaymentService() (PaymentService, *paymentMocks) {
	m := &paymentMocks{
		orders:     new(MockOrderRepository),
		products:   new(MockProductRepository),
		coupons:    new(MockCouponService),
		couponRepo: new(MockCouponRepository),
		cart:       new(MockCartService),
		sessions:   new(MockSessionStore),
		alipay:     new(MockPaymentStrategy),
	}

	rewards := NewRewardIssuer(m.coupons, m.couponRepo)
	strategies := map[string]strategy.PaymentStrategy{
		model.ChannelAlipay: m.alipay,
	}

	service := NewPaymentService(m.orders, m.products, m.coupons, m.cart, m.sessions, strategies, rewards)
	return service, m
}

func createTestProduct(id, name string, price float64) productModel.Product {
	product := productModel.Product{
		Name:  name,
		Price: price,
		Stock: 10,
	}
	product.ID = id
	return product
}

func activeRewardCoupon(userID string) *couponModel.Coupon {
	coupon := &couponModel.Coupon{
		Code:           "REWARDABC123",
		IsActive:       true,
		UserID:         userID,
		ExpirationDate: time.Now().AddDate(0, 0, 30),
	}
	coupon.ID = "reward-1"
	return coupon
}

func TestCreateCheckoutSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty product list rejected", func(t *testing.T) {
		service, _ := newTestPaymentService()

		_, err := service.CreateCheckoutSession(ctx, "user-1", model.ChannelAlipay, nil, "")

		assert.Error(t, err)
		appErr, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Equal(t, "Cart is empty", appErr.Message)
	})

	t.Run("Unsupported channel rejected", func(t *testing.T) {
		service, _ := newTestPaymentService()

		products := []CheckoutProduct{{ProductID: "p1", Quantity: 1}}
		_, err := service.CreateCheckoutSession(ctx, "user-1", "paypal", products, "")

		assert.Error(t, err)
		appErr, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Contains(t, appErr.Message, "Unsupported payment channel")
	})

	t.Run("Missing product rejected", func(t *testing.T) {
		service, m := newTestPaymentService()

		m.products.On("GetByIDs", []string{"p1", "p2"}).
			Return([]productModel.Product{createTestProduct("p1", "Keyboard", 49.99)}, nil)

		products := []CheckoutProduct{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 1},
		}
		_, err := service.CreateCheckoutSession(ctx, "user-1", model.ChannelAlipay, products, "")

		assert.Error(t, err)
		appErr, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Equal(t, "Some products are no longer available", appErr.Message)
		m.products.AssertExpectations(t)
	})

	t.Run("Totals computed from database prices with coupon", func(t *testing.T) {
		service, m := newTestPaymentService()

		m.products.On("GetByIDs", []string{"p1"}).
			Return([]productModel.Product{createTestProduct("p1", "Headphones", 125)}, nil)
		m.coupons.On("ValidateCoupon", mock.Anything, "user-1", "SAVE20", 250.0).
			Return(&couponModel.ValidationResult{
				Valid: true,
				Coupon: &couponModel.ValidatedCoupon{
					Code:               "SAVE20",
					DiscountPercentage: 20,
					DiscountAmount:     50,
				},
			}, nil)
		m.alipay.On("CreateSession", mock.Anything, mock.AnythingOfType("string"), 216.0, "Headphones").
			Return("https://pay.example.com/abc", nil)

		var saved *strategy.SessionData
		m.sessions.On("Save", mock.Anything, mock.AnythingOfType("*strategy.SessionData")).
			Run(func(args mock.Arguments) {
				saved = args.Get(1).(*strategy.SessionData)
			}).
			Return(nil)

		// 总额达标但已有有效奖励券，不再发放
		m.couponRepo.On("GetActiveByUserAndPrefix", "user-1", "REWARD").
			Return(activeRewardCoupon("user-1"), nil)

		products := []CheckoutProduct{{ProductID: "p1", Quantity: 2}}
		resp, err := service.CreateCheckoutSession(ctx, "user-1", model.ChannelAlipay, products, "SAVE20")

		assert.NoError(t, err)
		assert.Equal(t, 250.0, resp.Subtotal)
		assert.Equal(t, 50.0, resp.Discount)
		assert.Equal(t, 16.0, resp.Tax)
		assert.Equal(t, 216.0, resp.Total)
		assert.Equal(t, "https://pay.example.com/abc", resp.PayURL)
		assert.NotEmpty(t, resp.SessionID)

		assert.Equal(t, resp.SessionID, saved.SessionID)
		assert.Equal(t, "user-1", saved.UserID)
		assert.Equal(t, model.ChannelAlipay, saved.Channel)
		assert.Equal(t, "SAVE20", saved.CouponCode)
		assert.Len(t, saved.Items, 1)
		assert.Equal(t, 125.0, saved.Items[0].Price)

		m.products.AssertExpectations(t)
		m.coupons.AssertExpectations(t)
		m.alipay.AssertExpectations(t)
		m.sessions.AssertExpectations(t)
		m.couponRepo.AssertExpectations(t)
	})

	t.Run("Invalid coupon aborts session creation", func(t *testing.T) {
		service, m := newTestPaymentService()

		m.products.On("GetByIDs", []string{"p1"}).
			Return([]productModel.Product{createTestProduct("p1", "Headphones", 125)}, nil)
		m.coupons.On("ValidateCoupon", mock.Anything, "user-1", "OLD20", 125.0).
			Return(&couponModel.ValidationResult{Valid: false, Message: "Coupon has expired"}, nil)

		products := []CheckoutProduct{{ProductID: "p1", Quantity: 1}}
		_, err := service.CreateCheckoutSession(ctx, "user-1", model.ChannelAlipay, products, "OLD20")

		assert.Error(t, err)
		appErr, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Equal(t, "Coupon has expired", appErr.Message)
		m.alipay.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Reward coupon issued for qualifying total", func(t *testing.T) {
		service, m := newTestPaymentService()

		m.products.On("GetByIDs", []string{"p1"}).
			Return([]productModel.Product{createTestProduct("p1", "Monitor", 100)}, nil)
		m.alipay.On("CreateSession", mock.Anything, mock.AnythingOfType("string"), 216.0, "Monitor").
			Return("https://pay.example.com/abc", nil)
		m.sessions.On("Save", mock.Anything, mock.AnythingOfType("*strategy.SessionData")).Return(nil)

		m.couponRepo.On("GetActiveByUserAndPrefix", "user-1", "REWARD").
			Return(nil, gorm.ErrRecordNotFound)
		m.coupons.On("CreateCoupon", mock.Anything, mock.MatchedBy(func(input couponService.CreateCouponInput) bool {
			return strings.HasPrefix(input.Code, "REWARD") &&
				len(input.Code) == len("REWARD")+6 &&
				input.DiscountPercentage == 10 &&
				input.UserID == "user-1" &&
				input.UsageLimit != nil && *input.UsageLimit == 1 &&
				input.MinimumPurchase == 50
		})).Return(activeRewardCoupon("user-1"), nil)

		products := []CheckoutProduct{{ProductID: "p1", Quantity: 2}}
		resp, err := service.CreateCheckoutSession(ctx, "user-1", model.ChannelAlipay, products, "")

		assert.NoError(t, err)
		assert.Equal(t, 216.0, resp.Total)
		m.coupons.AssertExpectations(t)
		m.couponRepo.AssertExpectations(t)
	})

	t.Run("No reward below threshold", func(t *testing.T) {
		service, m := newTestPaymentService()

		m.products.On("GetByIDs", []string{"p1"}).
			Return([]productModel.Product{createTestProduct("p1", "Mouse", 50)}, nil)
		m.alipay.On("CreateSession", mock.Anything, mock.AnythingOfType("string"), 54.0, "Mouse").
			Return("https://pay.example.com/abc", nil)
		m.sessions.On("Save", mock.Anything, mock.AnythingOfType("*strategy.SessionData")).Return(nil)

		products := []CheckoutProduct{{ProductID: "p1", Quantity: 1}}
		resp, err := service.CreateCheckoutSession(ctx, "user-1", model.ChannelAlipay, products, "")

		assert.NoError(t, err)
		assert.Equal(t, 54.0, resp.Total)
		m.couponRepo.AssertNotCalled(t, "GetActiveByUserAndPrefix", mock.Anything, mock.Anything)
	})
}

func paidSession(sessionID string) *strategy.SessionData {
	return &strategy.SessionData{
		SessionID:  sessionID,
		UserID:     "user-1",
		Channel:    model.ChannelAlipay,
		Items:      []strategy.SessionItem{{ProductID: "p1", Quantity: 2, Price: 125}},
		CouponCode: "SAVE20",
		Subtotal:   250,
		Discount:   50,
		Tax:        16,
		Total:      216,
		CreatedAt:  time.Now(),
	}
}

func TestHandleCheckoutSuccess(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown session rejected", func(t *testing.T) {
		service, m := newTestPaymentService()

		m.orders.On("GetBySessionID", "missing").Return(nil, gorm.ErrRecordNotFound)
		m.sessions.On("Get", mock.Anything, "missing").Return(nil, strategy.ErrSessionNotFound)

		_, err := service.HandleCheckoutSuccess(ctx, "missing")

		assert.Error(t, err)
		appErr, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Equal(t, "Checkout session not found", appErr.Message)
	})

	t.Run("Existing order returned without recreating", func(t *testing.T) {
		service, m := newTestPaymentService()

		sid := "sess-1"
		existing := &model.Order{UserID: "user-1", TotalAmount: 216, SessionID: &sid, Status: model.StatusCompleted}
		existing.ID = "order-1"

		m.orders.On("GetBySessionID", sid).Return(existing, nil)

		order, err := service.HandleCheckoutSuccess(ctx, sid)

		assert.NoError(t, err)
		assert.Equal(t, "order-1", order.ID)
		m.orders.AssertNotCalled(t, "Create", mock.Anything)
		m.alipay.AssertNotCalled(t, "QueryPaid", mock.Anything, mock.Anything)
		m.sessions.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("Completed order survives session expiry", func(t *testing.T) {
		service, m := newTestPaymentService()

		sid := "sess-expired"
		existing := &model.Order{UserID: "user-1", TotalAmount: 216, SessionID: &sid, Status: model.StatusCompleted}
		existing.ID = "order-9"

		// 会话缓存已过期，只剩数据库里的订单
		m.orders.On("GetBySessionID", sid).Return(existing, nil)

		order, err := service.HandleCheckoutSuccess(ctx, sid)

		assert.NoError(t, err)
		assert.Equal(t, "order-9", order.ID)
		m.sessions.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("Unpaid session rejected", func(t *testing.T) {
		service, m := newTestPaymentService()

		sid := "sess-2"
		m.sessions.On("Get", mock.Anything, sid).Return(paidSession(sid), nil)
		m.orders.On("GetBySessionID", sid).Return(nil, gorm.ErrRecordNotFound)
		m.alipay.On("QueryPaid", mock.Anything, sid).Return(false, 0.0, nil)

		_, err := service.HandleCheckoutSuccess(ctx, sid)

		assert.Error(t, err)
		appErr, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Equal(t, "Payment not completed", appErr.Message)
		m.orders.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("Paid session creates completed order", func(t *testing.T) {
		service, m := newTestPaymentService()

		sid := "sess-3"
		m.sessions.On("Get", mock.Anything, sid).Return(paidSession(sid), nil)
		m.orders.On("GetBySessionID", sid).Return(nil, gorm.ErrRecordNotFound)
		m.alipay.On("QueryPaid", mock.Anything, sid).Return(true, 216.0, nil)
		m.orders.On("Create", mock.AnythingOfType("*model.Order")).Return(nil)
		m.coupons.On("ApplyCoupon", mock.Anything, "user-1", "SAVE20").Return(nil)
		m.couponRepo.On("GetActiveByUserAndPrefix", "user-1", "REWARD").
			Return(activeRewardCoupon("user-1"), nil)
		m.cart.On("ClearCart", mock.Anything, "user-1").Return(nil)

		order, err := service.HandleCheckoutSuccess(ctx, sid)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, order.Status)
		assert.Equal(t, 216.0, order.TotalAmount)
		assert.Equal(t, 50.0, order.DiscountAmount)
		assert.Equal(t, sid, *order.SessionID)
		assert.NotNil(t, order.PaidAt)
		assert.Len(t, order.Items, 1)

		m.orders.AssertExpectations(t)
		m.coupons.AssertExpectations(t)
		m.cart.AssertExpectations(t)
	})

	t.Run("Order amount comes from channel capture", func(t *testing.T) {
		service, m := newTestPaymentService()

		sid := "sess-6"
		m.orders.On("GetBySessionID", sid).Return(nil, gorm.ErrRecordNotFound)
		m.sessions.On("Get", mock.Anything, sid).Return(paidSession(sid), nil)
		// 渠道实收与会话快照不一致时，以渠道为准
		m.alipay.On("QueryPaid", mock.Anything, sid).Return(true, 215.5, nil)
		m.orders.On("Create", mock.MatchedBy(func(order *model.Order) bool {
			return order.TotalAmount == 215.5
		})).Return(nil)
		m.coupons.On("ApplyCoupon", mock.Anything, "user-1", "SAVE20").Return(nil)
		m.couponRepo.On("GetActiveByUserAndPrefix", "user-1", "REWARD").
			Return(activeRewardCoupon("user-1"), nil)
		m.cart.On("ClearCart", mock.Anything, "user-1").Return(nil)

		order, err := service.HandleCheckoutSuccess(ctx, sid)

		assert.NoError(t, err)
		assert.Equal(t, 215.5, order.TotalAmount)
		m.orders.AssertExpectations(t)
	})

	t.Run("Duplicate insert falls back to existing order", func(t *testing.T) {
		service, m := newTestPaymentService()

		sid := "sess-4"
		existing := &model.Order{UserID: "user-1", TotalAmount: 216, SessionID: &sid, Status: model.StatusCompleted}
		existing.ID = "order-4"

		m.sessions.On("Get", mock.Anything, sid).Return(paidSession(sid), nil)
		m.orders.On("GetBySessionID", sid).Return(nil, gorm.ErrRecordNotFound).Once()
		m.alipay.On("QueryPaid", mock.Anything, sid).Return(true, 216.0, nil)
		m.orders.On("Create", mock.AnythingOfType("*model.Order")).Return(gorm.ErrDuplicatedKey)
		m.orders.On("GetBySessionID", sid).Return(existing, nil).Once()

		order, err := service.HandleCheckoutSuccess(ctx, sid)

		assert.NoError(t, err)
		assert.Equal(t, "order-4", order.ID)
		m.orders.AssertExpectations(t)
	})

	t.Run("Coupon apply failure does not fail checkout", func(t *testing.T) {
		service, m := newTestPaymentService()

		sid := "sess-5"
		session := paidSession(sid)
		session.Total = 108
		session.Discount = 0
		session.Subtotal = 100
		session.Tax = 8

		m.sessions.On("Get", mock.Anything, sid).Return(session, nil)
		m.orders.On("GetBySessionID", sid).Return(nil, gorm.ErrRecordNotFound)
		m.alipay.On("QueryPaid", mock.Anything, sid).Return(true, 108.0, nil)
		m.orders.On("Create", mock.AnythingOfType("*model.Order")).Return(nil)
		m.coupons.On("ApplyCoupon", mock.Anything, "user-1", "SAVE20").
			Return(apperr.Validation("Coupon usage limit reached"))
		m.cart.On("ClearCart", mock.Anything, "user-1").Return(nil)

		order, err := service.HandleCheckoutSuccess(ctx, sid)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, order.Status)
		m.coupons.AssertExpectations(t)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Invalid status rejected", func(t *testing.T) {
		service, _ := newTestPaymentService()

		_, err := service.UpdateOrderStatus(ctx, "order-1", "shipped")

		assert.Error(t, err)
		appErr, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Contains(t, appErr.Message, "not a valid order status")
	})

	t.Run("Unknown order returns not found", func(t *testing.T) {
		service, m := newTestPaymentService()

		m.orders.On("UpdateStatus", "order-1", model.StatusCancelled).
			Return(nil, gorm.ErrRecordNotFound)

		_, err := service.UpdateOrderStatus(ctx, "order-1", model.StatusCancelled)

		assert.Error(t, err)
		appErr, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Equal(t, "Order not found", appErr.Message)
		m.orders.AssertExpectations(t)
	})
}
