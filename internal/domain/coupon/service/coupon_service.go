package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"shop_api/internal/domain/coupon/model"
	"shop_api/internal/domain/coupon/repository"
	"shop_api/pkg/apperr"
	"shop_api/pkg/logger"
	"shop_api/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateCouponInput 创建优惠券输入
type CreateCouponInput struct {
	Code               string
	DiscountPercentage float64
	ExpirationDate     time.Time
	UserID             string
	UsageLimit         *int
	MinimumPurchase    float64
}

// BulkCouponInput 批量发券输入，券码按 prefix + 用户ID 后6位生成
type BulkCouponInput struct {
	UserIDs            []string
	DiscountPercentage float64
	ExpirationDate     time.Time
	UsageLimit         *int
	MinimumPurchase    float64
	CodePrefix         string
}

// CouponService 优惠券服务接口
type CouponService interface {
	GetUserCoupon(ctx context.Context, userID string) (*model.Coupon, error)
	GetAllUserCoupons(ctx context.Context, userID string) ([]model.Coupon, error)
	ValidateCoupon(ctx context.Context, userID, code string, cartTotal float64) (*model.ValidationResult, error)
	ApplyCoupon(ctx context.Context, userID, code string) error
	CreateCoupon(ctx context.Context, input CreateCouponInput) (*model.Coupon, error)
	CreateBulkCoupons(ctx context.Context, input BulkCouponInput) ([]model.Coupon, error)
	DeactivateCoupon(ctx context.Context, couponID string) error
	DeleteCoupon(ctx context.Context, couponID string) error
	GetAllCoupons(ctx context.Context) ([]model.Coupon, error)
	CleanupExpiredCoupons(ctx context.Context) (int64, error)
}

// couponService 实现
type couponService struct {
	repo repository.CouponRepository
}

// NewCouponService 创建优惠券服务
func NewCouponService(repo repository.CouponRepository) CouponService {
	return &couponService{repo: repo}
}

// GetUserCoupon 用户当前可用的券，没有返回 nil
func (s *couponService) GetUserCoupon(ctx context.Context, userID string) (*model.Coupon, error) {
	coupon, err := s.repo.GetActiveByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return coupon, nil
}

// GetAllUserCoupons 用户全部券
func (s *couponService) GetAllUserCoupons(ctx context.Context, userID string) ([]model.Coupon, error) {
	return s.repo.GetAllByUser(userID)
}

// ValidateCoupon 校验券并计算折扣金额，失败原因放在 Message 里而不是返回错误
// 过期或次数用尽的券顺带停用
func (s *couponService) ValidateCoupon(ctx context.Context, userID, code string, cartTotal float64) (*model.ValidationResult, error) {
	coupon, err := s.repo.GetActiveByCodeAndUser(strings.ToUpper(code), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.ValidationResult{Valid: false, Message: "Invalid coupon code"}, nil
		}
		return nil, err
	}

	if coupon.IsExpired() {
		s.deactivate(coupon)
		return &model.ValidationResult{Valid: false, Message: "Coupon has expired"}, nil
	}

	if !coupon.HasUsesRemaining() {
		s.deactivate(coupon)
		return &model.ValidationResult{Valid: false, Message: "Coupon usage limit reached"}, nil
	}

	if coupon.MinimumPurchase > 0 && cartTotal < coupon.MinimumPurchase {
		return &model.ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("Minimum purchase of $%.2f required", coupon.MinimumPurchase),
		}, nil
	}

	return &model.ValidationResult{
		Valid: true,
		Coupon: &model.ValidatedCoupon{
			Code:               coupon.Code,
			DiscountPercentage: coupon.DiscountPercentage,
			DiscountAmount:     utils.Percent(cartTotal, coupon.DiscountPercentage),
		},
	}, nil
}

// ApplyCoupon 消费一次使用次数，结账完成时调用
func (s *couponService) ApplyCoupon(ctx context.Context, userID, code string) error {
	coupon, err := s.repo.GetActiveByCodeAndUser(strings.ToUpper(code), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validation("Invalid coupon code")
		}
		return err
	}

	if coupon.IsExpired() {
		s.deactivate(coupon)
		return apperr.Validation("Coupon has expired")
	}

	if err := s.repo.IncrementUsage(coupon.ID); err != nil {
		if errors.Is(err, repository.ErrUsageExhausted) {
			return apperr.Validation("Coupon usage limit reached")
		}
		return err
	}
	return nil
}

// 券码统一大写字母数字，3 到 20 位
var couponCodePattern = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

// CreateCoupon 创建券，券码全局唯一
func (s *couponService) CreateCoupon(ctx context.Context, input CreateCouponInput) (*model.Coupon, error) {
	code := strings.ToUpper(input.Code)
	if !couponCodePattern.MatchString(code) {
		return nil, apperr.Validation("Coupon code must be 3-20 alphanumeric characters")
	}

	if _, err := s.repo.GetByCode(code); err == nil {
		return nil, apperr.Conflict("Coupon code already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	coupon := &model.Coupon{
		Code:               code,
		DiscountPercentage: input.DiscountPercentage,
		ExpirationDate:     input.ExpirationDate,
		IsActive:           true,
		UserID:             input.UserID,
		UsageLimit:         input.UsageLimit,
		MinimumPurchase:    input.MinimumPurchase,
	}
	if err := s.repo.Create(coupon); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Coupon code already exists")
		}
		return nil, err
	}
	return coupon, nil
}

// CreateBulkCoupons 批量发券，单个失败不影响其余用户
func (s *couponService) CreateBulkCoupons(ctx context.Context, input BulkCouponInput) ([]model.Coupon, error) {
	prefix := input.CodePrefix
	if prefix == "" {
		prefix = "PROMO"
	}

	coupons := make([]model.Coupon, 0, len(input.UserIDs))
	for _, userID := range input.UserIDs {
		suffix := userID
		if len(suffix) > 6 {
			suffix = suffix[len(suffix)-6:]
		}
		code := prefix + strings.ToUpper(suffix)

		coupon, err := s.CreateCoupon(ctx, CreateCouponInput{
			Code:               code,
			DiscountPercentage: input.DiscountPercentage,
			ExpirationDate:     input.ExpirationDate,
			UserID:             userID,
			UsageLimit:         input.UsageLimit,
			MinimumPurchase:    input.MinimumPurchase,
		})
		if err != nil {
			logger.Log.Warn("failed to create bulk coupon",
				zap.String("user_id", userID),
				zap.String("code", code),
				zap.Error(err),
			)
			continue
		}
		coupons = append(coupons, *coupon)
	}

	return coupons, nil
}

// DeactivateCoupon 停用券
func (s *couponService) DeactivateCoupon(ctx context.Context, couponID string) error {
	coupon, err := s.repo.GetByID(couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Coupon not found")
		}
		return err
	}

	coupon.IsActive = false
	return s.repo.Update(coupon)
}

// DeleteCoupon 删除券
func (s *couponService) DeleteCoupon(ctx context.Context, couponID string) error {
	coupon, err := s.repo.GetByID(couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Coupon not found")
		}
		return err
	}
	return s.repo.Delete(coupon)
}

// GetAllCoupons 全部券 (管理员)
func (s *couponService) GetAllCoupons(ctx context.Context) ([]model.Coupon, error) {
	return s.repo.GetAll()
}

// CleanupExpiredCoupons 批量停用过期券，定时任务调用
func (s *couponService) CleanupExpiredCoupons(ctx context.Context) (int64, error) {
	count, err := s.repo.DeactivateExpired(time.Now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Log.Info("deactivated expired coupons", zap.Int64("count", count))
	}
	return count, nil
}

// deactivate 惰性停用，失败只记日志
func (s *couponService) deactivate(coupon *model.Coupon) {
	coupon.IsActive = false
	if err := s.repo.Update(coupon); err != nil {
		logger.Log.Warn("failed to deactivate coupon",
			zap.String("coupon_id", coupon.ID),
			zap.Error(err),
		)
	}
}
