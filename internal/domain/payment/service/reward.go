package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	couponRepo "shop_api/internal/domain/coupon/repository"
	couponService "shop_api/internal/domain/coupon/service"
	"shop_api/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// RewardThreshold 消费满多少触发奖励券
	RewardThreshold = 200.0

	rewardCodePrefix        = "REWARD"
	rewardDiscountPercent   = 10.0
	rewardValidityDays      = 30
	rewardMinimumPurchase   = 50.0
	rewardCodeRandomLength  = 6
	rewardCodeRandomCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RewardIssuer 大额消费奖励券发放
// 每个用户同时最多持有一张有效奖励券
type RewardIssuer struct {
	coupons couponService.CouponService
	repo    couponRepo.CouponRepository
}

// NewRewardIssuer 创建奖励券发放器
func NewRewardIssuer(coupons couponService.CouponService, repo couponRepo.CouponRepository) *RewardIssuer {
	return &RewardIssuer{coupons: coupons, repo: repo}
}

// IssueIfEligible 金额达标则发放，重复或失败不打断主流程
func (r *RewardIssuer) IssueIfEligible(ctx context.Context, userID string, total float64) {
	if total < RewardThreshold {
		return
	}

	// 已有有效奖励券则跳过
	if _, err := r.repo.GetActiveByUserAndPrefix(userID, rewardCodePrefix); err == nil {
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Warn("reward coupon lookup failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	usageLimit := 1
	code := rewardCodePrefix + randomCode(rewardCodeRandomLength)

	coupon, err := r.coupons.CreateCoupon(ctx, couponService.CreateCouponInput{
		Code:               code,
		DiscountPercentage: rewardDiscountPercent,
		ExpirationDate:     time.Now().AddDate(0, 0, rewardValidityDays),
		UserID:             userID,
		UsageLimit:         &usageLimit,
		MinimumPurchase:    rewardMinimumPurchase,
	})
	if err != nil {
		logger.Log.Warn("failed to create reward coupon",
			zap.String("user_id", userID),
			zap.String("code", code),
			zap.Error(err),
		)
		return
	}

	logger.Log.Info("reward coupon created",
		zap.String("user_id", userID),
		zap.String("code", coupon.Code),
	)
}

func randomCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = rewardCodeRandomCharset[rand.Intn(len(rewardCodeRandomCharset))]
	}
	return string(b)
}
