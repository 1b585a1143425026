package repository

import (
	"errors"
	"time"

	"shop_api/internal/domain/coupon/model"

	"gorm.io/gorm"
)

// ErrUsageExhausted 原子扣减时发现次数已用完
var ErrUsageExhausted = errors.New("coupon usage exhausted")

// CouponRepository 接口定义
type CouponRepository interface {
	Create(coupon *model.Coupon) error
	GetByID(id string) (*model.Coupon, error)
	GetByCode(code string) (*model.Coupon, error)
	GetActiveByCodeAndUser(code, userID string) (*model.Coupon, error)
	GetActiveByUser(userID string) (*model.Coupon, error)
	GetActiveByUserAndPrefix(userID, codePrefix string) (*model.Coupon, error)
	GetAllByUser(userID string) ([]model.Coupon, error)
	GetAll() ([]model.Coupon, error)
	Update(coupon *model.Coupon) error
	Delete(coupon *model.Coupon) error
	IncrementUsage(id string) error
	DeactivateExpired(now time.Time) (int64, error)
}

// couponRepository 实现
type couponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建新的仓库实例
func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

// Create 创建优惠券
func (r *couponRepository) Create(coupon *model.Coupon) error {
	return r.db.Create(coupon).Error
}

// GetByID 根据ID获取
func (r *couponRepository) GetByID(id string) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.Where("id = ?", id).First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// GetByCode 按券码全局查找 (码全局唯一)
func (r *couponRepository) GetByCode(code string) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.Where("code = ?", code).First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// GetActiveByCodeAndUser 查找用户名下的有效券
func (r *couponRepository) GetActiveByCodeAndUser(code, userID string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.Where("code = ? AND user_id = ? AND is_active = ?", code, userID, true).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// GetActiveByUser 用户当前可用的券 (未过期)
func (r *couponRepository) GetActiveByUser(userID string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.Where("user_id = ? AND is_active = ? AND expiration_date > ?", userID, true, time.Now()).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// GetActiveByUserAndPrefix 按码前缀查找用户的有效券 (奖励券查重用)
func (r *couponRepository) GetActiveByUserAndPrefix(userID, codePrefix string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.Where("user_id = ? AND is_active = ? AND code LIKE ?", userID, true, codePrefix+"%").
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// GetAllByUser 用户全部券
func (r *couponRepository) GetAllByUser(userID string) ([]model.Coupon, error) {
	var coupons []model.Coupon
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

// GetAll 全部券 (管理员)
func (r *couponRepository) GetAll() ([]model.Coupon, error) {
	var coupons []model.Coupon
	if err := r.db.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

// Update 更新
func (r *couponRepository) Update(coupon *model.Coupon) error {
	return r.db.Save(coupon).Error
}

// Delete 删除
func (r *couponRepository) Delete(coupon *model.Coupon) error {
	return r.db.Delete(coupon).Error
}

// IncrementUsage 原子扣减使用次数
// 单条 UPDATE 完成计数与自动停用，并发下不会超扣
func (r *couponRepository) IncrementUsage(id string) error {
	result := r.db.Model(&model.Coupon{}).
		Where("id = ? AND is_active = ? AND (usage_limit IS NULL OR used_count < usage_limit)", id, true).
		Updates(map[string]interface{}{
			"used_count": gorm.Expr("used_count + 1"),
			"is_active": gorm.Expr(
				"CASE WHEN usage_limit IS NOT NULL AND used_count + 1 >= usage_limit THEN false ELSE is_active END"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUsageExhausted
	}
	return nil
}

// DeactivateExpired 批量停用过期券，返回影响行数
func (r *couponRepository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&model.Coupon{}).
		Where("expiration_date < ? AND is_active = ?", now, true).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
