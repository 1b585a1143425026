package model

import (
	"time"

	"shop_api/pkg/model"
)

// Coupon 优惠券模型，每张券绑定一个用户
type Coupon struct {
	model.BaseModel
	Code               string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	DiscountPercentage float64   `gorm:"not null" json:"discountPercentage"`
	ExpirationDate     time.Time `gorm:"not null;index" json:"expirationDate"`
	IsActive           bool      `gorm:"not null;default:true;index" json:"isActive"`
	UserID             string    `gorm:"type:uuid;not null;index" json:"userId"`
	UsageLimit         *int      `json:"usageLimit,omitempty"` // nil 表示不限次数
	UsedCount          int       `gorm:"not null;default:0" json:"usedCount"`
	MinimumPurchase    float64   `gorm:"not null;default:0" json:"minimumPurchase"`
}

func (Coupon) TableName() string {
	return "coupons"
}

// IsExpired 是否已过期
func (c *Coupon) IsExpired() bool {
	return time.Now().After(c.ExpirationDate)
}

// HasUsesRemaining 是否还有剩余使用次数
func (c *Coupon) HasUsesRemaining() bool {
	if c.UsageLimit == nil {
		return true
	}
	return c.UsedCount < *c.UsageLimit
}

// RemainingUses 剩余次数，不限次数时返回 nil
func (c *Coupon) RemainingUses() *int {
	if c.UsageLimit == nil {
		return nil
	}
	remaining := *c.UsageLimit - c.UsedCount
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// ValidationResult 校验结果
type ValidationResult struct {
	Valid   bool             `json:"valid"`
	Message string           `json:"message,omitempty"`
	Coupon  *ValidatedCoupon `json:"coupon,omitempty"`
}

// ValidatedCoupon 校验通过时返回的折扣信息
type ValidatedCoupon struct {
	Code               string  `json:"code"`
	DiscountPercentage float64 `json:"discountPercentage"`
	DiscountAmount     float64 `json:"discountAmount"`
}
