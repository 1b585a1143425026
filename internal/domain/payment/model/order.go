package model

import (
	"time"

	"shop_api/pkg/model"
)

// 订单状态
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusRefunded   = "refunded"
)

// ValidStatuses 合法状态集合
var ValidStatuses = map[string]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
	StatusRefunded:   true,
}

// 支付渠道
const (
	ChannelAlipay = "alipay"
	ChannelWechat = "wechat"
)

// Order 订单模型
// SessionID 唯一索引保证同一个结账会话只会落一笔订单
type Order struct {
	model.BaseModel
	UserID         string      `gorm:"type:uuid;not null;index" json:"userId"`
	Items          []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	TotalAmount    float64     `gorm:"not null" json:"totalAmount"`
	SessionID      *string     `gorm:"size:64;uniqueIndex" json:"sessionId,omitempty"`
	CouponCode     string      `gorm:"size:50" json:"couponCode,omitempty"`
	DiscountAmount float64     `gorm:"not null;default:0" json:"discountAmount"`
	Status         string      `gorm:"size:20;not null;default:pending;index" json:"status"`
	Channel        string      `gorm:"size:20" json:"channel"`
	PaidAt         *time.Time  `json:"paidAt,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单条目，Price 是下单时的成交单价快照
type OrderItem struct {
	model.BaseModel
	OrderID   string  `gorm:"type:uuid;not null;index" json:"orderId"`
	ProductID string  `gorm:"type:uuid;not null" json:"productId"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Price     float64 `gorm:"not null" json:"price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
