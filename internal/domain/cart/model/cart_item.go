package model

import (
	productModel "shop_api/internal/domain/product/model"
	"shop_api/pkg/model"
)

// CartItem 购物车条目，同一用户同一商品只有一条记录
type CartItem struct {
	model.BaseModel
	UserID    string `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product" json:"userId"`
	ProductID string `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product" json:"productId"`
	Quantity  int    `gorm:"not null" json:"quantity"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartLine 购物车条目 + 商品详情
type CartLine struct {
	Product  productModel.Product `json:"product"`
	Quantity int                  `json:"quantity"`
	Subtotal float64              `json:"subtotal"`
}

// CartSummary 购物车汇总，金额均保留两位小数
type CartSummary struct {
	Items      []CartLine `json:"items"`
	TotalItems int        `json:"totalItems"`
	Subtotal   float64    `json:"subtotal"`
	Tax        float64    `json:"tax"`
	Total      float64    `json:"total"`
}
