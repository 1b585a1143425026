package model

import (
	"shop_api/pkg/model"
)

// 商品分类
const (
	CategoryElectronics = "electronics"
	CategoryClothing    = "clothing"
	CategoryFood        = "food"
	CategoryBooks       = "books"
	CategoryHome        = "home"
	CategorySports      = "sports"
	CategoryToys        = "toys"
	CategoryOther       = "other"
)

// ValidCategories 合法分类集合
var ValidCategories = map[string]bool{
	CategoryElectronics: true,
	CategoryClothing:    true,
	CategoryFood:        true,
	CategoryBooks:       true,
	CategoryHome:        true,
	CategorySports:      true,
	CategoryToys:        true,
	CategoryOther:       true,
}

// Product 商品模型
type Product struct {
	model.BaseModel
	Name        string  `gorm:"size:100;not null;index" json:"name"`
	Description string  `gorm:"size:2000;not null" json:"description"`
	Price       float64 `gorm:"not null;index" json:"price"`
	Image       string  `gorm:"size:500" json:"image"`
	Category    string  `gorm:"size:50;not null;index:idx_products_category_featured" json:"category"`
	IsFeatured  bool    `gorm:"not null;default:false;index:idx_products_category_featured" json:"isFeatured"`
	Stock       int     `gorm:"not null;default:0" json:"stock"`
}

func (Product) TableName() string {
	return "products"
}
