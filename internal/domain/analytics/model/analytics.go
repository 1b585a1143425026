package model

// UserStats 用户维度统计
type UserStats struct {
	Total        int64 `json:"total"`
	NewThisMonth int64 `json:"newThisMonth"`
	ActiveUsers  int64 `json:"activeUsers"`
}

// ProductStats 商品维度统计
type ProductStats struct {
	Total      int64 `json:"total"`
	Featured   int64 `json:"featured"`
	OutOfStock int64 `json:"outOfStock"`
}

// SalesStats 订单维度统计
type SalesStats struct {
	TotalOrders     int64 `json:"totalOrders"`
	CompletedOrders int64 `json:"completedOrders"`
	PendingOrders   int64 `json:"pendingOrders"`
	CancelledOrders int64 `json:"cancelledOrders"`
}

// RevenueStats 收入维度统计，Growth 是本月环比上月的百分比
type RevenueStats struct {
	Total     float64 `json:"total"`
	ThisMonth float64 `json:"thisMonth"`
	LastMonth float64 `json:"lastMonth"`
	Growth    float64 `json:"growth"`
}

// CouponStats 优惠券维度统计
type CouponStats struct {
	Active        int64   `json:"active"`
	Used          int64   `json:"used"`
	TotalDiscount float64 `json:"totalDiscount"`
}

// Overview 总览
type Overview struct {
	Users    UserStats    `json:"users"`
	Products ProductStats `json:"products"`
	Sales    SalesStats   `json:"sales"`
	Revenue  RevenueStats `json:"revenue"`
	Coupons  CouponStats  `json:"coupons"`
}

// DailySales 按天销售数据，日期范围内无订单的天补零
type DailySales struct {
	Date    string  `json:"date"`
	Sales   int64   `json:"sales"`
	Revenue float64 `json:"revenue"`
	Orders  int64   `json:"orders"`
}

// TopProduct 按销量排行的商品
type TopProduct struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	TotalSold int64   `json:"totalSold"`
	Revenue   float64 `json:"revenue"`
}

// RevenueByCategory 按分类的收入占比
type RevenueByCategory struct {
	Category   string  `json:"category"`
	Revenue    float64 `json:"revenue"`
	Orders     int64   `json:"orders"`
	Percentage float64 `json:"percentage"`
}

// Response 完整分析响应
type Response struct {
	Overview          Overview            `json:"overview"`
	DailySales        []DailySales        `json:"dailySales"`
	TopProducts       []TopProduct        `json:"topProducts"`
	RevenueByCategory []RevenueByCategory `json:"revenueByCategory"`
}
