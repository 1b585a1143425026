package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 用户模块错误 100xx
	ErrUserExists   = 10001
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 优惠券模块错误 200xx
	ErrCouponNotFound = 20001
	ErrCouponInvalid  = 20002
	ErrConflict       = 20003

	// 商品/购物车模块错误 300xx
	ErrProductNotFound  = 30001
	ErrCartItemNotFound = 30002

	// 订单/支付模块错误 400xx
	ErrOrderNotFound     = 40001
	ErrPaymentIncomplete = 40002
	ErrPaymentChannel    = 40003

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
	ErrNotFound        = 50004
)
