package strategy

import "context"

// PaymentStrategy 支付渠道策略
type PaymentStrategy interface {
	// Name 渠道标识 (alipay / wechat)
	Name() string

	// CreateSession 在渠道侧创建支付单，返回前端跳转/拉起所需的参数串
	CreateSession(ctx context.Context, sessionID string, amount float64, subject string) (string, error)

	// QueryPaid 查询渠道侧支付是否完成，已支付时返回渠道实收金额 (元)
	// 实收金额以渠道为准，落单时不得用本地数据覆盖
	QueryPaid(ctx context.Context, sessionID string) (bool, float64, error)

	// Notify 处理异步回调，返回会话ID、金额、是否成功
	Notify(params interface{}) (string, float64, bool, error)
}
