package strategy

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"shop_api/internal/domain/payment/model"
	"shop_api/internal/pkg/config"

	"github.com/smartwalle/alipay/v3"
)

type AlipayStrategy struct {
	client *alipay.Client
	config config.AlipayConfig
}

func NewAlipayStrategy() (*AlipayStrategy, error) {
	cfg := config.GlobalConfig.Alipay
	if cfg.AppID == "" {
		return nil, errors.New("alipay config missing")
	}

	client, err := alipay.New(cfg.AppID, cfg.PrivateKey, cfg.IsProduction)
	if err != nil {
		return nil, err
	}

	// 加载支付宝公钥 (用于验证签名)
	if err = client.LoadAliPayPublicKey(cfg.PublicKey); err != nil {
		return nil, err
	}

	return &AlipayStrategy{
		client: client,
		config: cfg,
	}, nil
}

func (s *AlipayStrategy) Name() string {
	return model.ChannelAlipay
}

// CreateSession 创建电脑网站支付，返回收银台跳转 URL
func (s *AlipayStrategy) CreateSession(ctx context.Context, sessionID string, amount float64, subject string) (string, error) {
	p := alipay.TradePagePay{}
	p.NotifyURL = s.config.NotifyURL
	p.ReturnURL = config.GlobalConfig.Checkout.SuccessURL
	p.Subject = subject
	p.OutTradeNo = sessionID
	p.TotalAmount = fmt.Sprintf("%.2f", amount)
	p.ProductCode = "FAST_INSTANT_TRADE_PAY" // 网站支付产品码

	payURL, err := s.client.TradePagePay(p)
	if err != nil {
		return "", err
	}
	return payURL.String(), nil
}

// QueryPaid 主动查单确认支付状态
func (s *AlipayStrategy) QueryPaid(ctx context.Context, sessionID string) (bool, float64, error) {
	p := alipay.TradeQuery{}
	p.OutTradeNo = sessionID

	rsp, err := s.client.TradeQuery(p)
	if err != nil {
		return false, 0, err
	}

	paid := rsp.TradeStatus == alipay.TradeStatusSuccess || rsp.TradeStatus == alipay.TradeStatusFinished
	if !paid {
		return false, 0, nil
	}

	// 实收金额以查单结果为准
	amount, err := strconv.ParseFloat(rsp.TotalAmount, 64)
	if err != nil {
		return false, 0, fmt.Errorf("unparsable trade amount %q: %w", rsp.TotalAmount, err)
	}
	return true, amount, nil
}

// Notify 处理回调
func (s *AlipayStrategy) Notify(params interface{}) (string, float64, bool, error) {
	// params 预期是 url.Values (gin context.Request.Form)
	values, ok := params.(url.Values)
	if !ok {
		return "", 0, false, errors.New("invalid params type, expected url.Values")
	}

	// 1. 验证签名
	noti, err := s.client.DecodeNotification(values)
	if err != nil {
		return "", 0, false, err
	}

	// 2. 检查交易状态
	success := noti.TradeStatus == alipay.TradeStatusSuccess || noti.TradeStatus == alipay.TradeStatusFinished

	// 3. 解析金额
	amount, _ := strconv.ParseFloat(noti.TotalAmount, 64)

	return noti.OutTradeNo, amount, success, nil
}

// 确保实现了接口
var _ PaymentStrategy = (*AlipayStrategy)(nil)
