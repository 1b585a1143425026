package strategy

import (
	"context"
	"errors"
	"net/http"

	"shop_api/internal/domain/payment/model"
	"shop_api/internal/pkg/config"

	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/auth/verifiers"
	"github.com/wechatpay-apiv3/wechatpay-go/core/downloader"
	"github.com/wechatpay-apiv3/wechatpay-go/core/notify"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/native"
	"github.com/wechatpay-apiv3/wechatpay-go/utils"
)

type WechatStrategy struct {
	client  *core.Client
	config  config.WechatPayConfig
	certMgr core.CertificateVisitor
	handler *notify.Handler
}

func NewWechatStrategy() (*WechatStrategy, error) {
	cfg := config.GlobalConfig.Wechat
	if cfg.MchID == "" {
		return nil, errors.New("wechat pay config missing")
	}

	// 1. 加载商户私钥
	mchPrivateKey, err := utils.LoadPrivateKey(cfg.MchPrivateKey)
	if err != nil {
		return nil, err
	}

	// 2. 初始化 Client
	ctx := context.Background()
	opts := []core.ClientOption{
		option.WithWechatPayAutoAuthCipher(cfg.MchID, cfg.MchCertificateSerial, mchPrivateKey, cfg.APIv3Key),
	}

	client, err := core.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	// 3. 初始化证书管理器 (用于验签)
	certVisitor := downloader.MgrInstance().GetCertificateVisitor(cfg.MchID)

	// 4. 初始化 Notify Handler
	handler := notify.NewNotifyHandler(cfg.APIv3Key, verifiers.NewSHA256WithRSAVerifier(certVisitor))

	return &WechatStrategy{
		client:  client,
		config:  cfg,
		certMgr: certVisitor,
		handler: handler,
	}, nil
}

func (s *WechatStrategy) Name() string {
	return model.ChannelWechat
}

// CreateSession 创建 Native 支付，返回收款二维码链接
func (s *WechatStrategy) CreateSession(ctx context.Context, sessionID string, amount float64, subject string) (string, error) {
	// 转换为分
	amountFen := int64(amount*100 + 0.5)

	req := native.PrepayRequest{
		Appid:       core.String(s.config.AppID),
		Mchid:       core.String(s.config.MchID),
		Description: core.String(subject),
		OutTradeNo:  core.String(sessionID),
		NotifyUrl:   core.String(s.config.NotifyURL),
		Amount: &native.Amount{
			Total: core.Int64(amountFen),
		},
	}

	svc := native.NativeApiService{Client: s.client}
	resp, _, err := svc.Prepay(ctx, req)
	if err != nil {
		return "", err
	}

	return *resp.CodeUrl, nil
}

// QueryPaid 主动查单确认支付状态
func (s *WechatStrategy) QueryPaid(ctx context.Context, sessionID string) (bool, float64, error) {
	svc := native.NativeApiService{Client: s.client}
	transaction, _, err := svc.QueryOrderByOutTradeNo(ctx, native.QueryOrderByOutTradeNoRequest{
		OutTradeNo: core.String(sessionID),
		Mchid:      core.String(s.config.MchID),
	})
	if err != nil {
		return false, 0, err
	}

	if transaction.TradeState == nil || *transaction.TradeState != "SUCCESS" {
		return false, 0, nil
	}

	// 实收金额以查单结果为准，分转元
	var amount float64
	if transaction.Amount != nil && transaction.Amount.Total != nil {
		amount = float64(*transaction.Amount.Total) / 100.0
	}
	return true, amount, nil
}

// Notify 处理回调
func (s *WechatStrategy) Notify(params interface{}) (string, float64, bool, error) {
	req, ok := params.(*http.Request)
	if !ok {
		return "", 0, false, errors.New("invalid params type, expected *http.Request")
	}

	transaction := new(payments.Transaction)
	_, err := s.handler.ParseNotifyRequest(context.Background(), req, transaction)
	if err != nil {
		return "", 0, false, err
	}

	return decodeTransaction(transaction)
}

// decodeTransaction 提取回调交易结果，字段均为指针，缺字段视为非法通知
func decodeTransaction(transaction *payments.Transaction) (string, float64, bool, error) {
	if transaction.TradeState == nil || transaction.OutTradeNo == nil {
		return "", 0, false, errors.New("incomplete notify transaction")
	}

	success := *transaction.TradeState == "SUCCESS"

	var amount float64
	if transaction.Amount != nil && transaction.Amount.Total != nil {
		amount = float64(*transaction.Amount.Total) / 100.0
	}
	return *transaction.OutTradeNo, amount, success, nil
}

var _ PaymentStrategy = (*WechatStrategy)(nil)
