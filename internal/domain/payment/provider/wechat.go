package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"event_marketplace/internal/pkg/config"

	"github.com/shopspring/decimal"
	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/auth/verifiers"
	"github.com/wechatpay-apiv3/wechatpay-go/core/downloader"
	"github.com/wechatpay-apiv3/wechatpay-go/core/notify"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/app"
	"github.com/wechatpay-apiv3/wechatpay-go/utils"
)

const (
	MethodWechat = config.ChannelWechat

	wechatOrderNotExist = "ORDER_NOT_EXIST"
	wechatCurrency      = "CNY"
)

// wechatAPI app.AppApiService 中用到的部分
type wechatAPI interface {
	Prepay(ctx context.Context, req app.PrepayRequest) (*app.PrepayResponse, *core.APIResult, error)
	QueryOrderByOutTradeNo(ctx context.Context, req app.QueryOrderByOutTradeNoRequest) (*payments.Transaction, *core.APIResult, error)
}

// notifyParser notify.Handler 中用到的部分
type notifyParser interface {
	ParseNotifyRequest(ctx context.Context, request *http.Request, content interface{}) (*notify.Request, error)
}

// WechatProvider 微信 App 支付，prepay_id 作为客户端凭据
type WechatProvider struct {
	api       wechatAPI
	notify    notifyParser
	appID     string
	mchID     string
	notifyURL string
}

func NewWechatProvider(ctx context.Context, cfg config.WechatPayConfig) (*WechatProvider, error) {
	if cfg.MchID == "" {
		return nil, errors.New("wechat pay config missing")
	}

	// 1. 加载商户私钥
	mchPrivateKey, err := utils.LoadPrivateKey(cfg.MchPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("load wechat merchant key: %w", err)
	}

	// 2. 初始化 Client，自动下载平台证书
	opts := []core.ClientOption{
		option.WithWechatPayAutoAuthCipher(cfg.MchID, cfg.MchCertificateSerial, mchPrivateKey, cfg.APIv3Key),
	}
	client, err := core.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init wechat pay client: %w", err)
	}

	// 3. 通知验签使用同一份平台证书
	certVisitor := downloader.MgrInstance().GetCertificateVisitor(cfg.MchID)
	handler := notify.NewNotifyHandler(cfg.APIv3Key, verifiers.NewSHA256WithRSAVerifier(certVisitor))

	return &WechatProvider{
		api:       &app.AppApiService{Client: client},
		notify:    handler,
		appID:     cfg.AppID,
		mchID:     cfg.MchID,
		notifyURL: cfg.NotifyURL,
	}, nil
}

func (p *WechatProvider) Name() string {
	return MethodWechat
}

func (p *WechatProvider) Create(ctx context.Context, req CreateRequest) (*Intent, error) {
	ref := newRef("wx")

	prepay := app.PrepayRequest{
		Appid:       core.String(p.appID),
		Mchid:       core.String(p.mchID),
		Description: core.String(req.Subject),
		OutTradeNo:  core.String(ref),
		NotifyUrl:   core.String(p.notifyURL),
		Amount: &app.Amount{
			Total:    core.Int64(toFen(req.Amount)),
			Currency: core.String(wechatCurrency),
		},
	}
	if req.Expire > 0 {
		prepay.TimeExpire = core.Time(time.Now().Add(req.Expire))
	}

	resp, _, err := p.api.Prepay(ctx, prepay)
	if err != nil {
		return nil, fmt.Errorf("wechat prepay: %w", err)
	}
	if resp.PrepayId == nil {
		return nil, errors.New("wechat prepay: empty prepay_id")
	}
	return &Intent{Ref: ref, ClientSecret: *resp.PrepayId}, nil
}

func (p *WechatProvider) Retrieve(ctx context.Context, ref string) (Status, error) {
	tx, _, err := p.api.QueryOrderByOutTradeNo(ctx, app.QueryOrderByOutTradeNoRequest{
		OutTradeNo: core.String(ref),
		Mchid:      core.String(p.mchID),
	})
	if err != nil {
		var apiErr *core.APIError
		if errors.As(err, &apiErr) && apiErr.Code == wechatOrderNotExist {
			return "", ErrIntentNotFound
		}
		return "", fmt.Errorf("wechat query order: %w", err)
	}
	return wechatStatus(tx), nil
}

func wechatStatus(tx *payments.Transaction) Status {
	if tx == nil || tx.TradeState == nil {
		return StatusPending
	}
	switch *tx.TradeState {
	case "SUCCESS":
		return StatusSucceeded
	case "CLOSED", "REVOKED", "PAYERROR":
		return StatusClosed
	default:
		return StatusPending
	}
}

// ParseNotification 微信回调是加密 JSON，签名信息在 Header 中
func (p *WechatProvider) ParseNotification(ctx context.Context, r *http.Request) (*Notification, error) {
	transaction := new(payments.Transaction)
	if _, err := p.notify.ParseNotifyRequest(ctx, r, transaction); err != nil {
		return nil, fmt.Errorf("verify wechat notification: %w", err)
	}
	if transaction.OutTradeNo == nil {
		return nil, errors.New("wechat notification without out_trade_no")
	}
	return &Notification{
		Ref:  *transaction.OutTradeNo,
		Paid: wechatStatus(transaction) == StatusSucceeded,
	}, nil
}

// toFen 元转分
func toFen(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

var (
	_ Provider = (*WechatProvider)(nil)
	_ Notifier = (*WechatProvider)(nil)
)
