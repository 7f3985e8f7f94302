package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"event_marketplace/internal/pkg/config"

	"github.com/smartwalle/alipay/v3"
)

const (
	MethodAlipay = config.ChannelAlipay

	alipayTradeNotExist = "ACQ.TRADE_NOT_EXIST"
	alipayAppProduct    = "QUICK_MSECURITY_PAY" // App支付产品码
)

// alipayAPI *alipay.Client 中用到的部分
type alipayAPI interface {
	TradeAppPay(param alipay.TradeAppPay) (string, error)
	TradeQuery(param alipay.TradeQuery) (*alipay.TradeQueryRsp, error)
	DecodeNotification(values url.Values) (*alipay.Notification, error)
}

// AlipayProvider 支付宝 App 支付
type AlipayProvider struct {
	client    alipayAPI
	notifyURL string
}

func NewAlipayProvider(cfg config.AlipayConfig) (*AlipayProvider, error) {
	if cfg.AppID == "" {
		return nil, errors.New("alipay config missing")
	}

	client, err := alipay.New(cfg.AppID, cfg.PrivateKey, cfg.IsProduction)
	if err != nil {
		return nil, fmt.Errorf("init alipay client: %w", err)
	}

	// 加载支付宝公钥 (用于验证签名)
	if err = client.LoadAliPayPublicKey(cfg.PublicKey); err != nil {
		return nil, fmt.Errorf("load alipay public key: %w", err)
	}

	return &AlipayProvider{client: client, notifyURL: cfg.NotifyURL}, nil
}

func (p *AlipayProvider) Name() string {
	return MethodAlipay
}

// Create 生成签名后的 App 支付参数串，作为客户端凭据返回
func (p *AlipayProvider) Create(ctx context.Context, req CreateRequest) (*Intent, error) {
	ref := newRef("ali")

	param := alipay.TradeAppPay{}
	param.NotifyURL = p.notifyURL
	param.Subject = req.Subject
	param.OutTradeNo = ref
	param.TotalAmount = req.Amount.StringFixed(2)
	param.ProductCode = alipayAppProduct
	if req.Expire > 0 {
		param.TimeoutExpress = timeoutExpress(req.Expire)
	}

	signed, err := p.client.TradeAppPay(param)
	if err != nil {
		return nil, fmt.Errorf("alipay app pay: %w", err)
	}
	return &Intent{Ref: ref, ClientSecret: signed}, nil
}

func (p *AlipayProvider) Retrieve(ctx context.Context, ref string) (Status, error) {
	rsp, err := p.client.TradeQuery(alipay.TradeQuery{OutTradeNo: ref})
	if err != nil {
		if strings.Contains(err.Error(), alipayTradeNotExist) {
			return "", ErrIntentNotFound
		}
		return "", fmt.Errorf("alipay trade query: %w", err)
	}
	if rsp.SubCode == alipayTradeNotExist {
		return "", ErrIntentNotFound
	}
	if rsp.Code != alipay.CodeSuccess {
		return "", fmt.Errorf("alipay trade query: %s %s", rsp.Code, rsp.SubMsg)
	}
	return alipayStatus(rsp.TradeStatus), nil
}

// timeoutExpress 支付宝相对超时，最小单位分钟
func timeoutExpress(d time.Duration) string {
	minutes := int(d / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%dm", minutes)
}

func alipayStatus(s alipay.TradeStatus) Status {
	switch s {
	case alipay.TradeStatusSuccess, alipay.TradeStatusFinished:
		return StatusSucceeded
	case alipay.TradeStatusClosed:
		return StatusClosed
	default:
		return StatusPending
	}
}

// ParseNotification 支付宝回调是 POST Form 格式，验签后返回交易状态
func (p *AlipayProvider) ParseNotification(ctx context.Context, r *http.Request) (*Notification, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse alipay notification: %w", err)
	}

	noti, err := p.client.DecodeNotification(r.Form)
	if err != nil {
		return nil, fmt.Errorf("verify alipay notification: %w", err)
	}
	return &Notification{
		Ref:  noti.OutTradeNo,
		Paid: alipayStatus(noti.TradeStatus) == StatusSucceeded,
	}, nil
}

var (
	_ Provider = (*AlipayProvider)(nil)
	_ Notifier = (*AlipayProvider)(nil)
)
