package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"event_marketplace/internal/domain/payment/model"
	"event_marketplace/internal/domain/payment/provider"
	"event_marketplace/internal/pkg/middleware"
	"event_marketplace/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreateIntent(ctx context.Context, bookingID, userID string) (*model.Intent, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Intent), args.Error(1)
}

func (m *MockPaymentService) Confirm(ctx context.Context, ref string) (*model.ConfirmResult, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConfirmResult), args.Error(1)
}

func (m *MockPaymentService) HandleNotification(ctx context.Context, channel string, r *http.Request) error {
	args := m.Called(ctx, channel, r)
	return args.Error(0)
}

func (m *MockPaymentService) History(ctx context.Context, userID string) ([]model.HistoryEntry, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.HistoryEntry), args.Error(1)
}

func (m *MockPaymentService) Mode() string {
	return m.Called().String(0)
}

func (m *MockPaymentService) RegisterProvider(p provider.Provider) {
	m.Called(p)
}

func init() {
	gin.SetMode(gin.TestMode)
	binding.EnableDecoderDisallowUnknownFields = true
}

func newRouter(svc *MockPaymentService, userID string) *gin.Engine {
	h := NewPaymentHandler(svc)
	r := gin.New()
	g := r.Group("/payment")
	g.GET("/mode", h.Mode)
	g.POST("/notify/alipay", h.AlipayNotify)
	g.POST("/notify/wechat", h.WechatNotify)

	auth := g.Group("", func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.ContextUserID, userID)
			c.Set(middleware.ContextRole, "USER")
		}
		c.Next()
	})
	auth.POST("/create-intent", h.CreateIntent)
	auth.POST("/confirm", h.Confirm)
	auth.GET("/history", h.History)
	return r
}

func do(r http.Handler, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestCreateIntentHandler(t *testing.T) {
	t.Run("returns intent", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("CreateIntent", mock.Anything, "booking-1", "user-1").Return(&model.Intent{
			PaymentID:       "payment-1",
			BookingID:       "booking-1",
			PaymentIntentID: "demo_pi_1",
			ClientSecret:    "demo_pi_1_secret_demo",
			Amount:          decimal.NewFromInt(80),
			Currency:        "CNY",
			Method:          provider.MethodDemo,
			Mode:            "fallback",
		}, nil)

		w, resp := do(newRouter(svc, "user-1"), http.MethodPost, "/payment/create-intent", `{"bookingId":"booking-1"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, response.CodeSuccess, resp.Code)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "demo_pi_1_secret_demo", data["clientSecret"])
		svc.AssertExpectations(t)
	})

	t.Run("requires identity", func(t *testing.T) {
		svc := new(MockPaymentService)

		w, resp := do(newRouter(svc, ""), http.MethodPost, "/payment/create-intent", `{"bookingId":"booking-1"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, response.ErrTokenInvalid, resp.Code)
	})

	t.Run("missing booking id", func(t *testing.T) {
		svc := new(MockPaymentService)

		w, _ := do(newRouter(svc, "user-1"), http.MethodPost, "/payment/create-intent", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("provider outage is bad gateway", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("CreateIntent", mock.Anything, "booking-1", "user-1").Return(nil, model.ErrProviderUnavailable)

		w, _ := do(newRouter(svc, "user-1"), http.MethodPost, "/payment/create-intent", `{"bookingId":"booking-1"}`)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestConfirmHandler(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("Confirm", mock.Anything, "ali_1").Return(&model.ConfirmResult{
			Success:          true,
			PaymentID:        "payment-1",
			BookingID:        "booking-1",
			BookingConfirmed: true,
		}, nil)

		w, resp := do(newRouter(svc, "user-1"), http.MethodPost, "/payment/confirm", `{"paymentIntentId":"ali_1"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, response.CodeSuccess, resp.Code)
	})

	t.Run("verification failure", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("Confirm", mock.Anything, "ali_1").Return(nil, model.ErrVerificationFailed)

		w, _ := do(newRouter(svc, "user-1"), http.MethodPost, "/payment/confirm", `{"paymentIntentId":"ali_1"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown ref", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("Confirm", mock.Anything, "nope").Return(nil, model.ErrPaymentNotFound)

		w, _ := do(newRouter(svc, "user-1"), http.MethodPost, "/payment/confirm", `{"paymentIntentId":"nope"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHistoryAndModeHandlers(t *testing.T) {
	svc := new(MockPaymentService)
	svc.On("History", mock.Anything, "user-1").Return([]model.HistoryEntry{{ID: "payment-1", Status: string(model.StatusCompleted)}}, nil)
	svc.On("Mode").Return("fallback")
	r := newRouter(svc, "user-1")

	w, resp := do(r, http.MethodGet, "/payment/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data, 1)

	w, resp = do(r, http.MethodGet, "/payment/mode", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fallback", resp.Data.(map[string]interface{})["mode"])
}

func TestNotifyHandlers(t *testing.T) {
	t.Run("alipay success", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("HandleNotification", mock.Anything, provider.MethodAlipay, mock.Anything).Return(nil)

		w, _ := do(newRouter(svc, ""), http.MethodPost, "/payment/notify/alipay", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "success", w.Body.String())
	})

	t.Run("alipay failure asks for retry", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("HandleNotification", mock.Anything, provider.MethodAlipay, mock.Anything).Return(model.ErrVerificationFailed)

		w, _ := do(newRouter(svc, ""), http.MethodPost, "/payment/notify/alipay", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "fail", w.Body.String())
	})

	t.Run("wechat failure is server error", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("HandleNotification", mock.Anything, provider.MethodWechat, mock.Anything).Return(model.ErrProviderUnavailable)

		w, _ := do(newRouter(svc, ""), http.MethodPost, "/payment/notify/wechat", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "FAIL")
	})

	t.Run("wechat success", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("HandleNotification", mock.Anything, provider.MethodWechat, mock.Anything).Return(nil)

		w, _ := do(newRouter(svc, ""), http.MethodPost, "/payment/notify/wechat", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
