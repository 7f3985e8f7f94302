package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector 指标收集器，nil 接收者上的方法均为空操作
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// 数据库指标
	dbConnectionsInUse prometheus.Gauge
	dbConnectionsIdle  prometheus.Gauge
	dbWaitCount        prometheus.Gauge

	// 业务指标
	bookingsTotal    *prometheus.CounterVec
	seatsBooked      prometheus.Counter
	couponOpsTotal   *prometheus.CounterVec
	paymentOpsTotal  *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	eventsPublished  *prometheus.CounterVec
	eventsCompleted  prometheus.Counter
}

// NewMetricsCollector 创建指标收集器，reg 为 nil 时注册到默认 Registry
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &MetricsCollector{
		// HTTP 指标
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpResponseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "endpoint"},
		),

		// 数据库指标
		dbConnectionsInUse: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_in_use",
				Help: "Number of database connections currently in use",
			},
		),

		dbConnectionsIdle: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_idle",
				Help: "Number of idle database connections",
			},
		),

		dbWaitCount: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_wait_count",
				Help: "Total number of connections waited for",
			},
		),

		// 业务指标
		bookingsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Booking operations by kind and outcome",
			},
			[]string{"operation", "outcome"},
		),

		seatsBooked: f.NewCounter(
			prometheus.CounterOpts{
				Name: "booking_seats_admitted_total",
				Help: "Seats admitted by the capacity ledger",
			},
		),

		couponOpsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coupon_operations_total",
				Help: "Coupon reserve/release operations by outcome",
			},
			[]string{"operation", "outcome"},
		),

		paymentOpsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_operations_total",
				Help: "Payment intent and confirmation operations by outcome",
			},
			[]string{"operation", "mode", "outcome"},
		),

		providerDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payment_provider_request_duration_seconds",
				Help:    "Payment provider call latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"provider", "operation", "status"},
		),

		eventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domain_events_published_total",
				Help: "Domain events handed to the broker by outcome",
			},
			[]string{"type", "outcome"},
		),

		eventsCompleted: f.NewCounter(
			prometheus.CounterOpts{
				Name: "events_completed_total",
				Help: "Events moved to COMPLETED by read reconciliation",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration, responseSize int) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	if responseSize > 0 {
		m.httpResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
	}
}

// UpdateDBStats 更新连接池指标
func (m *MetricsCollector) UpdateDBStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.dbConnectionsInUse.Set(float64(stats.InUse))
	m.dbConnectionsIdle.Set(float64(stats.Idle))
	m.dbWaitCount.Set(float64(stats.WaitCount))
}

// RecordBooking 记录预订操作结果
func (m *MetricsCollector) RecordBooking(operation, outcome string, seats int) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(operation, outcome).Inc()
	if outcome == OutcomeSuccess && seats > 0 {
		m.seatsBooked.Add(float64(seats))
	}
}

// RecordCoupon 记录优惠码占用/释放结果
func (m *MetricsCollector) RecordCoupon(operation, outcome string) {
	if m == nil {
		return
	}
	m.couponOpsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordPayment 记录支付操作结果
func (m *MetricsCollector) RecordPayment(operation, mode, outcome string) {
	if m == nil {
		return
	}
	m.paymentOpsTotal.WithLabelValues(operation, mode, outcome).Inc()
}

// ObserveProvider 记录支付渠道调用耗时
func (m *MetricsCollector) ObserveProvider(provider, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := OutcomeSuccess
	if err != nil {
		status = OutcomeError
	}
	m.providerDuration.WithLabelValues(provider, operation, status).Observe(duration.Seconds())
}

// RecordPublish 记录领域事件投递结果
func (m *MetricsCollector) RecordPublish(eventType, outcome string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(eventType, outcome).Inc()
}

// RecordEventCompleted 记录活动完结
func (m *MetricsCollector) RecordEventCompleted() {
	if m == nil {
		return
	}
	m.eventsCompleted.Inc()
}

// 结果标签
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Outcome 根据错误区分业务拒绝与系统错误
func Outcome(err error, isBusiness func(error) bool) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case isBusiness != nil && isBusiness(err):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}
