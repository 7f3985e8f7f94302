package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCollector(t *testing.T) {
	m := NewMetricsCollector(prometheus.NewRegistry())

	m.RecordBooking("create", OutcomeSuccess, 3)
	m.RecordBooking("create", OutcomeRejected, 2)
	m.RecordCoupon("reserve", OutcomeSuccess)
	m.RecordPayment("confirm", "fallback", OutcomeSuccess)
	m.ObserveProvider("alipay", "retrieve", 120*time.Millisecond, errors.New("timeout"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.bookingsTotal.WithLabelValues("create", OutcomeSuccess)))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.seatsBooked))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.couponOpsTotal.WithLabelValues("reserve", OutcomeSuccess)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.providerDuration))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var m *MetricsCollector
	assert.NotPanics(t, func() {
		m.RecordBooking("create", OutcomeSuccess, 1)
		m.RecordHTTPRequest("GET", "/health", 200, time.Millisecond, 10)
		m.RecordEventCompleted()
	})
}

func TestOutcome(t *testing.T) {
	business := errors.New("capacity exceeded")
	isBusiness := func(err error) bool { return errors.Is(err, business) }

	assert.Equal(t, OutcomeSuccess, Outcome(nil, isBusiness))
	assert.Equal(t, OutcomeRejected, Outcome(business, isBusiness))
	assert.Equal(t, OutcomeError, Outcome(errors.New("db down"), isBusiness))
}
