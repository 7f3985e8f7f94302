package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPoolMonitor(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	pm := NewPoolMonitor(db, nil, PoolMonitorConfig{}, zap.NewNop())
	assert.Equal(t, 15*time.Second, pm.config.MonitorInterval)
	assert.Equal(t, 5*time.Second, pm.config.MaxWaitTime)

	// 空闲连接池没有等待
	assert.Equal(t, time.Duration(0), pm.collect())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pm.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
