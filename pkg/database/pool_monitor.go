package database

import (
	"context"
	"database/sql"
	"time"

	"event_marketplace/pkg/metrics"

	"go.uber.org/zap"
)

// PoolMonitorConfig 连接池监控配置
type PoolMonitorConfig struct {
	MonitorInterval time.Duration
	MaxWaitTime     time.Duration // 单个周期内累计等待超过该值时告警
}

// PoolMonitor 周期性采集连接池状态并上报指标
type PoolMonitor struct {
	db       *sql.DB
	metrics  *metrics.MetricsCollector
	config   PoolMonitorConfig
	log      *zap.Logger
	lastWait time.Duration
}

func NewPoolMonitor(db *sql.DB, m *metrics.MetricsCollector, cfg PoolMonitorConfig, log *zap.Logger) *PoolMonitor {
	if cfg.MonitorInterval <= 0 {
		cfg.MonitorInterval = 15 * time.Second
	}
	if cfg.MaxWaitTime <= 0 {
		cfg.MaxWaitTime = 5 * time.Second
	}
	return &PoolMonitor{db: db, metrics: m, config: cfg, log: log}
}

// Run 阻塞直到 ctx 取消
func (pm *PoolMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(pm.config.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pm.collect()
		case <-ctx.Done():
			return
		}
	}
}

// collect 采集一次，返回本周期新增的等待时间
func (pm *PoolMonitor) collect() time.Duration {
	stats := pm.db.Stats()
	pm.metrics.UpdateDBStats(stats)

	waited := stats.WaitDuration - pm.lastWait
	pm.lastWait = stats.WaitDuration
	if waited > pm.config.MaxWaitTime {
		// 座位行锁竞争激烈时连接会排队
		pm.log.Warn("database pool wait is high",
			zap.Duration("waited", waited),
			zap.Int("open", stats.OpenConnections),
			zap.Int("in_use", stats.InUse),
			zap.Int("max_open", stats.MaxOpenConnections))
	}
	return waited
}
