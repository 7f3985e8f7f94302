package broker

import (
	"context"
	"time"

	"event_marketplace/internal/pkg/worker"
	"event_marketplace/pkg/metrics"

	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// AsyncPublisher 通过任务池异步投递，失败按任务池策略重试
type AsyncPublisher struct {
	pool    *worker.WorkerPool
	metrics *metrics.MetricsCollector
}

func NewAsyncPublisher(next Publisher, workers, queueSize int, m *metrics.MetricsCollector, log *zap.Logger) *AsyncPublisher {
	handler := func(ctx context.Context, task worker.Task) error {
		ev, ok := task.Payload.(Event)
		if !ok {
			return nil
		}
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()

		err := next.Publish(ctx, ev)
		m.RecordPublish(ev.Type, metrics.Outcome(err, nil))
		return err
	}

	return &AsyncPublisher{
		pool:    worker.NewWorkerPool(handler, workers, queueSize, log),
		metrics: m,
	}
}

func (a *AsyncPublisher) Start() {
	a.pool.Start()
}

// Publish 只负责入队，不阻塞请求
func (a *AsyncPublisher) Publish(ctx context.Context, ev Event) error {
	if err := a.pool.AddTask(worker.Task{Name: ev.Type, Payload: ev}); err != nil {
		a.metrics.RecordPublish(ev.Type, metrics.OutcomeRejected)
		return err
	}
	return nil
}

// Stop 等待队列中的事件投递完毕
func (a *AsyncPublisher) Stop(ctx context.Context) error {
	return a.pool.Stop(ctx)
}
