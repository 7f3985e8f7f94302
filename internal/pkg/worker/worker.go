package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrPoolClosed 任务池已关闭
var ErrPoolClosed = errors.New("worker pool closed")

// Task 异步任务
type Task struct {
	Name    string
	Payload interface{}
	Retry   int // 重试次数
}

// Handler 任务处理函数
type Handler func(ctx context.Context, task Task) error

type WorkerPool struct {
	TaskQueue  chan Task
	RetryQueue chan Task // 重试队列
	WorkerNum  int
	MaxRetry   int // 最大重试次数
	Backoff    time.Duration

	handler Handler
	log     *zap.Logger

	mu      sync.RWMutex
	closed  bool
	workers sync.WaitGroup
	retries sync.WaitGroup
	pending sync.WaitGroup
}

func NewWorkerPool(handler Handler, workerNum int, bufferSize int, log *zap.Logger) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize <= 1 {
		bufferSize = 2
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WorkerPool{
		TaskQueue:  make(chan Task, bufferSize),
		RetryQueue: make(chan Task, bufferSize/2),
		WorkerNum:  workerNum,
		MaxRetry:   3, // 最多重试3次
		Backoff:    time.Second,
		handler:    handler,
		log:        log,
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		p.workers.Add(1)
		go p.worker(i)
	}
	// 启动重试处理协程
	p.retries.Add(1)
	go p.retryWorker()
	p.log.Info("worker pool started", zap.Int("workers", p.WorkerNum))
}

func (p *WorkerPool) worker(id int) {
	defer p.workers.Done()
	for task := range p.TaskQueue {
		p.process(id, task)
	}
}

func (p *WorkerPool) process(id int, task Task) {
	err := p.handler(context.Background(), task)
	if err == nil {
		p.pending.Done()
		return
	}

	p.log.Warn("task failed",
		zap.Int("worker", id),
		zap.String("task", task.Name),
		zap.Int("retry", task.Retry),
		zap.Error(err))

	// 如果未达到最大重试次数，加入重试队列
	if task.Retry < p.MaxRetry {
		task.Retry++
		select {
		case p.RetryQueue <- task:
			return
		default:
			p.log.Warn("retry queue full", zap.String("task", task.Name))
		}
	}
	p.logFailedTask(task, err)
	p.pending.Done()
}

func (p *WorkerPool) retryWorker() {
	defer p.retries.Done()
	for task := range p.RetryQueue {
		// 延迟重试，避免立即重试
		time.Sleep(time.Duration(task.Retry) * p.Backoff)

		if err := p.handler(context.Background(), task); err != nil {
			if task.Retry < p.MaxRetry {
				task.Retry++
				select {
				case p.RetryQueue <- task:
					continue
				default:
				}
			}
			p.logFailedTask(task, err)
		}
		p.pending.Done()
	}
}

func (p *WorkerPool) logFailedTask(task Task, err error) {
	p.log.Error("task dropped after retries",
		zap.String("task", task.Name),
		zap.Int("retry", task.Retry),
		zap.Any("payload", task.Payload),
		zap.Error(err))
}

// AddTask 入队，队列已满时丢弃并记录
func (p *WorkerPool) AddTask(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	p.pending.Add(1)
	select {
	case p.TaskQueue <- task:
		return nil
	default:
		p.pending.Done()
		p.logFailedTask(task, errors.New("task queue full"))
		return errors.New("task queue full")
	}
}

// Stop 停止接收任务，等待已入队任务（含重试）处理完毕
func (p *WorkerPool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.pending.Wait()
		close(p.TaskQueue)
		p.workers.Wait()
		close(p.RetryQueue)
		p.retries.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
