package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher 异步投递事件：队列满时丢弃，至多投递一次
type Dispatcher struct {
	notifier Notifier
	logger   *zap.Logger
	queue    chan *Event
	timeout  time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher 创建并启动 worker
func NewDispatcher(notifier Notifier, queueSize int, logger *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	d := &Dispatcher{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan *Event, queueSize),
		timeout:  10 * time.Second,
	}

	d.wg.Add(1)
	go d.run()
	return d
}

// Publish 不阻塞调用方
func (d *Dispatcher) Publish(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("通知已关闭，丢弃事件", zap.String("type", string(event.Type)))
		return
	}

	select {
	case d.queue <- event:
	default:
		d.logger.Warn("通知队列已满，丢弃事件",
			zap.String("type", string(event.Type)),
			zap.String("organization_id", event.OrganizationID))
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event *Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("通知发送 panic", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.notifier.Send(ctx, event); err != nil {
		d.logger.Warn("通知发送失败",
			zap.String("type", string(event.Type)),
			zap.String("organization_id", event.OrganizationID),
			zap.Error(err))
	}
}

// Close 停止接收并等待队列中的事件发送完
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
