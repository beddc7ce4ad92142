package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/gymfeed/internal/events"
	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/internal/repository"
	"github.com/d60-Lab/gymfeed/pkg/logger"
)

// OutboxRelay 轮询 outbox 并把事件投递到消息总线
type OutboxRelay struct {
	outbox       repository.OutboxRepository
	writer       events.Writer
	topic        string
	workers      int
	batchSize    int
	pollInterval time.Duration
	maxAttempts  int
	staleAfter   time.Duration
}

func NewOutboxRelay(outbox repository.OutboxRepository, writer events.Writer, topic string, workers, batchSize int, pollInterval time.Duration) *OutboxRelay {
	if workers <= 0 {
		workers = 2
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &OutboxRelay{
		outbox:       outbox,
		writer:       writer,
		topic:        topic,
		workers:      workers,
		batchSize:    batchSize,
		pollInterval: pollInterval,
		maxAttempts:  10,
		staleAfter:   time.Minute,
	}
}

// Start 启动若干 worker 轮询；返回的函数停止 worker 并等待其退出
func (r *OutboxRelay) Start() func(context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.loop(ctx)
		}()
	}
	return func(stopCtx context.Context) error {
		cancel()
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
			return nil
		case <-stopCtx.Done():
			return stopCtx.Err()
		}
	}
}

func (r *OutboxRelay) loop(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.processOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("outbox relay batch failed", zap.Error(err))
			}
		}
	}
}

// processOnce 领取一批事件并投递，返回成功投递的条数
func (r *OutboxRelay) processOnce(ctx context.Context) (int, error) {
	batch, err := r.outbox.Claim(ctx, r.batchSize, r.staleAfter)
	if err != nil || len(batch) == 0 {
		return 0, err
	}

	msgs := make([]kafka.Message, 0, len(batch))
	ready := make([]*model.Outbox, 0, len(batch))
	for _, o := range batch {
		m, err := events.ToMessage(o)
		if err != nil {
			r.fail(ctx, o, err)
			continue
		}
		msgs = append(msgs, m)
		ready = append(ready, o)
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	if err := r.writer.WriteMessages(ctx, r.topic, msgs...); err != nil {
		for _, o := range ready {
			r.fail(ctx, o, err)
		}
		return 0, err
	}

	delivered := 0
	for _, o := range ready {
		if err := r.outbox.MarkDone(ctx, o.ID); err != nil {
			logger.Warn("outbox mark done failed", zap.String("id", o.ID), zap.Error(err))
			continue
		}
		delivered++
		outboxDelivered.Inc()
		if !o.CreatedAt.IsZero() {
			outboxLatency.Observe(time.Since(o.CreatedAt).Seconds())
		}
	}
	return delivered, nil
}

func (r *OutboxRelay) fail(ctx context.Context, o *model.Outbox, cause error) {
	outboxFailed.Inc()
	if err := r.outbox.MarkFailed(ctx, o.ID, cause, r.maxAttempts); err != nil {
		logger.Warn("outbox mark failed failed", zap.String("id", o.ID), zap.Error(err))
	}
}
