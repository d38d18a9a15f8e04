package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"Lee_Forum/internal/config"
	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg"
	"Lee_Forum/internal/pkg/logger"
	"Lee_Forum/internal/repository/rdb"
)

// MaxOutboxRetry 失败超过这个次数的事件不再投递，留在表里人工处理
const MaxOutboxRetry = 10

type Sender func(ctx context.Context, ob *model.ModerationOutbox) error

// OutboxRelayer 把已提交的审计事件异步投递到 kafka，至少一次
type OutboxRelayer struct {
	store     *rdb.Store
	log       *logger.Logger
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(store *rdb.Store, cfg config.OutboxConfig, sender Sender, log *logger.Logger) *OutboxRelayer {
	r := &OutboxRelayer{
		store:     store,
		log:       log,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		sender:    sender,
	}
	if r.batchSize <= 0 {
		r.batchSize = 200
	}
	if r.interval <= 0 {
		r.interval = time.Second
	}
	return r
}

// Run outbox启动器
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce 按 id 顺序投递一批，返回成功条数
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	repo := r.store.Read(ctx).Outbox
	rows, err := repo.ListPending(r.batchSize, MaxOutboxRetry)
	if err != nil {
		r.log.With(ctx).Error("outbox query failed", zap.Error(err))
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err := r.sender(ctx, &ob); err != nil {
			r.log.With(ctx).Warn("outbox send failed", zap.Uint64("outbox_id", ob.ID), zap.Int("retry", ob.Retry), zap.Error(err))
			if err := repo.MarkFailed(ob.ID); err != nil {
				r.log.With(ctx).Error("outbox mark failed", zap.Uint64("outbox_id", ob.ID), zap.Error(err))
			}
			continue
		}
		if err := repo.MarkSent(ob.ID); err != nil {
			r.log.With(ctx).Error("outbox mark sent", zap.Uint64("outbox_id", ob.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

// KafkaSender 以社区 id 为 key，同一社区的事件落在同一分区
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.ModerationOutbox) error {
		return p.Publish(ctx, pkg.Event{
			Key:   pkg.PartitionKey(ob.CommunityID),
			Value: ob.Payload,
			Headers: map[string]string{
				"event_id":    ob.EventID,
				"action_type": ob.ActionType,
			},
		})
	}
}

// LogSender 未配置 kafka 时使用，只打日志
func LogSender(log *logger.Logger) Sender {
	return func(ctx context.Context, ob *model.ModerationOutbox) error {
		log.With(ctx).Info("outbox event",
			zap.String("event_id", ob.EventID),
			zap.String("action_type", ob.ActionType),
			zap.Uint64("community_id", ob.CommunityID),
			zap.ByteString("payload", ob.Payload),
		)
		return nil
	}
}
