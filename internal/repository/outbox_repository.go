package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/pkg/database"
)

type OutboxRepository interface {
	WithTx(tx *gorm.DB) OutboxRepository
	Add(ctx context.Context, o *model.Outbox) error
	// Claim 领取一批待投递事件并标记为 processing；处理中超过 staleAfter 的视为待投递
	Claim(ctx context.Context, limit int, staleAfter time.Duration) ([]*model.Outbox, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, cause error, maxAttempts int) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type outboxRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *outboxRepository) WithTx(tx *gorm.DB) OutboxRepository {
	return &outboxRepository{db: tx, now: r.now}
}

func (r *outboxRepository) Add(ctx context.Context, o *model.Outbox) error {
	if o.Status == "" {
		o.Status = model.OutboxPending
	}
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *outboxRepository) Claim(ctx context.Context, limit int, staleAfter time.Duration) ([]*model.Outbox, error) {
	var batch []*model.Outbox
	now := r.now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("status = ?", model.OutboxPending)
		if staleAfter > 0 {
			q = tx.Where("status = ? OR (status = ? AND claimed_at < ?)",
				model.OutboxPending, model.OutboxProcessing, now.Add(-staleAfter))
		}
		q = q.Order("created_at, id").Limit(limit)
		if database.IsPostgres(tx) {
			// 多 worker 并行领取互不阻塞
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		if err := q.Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]string, len(batch))
		for i, b := range batch {
			ids[i] = b.ID
		}
		return tx.Model(&model.Outbox{}).
			Where("id IN ?", ids).
			Updates(map[string]any{"status": model.OutboxProcessing, "claimed_at": now}).Error
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *outboxRepository) MarkDone(ctx context.Context, id string) error {
	now := r.now()
	return r.db.WithContext(ctx).Model(&model.Outbox{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxDone, "processed_at": now, "last_error": ""}).Error
}

// MarkFailed 失败次数未到上限时放回 pending 等待下一轮
func (r *outboxRepository) MarkFailed(ctx context.Context, id string, cause error, maxAttempts int) error {
	var o model.Outbox
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return translate(err)
	}
	status := model.OutboxPending
	if maxAttempts > 0 && o.Attempts+1 >= maxAttempts {
		status = model.OutboxFailed
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return r.db.WithContext(ctx).Model(&model.Outbox{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "attempts": o.Attempts + 1, "last_error": msg}).Error
}

func (r *outboxRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Outbox{}).Where("status = ?", status).Count(&cnt).Error
	return cnt, err
}
