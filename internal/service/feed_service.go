package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/d60-Lab/gymfeed/internal/model"
	"github.com/d60-Lab/gymfeed/pkg/database"
)

type FeedPage struct {
	Workouts    []WorkoutView `json:"workouts"`
	CurrentPage int           `json:"currentPage"`
	HasMore     bool          `json:"hasMore"`
	TotalPages  int           `json:"totalPages"`
}

// FeedService 拉模式时间线：自己 + 关注的人，按创建时间倒序分页
type FeedService interface {
	GetFeed(ctx context.Context, viewerID string, page, pageSize int) (*FeedPage, error)
}

type feedService struct {
	stores          *Stores
	dir             *Directory
	following       *FollowingCache
	defaultPageSize int
	maxPageSize     int
}

func NewFeedService(stores *Stores, dir *Directory, following *FollowingCache, defaultPageSize, maxPageSize int) FeedService {
	if defaultPageSize <= 0 {
		defaultPageSize = 5
	}
	if maxPageSize < defaultPageSize {
		maxPageSize = defaultPageSize
	}
	return &feedService{
		stores:          stores,
		dir:             dir,
		following:       following,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

func (s *feedService) GetFeed(ctx context.Context, viewerID string, page, pageSize int) (fp *FeedPage, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "feed.GetFeed", trace.WithAttributes(attribute.String("viewer.id", viewerID)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		feedBuildDuration.Observe(time.Since(start).Seconds())
	}()

	if viewerID == "" {
		return nil, ErrUnauthenticated
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	following, err := s.following.IDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	visible := dedupe(append([]string{viewerID}, following...))

	var (
		total int64
		rows  []*model.Workout
		likes map[string][]string
	)
	// count 与分页在同一快照内完成，避免并发写入造成页间重复/遗漏
	err = database.SnapshotTx(ctx, s.stores.DB, func(tx *gorm.DB) error {
		workouts := s.stores.Workouts.WithTx(tx)
		var err error
		if total, err = workouts.CountByOwners(ctx, visible); err != nil {
			return err
		}
		// 超出末页直接返回空页，page 很大时 (page-1)*pageSize 会溢出
		if int64(page-1) >= pageCount(total, pageSize) {
			return nil
		}
		if rows, err = workouts.PageByOwners(ctx, visible, (page-1)*pageSize, pageSize); err != nil {
			return err
		}
		ids := make([]string, len(rows))
		for i, w := range rows {
			ids[i] = w.ID
		}
		likes, err = s.stores.Likes.WithTx(tx).ListByWorkouts(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	views, err := s.dir.assembleWorkouts(ctx, rows, likes)
	if err != nil {
		return nil, err
	}
	totalPages := pageCount(total, pageSize)
	span.SetAttributes(
		attribute.Int("feed.page", page),
		attribute.Int("feed.visible_authors", len(visible)),
		attribute.Int64("feed.total", total),
	)
	return &FeedPage{
		Workouts:    views,
		CurrentPage: page,
		HasMore:     int64(page) < totalPages,
		TotalPages:  int(totalPages),
	}, nil
}

func pageCount(total int64, pageSize int) int64 {
	return (total + int64(pageSize) - 1) / int64(pageSize)
}
