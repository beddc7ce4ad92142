package service

import (
	"context"
	"time"

	"github.com/d60-Lab/gymfeed/internal/model"
)

type ExerciseRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ExerciseView struct {
	Exercise ExerciseRef        `json:"exercise"`
	Sets     []model.WorkoutSet `json:"sets"`
}

// WorkoutView 对外的训练记录，作者与动作标题在读取时拼装
type WorkoutView struct {
	ID        string         `json:"id"`
	User      UserSummary    `json:"user"`
	Title     string         `json:"title"`
	StartTime time.Time      `json:"startTime"`
	Duration  int            `json:"duration"`
	Exercises []ExerciseView `json:"exercises"`
	Likes     []string       `json:"likes"`
	CreatedAt time.Time      `json:"createdAt"`
}

type CommentView struct {
	ID        string      `json:"id"`
	WorkoutID string      `json:"workout"`
	User      UserSummary `json:"user"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

// assembleWorkouts 把作者快照、动作标题、点赞成员拼到每条记录上，保持输入顺序
func (d *Directory) assembleWorkouts(ctx context.Context, rows []*model.Workout, likes map[string][]string) ([]WorkoutView, error) {
	out := make([]WorkoutView, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ownerIDs := make([]string, 0, len(rows))
	var exerciseIDs []string
	for _, w := range rows {
		ownerIDs = append(ownerIDs, w.OwnerID)
		for _, e := range w.Exercises {
			exerciseIDs = append(exerciseIDs, e.ExerciseID)
		}
	}
	owners, err := d.Users(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	titles, err := d.ExerciseTitles(ctx, exerciseIDs)
	if err != nil {
		return nil, err
	}

	for _, w := range rows {
		owner, ok := owners[w.OwnerID]
		if !ok {
			owner = UserSummary{ID: w.OwnerID}
		}
		exercises := make([]ExerciseView, 0, len(w.Exercises))
		for _, e := range w.Exercises {
			sets := e.Sets
			if sets == nil {
				sets = []model.WorkoutSet{}
			}
			exercises = append(exercises, ExerciseView{
				Exercise: ExerciseRef{ID: e.ExerciseID, Title: titles[e.ExerciseID]},
				Sets:     sets,
			})
		}
		liked := likes[w.ID]
		if liked == nil {
			liked = []string{}
		}
		out = append(out, WorkoutView{
			ID:        w.ID,
			User:      owner,
			Title:     w.Title,
			StartTime: w.StartTime,
			Duration:  w.Duration,
			Exercises: exercises,
			Likes:     liked,
			CreatedAt: w.CreatedAt,
		})
	}
	return out, nil
}

func (d *Directory) assembleWorkout(ctx context.Context, w *model.Workout, likes []string) (*WorkoutView, error) {
	views, err := d.assembleWorkouts(ctx, []*model.Workout{w}, map[string][]string{w.ID: likes})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (d *Directory) assembleComments(ctx context.Context, rows []*model.Comment) ([]CommentView, error) {
	out := make([]CommentView, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]string, len(rows))
	for i, c := range rows {
		ids[i] = c.AuthorID
	}
	authors, err := d.Users(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range rows {
		author, ok := authors[c.AuthorID]
		if !ok {
			author = UserSummary{ID: c.AuthorID}
		}
		out = append(out, CommentView{ID: c.ID, WorkoutID: c.WorkoutID, User: author, Content: c.Content, CreatedAt: c.CreatedAt})
	}
	return out, nil
}

// summaries 按给定 id 顺序返回快照，已删除的用户被跳过
func (d *Directory) summaries(ctx context.Context, ids []string) ([]UserSummary, error) {
	found, err := d.Users(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]UserSummary, 0, len(ids))
	for _, id := range ids {
		if s, ok := found[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}
