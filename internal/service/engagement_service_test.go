package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gymfeed/internal/events"
	"github.com/d60-Lab/gymfeed/internal/model"
)

func TestToggleLikeIsInvolution(t *testing.T) {
	f := newFixture(t)
	a, b := f.user("ann"), f.user("bob")
	w := f.workout(a.ID, "legs")

	view, liked, err := f.likes.ToggleLike(f.ctx, w.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, []string{b.ID}, view.Likes)
	assert.Equal(t, "ann", view.User.Username)

	view, liked, err = f.likes.ToggleLike(f.ctx, w.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.NotNil(t, view.Likes)
	assert.Empty(t, view.Likes)

	assert.EqualValues(t, 1, f.outboxCount(events.WorkoutLiked))
	assert.EqualValues(t, 1, f.outboxCount(events.WorkoutUnliked))
}

func TestToggleLikeOwnWorkoutAndOthersUntouched(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.user("ann"), f.user("bob"), f.user("cat")
	w := f.workout(a.ID, "legs")

	_, _, err := f.likes.ToggleLike(f.ctx, w.ID, a.ID)
	require.NoError(t, err)
	_, _, err = f.likes.ToggleLike(f.ctx, w.ID, c.ID)
	require.NoError(t, err)
	_, _, err = f.likes.ToggleLike(f.ctx, w.ID, b.ID)
	require.NoError(t, err)

	view, liked, err := f.likes.ToggleLike(f.ctx, w.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.ElementsMatch(t, []string{a.ID, c.ID}, view.Likes)
}

func TestToggleLikeErrors(t *testing.T) {
	f := newFixture(t)
	a := f.user("ann")

	_, _, err := f.likes.ToggleLike(f.ctx, uuid.NewString(), a.ID)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)

	_, _, err = f.likes.ToggleLike(f.ctx, "nope", a.ID)
	assert.ErrorIs(t, err, ErrInvalidID)

	w := f.workout(a.ID, "legs")
	_, _, err = f.likes.ToggleLike(f.ctx, w.ID, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestConcurrentLikesFromDistinctUsersAllLand(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	w := f.workout(owner.ID, "legs")

	var likers []string
	for i := 0; i < 12; i++ {
		likers = append(likers, f.user(fmt.Sprintf("fan%02d", i)).ID)
	}

	var wg sync.WaitGroup
	for _, uid := range likers {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, liked, err := f.likes.ToggleLike(f.ctx, w.ID, uid)
			assert.NoError(t, err)
			assert.True(t, liked)
		}(uid)
	}
	wg.Wait()

	got, err := f.workouts.GetByID(f.ctx, w.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, likers, got.Likes)

	var rows int64
	require.NoError(t, f.stores.DB.Model(&model.WorkoutLike{}).Where("workout_id = ?", w.ID).Count(&rows).Error)
	assert.EqualValues(t, len(likers), rows)
}

func TestDuplicateLikeScenario(t *testing.T) {
	f := newFixture(t)
	a, b := f.user("ann"), f.user("bob")
	w := f.workout(b.ID, "pull")

	_, liked, err := f.likes.ToggleLike(f.ctx, w.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	view, liked, err := f.likes.ToggleLike(f.ctx, w.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.NotContains(t, view.Likes, a.ID)

	got, err := f.workouts.GetByID(f.ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)

	view, liked, err = f.likes.ToggleLike(f.ctx, w.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, []string{a.ID}, view.Likes)
	assert.Len(t, view.Likes, 1)
}
