package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gymfeed/internal/events"
	"github.com/d60-Lab/gymfeed/internal/model"
)

func strPtr(s string) *string { return &s }

func TestAdminUpdateUser(t *testing.T) {
	f := newFixture(t)
	a, b := f.user("ann"), f.user("bob")
	f.workout(a.ID, "legs")

	// 先把快照读进缓存
	_, err := f.workouts.ListByOwner(f.ctx, a.ID)
	require.NoError(t, err)
	require.True(t, f.mr.Exists(userKey(a.ID)))

	u, err := f.admin.UpdateUser(f.ctx, a.ID, AdminUpdateInput{Username: strPtr("annie"), Role: strPtr(model.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, "annie", u.Username)
	assert.True(t, u.IsAdmin())
	assert.False(t, f.mr.Exists(userKey(a.ID)))

	list, err := f.workouts.ListByOwner(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "annie", list[0].User.Username)

	_, err = f.admin.UpdateUser(f.ctx, b.ID, AdminUpdateInput{Username: strPtr("annie")})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = f.admin.UpdateUser(f.ctx, b.ID, AdminUpdateInput{Role: strPtr("root")})
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, err = f.admin.UpdateUser(f.ctx, uuid.NewString(), AdminUpdateInput{Username: strPtr("ghost")})
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = f.admin.UpdateUser(f.ctx, "bad", AdminUpdateInput{})
	assert.ErrorIs(t, err, ErrInvalidID)

	same, err := f.admin.UpdateUser(f.ctx, b.ID, AdminUpdateInput{})
	require.NoError(t, err)
	assert.Equal(t, "bob", same.Username)

	users, err := f.admin.ListUsers(f.ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestAdminDeleteUserCascades(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.user("ann"), f.user("bob"), f.user("cat")
	f.follow(a.ID, b.ID)
	f.follow(b.ID, c.ID)
	wb := f.workout(b.ID, "bob legs")
	wc := f.workout(c.ID, "cat arms")

	_, err := f.comments.AddComment(f.ctx, a.ID, wb.ID, "nice")
	require.NoError(t, err)
	_, err = f.comments.AddComment(f.ctx, b.ID, wc.ID, "wow")
	require.NoError(t, err)
	_, _, err = f.likes.ToggleLike(f.ctx, wc.ID, b.ID)
	require.NoError(t, err)

	page, err := f.feed.GetFeed(f.ctx, a.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{wb.ID}, ids(page.Workouts))

	require.NoError(t, f.admin.DeleteUser(f.ctx, b.ID))
	assert.ErrorIs(t, f.admin.DeleteUser(f.ctx, b.ID), ErrUserNotFound)
	assert.EqualValues(t, 1, f.outboxCount(events.UserDeleted))

	page, err = f.feed.GetFeed(f.ctx, a.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Workouts)

	following, err := f.follows.ListFollowing(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, following)

	got, err := f.workouts.GetByID(f.ctx, wc.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)

	comments, err := f.comments.ListComments(f.ctx, wc.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	var n int64
	require.NoError(t, f.stores.DB.Model(&model.Comment{}).Count(&n).Error)
	assert.Zero(t, n)
}
