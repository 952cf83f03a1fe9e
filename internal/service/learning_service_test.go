package service

import (
	"context"
	"elearning_backend/internal/model"
	"elearning_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetModules_AnonymousAllLockedWithoutStats(t *testing.T) {
	env := newTestEnv(t)
	seedCourse(t, env.db)

	views, stats, err := env.learning.GetModules(context.Background(), 0)
	require.NoError(t, err)

	assert.Nil(t, stats)
	require.Len(t, views, 2)
	for _, view := range views {
		assert.False(t, view.IsUnlocked)
	}
}

func TestGetModules_StaleTokenUserRejected(t *testing.T) {
	env := newTestEnv(t)
	seedCourse(t, env.db)

	// 令牌里的用户 ID 在库里已不存在（账号被删除），
	// 必须显式拒绝，而不是降级成匿名的全锁定视图
	_, _, err := env.learning.GetModules(context.Background(), 4242)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestGetModules_UnverifiedUserRejected(t *testing.T) {
	env := newTestEnv(t)
	seedCourse(t, env.db)

	unverified := model.User{
		Name:     "Nouveau",
		Email:    "nouveau@example.com",
		Password: "x",
		Role:     model.Student,
	}
	require.NoError(t, env.db.Create(&unverified).Error)

	_, _, err := env.learning.GetModules(context.Background(), unverified.ID)
	assert.ErrorIs(t, err, util.ErrEmailNotVerified)
}

func TestGetModules_VerifiedUserGetsStats(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env.db)

	_, err := env.progress.ReportPlayback(testUserID, course.contentA, 60)
	require.NoError(t, err)

	views, stats, err := env.learning.GetModules(context.Background(), testUserID)
	require.NoError(t, err)

	require.NotNil(t, stats)
	assert.Equal(t, int64(2), stats.TotalModules)
	assert.Equal(t, int64(60), stats.TotalWatchTime)

	require.Len(t, views, 2)
	assert.True(t, views[0].IsUnlocked)
	assert.False(t, views[1].IsUnlocked)
	assert.True(t, views[0].Chapters[0].Contents[0].IsCompleted)
}
