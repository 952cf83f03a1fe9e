package service

import (
	"elearning_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func module(id uint, order int, chapters ...model.Chapter) model.Module {
	m := model.Module{Order: order, Chapters: chapters}
	m.ID = id
	return m
}

func chapter(id uint, order int, contents ...model.Content) model.Chapter {
	c := model.Chapter{Order: order, Contents: contents}
	c.ID = id
	return c
}

func content(id uint, order, duration int) model.Content {
	c := model.Content{Order: order, Duration: duration}
	c.ID = id
	return c
}

func completedContent(id uint, watchTime int) model.ContentProgress {
	return model.ContentProgress{ContentID: id, WatchTime: watchTime, IsCompleted: true}
}

// 两个模块、每模块两章、每章两个内容的标准课程树
func twoModuleTree() []model.Module {
	return []model.Module{
		module(1, 1,
			chapter(10, 1, content(100, 1, 60), content(101, 2, 120)),
			chapter(11, 2, content(102, 1, 60), content(103, 2, 60)),
		),
		module(2, 2,
			chapter(12, 1, content(104, 1, 60)),
		),
	}
}

func emptyProgress() *ProgressSet {
	return &ProgressSet{
		Content:            map[uint]model.ContentProgress{},
		Chapter:            map[uint]model.ChapterProgress{},
		Module:             map[uint]model.ModuleProgress{},
		PassedQuizChapters: map[uint]bool{},
	}
}

func TestEvaluateHierarchy_AnonymousEverythingLocked(t *testing.T) {
	views := EvaluateHierarchy(twoModuleTree(), nil)
	require.Len(t, views, 2)

	for _, m := range views {
		assert.False(t, m.IsUnlocked, "module %d", m.ID)
		assert.False(t, m.IsCompleted)
		for _, ch := range m.Chapters {
			assert.False(t, ch.IsUnlocked, "chapter %d", ch.ID)
			for _, ct := range ch.Contents {
				assert.False(t, ct.IsUnlocked, "content %d", ct.ID)
			}
		}
	}
}

func TestEvaluateHierarchy_FreshUserOnlyFirstPathUnlocked(t *testing.T) {
	views := EvaluateHierarchy(twoModuleTree(), emptyProgress())

	first := views[0]
	assert.True(t, first.IsUnlocked)
	assert.True(t, first.Chapters[0].IsUnlocked)
	assert.True(t, first.Chapters[0].Contents[0].IsUnlocked)

	// 第一个内容未完成：同章第二个内容锁定
	assert.False(t, first.Chapters[0].Contents[1].IsUnlocked)
	// 第一章未完成：第二章锁定
	assert.False(t, first.Chapters[1].IsUnlocked)
	// 第一模块未完成：第二模块锁定
	assert.False(t, views[1].IsUnlocked)
}

func TestEvaluateHierarchy_SiblingUnlockFollowsCompletion(t *testing.T) {
	progress := emptyProgress()
	progress.Content[100] = completedContent(100, 60)

	views := EvaluateHierarchy(twoModuleTree(), progress)
	first := views[0].Chapters[0]

	assert.True(t, first.Contents[0].IsCompleted)
	assert.True(t, first.Contents[1].IsUnlocked)
	assert.False(t, first.AllContentsCompleted)
}

func TestEvaluateHierarchy_ChapterUnlockRequiresPrevChapterCompletion(t *testing.T) {
	progress := emptyProgress()
	progress.Content[100] = completedContent(100, 60)
	progress.Content[101] = completedContent(101, 120)

	// 内容全完成但章节行尚未写入（比如测验未通过）：第二章仍锁定
	views := EvaluateHierarchy(twoModuleTree(), progress)
	assert.True(t, views[0].Chapters[0].AllContentsCompleted)
	assert.False(t, views[0].Chapters[1].IsUnlocked)

	progress.Chapter[10] = model.ChapterProgress{ChapterID: 10, IsCompleted: true}
	views = EvaluateHierarchy(twoModuleTree(), progress)
	assert.True(t, views[0].Chapters[1].IsUnlocked)
}

func TestEvaluateHierarchy_ModuleUnlockRequiresPrevModuleCompletion(t *testing.T) {
	progress := emptyProgress()
	progress.Module[1] = model.ModuleProgress{ModuleID: 1, IsCompleted: true}

	views := EvaluateHierarchy(twoModuleTree(), progress)
	assert.True(t, views[1].IsUnlocked)
	assert.True(t, views[1].Chapters[0].IsUnlocked)
	assert.True(t, views[1].Chapters[0].Contents[0].IsUnlocked)
}

func TestEvaluateHierarchy_EmptyContainersNeverComplete(t *testing.T) {
	tree := []model.Module{
		module(1, 1, chapter(10, 1)), // 章节没有内容
		module(2, 2),                 // 模块没有章节
	}

	views := EvaluateHierarchy(tree, emptyProgress())
	assert.False(t, views[0].Chapters[0].AllContentsCompleted)
	assert.False(t, views[0].AllChaptersCompleted)
	assert.False(t, views[1].AllChaptersCompleted)
	assert.Equal(t, 0, views[0].Progress)
}

func TestEvaluateHierarchy_QuizGate(t *testing.T) {
	passing := 70
	quiz := &model.Quiz{ChapterID: 10, PassingScore: passing}
	quiz.ID = 50

	ch := chapter(10, 1, content(100, 1, 60))
	ch.Quiz = quiz
	tree := []model.Module{module(1, 1, ch)}

	progress := emptyProgress()
	progress.Content[100] = completedContent(100, 60)

	views := EvaluateHierarchy(tree, progress)
	require.NotNil(t, views[0].Chapters[0].Quiz)
	assert.True(t, views[0].Chapters[0].Quiz.IsAccessible)
	assert.False(t, views[0].Chapters[0].Quiz.IsPassed)
	assert.False(t, views[0].Chapters[0].QuizPassed)

	progress.PassedQuizChapters[10] = true
	views = EvaluateHierarchy(tree, progress)
	assert.True(t, views[0].Chapters[0].Quiz.IsPassed)
	assert.True(t, views[0].Chapters[0].QuizPassed)
}

func TestEvaluateHierarchy_ModuleProgressPercentRoundsHalfUp(t *testing.T) {
	// 3 个内容完成 1 个 = 33.33% → 33；完成 2 个 = 66.67% → 67
	tree := []model.Module{
		module(1, 1, chapter(10, 1, content(100, 1, 60), content(101, 2, 60), content(102, 3, 60))),
	}

	progress := emptyProgress()
	progress.Content[100] = completedContent(100, 60)
	views := EvaluateHierarchy(tree, progress)
	assert.Equal(t, 33, views[0].Progress)

	progress.Content[101] = completedContent(101, 60)
	views = EvaluateHierarchy(tree, progress)
	assert.Equal(t, 67, views[0].Progress)
}

func TestContentUnlocked(t *testing.T) {
	progress := emptyProgress()
	tree := twoModuleTree()

	assert.True(t, ContentUnlocked(tree, progress, 100))
	assert.False(t, ContentUnlocked(tree, progress, 101))
	assert.False(t, ContentUnlocked(tree, progress, 104))
	assert.False(t, ContentUnlocked(tree, progress, 999))

	progress.Content[100] = completedContent(100, 60)
	assert.True(t, ContentUnlocked(tree, progress, 101))
}

func TestWatchPercent(t *testing.T) {
	tests := []struct {
		watchTime int
		duration  int
		want      int
	}{
		{0, 120, 0},
		{60, 120, 50},
		{120, 120, 100},
		{500, 120, 100}, // 超长上报封顶
		{1, 3, 33},
		{2, 3, 67},
		{0, 0, 0}, // 非法时长兜底
	}

	for _, tc := range tests {
		got := watchPercent(tc.watchTime, tc.duration)
		if got != tc.want {
			t.Errorf("watchPercent(%d, %d) = %d, want %d", tc.watchTime, tc.duration, got, tc.want)
		}
	}
}

func TestRoundPercent(t *testing.T) {
	assert.Equal(t, 67, roundPercent(66.67))
	assert.Equal(t, 33, roundPercent(33.33))
	assert.Equal(t, 50, roundPercent(49.5)) // .5 进位
	assert.Equal(t, 100, roundPercent(100))
}
