package service

import (
	"elearning_backend/internal/model"
	"elearning_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completeChapter1Contents 完成章节1的两个内容，打开测验门禁
func completeChapter1Contents(t *testing.T, env *testEnv, course *seededCourse) {
	t.Helper()
	_, err := env.progress.ReportPlayback(testUserID, course.contentA, 60)
	require.NoError(t, err)
	_, err = env.progress.ReportPlayback(testUserID, course.contentB, 120)
	require.NoError(t, err)
}

func TestGetQuiz_LockedUntilContentsCompleted(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env.db)

	_, _, err := env.quiz.GetQuiz(testUserID, course.quiz1)
	assert.ErrorIs(t, err, util.ErrQuizLocked)

	_, err2 := env.progress.ReportPlayback(testUserID, course.contentA, 60)
	require.NoError(t, err2)

	// 只完成一个内容还不够
	_, _, err = env.quiz.GetQuiz(testUserID, course.quiz1)
	assert.ErrorIs(t, err, util.ErrQuizLocked)
}

func TestGetQuiz_RedactsCorrectAnswers(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env.db)
	completeChapter1Contents(t, env, course)

	detail, summary, err := env.quiz.GetQuiz(testUserID, course.quiz1)
	require.NoError(t, err)
	require.Nil(t, summary)

	assert.Equal(t, course.chapter1, detail.ChapterID)
	assert.Equal(t, 70, detail.PassingScore)
	assert.Equal(t, 30, detail.TimeLimit)
	require.Len(t, detail.Questions, 2)

	// 单选题下发选项，判断题不带任何答案信息
	assert.Equal(t, []string{"3", "4", "5", "6"}, detail.Questions[0].Options)
	assert.Empty(t, detail.Questions[1].Options)

	// 面包屑
	assert.Equal(t, course.chapter1, detail.Chapter.ID)
	assert.Equal(t, course.module1, detail.Chapter.Module.ID)
}

func TestQuiz_UnverifiedUserRejected(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env.db)

	unverified := model.User{Name: "Invité", Email: "invite@example.com", Password: "x", Role: model.Student}
	require.NoError(t, env.db.Create(&unverified).Error)

	_, _, err := env.quiz.GetQuiz(unverified.ID, course.quiz1)
	assert.ErrorIs(t, err, util.ErrEmailNotVerified)

	_, err = env.quiz.SubmitQuiz(unverified.ID, course.quiz1, map[uint]model.Answer{
		1: {Index: intPtr(1)},
	})
	assert.ErrorIs(t, err, util.ErrEmailNotVerified)
}

func TestGetQuiz_UnknownQuiz(t *testing.T) {
	env := newTestEnv(t)
	seedCourse(t, env.db)

	_, _, err := env.quiz.GetQuiz(testUserID, 9999)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestSubmitQuiz_EmptyAnswersRejected(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env.db)
	completeChapter1Contents(t, env, course)

	_, err := env.quiz.SubmitQuiz(testUserID, course.quiz1, nil)
	assert.ErrorIs(t, err, util.ErrInvalidAnswers)
}

func TestSubmitQuiz_LockedBeforeContentsCompleted(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env.db)

	_, err := env.quiz.SubmitQuiz(testUserID, course.quiz1, map[uint]model.Answer{
		1: {Index: intPtr(1)},
	})
	assert.ErrorIs(t, err, util.ErrQuizLocked)
}

func TestSubmitQuiz_ScoringAndFailure(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env.db)
	completeChapter1Contents(t, env, course)

	// 一题对一题错：50 分，低于 70 不通过
	result, err := env.quiz.SubmitQuiz(testUserID, course.quiz1, map[uint]model.Answer{
		1: {Index: intPtr(1)},
		2: {Bool: boolPtr(false)},
	})
	require.NoError(t, err)

	assert.Equal(t, 50, result.Score)
	assert.False(t, result.Passed)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 2, result.TotalQuestions)

	// 判分明细揭示正确答案
	require.Len(t, result.Results, 2)
	assert.True(t, result.Results[0].IsCorrect)
	assert.False(t, result.Results[1].IsCorrect)
	require.NotNil(t, result.Results[1].CorrectAnswer.Bool)
	assert.True(t, *result.Results[1].CorrectAnswer.Bool)

	// 未通过：章节保持未完成
	chapterMap, err := env.progressRepo.ChapterCompletionMap(testUserID, []uint{course.chapter1})
	require.NoError(t, err)
	assert.False(t, chapterMap[course.chapter1])
}

func TestSubmitQuiz_MissingAnswerCountsWrong(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env.db)
	completeChapter1Contents(t, env, course)

	// 只答一题：缺失的题按错误计
	result, err := env.quiz.SubmitQuiz(testUserID, course.quiz1, map[uint]model.Answer{
		1: {Index: intPtr(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, 50, result.Score)
	assert.False(t, result.Passed)
}

func TestSubmitQuiz_RetryReplacesFailedResult(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env.db)
	completeChapter1Contents(t, env, course)

	_, err := env.quiz.SubmitQuiz(testUserID, course.quiz1, map[uint]model.Answer{
		1: {Index: intPtr(0)},
		2: {Bool: boolPtr(false)},
	})
	require.NoError(t, err)

	result, err := env.quiz.SubmitQuiz(testUserID, course.quiz1, map[uint]model.Answer{
		1: {Index: intPtr(1)},
		2: {Bool: boolPtr(true)},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)
	assert.True(t, result.Passed)

	// 每个 (用户, 测验) 只留一行
	var count int64
	require.NoError(t, env.db.Model(&model.QuizResult{}).
		Where("user_id = ? AND quiz_id = ?", testUserID, course.quiz1).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// 通过后章节完成
	chapterMap, err := env.progressRepo.ChapterCompletionMap(testUserID, []uint{course.chapter1})
	require.NoError(t, err)
	assert.True(t, chapterMap[course.chapter1])
}

func TestSubmitQuiz_PassedIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env.db)
	completeChapter1Contents(t, env, course)
	passQuiz(t, env, testUserID, course.quiz1)

	_, err := env.quiz.SubmitQuiz(testUserID, course.quiz1, map[uint]model.Answer{
		1: {Index: intPtr(0)},
		2: {Bool: boolPtr(false)},
	})
	assert.ErrorIs(t, err, util.ErrQuizAlreadyPassed)

	// 通过的成绩不被覆盖
	stored, err := env.quizRepo.FindResult(testUserID, course.quiz1)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.Score)
	assert.True(t, stored.Passed)
}

func TestGetQuiz_AfterPassReturnsSummary(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env.db)
	completeChapter1Contents(t, env, course)
	passQuiz(t, env, testUserID, course.quiz1)

	detail, summary, err := env.quiz.GetQuiz(testUserID, course.quiz1)
	assert.ErrorIs(t, err, util.ErrQuizAlreadyPassed)
	assert.Nil(t, detail)
	require.NotNil(t, summary)
	assert.Equal(t, 100, summary.Score)
	assert.True(t, summary.Passed)
}

func TestSubmitQuiz_RoundingHalfUp(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env.db)

	// 三题测验：2/3 正确 = 66.67 → 67，达到及格线 67
	quiz := model.Quiz{
		ChapterID: course.chapter3, Title: "Quiz arrondi", PassingScore: 67,
		Questions: []model.Question{
			{ID: 1, Type: model.TrueFalse, Text: "Q1", CorrectBool: boolPtr(true)},
			{ID: 2, Type: model.TrueFalse, Text: "Q2", CorrectBool: boolPtr(true)},
			{ID: 3, Type: model.TrueFalse, Text: "Q3", CorrectBool: boolPtr(true)},
		},
	}
	require.NoError(t, env.db.Create(&quiz).Error)

	// 打开模块2的门禁：直接写入前置完成状态
	seedPriorCompletion(t, env, course)
	_, err := env.progress.ReportPlayback(testUserID, course.contentD, 60)
	require.NoError(t, err)

	result, err := env.quiz.SubmitQuiz(testUserID, quiz.ID, map[uint]model.Answer{
		1: {Bool: boolPtr(true)},
		2: {Bool: boolPtr(true)},
		3: {Bool: boolPtr(false)},
	})
	require.NoError(t, err)
	assert.Equal(t, 67, result.Score)
	assert.True(t, result.Passed, "67 >= 67 应判定通过（及格线为闭区间）")
}

// seedPriorCompletion 完成模块1的全部内容与测验，解锁模块2
func seedPriorCompletion(t *testing.T, env *testEnv, course *seededCourse) {
	t.Helper()
	completeChapter1Contents(t, env, course)
	passQuiz(t, env, testUserID, course.quiz1)
	_, err := env.progress.ReportPlayback(testUserID, course.contentC, 60)
	require.NoError(t, err)
}
