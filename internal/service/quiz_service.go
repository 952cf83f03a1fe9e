package service

import (
	"elearning_backend/internal/model"
	"elearning_backend/internal/repository"
	"elearning_backend/internal/util"
	"elearning_backend/pkg/logger"
	"elearning_backend/pkg/monitoring"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 测验默认时间限制（分钟）
const defaultQuizTimeLimit = 30

type QuizService struct {
	QuizRepo        *repository.QuizRepository
	CourseRepo      *repository.CourseRepository
	ProgressRepo    *repository.ProgressRepository
	UserRepo        *repository.UserRepository
	ProgressService *ProgressService
}

func NewQuizService(
	quizRepo *repository.QuizRepository,
	courseRepo *repository.CourseRepository,
	progressRepo *repository.ProgressRepository,
	userRepo *repository.UserRepository,
	progressService *ProgressService,
) *QuizService {
	return &QuizService{
		QuizRepo:        quizRepo,
		CourseRepo:      courseRepo,
		ProgressRepo:    progressRepo,
		UserRepo:        userRepo,
		ProgressService: progressService,
	}
}

// QuestionView 下发给考生的题目，不携带正确答案和解析
type QuestionView struct {
	ID      uint               `json:"id"`
	Type    model.QuestionType `json:"type"`
	Text    string             `json:"question"`
	Options []string           `json:"options,omitempty"`
}

type QuizBreadcrumb struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Order  int    `json:"order"`
	Module struct {
		ID    uint   `json:"id"`
		Title string `json:"title"`
		Order int    `json:"order"`
	} `json:"module"`
}

type QuizDetail struct {
	ID           uint           `json:"id"`
	ChapterID    uint           `json:"chapterId"`
	Title        string         `json:"title"`
	PassingScore int            `json:"passingScore"`
	TimeLimit    int            `json:"timeLimit"` // 分钟
	Questions    []QuestionView `json:"questions"`
	Chapter      QuizBreadcrumb `json:"chapter"`
}

// ResultSummary 已有测验结果的摘要，随"已通过"错误一起返回
type ResultSummary struct {
	Score       int       `json:"score"`
	Passed      bool      `json:"passed"`
	CompletedAt time.Time `json:"completedAt"`
}

// QuestionResult 提交后的单题判分明细，此时才揭示正确答案
type QuestionResult struct {
	QuestionID    uint         `json:"questionId"`
	UserAnswer    model.Answer `json:"userAnswer"`
	CorrectAnswer model.Answer `json:"correctAnswer"`
	IsCorrect     bool         `json:"isCorrect"`
	Explanation   string       `json:"explanation,omitempty"`
}

type SubmitResult struct {
	Score          int              `json:"score"`
	Passed         bool             `json:"passed"`
	CorrectAnswers int              `json:"correctAnswers"`
	TotalQuestions int              `json:"totalQuestions"`
	Results        []QuestionResult `json:"results"`
	Message        string           `json:"message"`
}

// GetQuiz 获取测验题目。
// 门禁：章节内容未全部完成时拒绝；已通过时拒绝并附带历史成绩，绝不重发题目
func (s *QuizService) GetQuiz(userID, quizID uint) (*QuizDetail, *ResultSummary, error) {
	if err := s.ensureVerified(userID); err != nil {
		return nil, nil, err
	}

	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrQuizNotFound
		}
		return nil, nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, nil, util.ErrQuizNotFound
	}

	accessible, err := s.chapterContentsCompleted(userID, quiz.ChapterID)
	if err != nil {
		return nil, nil, err
	}
	if !accessible {
		return nil, nil, util.ErrQuizLocked
	}

	if result, err := s.QuizRepo.FindResult(userID, quizID); err == nil && result.Passed {
		return nil, &ResultSummary{
			Score:       result.Score,
			Passed:      true,
			CompletedAt: result.CreatedAt,
		}, util.ErrQuizAlreadyPassed
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	chapter, err := s.CourseRepo.FindChapter(quiz.ChapterID)
	if err != nil {
		return nil, nil, err
	}
	module, err := s.CourseRepo.FindModule(chapter.ModuleID)
	if err != nil {
		return nil, nil, err
	}

	detail := &QuizDetail{
		ID:           quiz.ID,
		ChapterID:    quiz.ChapterID,
		Title:        quiz.Title,
		PassingScore: quiz.PassingScore,
		TimeLimit:    defaultQuizTimeLimit,
		Questions:    make([]QuestionView, 0, len(quiz.Questions)),
	}
	for _, question := range quiz.Questions {
		detail.Questions = append(detail.Questions, QuestionView{
			ID:      question.ID,
			Type:    question.Type,
			Text:    question.Text,
			Options: question.Options,
		})
	}
	detail.Chapter.ID = chapter.ID
	detail.Chapter.Title = chapter.Title
	detail.Chapter.Order = chapter.Order
	detail.Chapter.Module.ID = module.ID
	detail.Chapter.Module.Title = module.Title
	detail.Chapter.Module.Order = module.Order

	return detail, nil, nil
}

// SubmitQuiz 判分。分数由服务端根据存储的正确答案重算，客户端分数不可信。
// 通过是终态：已通过的测验拒绝再次提交；未通过的旧结果删除后重建。
// 通过时回灌完成级联，把章节（可能连带模块）置为完成
func (s *QuizService) SubmitQuiz(userID, quizID uint, answers map[uint]model.Answer) (*SubmitResult, error) {
	if err := s.ensureVerified(userID); err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, util.ErrInvalidAnswers
	}

	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, util.ErrQuizNotFound
	}

	accessible, err := s.chapterContentsCompleted(userID, quiz.ChapterID)
	if err != nil {
		return nil, err
	}
	if !accessible {
		return nil, util.ErrQuizLocked
	}

	if result, err := s.QuizRepo.FindResult(userID, quizID); err == nil && result.Passed {
		return nil, util.ErrQuizAlreadyPassed
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	correctCount := 0
	results := make([]QuestionResult, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		answer := answers[question.ID]
		isCorrect := answer.Matches(question)
		if isCorrect {
			correctCount++
		}

		correctAnswer := model.Answer{}
		switch question.Type {
		case model.MultipleChoice:
			correctAnswer.Index = question.CorrectIndex
		case model.TrueFalse:
			correctAnswer.Bool = question.CorrectBool
		}

		results = append(results, QuestionResult{
			QuestionID:    question.ID,
			UserAnswer:    answer,
			CorrectAnswer: correctAnswer,
			IsCorrect:     isCorrect,
			Explanation:   question.Explanation,
		})
	}

	total := len(quiz.Questions)
	score := roundPercent(float64(correctCount) / float64(total) * 100)
	passed := score >= quiz.PassingScore

	if err := s.QuizRepo.ReplaceResult(&model.QuizResult{
		UserID:  userID,
		QuizID:  quizID,
		Score:   score,
		Answers: answers,
		Passed:  passed,
	}); err != nil {
		return nil, err
	}
	monitoring.RecordQuizSubmission(passed)

	message := fmt.Sprintf("Score %d%%, minimum required %d%%", score, quiz.PassingScore)
	if passed {
		message = "Quiz passed"
		if err := s.ProgressService.EvaluateChapterCompletion(userID, quiz.ChapterID); err != nil {
			// 结果已落库，级联缺口由对账任务补齐
			logger.Log.Error("quiz pass cascade failed",
				zap.Uint("userID", userID),
				zap.Uint("chapterID", quiz.ChapterID),
				zap.Error(err))
		}
	}

	return &SubmitResult{
		Score:          score,
		Passed:         passed,
		CorrectAnswers: correctCount,
		TotalQuestions: total,
		Results:        results,
		Message:        message,
	}, nil
}

// ensureVerified 邮箱验证门禁：未验证（或不存在）的用户拒绝测验操作
func (s *QuizService) ensureVerified(userID uint) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrEmailNotVerified
		}
		return err
	}
	if user.EmailVerified == nil {
		return util.ErrEmailNotVerified
	}
	return nil
}

// chapterContentsCompleted 测验可达性：章节全部活跃内容已完成（空章节视为不可达）
func (s *QuizService) chapterContentsCompleted(userID, chapterID uint) (bool, error) {
	contents, err := s.CourseRepo.ActiveContentsByChapter(chapterID)
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}

	contentIDs := make([]uint, 0, len(contents))
	for _, content := range contents {
		contentIDs = append(contentIDs, content.ID)
	}
	completionMap, err := s.ProgressRepo.ContentCompletionMap(userID, contentIDs)
	if err != nil {
		return false, err
	}
	for _, content := range contents {
		if !completionMap[content.ID] {
			return false, nil
		}
	}
	return true, nil
}
