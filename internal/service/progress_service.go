package service

import (
	"elearning_backend/internal/model"
	"elearning_backend/internal/repository"
	"elearning_backend/internal/util"
	"elearning_backend/pkg/logger"
	"elearning_backend/pkg/monitoring"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProgressService struct {
	CourseRepo          *repository.CourseRepository
	ProgressRepo        *repository.ProgressRepository
	QuizRepo            *repository.QuizRepository
	NotificationService *NotificationService
}

func NewProgressService(
	courseRepo *repository.CourseRepository,
	progressRepo *repository.ProgressRepository,
	quizRepo *repository.QuizRepository,
	notificationService *NotificationService,
) *ProgressService {
	return &ProgressService{
		CourseRepo:          courseRepo,
		ProgressRepo:        progressRepo,
		QuizRepo:            quizRepo,
		NotificationService: notificationService,
	}
}

// PlaybackResult 上报观看进度的返回值
type PlaybackResult struct {
	ContentID   uint       `json:"contentId"`
	WatchTime   int        `json:"watchTime"`
	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt"`
	Progress    int        `json:"progress"`
	Message     string     `json:"message"`
}

// BuildProgressSet 加载用户全部进度行构成评估快照
func (s *ProgressService) BuildProgressSet(userID uint) (*ProgressSet, error) {
	contentRows, err := s.ProgressRepo.ContentProgressByUser(userID)
	if err != nil {
		return nil, err
	}
	chapterRows, err := s.ProgressRepo.ChapterProgressByUser(userID)
	if err != nil {
		return nil, err
	}
	moduleRows, err := s.ProgressRepo.ModuleProgressByUser(userID)
	if err != nil {
		return nil, err
	}
	passedChapters, err := s.QuizRepo.PassedChapterIDs(userID)
	if err != nil {
		return nil, err
	}

	set := &ProgressSet{
		Content:            make(map[uint]model.ContentProgress, len(contentRows)),
		Chapter:            make(map[uint]model.ChapterProgress, len(chapterRows)),
		Module:             make(map[uint]model.ModuleProgress, len(moduleRows)),
		PassedQuizChapters: passedChapters,
	}
	for _, row := range contentRows {
		set.Content[row.ContentID] = row
	}
	for _, row := range chapterRows {
		set.Chapter[row.ChapterID] = row
	}
	for _, row := range moduleRows {
		set.Module[row.ModuleID] = row
	}
	return set, nil
}

// ReportPlayback 上报 (用户, 内容) 的观看时长采样。
// 写入前重新校验解锁状态，防止乱序调用绕过门禁；
// 采样钳制到 [0, duration]，恰好等于 duration 才算完成
func (s *ProgressService) ReportPlayback(userID, contentID uint, watchTime int) (*PlaybackResult, error) {
	if watchTime < 0 {
		return nil, util.ErrInvalidWatch
	}

	content, err := s.CourseRepo.FindActiveContent(contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrContentNotFound
		}
		return nil, err
	}

	hierarchy, err := s.CourseRepo.ActiveHierarchy()
	if err != nil {
		return nil, err
	}
	progressSet, err := s.BuildProgressSet(userID)
	if err != nil {
		return nil, err
	}

	if !ContentUnlocked(hierarchy, progressSet, contentID) {
		return nil, util.ErrContentLocked
	}

	clamped := watchTime
	if clamped > content.Duration {
		clamped = content.Duration
	}
	completed := clamped == content.Duration

	alreadyCompleted := progressSet.Content[contentID].IsCompleted

	if err := s.ProgressRepo.UpsertContentProgress(userID, contentID, clamped, completed); err != nil {
		return nil, err
	}

	// 只有 false→true 的跳变才触发级联；重复上报是幂等空操作
	if completed && !alreadyCompleted {
		monitoring.RecordCompletion("content")
		if err := s.EvaluateChapterCompletion(userID, content.ChapterID); err != nil {
			// 内容层已提交，章节层失败留给下一次上报或对账任务补齐
			logger.Log.Error("chapter completion cascade failed",
				zap.Uint("userID", userID),
				zap.Uint("chapterID", content.ChapterID),
				zap.Error(err))
		}
	}

	stored, err := s.ProgressRepo.GetContentProgress(userID, contentID)
	if err != nil {
		return nil, err
	}

	message := "Progress updated"
	if stored.IsCompleted {
		message = "Content completed"
	}

	return &PlaybackResult{
		ContentID:   contentID,
		WatchTime:   stored.WatchTime,
		IsCompleted: stored.IsCompleted,
		CompletedAt: stored.CompletedAt,
		Progress:    watchPercent(stored.WatchTime, content.Duration),
		Message:     message,
	}, nil
}

// EvaluateChapterCompletion 级联的章节层：全部活跃内容完成且测验门禁放行时，
// 将章节置为完成并继续评估模块层。每一步都是幂等的，可安全重放
func (s *ProgressService) EvaluateChapterCompletion(userID, chapterID uint) error {
	contents, err := s.CourseRepo.ActiveContentsByChapter(chapterID)
	if err != nil {
		return err
	}
	// 空章节永远不算完成
	if len(contents) == 0 {
		return nil
	}

	contentIDs := make([]uint, 0, len(contents))
	for _, content := range contents {
		contentIDs = append(contentIDs, content.ID)
	}
	completionMap, err := s.ProgressRepo.ContentCompletionMap(userID, contentIDs)
	if err != nil {
		return err
	}
	for _, content := range contents {
		if !completionMap[content.ID] {
			return nil
		}
	}

	passed, err := s.quizGatePassed(userID, chapterID)
	if err != nil {
		return err
	}
	if !passed {
		// 章节保持未完成，等待测验通过
		return nil
	}

	newlyCompleted, err := s.ProgressRepo.MarkChapterCompleted(userID, chapterID)
	if err != nil {
		return err
	}
	if !newlyCompleted {
		return nil
	}
	monitoring.RecordCompletion("chapter")

	chapter, err := s.CourseRepo.FindChapter(chapterID)
	if err != nil {
		return err
	}
	return s.EvaluateModuleCompletion(userID, chapter.ModuleID)
}

// EvaluateModuleCompletion 级联的模块层：全部活跃章节完成时置为完成，
// 并在 false→true 跳变上发送一次完成通知
func (s *ProgressService) EvaluateModuleCompletion(userID, moduleID uint) error {
	chapters, err := s.CourseRepo.ActiveChaptersByModule(moduleID)
	if err != nil {
		return err
	}
	if len(chapters) == 0 {
		return nil
	}

	chapterIDs := make([]uint, 0, len(chapters))
	for _, chapter := range chapters {
		chapterIDs = append(chapterIDs, chapter.ID)
	}
	completionMap, err := s.ProgressRepo.ChapterCompletionMap(userID, chapterIDs)
	if err != nil {
		return err
	}
	for _, chapter := range chapters {
		if !completionMap[chapter.ID] {
			return nil
		}
	}

	newlyCompleted, err := s.ProgressRepo.MarkModuleCompleted(userID, moduleID)
	if err != nil {
		return err
	}
	if !newlyCompleted {
		return nil
	}
	monitoring.RecordCompletion("module")

	logger.Log.Info("module completed",
		zap.Uint("userID", userID),
		zap.Uint("moduleID", moduleID))

	return s.NotificationService.NotifyModuleCompleted(userID)
}

// quizGatePassed 章节测验门禁：无测验视为放行，有测验需要已通过的结果
func (s *ProgressService) quizGatePassed(userID, chapterID uint) (bool, error) {
	quiz, err := s.QuizRepo.FindByChapter(chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, err
	}

	result, err := s.QuizRepo.FindResult(userID, quiz.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return result.Passed, nil
}

// Reconcile 对账：重放最近有内容完成记录用户的章节/模块层级联，
// 补齐层间崩溃留下的缺口。所有标记操作幂等，重复运行无副作用
func (s *ProgressService) Reconcile(since time.Time) error {
	userIDs, err := s.ProgressRepo.RecentlyCompletedUserIDs(since)
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}

	hierarchy, err := s.CourseRepo.ActiveHierarchy()
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		progressSet, err := s.BuildProgressSet(userID)
		if err != nil {
			logger.Log.Error("reconcile: load progress failed", zap.Uint("userID", userID), zap.Error(err))
			continue
		}

		for _, moduleView := range EvaluateHierarchy(hierarchy, progressSet) {
			for _, chapterView := range moduleView.Chapters {
				if chapterView.IsCompleted || !chapterView.AllContentsCompleted || !chapterView.QuizPassed {
					continue
				}
				if err := s.EvaluateChapterCompletion(userID, chapterView.ID); err != nil {
					logger.Log.Error("reconcile: chapter cascade failed",
						zap.Uint("userID", userID),
						zap.Uint("chapterID", chapterView.ID),
						zap.Error(err))
				}
			}

			// 章节行齐全但模块行缺失：章节层的跳变早已消费，
			// 只有这里能补上模块层
			if moduleView.AllChaptersCompleted && !moduleView.IsCompleted {
				if err := s.EvaluateModuleCompletion(userID, moduleView.ID); err != nil {
					logger.Log.Error("reconcile: module cascade failed",
						zap.Uint("userID", userID),
						zap.Uint("moduleID", moduleView.ID),
						zap.Error(err))
				}
			}
		}
	}

	return nil
}
