package service

import (
	"context"
	"elearning_backend/internal/model"
	"elearning_backend/internal/repository"
	"elearning_backend/internal/util"
	"elearning_backend/pkg/logger"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 课程树缓存键与有效期。树只在管理端改动课程时变化，短 TTL 即可
const (
	hierarchyCacheKey = "course:hierarchy:v1"
	hierarchyCacheTTL = 5 * time.Minute
)

type LearningService struct {
	CourseRepo      *repository.CourseRepository
	ProgressRepo    *repository.ProgressRepository
	QuizRepo        *repository.QuizRepository
	UserRepo        *repository.UserRepository
	ProgressService *ProgressService
	StorageService  *StorageService
	Redis           *redis.Client
}

func NewLearningService(
	courseRepo *repository.CourseRepository,
	progressRepo *repository.ProgressRepository,
	quizRepo *repository.QuizRepository,
	userRepo *repository.UserRepository,
	progressService *ProgressService,
	storageService *StorageService,
	rdb *redis.Client,
) *LearningService {
	return &LearningService{
		CourseRepo:      courseRepo,
		ProgressRepo:    progressRepo,
		QuizRepo:        quizRepo,
		UserRepo:        userRepo,
		ProgressService: progressService,
		StorageService:  storageService,
		Redis:           rdb,
	}
}

// loadHierarchy 读取活跃课程树，优先走 Redis 缓存。
// 缓存故障降级为直查数据库，不影响请求
func (s *LearningService) loadHierarchy(ctx context.Context) ([]model.Module, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, hierarchyCacheKey).Bytes()
		if err == nil {
			var modules []model.Module
			if jsonErr := json.Unmarshal(cached, &modules); jsonErr == nil {
				return modules, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("hierarchy cache read failed", zap.Error(err))
		}
	}

	modules, err := s.CourseRepo.ActiveHierarchy()
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(modules); err == nil {
			if err := s.Redis.Set(ctx, hierarchyCacheKey, data, hierarchyCacheTTL).Err(); err != nil {
				logger.Log.Warn("hierarchy cache write failed", zap.Error(err))
			}
		}
	}
	return modules, nil
}

// InvalidateHierarchyCache 管理端改动课程后调用，强制下次请求回源
func (s *LearningService) InvalidateHierarchyCache(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, hierarchyCacheKey).Err(); err != nil {
		logger.Log.Warn("hierarchy cache invalidation failed", zap.Error(err))
	}
}

// GetModules 课程总览。userID 为 0 表示匿名访问：整棵树锁定、不带统计；
// 已登录但邮箱未验证的用户拒绝
func (s *LearningService) GetModules(ctx context.Context, userID uint) ([]ModuleView, *UserStats, error) {
	modules, err := s.loadHierarchy(ctx)
	if err != nil {
		return nil, nil, err
	}

	if userID == 0 {
		return EvaluateHierarchy(modules, nil), nil, nil
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 令牌有效但用户已不存在：失效身份明确拒绝，不降级为游客视图
			return nil, nil, util.ErrUserNotFound
		}
		return nil, nil, err
	}
	if user.EmailVerified == nil {
		return nil, nil, util.ErrEmailNotVerified
	}

	progressSet, err := s.ProgressService.BuildProgressSet(userID)
	if err != nil {
		return nil, nil, err
	}

	stats, err := s.userStats(int64(len(modules)), userID)
	if err != nil {
		return nil, nil, err
	}
	return EvaluateHierarchy(modules, progressSet), stats, nil
}

// ContentDetail 单个内容的播放视图
type ContentDetail struct {
	ID          uint              `json:"id"`
	ChapterID   uint              `json:"chapterId"`
	Title       string            `json:"title"`
	Type        model.ContentType `json:"type"`
	Duration    int               `json:"duration"`
	Order       int               `json:"order"`
	URL         string            `json:"url"`
	WatchTime   int               `json:"watchTime"`
	IsCompleted bool              `json:"isCompleted"`
	Progress    int               `json:"progress"`
}

// GetContent 获取内容详情与播放地址。锁定的内容拒绝下发地址
func (s *LearningService) GetContent(ctx context.Context, userID, contentID uint) (*ContentDetail, error) {
	content, err := s.CourseRepo.FindActiveContent(contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrContentNotFound
		}
		return nil, err
	}

	modules, err := s.loadHierarchy(ctx)
	if err != nil {
		return nil, err
	}
	progressSet, err := s.ProgressService.BuildProgressSet(userID)
	if err != nil {
		return nil, err
	}
	if !ContentUnlocked(modules, progressSet, contentID) {
		return nil, util.ErrContentLocked
	}

	playbackURL, err := s.StorageService.PlaybackURL(ctx, content.URL)
	if err != nil {
		return nil, err
	}

	progress := progressSet.Content[contentID]
	return &ContentDetail{
		ID:          content.ID,
		ChapterID:   content.ChapterID,
		Title:       content.Title,
		Type:        content.Type,
		Duration:    content.Duration,
		Order:       content.Order,
		URL:         playbackURL,
		WatchTime:   progress.WatchTime,
		IsCompleted: progress.IsCompleted,
		Progress:    watchPercent(progress.WatchTime, content.Duration),
	}, nil
}

// UserStats 随课程总览一起返回的学习统计
type UserStats struct {
	TotalModules     int64   `json:"totalModules"`
	CompletedModules int64   `json:"completedModules"`
	TotalWatchTime   int64   `json:"totalWatchTime"` // 秒
	AverageScore     float64 `json:"averageScore"`
}

func (s *LearningService) userStats(totalModules int64, userID uint) (*UserStats, error) {
	completedModules, err := s.ProgressRepo.CompletedModuleCount(userID)
	if err != nil {
		return nil, err
	}
	totalWatchTime, err := s.ProgressRepo.TotalWatchTime(userID)
	if err != nil {
		return nil, err
	}
	averageScore, err := s.QuizRepo.AveragePassedScore(userID)
	if err != nil {
		return nil, err
	}

	return &UserStats{
		TotalModules:     totalModules,
		CompletedModules: completedModules,
		TotalWatchTime:   totalWatchTime,
		AverageScore:     averageScore,
	}, nil
}

// AdminContents 管理端全量内容列表，带学习人数统计
func (s *LearningService) AdminContents() ([]repository.AdminContentRow, error) {
	return s.CourseRepo.AllContentsWithProgressCount()
}
