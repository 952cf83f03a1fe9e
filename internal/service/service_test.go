package service

import (
	"elearning_backend/internal/model"
	"elearning_backend/internal/repository"
	"elearning_backend/pkg/logger"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

type testEnv struct {
	db           *gorm.DB
	courseRepo   *repository.CourseRepository
	progressRepo *repository.ProgressRepository
	quizRepo     *repository.QuizRepository
	notifRepo    *repository.NotificationRepository
	userRepo     *repository.UserRepository
	progress     *ProgressService
	quiz         *QuizService
	learning     *LearningService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// 内存库只允许单连接，避免连接池各自拿到空库
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Module{},
		&model.Chapter{},
		&model.Content{},
		&model.Quiz{},
		&model.ContentProgress{},
		&model.ChapterProgress{},
		&model.ModuleProgress{},
		&model.QuizResult{},
		&model.Notification{},
	))

	courseRepo := repository.NewCourseRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)

	notifService := NewNotificationService(notifRepo)
	progressService := NewProgressService(courseRepo, progressRepo, quizRepo, notifService)
	quizService := NewQuizService(quizRepo, courseRepo, progressRepo, userRepo, progressService)
	storageService := &StorageService{Provider: &LocalStorageProvider{}}
	learningService := NewLearningService(courseRepo, progressRepo, quizRepo, userRepo, progressService, storageService, nil)

	// 测验门禁依赖已验证的用户
	now := time.Now()
	user := model.User{
		Name:          "Testeur",
		Email:         "testeur@example.com",
		Password:      "x",
		Role:          model.Student,
		EmailVerified: &now,
	}
	user.ID = testUserID
	require.NoError(t, db.Create(&user).Error)

	return &testEnv{
		db:           db,
		courseRepo:   courseRepo,
		progressRepo: progressRepo,
		quizRepo:     quizRepo,
		notifRepo:    notifRepo,
		userRepo:     userRepo,
		progress:     progressService,
		quiz:         quizService,
		learning:     learningService,
	}
}

// seededCourse 两个模块的标准课程：
// 模块1 = 章节1（内容A 60s、内容B 120s、测验 2 题/及格 70）+ 章节2（内容C 60s，无测验），
// 模块2 = 章节3（内容D 60s）
type seededCourse struct {
	module1, module2   uint
	chapter1, chapter2 uint
	chapter3           uint
	contentA, contentB uint
	contentC, contentD uint
	quiz1              uint
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func seedCourse(t *testing.T, db *gorm.DB) *seededCourse {
	t.Helper()

	m1 := model.Module{
		Title: "Fondamentaux", Order: 1, IsActive: true,
		Chapters: []model.Chapter{
			{
				Title: "Introduction", Order: 1, IsActive: true,
				Contents: []model.Content{
					{Title: "A", Type: model.ContentVideo, URL: "a.mp4", Duration: 60, Order: 1, IsActive: true},
					{Title: "B", Type: model.ContentAudio, URL: "b.mp3", Duration: 120, Order: 2, IsActive: true},
				},
				Quiz: &model.Quiz{
					Title: "Quiz introduction", PassingScore: 70,
					Questions: []model.Question{
						{ID: 1, Type: model.MultipleChoice, Text: "2+2 ?", Options: []string{"3", "4", "5", "6"}, CorrectIndex: intPtr(1), Explanation: "4"},
						{ID: 2, Type: model.TrueFalse, Text: "La terre est ronde ?", CorrectBool: boolPtr(true)},
					},
				},
			},
			{
				Title: "Approfondissement", Order: 2, IsActive: true,
				Contents: []model.Content{
					{Title: "C", Type: model.ContentVideo, URL: "c.mp4", Duration: 60, Order: 1, IsActive: true},
				},
			},
		},
	}
	require.NoError(t, db.Create(&m1).Error)

	m2 := model.Module{
		Title: "Avancé", Order: 2, IsActive: true,
		Chapters: []model.Chapter{
			{
				Title: "Expert", Order: 1, IsActive: true,
				Contents: []model.Content{
					{Title: "D", Type: model.ContentVideo, URL: "d.mp4", Duration: 60, Order: 1, IsActive: true},
				},
			},
		},
	}
	require.NoError(t, db.Create(&m2).Error)

	return &seededCourse{
		module1:  m1.ID,
		module2:  m2.ID,
		chapter1: m1.Chapters[0].ID,
		chapter2: m1.Chapters[1].ID,
		chapter3: m2.Chapters[0].ID,
		contentA: m1.Chapters[0].Contents[0].ID,
		contentB: m1.Chapters[0].Contents[1].ID,
		contentC: m1.Chapters[1].Contents[0].ID,
		contentD: m2.Chapters[0].Contents[0].ID,
		quiz1:    m1.Chapters[0].Quiz.ID,
	}
}

// passQuiz 提交全对答案，让章节1的测验通过
func passQuiz(t *testing.T, env *testEnv, userID, quizID uint) {
	t.Helper()
	result, err := env.quiz.SubmitQuiz(userID, quizID, map[uint]model.Answer{
		1: {Index: intPtr(1)},
		2: {Bool: boolPtr(true)},
	})
	require.NoError(t, err)
	require.True(t, result.Passed)
}
