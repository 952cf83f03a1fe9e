package repository

import (
	"elearning_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.First(&quiz, id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) FindByChapter(chapterID uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Where("chapter_id = ?", chapterID).First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) FindResult(userID, quizID uint) (*model.QuizResult, error) {
	var result model.QuizResult
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ReplaceResult 删除旧的未通过结果并写入新结果。
// 通过的结果不可变，由服务层在调用前拦截
func (r *QuizRepository) ReplaceResult(result *model.QuizResult) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Unscoped().
			Where("user_id = ? AND quiz_id = ? AND passed = ?", result.UserID, result.QuizID, false).
			Delete(&model.QuizResult{}).Error
		if err != nil {
			return err
		}
		return tx.Create(result).Error
	})
}

// PassedChapterIDs 用户已通过测验的章节集合
func (r *QuizRepository) PassedChapterIDs(userID uint) (map[uint]bool, error) {
	var chapterIDs []uint
	err := r.DB.Model(&model.QuizResult{}).
		Joins("JOIN quizzes ON quizzes.id = quiz_results.quiz_id").
		Where("quiz_results.user_id = ? AND quiz_results.passed = ?", userID, true).
		Pluck("quizzes.chapter_id", &chapterIDs).Error
	if err != nil {
		return nil, err
	}

	passed := make(map[uint]bool, len(chapterIDs))
	for _, id := range chapterIDs {
		passed[id] = true
	}
	return passed, nil
}

// AveragePassedScore 已通过测验的平均分，无记录时返回 0
func (r *QuizRepository) AveragePassedScore(userID uint) (float64, error) {
	var avg float64
	err := r.DB.Model(&model.QuizResult{}).
		Where("user_id = ? AND passed = ?", userID, true).
		Select("COALESCE(AVG(score), 0)").
		Scan(&avg).Error
	return avg, err
}
