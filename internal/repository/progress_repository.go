package repository

import (
	"elearning_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) GetContentProgress(userID, contentID uint) (*model.ContentProgress, error) {
	var progress model.ContentProgress
	err := r.DB.Where("user_id = ? AND content_id = ?", userID, contentID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// UpsertContentProgress 以 (user_id, content_id) 为键的原子 upsert。
// 完成标志单调：completed=false 时不写 is_completed，已完成的行不会被回退；
// completed_at 只在第一次完成时落值
func (r *ProgressRepository) UpsertContentProgress(userID, contentID uint, watchTime int, completed bool) error {
	now := time.Now()
	assignments := map[string]interface{}{
		"watch_time": watchTime,
		"updated_at": now,
	}
	if completed {
		assignments["is_completed"] = true
		assignments["completed_at"] = gorm.Expr("COALESCE(completed_at, ?)", now)
	}

	progress := &model.ContentProgress{
		UserID:      userID,
		ContentID:   contentID,
		WatchTime:   watchTime,
		IsCompleted: completed,
	}
	if completed {
		progress.CompletedAt = &now
	}

	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(progress).Error
}

// MarkChapterCompleted 将章节置为完成，返回是否发生了 false→true 的跳变。
// 先做条件 UPDATE（只命中未完成行），没有命中再尝试插入；
// 两条语句各自原子，并发重放只会有一条观察到跳变
func (r *ProgressRepository) MarkChapterCompleted(userID, chapterID uint) (bool, error) {
	now := time.Now()
	res := r.DB.Model(&model.ChapterProgress{}).
		Where("user_id = ? AND chapter_id = ? AND is_completed = ?", userID, chapterID, false).
		Updates(map[string]interface{}{"is_completed": true, "completed_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	progress := &model.ChapterProgress{
		UserID:      userID,
		ChapterID:   chapterID,
		IsCompleted: true,
		CompletedAt: &now,
	}
	res = r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "chapter_id"}},
		DoNothing: true,
	}).Create(progress)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkModuleCompleted 同 MarkChapterCompleted，模块层。
// 返回的跳变标志用于保证完成通知至多发一次
func (r *ProgressRepository) MarkModuleCompleted(userID, moduleID uint) (bool, error) {
	now := time.Now()
	res := r.DB.Model(&model.ModuleProgress{}).
		Where("user_id = ? AND module_id = ? AND is_completed = ?", userID, moduleID, false).
		Updates(map[string]interface{}{"is_completed": true, "completed_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	progress := &model.ModuleProgress{
		UserID:      userID,
		ModuleID:    moduleID,
		IsCompleted: true,
		CompletedAt: &now,
	}
	res = r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoNothing: true,
	}).Create(progress)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ProgressRepository) ContentProgressByUser(userID uint) ([]model.ContentProgress, error) {
	var progress []model.ContentProgress
	err := r.DB.Where("user_id = ?", userID).Find(&progress).Error
	return progress, err
}

func (r *ProgressRepository) ChapterProgressByUser(userID uint) ([]model.ChapterProgress, error) {
	var progress []model.ChapterProgress
	err := r.DB.Where("user_id = ?", userID).Find(&progress).Error
	return progress, err
}

func (r *ProgressRepository) ModuleProgressByUser(userID uint) ([]model.ModuleProgress, error) {
	var progress []model.ModuleProgress
	err := r.DB.Where("user_id = ?", userID).Find(&progress).Error
	return progress, err
}

// ContentCompletionMap 用户对一组内容的完成状态
func (r *ProgressRepository) ContentCompletionMap(userID uint, contentIDs []uint) (map[uint]bool, error) {
	var rows []model.ContentProgress
	err := r.DB.Where("user_id = ? AND content_id IN ?", userID, contentIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	statusMap := make(map[uint]bool, len(rows))
	for _, row := range rows {
		statusMap[row.ContentID] = row.IsCompleted
	}
	return statusMap, nil
}

// ChapterCompletionMap 用户对一组章节的完成状态
func (r *ProgressRepository) ChapterCompletionMap(userID uint, chapterIDs []uint) (map[uint]bool, error) {
	var rows []model.ChapterProgress
	err := r.DB.Where("user_id = ? AND chapter_id IN ?", userID, chapterIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	statusMap := make(map[uint]bool, len(rows))
	for _, row := range rows {
		statusMap[row.ChapterID] = row.IsCompleted
	}
	return statusMap, nil
}

func (r *ProgressRepository) TotalWatchTime(userID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&model.ContentProgress{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(watch_time), 0)").
		Scan(&total).Error
	return total, err
}

func (r *ProgressRepository) CompletedModuleCount(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ModuleProgress{}).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Count(&count).Error
	return count, err
}

// RecentlyCompletedUserIDs 最近有内容完成记录的用户，供对账任务补齐上层进度
func (r *ProgressRepository) RecentlyCompletedUserIDs(since time.Time) ([]uint, error) {
	var userIDs []uint
	err := r.DB.Model(&model.ContentProgress{}).
		Where("is_completed = ? AND updated_at >= ?", true, since).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}
