package repository

import (
	"elearning_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// ActiveHierarchy 返回完整的活跃课程树（模块→章节→内容/测验），
// 各层已按 sort_order 升序排好。解锁计算依赖这个顺序
func (r *CourseRepository) ActiveHierarchy() ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Where("is_active = ?", true).Order("sort_order ASC").
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sort_order ASC")
		}).
		Preload("Chapters.Contents", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sort_order ASC")
		}).
		Preload("Chapters.Quiz").
		Find(&modules).Error
	return modules, err
}

// FindActiveContent 查找活跃内容，未找到返回 gorm.ErrRecordNotFound
func (r *CourseRepository) FindActiveContent(id uint) (*model.Content, error) {
	var content model.Content
	err := r.DB.Where("id = ? AND is_active = ?", id, true).First(&content).Error
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *CourseRepository) FindChapter(id uint) (*model.Chapter, error) {
	var chapter model.Chapter
	err := r.DB.First(&chapter, id).Error
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

func (r *CourseRepository) FindModule(id uint) (*model.Module, error) {
	var module model.Module
	err := r.DB.First(&module, id).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

// ActiveContentsByChapter 章节内的活跃内容，按顺序
func (r *CourseRepository) ActiveContentsByChapter(chapterID uint) ([]model.Content, error) {
	var contents []model.Content
	err := r.DB.Where("chapter_id = ? AND is_active = ?", chapterID, true).
		Order("sort_order ASC").Find(&contents).Error
	return contents, err
}

// ActiveChaptersByModule 模块内的活跃章节，按顺序
func (r *CourseRepository) ActiveChaptersByModule(moduleID uint) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := r.DB.Where("module_id = ? AND is_active = ?", moduleID, true).
		Order("sort_order ASC").Find(&chapters).Error
	return chapters, err
}

// AdminContentRow 管理端内容列表行，带进度行数统计
type AdminContentRow struct {
	model.Content
	ChapterTitle  string `json:"chapterTitle"`
	ModuleTitle   string `json:"moduleTitle"`
	ProgressCount int64  `json:"progressCount"`
}

// AllContentsWithProgressCount 管理端全量内容列表，
// 按 模块顺序→章节顺序→内容顺序 排序
func (r *CourseRepository) AllContentsWithProgressCount() ([]AdminContentRow, error) {
	var rows []AdminContentRow
	err := r.DB.Model(&model.Content{}).
		Select("contents.*, chapters.title AS chapter_title, modules.title AS module_title, " +
			"(SELECT COUNT(*) FROM content_progress WHERE content_progress.content_id = contents.id) AS progress_count").
		Joins("JOIN chapters ON chapters.id = contents.chapter_id").
		Joins("JOIN modules ON modules.id = chapters.module_id").
		Order("modules.sort_order ASC, chapters.sort_order ASC, contents.sort_order ASC").
		Scan(&rows).Error
	return rows, err
}
