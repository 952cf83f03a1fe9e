package model

import "time"

// ContentProgress 每个 (用户, 内容) 一行，WatchTime 被钳制在 [0, duration]。
// IsCompleted 一旦为 true 不再回退
type ContentProgress struct {
	BaseModel
	UserID      uint       `gorm:"not null;uniqueIndex:idx_content_progress_user_content" json:"userId"`
	ContentID   uint       `gorm:"not null;uniqueIndex:idx_content_progress_user_content" json:"contentId"`
	WatchTime   int        `gorm:"default:0" json:"watchTime"`
	IsCompleted bool       `gorm:"default:false" json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (ContentProgress) TableName() string {
	return "content_progress"
}

// ChapterProgress 仅在章节全部内容完成且测验（如有）通过后置为完成
type ChapterProgress struct {
	BaseModel
	UserID      uint       `gorm:"not null;uniqueIndex:idx_chapter_progress_user_chapter" json:"userId"`
	ChapterID   uint       `gorm:"not null;uniqueIndex:idx_chapter_progress_user_chapter" json:"chapterId"`
	IsCompleted bool       `gorm:"default:false" json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (ChapterProgress) TableName() string {
	return "chapter_progress"
}

// ModuleProgress 仅在模块全部章节完成后置为完成
type ModuleProgress struct {
	BaseModel
	UserID      uint       `gorm:"not null;uniqueIndex:idx_module_progress_user_module" json:"userId"`
	ModuleID    uint       `gorm:"not null;uniqueIndex:idx_module_progress_user_module" json:"moduleId"`
	IsCompleted bool       `gorm:"default:false" json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}
