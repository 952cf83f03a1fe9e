package model

type ContentType string

const (
	ContentVideo ContentType = "VIDEO"
	ContentAudio ContentType = "AUDIO"
)

// Module 课程的顶层单元，按 Order 升序构成线性解锁序列
type Module struct {
	BaseModel
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Order       int       `gorm:"column:sort_order;not null;uniqueIndex:idx_module_order" json:"order"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`
	Chapters    []Chapter `gorm:"foreignKey:ModuleID" json:"chapters,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

// Chapter 模块内的章节，Order 在所属模块内唯一
type Chapter struct {
	BaseModel
	ModuleID    uint      `gorm:"not null;uniqueIndex:idx_chapter_module_order" json:"moduleId"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Order       int       `gorm:"column:sort_order;not null;uniqueIndex:idx_chapter_module_order" json:"order"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`
	Contents    []Content `gorm:"foreignKey:ChapterID" json:"contents,omitempty"`
	Quiz        *Quiz     `gorm:"foreignKey:ChapterID" json:"quiz,omitempty"`
}

func (Chapter) TableName() string {
	return "chapters"
}

// Content 章节内的音视频内容，Duration 单位为秒，必须大于 0
type Content struct {
	BaseModel
	ChapterID   uint        `gorm:"not null;uniqueIndex:idx_content_chapter_order" json:"chapterId"`
	Title       string      `gorm:"size:255;not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Type        ContentType `gorm:"size:10;not null" json:"type"`
	URL         string      `gorm:"size:512;not null" json:"url"`
	Duration    int         `gorm:"not null" json:"duration"`
	Order       int         `gorm:"column:sort_order;not null;uniqueIndex:idx_content_chapter_order" json:"order"`
	IsActive    bool        `gorm:"default:true" json:"isActive"`
}

func (Content) TableName() string {
	return "contents"
}
