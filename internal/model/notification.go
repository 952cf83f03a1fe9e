package model

type NotificationType string

const (
	NotificationSuccess NotificationType = "SUCCESS"
	NotificationInfo    NotificationType = "INFO"
)

// Notification 模块完成时产生的站内通知
type Notification struct {
	BaseModel
	UserID  uint             `gorm:"index;not null" json:"userId"`
	Title   string           `gorm:"size:255;not null" json:"title"`
	Content string           `gorm:"type:text" json:"content"`
	Type    NotificationType `gorm:"size:20;default:'INFO'" json:"type"`
	IsRead  bool             `gorm:"default:false" json:"isRead"`
}

func (Notification) TableName() string {
	return "notifications"
}
