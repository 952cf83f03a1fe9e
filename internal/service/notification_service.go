package service

import (
	"elearning_backend/internal/model"
	"elearning_backend/internal/repository"
)

type NotificationService struct {
	NotificationRepo *repository.NotificationRepository
}

func NewNotificationService(notificationRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{NotificationRepo: notificationRepo}
}

// NotifyModuleCompleted 模块完成的祝贺通知。
// 调用方保证只在完成状态的 false→true 跳变上调用一次
func (s *NotificationService) NotifyModuleCompleted(userID uint) error {
	return s.NotificationRepo.Create(&model.Notification{
		UserID:  userID,
		Title:   "Module complété !",
		Content: "Félicitations ! Vous avez terminé un module de formation.",
		Type:    model.NotificationSuccess,
	})
}

func (s *NotificationService) List(userID uint) ([]model.Notification, error) {
	return s.NotificationRepo.ListByUser(userID)
}

func (s *NotificationService) MarkRead(userID, id uint) error {
	return s.NotificationRepo.MarkRead(userID, id)
}
