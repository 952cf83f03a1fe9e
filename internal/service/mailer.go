package service

import (
	"elearning_backend/pkg/logger"

	"go.uber.org/zap"
)

// EmailSender 邮件发送的抽象。实际投递由外部系统承担，
// 本服务只负责把验证令牌交给发送方
type EmailSender interface {
	SendVerificationEmail(email, token string) error
}

// LogEmailSender 默认实现：把待发邮件写进日志，供本地与测试环境使用
type LogEmailSender struct{}

func (LogEmailSender) SendVerificationEmail(email, token string) error {
	logger.Log.Info("verification email queued",
		zap.String("email", email),
		zap.String("token", token))
	return nil
}
