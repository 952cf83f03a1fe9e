package service

import (
	"elearning_backend/internal/config"
	"elearning_backend/internal/model"
	"elearning_backend/internal/repository"
	"elearning_backend/internal/util"
	"elearning_backend/pkg/logger"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 验证令牌有效期
const verificationTokenTTL = 24 * time.Hour

type AuthService struct {
	UserRepo *repository.UserRepository
	Config   *config.Config
	Mailer   EmailSender
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config, mailer EmailSender) *AuthService {
	return &AuthService{UserRepo: userRepo, Config: cfg, Mailer: mailer}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register 注册新用户并发放邮箱验证令牌。
// 验证链接由邮件服务发出，这里只负责令牌的生成与落库
func (s *AuthService) Register(req *RegisterRequest) (*model.User, error) {
	if _, err := s.UserRepo.FindByEmail(req.Email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     model.Student,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}

	token := &model.VerificationToken{
		Identifier: user.Email,
		Token:      uuid.New().String(),
		ExpiresAt:  time.Now().Add(verificationTokenTTL),
	}
	if err := s.UserRepo.CreateVerificationToken(token); err != nil {
		// 用户已创建，令牌可以通过重发流程补发
		logger.Log.Error("create verification token failed",
			zap.String("email", user.Email),
			zap.Error(err))
	} else if err := s.Mailer.SendVerificationEmail(user.Email, token.Token); err != nil {
		logger.Log.Error("send verification email failed",
			zap.String("email", user.Email),
			zap.Error(err))
	}

	logger.Log.Info("user registered", zap.Uint("userID", user.ID), zap.String("email", user.Email))
	return user, nil
}

// Login 校验凭证并签发 JWT。
// 用户不存在与密码错误返回同一个错误，避免账号枚举
func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	user, err := s.UserRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	if err := s.UserRepo.UpdateLastLogin(user.ID); err != nil {
		logger.Log.Warn("update last login failed", zap.Uint("userID", user.ID), zap.Error(err))
	}

	return &LoginResponse{Token: token, User: user}, nil
}

// VerifyEmail 消费验证令牌，打上验证时间戳。令牌一次性
func (s *AuthService) VerifyEmail(email, token string) error {
	vt, err := s.UserRepo.FindValidVerificationToken(email, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrTokenInvalid
		}
		return err
	}

	if err := s.UserRepo.MarkEmailVerified(email, time.Now()); err != nil {
		return err
	}
	if err := s.UserRepo.DeleteVerificationToken(vt.ID); err != nil {
		logger.Log.Warn("delete verification token failed", zap.Uint("tokenID", vt.ID), zap.Error(err))
	}

	logger.Log.Info("email verified", zap.String("email", email))
	return nil
}

func (s *AuthService) GetCurrentUser(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
