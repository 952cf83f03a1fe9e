package repository

import (
	"elearning_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateLastLogin(userID uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).
		Update("last_login", time.Now()).Error
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).
		Update("last_seen", time.Now()).Error
}

// MarkEmailVerified 打上邮箱验证时间戳
func (r *UserRepository) MarkEmailVerified(email string, at time.Time) error {
	return r.DB.Model(&model.User{}).Where("email = ?", email).
		Update("email_verified", at).Error
}

func (r *UserRepository) CreateVerificationToken(token *model.VerificationToken) error {
	return r.DB.Create(token).Error
}

// FindValidVerificationToken 查找未过期的验证令牌
func (r *UserRepository) FindValidVerificationToken(identifier, token string) (*model.VerificationToken, error) {
	var vt model.VerificationToken
	err := r.DB.Where("identifier = ? AND token = ? AND expires_at > ?", identifier, token, time.Now()).
		First(&vt).Error
	if err != nil {
		return nil, err
	}
	return &vt, nil
}

func (r *UserRepository) DeleteVerificationToken(id uint) error {
	return r.DB.Unscoped().Delete(&model.VerificationToken{}, id).Error
}
