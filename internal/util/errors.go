package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrTokenInvalid       = errors.New("verification token invalid or expired")

	ErrContentNotFound = errors.New("content not found")
	ErrContentLocked   = errors.New("previous item not completed")
	ErrInvalidWatch    = errors.New("invalid watch time")

	ErrQuizNotFound      = errors.New("quiz not found")
	ErrQuizLocked        = errors.New("chapter contents not completed")
	ErrQuizAlreadyPassed = errors.New("quiz already passed")
	ErrInvalidAnswers    = errors.New("missing or malformed answers")
)
