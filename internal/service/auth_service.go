// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"med-assist-go/internal/config"
	"med-assist-go/internal/model"
	"med-assist-go/internal/repository"
	"med-assist-go/pkg/database"
	"med-assist-go/pkg/hash"
	"med-assist-go/pkg/log"
	"med-assist-go/pkg/token"

	"gorm.io/gorm"
)

// 认证流程的业务错误。
var (
	ErrPhoneTaken         = errors.New("phone number is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPhone       = errors.New("phone number should be between 10 and 15 digits")
	ErrInvalidFullName    = errors.New("full name must be at least 2 characters")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrOTPCooldown        = errors.New("please wait before requesting another code")
	ErrOTPInvalid         = errors.New("invalid or expired verification code")
)

// TokenPair 一次登录签发的令牌对。
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService 接口定义了注册、登录与会话管理的业务操作。
type AuthService interface {
	Register(fullName, phone, password string) (*model.User, error)
	LoginWithPassword(phone, password string) (*model.User, *TokenPair, error)
	RequestOTP(ctx context.Context, phone string) (echoCode string, err error)
	LoginWithOTP(ctx context.Context, phone, code string) (*model.User, *TokenPair, error)
	LoginAsGuest() (*model.User, *TokenPair, error)
	RefreshToken(refreshTokenString string) (*TokenPair, error)
	Logout(tokenString string) error
}

// authService 是 AuthService 接口的实现。
type authService struct {
	userRepo   repository.UserRepository
	otpRepo    repository.OTPRepository
	jwtManager *token.JWTManager
}

// NewAuthService 创建一个新的 AuthService 实例。
func NewAuthService(userRepo repository.UserRepository, otpRepo repository.OTPRepository, jwtManager *token.JWTManager) AuthService {
	return &authService{
		userRepo:   userRepo,
		otpRepo:    otpRepo,
		jwtManager: jwtManager,
	}
}

var phonePattern = regexp.MustCompile(`^\+?\d+$`)

// normalizePhone 去掉常见格式字符后校验位数与字符集。
func normalizePhone(phone string) (string, error) {
	clean := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	digits := strings.TrimPrefix(clean, "+")
	if len(digits) < 10 || len(digits) > 15 {
		return "", ErrInvalidPhone
	}
	if !phonePattern.MatchString(clean) {
		return "", ErrInvalidPhone
	}
	return clean, nil
}

// Register 处理手机号注册：姓名至少 2 个字符，密码至少 6 位，手机号唯一。
func (s *authService) Register(fullName, phone, password string) (*model.User, error) {
	fullName = strings.TrimSpace(fullName)
	if len(fullName) < 2 {
		return nil, ErrInvalidFullName
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	normalized, err := normalizePhone(phone)
	if err != nil {
		return nil, err
	}

	// 检查手机号是否已被占用
	_, err = s.userRepo.FindByPhone(normalized)
	if err == nil {
		return nil, ErrPhoneTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	newUser := &model.User{
		Phone:        normalized,
		FullName:     fullName,
		PasswordHash: hashedPassword,
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		return nil, err
	}

	log.Infof("[AuthService] 新用户注册成功, userID: %d", newUser.ID)
	return newUser, nil
}

// LoginWithPassword 处理密码登录。
func (s *authService) LoginWithPassword(phone, password string) (*model.User, *TokenPair, error) {
	normalized, err := normalizePhone(phone)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByPhone(normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if user.PasswordHash == "" || !hash.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user, model.SessionPassword)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RequestOTP 生成 6 位验证码写入 Redis，30 秒内不允许重发。
// 调试模式下把验证码回显给调用方，生产模式下只记录日志占位真实短信网关。
func (s *authService) RequestOTP(ctx context.Context, phone string) (string, error) {
	normalized, err := normalizePhone(phone)
	if err != nil {
		return "", err
	}

	inCooldown, err := s.otpRepo.InCooldown(ctx, normalized)
	if err != nil {
		return "", err
	}
	if inCooldown {
		return "", ErrOTPCooldown
	}

	code := fmt.Sprintf("%06d", rand.Intn(1000000))
	expire := time.Duration(config.Conf.OTP.ExpireMinutes) * time.Minute
	if err := s.otpRepo.SaveCode(ctx, normalized, code, expire); err != nil {
		return "", err
	}
	cooldown := time.Duration(config.Conf.OTP.ResendCooldownSeconds) * time.Second
	if err := s.otpRepo.SetCooldown(ctx, normalized, cooldown); err != nil {
		return "", err
	}

	// TODO: 接入真实短信网关后删除日志回显
	log.Infof("[AuthService] 已为手机号 %s 生成验证码", normalized)

	if config.Conf.OTP.EchoInResponse {
		return code, nil
	}
	return "", nil
}

// LoginWithOTP 校验验证码。手机号未注册时自动创建无密码账号。
func (s *authService) LoginWithOTP(ctx context.Context, phone, code string) (*model.User, *TokenPair, error) {
	normalized, err := normalizePhone(phone)
	if err != nil {
		return nil, nil, err
	}

	stored, err := s.otpRepo.GetCode(ctx, normalized)
	if err != nil {
		return nil, nil, err
	}
	if stored == "" || stored != code {
		return nil, nil, ErrOTPInvalid
	}
	// 验证通过后立刻作废，防止重放
	if err := s.otpRepo.DeleteCode(ctx, normalized); err != nil {
		log.Errorf("[AuthService] 作废验证码失败, phone: %s, error: %v", normalized, err)
	}

	user, err := s.userRepo.FindByPhone(normalized)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &model.User{
			Phone:    normalized,
			FullName: "Member " + normalized[len(normalized)-4:],
			Role:     model.RoleUser,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, nil, err
		}
		log.Infof("[AuthService] 验证码登录自动建号, userID: %d", user.ID)
	} else if err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(user, model.SessionOTP)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// LoginAsGuest 创建一次性访客账号，手机号为内部占位值。
func (s *authService) LoginAsGuest() (*model.User, *TokenPair, error) {
	guest := &model.User{
		Phone:    "guest-" + token.GenerateRandomString(6),
		FullName: "Guest",
		Role:     model.RoleGuest,
	}
	if err := s.userRepo.Create(guest); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(guest, model.SessionGuest)
	if err != nil {
		return nil, nil, err
	}
	return guest, pair, nil
}

// RefreshToken 校验 refresh token 并签发新的令牌对。
func (s *authService) RefreshToken(refreshTokenString string) (*TokenPair, error) {
	claims, err := s.jwtManager.VerifyToken(refreshTokenString)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user, claims.SessionType)
}

// Logout 把 token 加入 Redis 黑名单，剩余有效期作为过期时间。
func (s *authService) Logout(tokenString string) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return err
	}
	expiration := time.Until(claims.ExpiresAt.Time)
	return database.RDB.Set(context.Background(), "blacklist:"+tokenString, "true", expiration).Err()
}

func (s *authService) issueTokens(user *model.User, sessionType string) (*TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateToken(user.ID, user.Phone, user.Role, sessionType)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Phone, user.Role, sessionType)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
