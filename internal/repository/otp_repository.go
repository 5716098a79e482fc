package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// OTPRepository 定义了短信验证码及其重发冷却的存取接口。
type OTPRepository interface {
	SaveCode(ctx context.Context, phone, code string, ttl time.Duration) error
	GetCode(ctx context.Context, phone string) (string, error)
	DeleteCode(ctx context.Context, phone string) error
	SetCooldown(ctx context.Context, phone string, ttl time.Duration) error
	InCooldown(ctx context.Context, phone string) (bool, error)
}

type redisOTPRepository struct {
	redisClient *redis.Client
}

// NewOTPRepository 创建一个新的 OTPRepository 实例。
func NewOTPRepository(redisClient *redis.Client) OTPRepository {
	return &redisOTPRepository{redisClient: redisClient}
}

func otpCodeKey(phone string) string {
	return fmt.Sprintf("otp:code:%s", phone)
}

func otpCooldownKey(phone string) string {
	return fmt.Sprintf("otp:cooldown:%s", phone)
}

// SaveCode 写入验证码并设置有效期。
func (r *redisOTPRepository) SaveCode(ctx context.Context, phone, code string, ttl time.Duration) error {
	if err := r.redisClient.Set(ctx, otpCodeKey(phone), code, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save otp code: %w", err)
	}
	return nil
}

// GetCode 读取验证码，不存在或已过期时返回空串。
func (r *redisOTPRepository) GetCode(ctx context.Context, phone string) (string, error) {
	code, err := r.redisClient.Get(ctx, otpCodeKey(phone)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get otp code: %w", err)
	}
	return code, nil
}

// DeleteCode 验证成功后立刻作废验证码。
func (r *redisOTPRepository) DeleteCode(ctx context.Context, phone string) error {
	if err := r.redisClient.Del(ctx, otpCodeKey(phone)).Err(); err != nil {
		return fmt.Errorf("failed to delete otp code: %w", err)
	}
	return nil
}

// SetCooldown 设置重发冷却。
func (r *redisOTPRepository) SetCooldown(ctx context.Context, phone string, ttl time.Duration) error {
	if err := r.redisClient.Set(ctx, otpCooldownKey(phone), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to set otp cooldown: %w", err)
	}
	return nil
}

// InCooldown 报告该手机号是否仍在冷却期内。
func (r *redisOTPRepository) InCooldown(ctx context.Context, phone string) (bool, error) {
	_, err := r.redisClient.Get(ctx, otpCooldownKey(phone)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check otp cooldown: %w", err)
	}
	return true, nil
}
