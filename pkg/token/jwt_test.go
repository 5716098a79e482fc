package token

import (
	"regexp"
	"testing"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	manager := NewJWTManager("test-secret", 1, 7)

	tokenString, err := manager.GenerateToken(42, "+8613800138000", "USER", "password")
	if err != nil {
		t.Fatalf("GenerateToken 返回错误: %v", err)
	}

	claims, err := manager.VerifyToken(tokenString)
	if err != nil {
		t.Fatalf("VerifyToken 返回错误: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, 期望 42", claims.UserID)
	}
	if claims.Phone != "+8613800138000" {
		t.Errorf("Phone = %q, 期望 +8613800138000", claims.Phone)
	}
	if claims.Role != "USER" {
		t.Errorf("Role = %q, 期望 USER", claims.Role)
	}
	if claims.SessionType != "password" {
		t.Errorf("SessionType = %q, 期望 password", claims.SessionType)
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	// 负的有效期生成一个已过期的 token
	manager := NewJWTManager("test-secret", -1, 7)

	tokenString, err := manager.GenerateToken(1, "+8613800138000", "USER", "otp")
	if err != nil {
		t.Fatalf("GenerateToken 返回错误: %v", err)
	}

	if _, err := manager.VerifyToken(tokenString); err == nil {
		t.Error("过期的 token 应校验失败")
	}
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret", 1, 7)
	other := NewJWTManager("another-secret", 1, 7)

	tokenString, err := manager.GenerateToken(1, "+8613800138000", "USER", "guest")
	if err != nil {
		t.Fatalf("GenerateToken 返回错误: %v", err)
	}

	if _, err := other.VerifyToken(tokenString); err == nil {
		t.Error("使用不同密钥签名的 token 应校验失败")
	}
}

func TestGenerateRandomString(t *testing.T) {
	hexPattern := regexp.MustCompile(`^[0-9a-f]+$`)

	for _, length := range []int{4, 6, 16} {
		s := GenerateRandomString(length)
		// 返回值是 length 个随机字节的十六进制表示
		if len(s) != length*2 {
			t.Errorf("GenerateRandomString(%d) 长度 = %d, 期望 %d", length, len(s), length*2)
		}
		if !hexPattern.MatchString(s) {
			t.Errorf("GenerateRandomString(%d) 含非十六进制字符: %q", length, s)
		}
	}

	if GenerateRandomString(8) == GenerateRandomString(8) {
		t.Error("连续两次生成的随机串不应相同")
	}
}
