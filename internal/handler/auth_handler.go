// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"strings"

	"med-assist-go/internal/service"
	"med-assist-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AuthHandler 负责处理注册、登录与会话相关的请求。
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler 创建一个新的 AuthHandler。
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest 定义了用户注册 API 的请求体结构。
type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 处理新用户注册。
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Register: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request payload",
		})
		return
	}

	user, err := h.authService.Register(req.FullName, req.Phone, req.Password)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrPhoneTaken) {
			status = http.StatusConflict
		}
		log.Warnf("Register: Failed for phone '%s', error: %v", req.Phone, err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": err.Error(),
		})
		return
	}

	log.Infof("User '%s' registered successfully, ID: %d", user.Phone, user.ID)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Registration successful",
		"data":    user,
	})
}

// LoginRequest 定义了密码登录 API 的请求体结构。
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理手机号加密码登录。
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Login: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request payload",
		})
		return
	}

	user, pair, err := h.authService.LoginWithPassword(req.Phone, req.Password)
	if err != nil {
		log.Warnf("Login: Failed for phone '%s', error: %v", req.Phone, err)
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    http.StatusUnauthorized,
			"message": "Invalid phone number or password",
		})
		return
	}

	log.Infof("User '%s' logged in with password", user.Phone)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Login successful",
		"data": gin.H{
			"user":         user,
			"token":        pair.AccessToken,
			"refreshToken": pair.RefreshToken,
		},
	})
}

// OTPRequest 定义了请求验证码 API 的请求体结构。
type OTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// RequestOTP 为手机号下发一次性验证码。
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("RequestOTP: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request payload",
		})
		return
	}

	echoCode, err := h.authService.RequestOTP(c.Request.Context(), req.Phone)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrOTPCooldown) {
			status = http.StatusTooManyRequests
		}
		log.Warnf("RequestOTP: Failed for phone '%s', error: %v", req.Phone, err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": err.Error(),
		})
		return
	}

	data := gin.H{}
	if echoCode != "" {
		// 开发模式下直接回显验证码，省去接短信网关
		data["code"] = echoCode
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Verification code sent",
		"data":    data,
	})
}

// OTPVerifyRequest 定义了验证码登录 API 的请求体结构。
type OTPVerifyRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// VerifyOTP 校验验证码并签发令牌，首次登录自动建号。
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("VerifyOTP: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request payload",
		})
		return
	}

	user, pair, err := h.authService.LoginWithOTP(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, service.ErrInvalidPhone) {
			status = http.StatusBadRequest
		}
		log.Warnf("VerifyOTP: Failed for phone '%s', error: %v", req.Phone, err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": err.Error(),
		})
		return
	}

	log.Infof("User '%s' logged in with OTP", user.Phone)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Login successful",
		"data": gin.H{
			"user":         user,
			"token":        pair.AccessToken,
			"refreshToken": pair.RefreshToken,
		},
	})
}

// GuestLogin 创建一个临时访客会话。
func (h *AuthHandler) GuestLogin(c *gin.Context) {
	user, pair, err := h.authService.LoginAsGuest()
	if err != nil {
		log.Error("GuestLogin: Failed to create guest session", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to create guest session",
		})
		return
	}

	log.Infof("Guest session created, ID: %d", user.ID)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Guest session created",
		"data": gin.H{
			"user":         user,
			"token":        pair.AccessToken,
			"refreshToken": pair.RefreshToken,
		},
	})
}

// RefreshTokenRequest 定义了刷新令牌 API 的请求体结构。
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken 用刷新令牌换取新的令牌对。
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("RefreshToken: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request payload",
		})
		return
	}

	pair, err := h.authService.RefreshToken(req.RefreshToken)
	if err != nil {
		log.Warnf("RefreshToken: Failed to refresh, error: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    http.StatusUnauthorized,
			"message": "Invalid or expired refresh token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Token refreshed",
		"data": gin.H{
			"token":        pair.AccessToken,
			"refreshToken": pair.RefreshToken,
		},
	})
}

// Logout 将当前 token 加入黑名单。
func (h *AuthHandler) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	if err := h.authService.Logout(tokenString); err != nil {
		log.Error("Logout: Failed to logout", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Logout failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Logout successful",
	})
}
