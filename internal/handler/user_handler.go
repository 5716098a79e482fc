package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserHandler 负责处理当前用户相关的请求。
type UserHandler struct{}

// NewUserHandler 创建一个新的 UserHandler。
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me 返回当前登录用户的基本信息。
// 用户信息已经由 AuthMiddleware 注入到上下文中。
func (h *UserHandler) Me(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user from context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": user, "message": "success"})
}
