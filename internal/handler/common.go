package handler

import (
	"net/http"

	"med-assist-go/internal/model"

	"github.com/gin-gonic/gin"
)

// currentUser 从上下文中取出 AuthMiddleware 注入的 User 对象。
// 取不到时直接写出错误响应并返回 nil。
func currentUser(c *gin.Context) *model.User {
	userValue, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "failed to load user from context",
		})
		return nil
	}

	user, ok := userValue.(*model.User)
	if !ok || user == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "unexpected user type in context",
		})
		return nil
	}
	return user
}
