package handler

import (
	"net/http"
	"strconv"

	"med-assist-go/internal/repository"
	"med-assist-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AdminHandler 负责处理管理员后台的请求。
type AdminHandler struct {
	userRepo repository.UserRepository
}

// NewAdminHandler 创建一个新的 AdminHandler。
func NewAdminHandler(userRepo repository.UserRepository) *AdminHandler {
	return &AdminHandler{userRepo: userRepo}
}

// ListUsers 分页返回全部用户。
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size < 1 || size > 100 {
		size = 20
	}

	users, total, err := h.userRepo.FindWithPagination((page-1)*size, size)
	if err != nil {
		log.Errorf("ListUsers: Failed to query users, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to list users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"users": users,
			"total": total,
			"page":  page,
			"size":  size,
		},
	})
}
