package handler

import (
	"errors"
	"net/http"

	"med-assist-go/internal/model"
	"med-assist-go/internal/service"
	"med-assist-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ProfileHandler 负责处理用户健康资料的请求。
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler 创建一个新的 ProfileHandler。
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetProfile 返回当前用户的健康资料。
// 用户尚未填写资料时返回一份确定性的演示资料。
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	details, err := h.profileService.GetProfile(user.ID)
	if err != nil {
		log.Errorf("GetProfile: Failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to load profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    details,
	})
}

// SaveProfile 校验并保存当前用户的健康资料。
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var details model.ProfileDetailsDTO
	if err := c.ShouldBindJSON(&details); err != nil {
		log.Warnf("SaveProfile: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request payload",
		})
		return
	}

	if err := h.profileService.SaveProfile(user.ID, details); err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    http.StatusBadRequest,
				"message": "Profile validation failed",
				"errors":  validationErr.Errors,
			})
			return
		}
		log.Errorf("SaveProfile: Failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to save profile",
		})
		return
	}

	log.Infof("User %d updated profile", user.ID)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Profile saved",
	})
}
