package handler

import (
	"errors"
	"net/http"

	"med-assist-go/internal/service"
	"med-assist-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ReportHandler 负责处理医疗报告文件的上传、列表、下载与删除。
type ReportHandler struct {
	fileService service.FileService
}

// NewReportHandler 创建一个新的 ReportHandler。
func NewReportHandler(fileService service.FileService) *ReportHandler {
	return &ReportHandler{fileService: fileService}
}

// Upload 接收 multipart 表单中的报告文件并触发异步处理。
func (h *ReportHandler) Upload(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Warnf("Upload: Missing file in request, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "A file field is required",
		})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Errorf("Upload: Failed to open uploaded file '%s', error: %v", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to read uploaded file",
		})
		return
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	file, err := h.fileService.Upload(c.Request.Context(), user.ID, fileHeader.Filename, contentType, fileHeader.Size, src)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrEmptyUpload) || errors.Is(err, service.ErrFileTooLarge) {
			status = http.StatusBadRequest
		}
		log.Errorf("Upload: Failed for user %d, file '%s', error: %v", user.ID, fileHeader.Filename, err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": err.Error(),
		})
		return
	}

	log.Infof("User %d uploaded report '%s', FileID: %s", user.ID, file.FileName, file.FileID)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Upload successful, processing has started",
		"data":    file,
	})
}

// List 返回当前用户的全部报告，按上传时间倒序。
func (h *ReportHandler) List(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	files, err := h.fileService.List(user.ID)
	if err != nil {
		log.Errorf("List: Failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to list reports",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    files,
	})
}

// Delete 删除当前用户的一份报告及其派生数据。
func (h *ReportHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	fileID := c.Param("fileId")
	if err := h.fileService.Delete(c.Request.Context(), user.ID, fileID); err != nil {
		status, message := reportErrorStatus(err)
		log.Warnf("Delete: Failed for user %d, FileID: %s, error: %v", user.ID, fileID, err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": message,
		})
		return
	}

	log.Infof("User %d deleted report, FileID: %s", user.ID, fileID)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Report deleted",
	})
}

// DownloadURL 为报告原始文件生成一个短时效的下载链接。
func (h *ReportHandler) DownloadURL(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	fileID := c.Param("fileId")
	url, err := h.fileService.GetDownloadURL(c.Request.Context(), user.ID, fileID)
	if err != nil {
		status, message := reportErrorStatus(err)
		log.Warnf("DownloadURL: Failed for user %d, FileID: %s, error: %v", user.ID, fileID, err)
		c.JSON(status, gin.H{
			"code":    status,
			"message": message,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"url": url},
	})
}

// reportErrorStatus 将文件服务的业务错误映射为 HTTP 状态码。
func reportErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrFileNotFound):
		return http.StatusNotFound, "Report not found"
	case errors.Is(err, service.ErrNotFileOwner):
		return http.StatusForbidden, "Report does not belong to this user"
	default:
		return http.StatusInternalServerError, "Failed to process report"
	}
}
