package handler

import (
	"net/http"
	"strconv"

	"med-assist-go/internal/service"
	"med-assist-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SearchHandler 负责处理报告全文检索的请求。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search 在当前用户的报告全文中检索关键词。
func (h *SearchHandler) Search(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Query parameter 'query' is required",
		})
		return
	}

	topK, _ := strconv.Atoi(c.DefaultQuery("topK", "10"))

	results, err := h.searchService.SearchReports(c.Request.Context(), user.ID, query, topK)
	if err != nil {
		log.Errorf("Search: Failed for user %d, query '%s', error: %v", user.ID, query, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Search failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    results,
	})
}
