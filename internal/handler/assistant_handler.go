package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"med-assist-go/internal/repository"
	"med-assist-go/internal/service"
	"med-assist-go/pkg/log"
	"med-assist-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// AssistantHandler 负责处理健康助手的对话请求。
type AssistantHandler struct {
	assistantService service.AssistantService
	jwtManager       *token.JWTManager
	userRepo         repository.UserRepository
}

// NewAssistantHandler 创建一个新的 AssistantHandler。
func NewAssistantHandler(assistantService service.AssistantService, jwtManager *token.JWTManager, userRepo repository.UserRepository) *AssistantHandler {
	return &AssistantHandler{
		assistantService: assistantService,
		jwtManager:       jwtManager,
		userRepo:         userRepo,
	}
}

// MessageRequest 定义了发送助手消息 API 的请求体结构。
type MessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendMessage 处理一轮助手对话并返回结构化应答。
func (h *AssistantHandler) SendMessage(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("SendMessage: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request payload",
		})
		return
	}

	reply, err := h.assistantService.HandleMessage(c.Request.Context(), user.ID, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrBlankInput) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    http.StatusBadRequest,
				"message": "Message must not be blank",
			})
			return
		}
		log.Errorf("SendMessage: Failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to process message",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    reply,
	})
}

// GetHistory 返回当前用户的助手对话记录。
func (h *AssistantHandler) GetHistory(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	messages, err := h.assistantService.GetTranscript(c.Request.Context(), user.ID)
	if err != nil {
		log.Errorf("GetHistory: Failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to load conversation history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    messages,
	})
}

// ClearHistory 清空当前用户的助手对话记录与分析上下文。
func (h *AssistantHandler) ClearHistory(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	if err := h.assistantService.ClearTranscript(c.Request.Context(), user.ID); err != nil {
		log.Errorf("ClearHistory: Failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to clear conversation history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Conversation cleared",
	})
}

// wsUserMessage 是 WebSocket 对话中客户端发来的消息结构。
type wsUserMessage struct {
	Message string `json:"message"`
}

// Handle 处理一个传入的 WebSocket 对话连接。
// token 通过路径参数传递，因为浏览器的 WebSocket API 无法自定义请求头。
func (h *AssistantHandler) Handle(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "Invalid token", "data": nil})
		return
	}

	user, err := h.userRepo.FindByID(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "User not found", "data": nil})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立, 用户: %s", user.Phone)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		// 兼容纯文本与 {"message":"..."} 两种载荷
		input := string(raw)
		if len(raw) > 0 && raw[0] == '{' {
			var msg wsUserMessage
			if err := json.Unmarshal(raw, &msg); err == nil && msg.Message != "" {
				input = msg.Message
			}
		}

		if strings.TrimSpace(input) == "" {
			continue
		}

		reply, err := h.assistantService.HandleMessage(c.Request.Context(), user.ID, input)
		if err != nil {
			log.Errorf("WebSocket 处理消息失败, 用户: %d, error: %v", user.ID, err)
			errResp, _ := json.Marshal(gin.H{
				"type":      "error",
				"message":   "Sorry, something went wrong. Please try again.",
				"timestamp": time.Now().UnixMilli(),
			})
			if werr := conn.WriteMessage(websocket.TextMessage, errResp); werr != nil {
				log.Warnf("向 WebSocket 写入消息失败: %v", werr)
				break
			}
			continue
		}

		resp, _ := json.Marshal(reply)
		if err := conn.WriteMessage(websocket.TextMessage, resp); err != nil {
			log.Warnf("向 WebSocket 写入消息失败: %v", err)
			break
		}
	}

	log.Infof("WebSocket 连接已关闭, 用户: %s", user.Phone)
}
