// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"med-assist-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// 对话记录与分析上下文的保留期。
const conversationTTL = 7 * 24 * time.Hour

// ConversationRepository 定义了助手对话记录与报告分析上下文的操作接口。
type ConversationRepository interface {
	GetTranscript(ctx context.Context, userID uint) ([]model.AssistantMessage, error)
	SaveTranscript(ctx context.Context, userID uint, messages []model.AssistantMessage) error
	ClearTranscript(ctx context.Context, userID uint) error
	GetAnalysisContext(ctx context.Context, userID uint) (model.ReportAnalysisContext, error)
	SaveAnalysisContext(ctx context.Context, userID uint, analysisCtx model.ReportAnalysisContext) error
	GetReportText(ctx context.Context, fileID string) (string, error)
	SaveReportText(ctx context.Context, fileID, text string) error
	DeleteReportText(ctx context.Context, fileID string) error
}

type redisConversationRepository struct {
	redisClient *redis.Client
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(redisClient *redis.Client) ConversationRepository {
	return &redisConversationRepository{redisClient: redisClient}
}

func transcriptKey(userID uint) string {
	return fmt.Sprintf("assistant:transcript:%d", userID)
}

func analysisContextKey(userID uint) string {
	return fmt.Sprintf("assistant:ctx:%d", userID)
}

func reportTextKey(fileID string) string {
	return fmt.Sprintf("report:text:%s", fileID)
}

// GetTranscript 从 Redis 加载对话记录。
// 记录损坏或版本不符时按不存在处理，不向上抛错。
func (r *redisConversationRepository) GetTranscript(ctx context.Context, userID uint) ([]model.AssistantMessage, error) {
	jsonData, err := r.redisClient.Get(ctx, transcriptKey(userID)).Result()
	if err == redis.Nil {
		return []model.AssistantMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}

	var stored model.StoredTranscript
	if err := json.Unmarshal([]byte(jsonData), &stored); err != nil {
		return []model.AssistantMessage{}, nil
	}
	if stored.Version != model.TranscriptVersion {
		return []model.AssistantMessage{}, nil
	}
	return stored.Messages, nil
}

// SaveTranscript 把对话记录写回 Redis，保留最近 50 条。
func (r *redisConversationRepository) SaveTranscript(ctx context.Context, userID uint, messages []model.AssistantMessage) error {
	if len(messages) > 50 {
		messages = messages[len(messages)-50:]
	}
	jsonData, err := json.Marshal(model.StoredTranscript{
		Version:  model.TranscriptVersion,
		Messages: messages,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}
	if err := r.redisClient.Set(ctx, transcriptKey(userID), jsonData, conversationTTL).Err(); err != nil {
		return fmt.Errorf("failed to set transcript: %w", err)
	}
	return nil
}

// ClearTranscript 删除一个用户的对话记录及分析上下文。
func (r *redisConversationRepository) ClearTranscript(ctx context.Context, userID uint) error {
	if err := r.redisClient.Del(ctx, transcriptKey(userID), analysisContextKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear transcript: %w", err)
	}
	return nil
}

// GetAnalysisContext 加载报告分析状态机，缺失或损坏时回到 idle。
func (r *redisConversationRepository) GetAnalysisContext(ctx context.Context, userID uint) (model.ReportAnalysisContext, error) {
	idle := model.ReportAnalysisContext{State: model.AnalysisStateIdle}

	jsonData, err := r.redisClient.Get(ctx, analysisContextKey(userID)).Result()
	if err == redis.Nil {
		return idle, nil
	}
	if err != nil {
		return idle, fmt.Errorf("failed to get analysis context: %w", err)
	}

	var analysisCtx model.ReportAnalysisContext
	if err := json.Unmarshal([]byte(jsonData), &analysisCtx); err != nil {
		return idle, nil
	}
	if analysisCtx.State == "" {
		return idle, nil
	}
	return analysisCtx, nil
}

// SaveAnalysisContext 持久化报告分析状态机。
func (r *redisConversationRepository) SaveAnalysisContext(ctx context.Context, userID uint, analysisCtx model.ReportAnalysisContext) error {
	jsonData, err := json.Marshal(analysisCtx)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis context: %w", err)
	}
	if err := r.redisClient.Set(ctx, analysisContextKey(userID), jsonData, conversationTTL).Err(); err != nil {
		return fmt.Errorf("failed to set analysis context: %w", err)
	}
	return nil
}

// GetReportText 读取管线缓存的报告全文，未缓存时返回空串。
func (r *redisConversationRepository) GetReportText(ctx context.Context, fileID string) (string, error) {
	text, err := r.redisClient.Get(ctx, reportTextKey(fileID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get report text: %w", err)
	}
	return text, nil
}

// SaveReportText 缓存一份报告的提取文本，供助手直接分析。
func (r *redisConversationRepository) SaveReportText(ctx context.Context, fileID, text string) error {
	if err := r.redisClient.Set(ctx, reportTextKey(fileID), text, 30*24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to set report text: %w", err)
	}
	return nil
}

// DeleteReportText 删除报告的文本缓存。
func (r *redisConversationRepository) DeleteReportText(ctx context.Context, fileID string) error {
	if err := r.redisClient.Del(ctx, reportTextKey(fileID)).Err(); err != nil {
		return fmt.Errorf("failed to delete report text: %w", err)
	}
	return nil
}
