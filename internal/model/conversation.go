// Package model 包含了应用的数据模型定义。
package model

// 消息角色。
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleSystem    = "system"
)

// AssistantMessage 代表存储在 Redis 中的单条助手对话消息。
type AssistantMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"` // "user"、"assistant" 或 "system"
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // epoch millis
}

// StoredTranscript 是对话记录的持久化格式，带版本号以便将来迁移。
type StoredTranscript struct {
	Version  int                `json:"version"`
	Messages []AssistantMessage `json:"messages"`
}

// TranscriptVersion 当前对话记录格式的版本号，版本不符的记录按不存在处理。
const TranscriptVersion = 1

// 报告分析会话的状态机取值。
const (
	AnalysisStateIdle              = "idle"
	AnalysisStateAwaitingSelection = "awaiting-selection"
	AnalysisStateAwaitingPaste     = "awaiting-paste"
	AnalysisStateAnalyzing         = "analyzing"
)

// ReportAnalysisContext 记录一个用户的报告分析会话进行到了哪一步。
type ReportAnalysisContext struct {
	State                  string `json:"state"`
	SelectedReportID       string `json:"selectedReportId,omitempty"`
	SelectedReportFilename string `json:"selectedReportFilename,omitempty"`
}
