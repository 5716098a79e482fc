package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"med-assist-go/internal/assistant"
	"med-assist-go/internal/model"
	"med-assist-go/internal/repository"
	"med-assist-go/pkg/log"
	"med-assist-go/pkg/token"
)

// ErrBlankInput 调用方应在入口拦截空白输入，这里兜底返回业务错误。
var ErrBlankInput = errors.New("message must not be blank")

// AssistantReply 一轮对话的结构化应答。
type AssistantReply struct {
	Message          model.AssistantMessage `json:"message"`
	Kind             assistant.CommandKind  `json:"type"`
	NavigationTarget string                 `json:"navigationTarget,omitempty"`
}

// AssistantService 接口定义了助手对话的业务操作。
type AssistantService interface {
	HandleMessage(ctx context.Context, userID uint, input string) (*AssistantReply, error)
	GetTranscript(ctx context.Context, userID uint) ([]model.AssistantMessage, error)
	ClearTranscript(ctx context.Context, userID uint) error
}

// assistantService 持有报告分析状态机，按轮次驱动解释器与分析器。
type assistantService struct {
	conversationRepo repository.ConversationRepository
	fileService      FileService
}

// NewAssistantService 创建一个新的 AssistantService 实例。
func NewAssistantService(conversationRepo repository.ConversationRepository, fileService FileService) AssistantService {
	return &assistantService{
		conversationRepo: conversationRepo,
		fileService:      fileService,
	}
}

// HandleMessage 处理一轮用户输入。根据当前报告分析状态决定把输入
// 交给选择解析、粘贴分析还是命令解释器。除显式的重新提示外，
// 每条终止路径都把状态机归位到 idle。任何内部错误都转换为固定的
// 兜底回复，不向用户抛错。
func (s *assistantService) HandleMessage(ctx context.Context, userID uint, input string) (*AssistantReply, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, ErrBlankInput
	}

	transcript, err := s.conversationRepo.GetTranscript(ctx, userID)
	if err != nil {
		log.Errorf("[AssistantService] 加载对话记录失败, userID: %d, error: %v", userID, err)
		transcript = []model.AssistantMessage{}
	}
	analysisCtx, err := s.conversationRepo.GetAnalysisContext(ctx, userID)
	if err != nil {
		log.Errorf("[AssistantService] 加载分析上下文失败, userID: %d, error: %v", userID, err)
		analysisCtx = model.ReportAnalysisContext{State: model.AnalysisStateIdle}
	}

	history := transcript
	transcript = append(transcript, newMessage(model.MessageRoleUser, input))

	var reply AssistantReply
	var nextCtx model.ReportAnalysisContext

	switch analysisCtx.State {
	case model.AnalysisStateAwaitingSelection:
		reply, nextCtx = s.handleSelectionTurn(ctx, userID, trimmed, analysisCtx)
	case model.AnalysisStateAwaitingPaste:
		reply, nextCtx = s.handlePasteTurn(trimmed, analysisCtx)
	default:
		reply, nextCtx = s.handleCommandTurn(ctx, userID, input, history)
	}

	transcript = append(transcript, reply.Message)
	if err := s.conversationRepo.SaveTranscript(ctx, userID, transcript); err != nil {
		log.Errorf("[AssistantService] 保存对话记录失败, userID: %d, error: %v", userID, err)
	}
	if err := s.conversationRepo.SaveAnalysisContext(ctx, userID, nextCtx); err != nil {
		log.Errorf("[AssistantService] 保存分析上下文失败, userID: %d, error: %v", userID, err)
	}

	return &reply, nil
}

// handleCommandTurn 空闲状态：交给命令解释器，报告触发短语进入选择流程。
func (s *assistantService) handleCommandTurn(ctx context.Context, userID uint, input string, history []model.AssistantMessage) (AssistantReply, model.ReportAnalysisContext) {
	idle := model.ReportAnalysisContext{State: model.AnalysisStateIdle}

	result := assistant.Interpret(input, history)
	if result.Kind != assistant.KindReportList {
		return AssistantReply{
			Message:          newMessage(model.MessageRoleAssistant, result.Message),
			Kind:             result.Kind,
			NavigationTarget: result.NavigationTarget,
		}, idle
	}

	// 报告触发短语：用实时文件列表填充回复
	files, err := s.fileService.List(userID)
	if err != nil {
		log.Errorf("[AssistantService] 获取报告列表失败, userID: %d, error: %v", userID, err)
		return AssistantReply{
			Message: newMessage(model.MessageRoleAssistant, assistant.GetErrorFallbackResponse()),
			Kind:    assistant.KindHelp,
		}, idle
	}

	if len(files) == 0 {
		// 没有任何已上传报告时直接进入粘贴流程
		message := "You don't have any uploaded reports yet. You can paste the text of your report here and I'll analyze it for you."
		return AssistantReply{
			Message: newMessage(model.MessageRoleAssistant, message),
			Kind:    assistant.KindReportPasteRequest,
		}, model.ReportAnalysisContext{State: model.AnalysisStateAwaitingPaste}
	}

	var b strings.Builder
	b.WriteString("Which report would you like me to analyze? Reply with the number or the filename:\n\n")
	for i, f := range files {
		fmt.Fprintf(&b, "%d. %s\n", i+1, f.FileName)
	}
	return AssistantReply{
		Message: newMessage(model.MessageRoleAssistant, b.String()),
		Kind:    assistant.KindReportList,
	}, model.ReportAnalysisContext{State: model.AnalysisStateAwaitingSelection}
}

// handleSelectionTurn 等待选择状态：把输入解析为序号或文件名。
func (s *assistantService) handleSelectionTurn(ctx context.Context, userID uint, trimmed string, analysisCtx model.ReportAnalysisContext) (AssistantReply, model.ReportAnalysisContext) {
	idle := model.ReportAnalysisContext{State: model.AnalysisStateIdle}

	files, err := s.fileService.List(userID)
	if err != nil {
		log.Errorf("[AssistantService] 获取报告列表失败, userID: %d, error: %v", userID, err)
		return AssistantReply{
			Message: newMessage(model.MessageRoleAssistant, assistant.GetErrorFallbackResponse()),
			Kind:    assistant.KindHelp,
		}, idle
	}

	selected, ok := ResolveReportSelection(trimmed, files)
	if !ok {
		// 重新提示，保持等待选择状态
		message := "I couldn't find that report. Reply with the number or part of the filename from the list above."
		return AssistantReply{
			Message: newMessage(model.MessageRoleAssistant, message),
			Kind:    assistant.KindReportList,
		}, analysisCtx
	}

	// analyzing 是瞬态：提取与分析在本轮内完成，随后立刻归位
	text, err := s.reportText(ctx, userID, selected)
	if err != nil {
		// 内容问题走粘贴回退，基础设施故障走固定兜底并归位
		if !isExtractionError(err) {
			log.Errorf("[AssistantService] 读取报告内容失败, fileID: %s, error: %v", selected.FileID, err)
			return AssistantReply{
				Message: newMessage(model.MessageRoleAssistant, assistant.GetErrorFallbackResponse()),
				Kind:    assistant.KindHelp,
			}, idle
		}
		message := fmt.Sprintf("I couldn't read the contents of %s (it may be a scanned or binary file). You can paste the report text here and I'll analyze it directly.", selected.FileName)
		return AssistantReply{
				Message: newMessage(model.MessageRoleAssistant, message),
				Kind:    assistant.KindReportPasteRequest,
			}, model.ReportAnalysisContext{
				State:                  model.AnalysisStateAwaitingPaste,
				SelectedReportID:       selected.FileID,
				SelectedReportFilename: selected.FileName,
			}
	}

	analysis := assistant.AnalyzeReportText(text, selected.FileName)
	return AssistantReply{
		Message: newMessage(model.MessageRoleAssistant, assistant.FormatAnalysisMessage(analysis, selected.FileName)),
		Kind:    assistant.KindReportAnalysis,
	}, idle
}

// handlePasteTurn 等待粘贴状态：输入即报告文本，过短时重新提示。
func (s *assistantService) handlePasteTurn(trimmed string, analysisCtx model.ReportAnalysisContext) (AssistantReply, model.ReportAnalysisContext) {
	if len(trimmed) < 20 {
		message := "That looks too short to be a report. Please paste the full text of your report (at least a few lines)."
		return AssistantReply{
			Message: newMessage(model.MessageRoleAssistant, message),
			Kind:    assistant.KindReportPasteRequest,
		}, analysisCtx
	}

	filename := analysisCtx.SelectedReportFilename
	if filename == "" {
		filename = "pasted report"
	}

	analysis := assistant.AnalyzeReportText(trimmed, filename)
	return AssistantReply{
		Message: newMessage(model.MessageRoleAssistant, assistant.FormatAnalysisMessage(analysis, filename)),
		Kind:    assistant.KindReportAnalysis,
	}, model.ReportAnalysisContext{State: model.AnalysisStateIdle}
}

// isExtractionError 区分报告内容本身的问题（可通过粘贴文本绕开）
// 与存储、网络等基础设施故障。
func isExtractionError(err error) bool {
	return errors.Is(err, assistant.ErrBinaryFormat) ||
		errors.Is(err, assistant.ErrInvalidText) ||
		errors.Is(err, assistant.ErrExtractionFailed)
}

// reportText 优先使用管线缓存的提取文本，未命中时回源做即时提取。
func (s *assistantService) reportText(ctx context.Context, userID uint, file model.ReportFileDTO) (string, error) {
	cached, err := s.conversationRepo.GetReportText(ctx, file.FileID)
	if err != nil {
		log.Errorf("[AssistantService] 读取报告文本缓存失败, fileID: %s, error: %v", file.FileID, err)
	}
	if cached != "" {
		return cached, nil
	}

	data, meta, err := s.fileService.GetFileBytes(ctx, userID, file.FileID)
	if err != nil {
		return "", err
	}
	return assistant.ExtractText(data, meta.FileName, meta.ContentType)
}

// ResolveReportSelection 把用户输入解析为报告选择：数字按 1 起始的
// 序号，其余输入对文件名做大小写不敏感的子串匹配，取第一个命中。
func ResolveReportSelection(input string, files []model.ReportFileDTO) (model.ReportFileDTO, bool) {
	if index, err := strconv.Atoi(strings.TrimSpace(input)); err == nil {
		if index >= 1 && index <= len(files) {
			return files[index-1], true
		}
		return model.ReportFileDTO{}, false
	}

	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return model.ReportFileDTO{}, false
	}
	for _, f := range files {
		if strings.Contains(strings.ToLower(f.FileName), needle) {
			return f, true
		}
	}
	return model.ReportFileDTO{}, false
}

// GetTranscript 返回用户的助手对话记录。
func (s *assistantService) GetTranscript(ctx context.Context, userID uint) ([]model.AssistantMessage, error) {
	return s.conversationRepo.GetTranscript(ctx, userID)
}

// ClearTranscript 清空对话记录并重置分析状态机。
func (s *assistantService) ClearTranscript(ctx context.Context, userID uint) error {
	return s.conversationRepo.ClearTranscript(ctx, userID)
}

func newMessage(role, content string) model.AssistantMessage {
	return model.AssistantMessage{
		ID:        fmt.Sprintf("%d-%s", time.Now().UnixMilli(), token.GenerateRandomString(4)),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}
