package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"med-assist-go/internal/assistant"
	"med-assist-go/internal/model"
)

// fakeConversationRepo 把对话记录和分析上下文保存在内存里。
type fakeConversationRepo struct {
	transcripts map[uint][]model.AssistantMessage
	contexts    map[uint]model.ReportAnalysisContext
	texts       map[string]string
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		transcripts: make(map[uint][]model.AssistantMessage),
		contexts:    make(map[uint]model.ReportAnalysisContext),
		texts:       make(map[string]string),
	}
}

func (r *fakeConversationRepo) GetTranscript(ctx context.Context, userID uint) ([]model.AssistantMessage, error) {
	return r.transcripts[userID], nil
}

func (r *fakeConversationRepo) SaveTranscript(ctx context.Context, userID uint, messages []model.AssistantMessage) error {
	r.transcripts[userID] = messages
	return nil
}

func (r *fakeConversationRepo) ClearTranscript(ctx context.Context, userID uint) error {
	delete(r.transcripts, userID)
	delete(r.contexts, userID)
	return nil
}

func (r *fakeConversationRepo) GetAnalysisContext(ctx context.Context, userID uint) (model.ReportAnalysisContext, error) {
	if stored, ok := r.contexts[userID]; ok {
		return stored, nil
	}
	return model.ReportAnalysisContext{State: model.AnalysisStateIdle}, nil
}

func (r *fakeConversationRepo) SaveAnalysisContext(ctx context.Context, userID uint, analysisCtx model.ReportAnalysisContext) error {
	r.contexts[userID] = analysisCtx
	return nil
}

func (r *fakeConversationRepo) GetReportText(ctx context.Context, fileID string) (string, error) {
	return r.texts[fileID], nil
}

func (r *fakeConversationRepo) SaveReportText(ctx context.Context, fileID, text string) error {
	r.texts[fileID] = text
	return nil
}

func (r *fakeConversationRepo) DeleteReportText(ctx context.Context, fileID string) error {
	delete(r.texts, fileID)
	return nil
}

// fakeFileService 返回固定的文件列表与内容。
type fakeFileService struct {
	files    []model.ReportFileDTO
	data     map[string][]byte
	meta     map[string]*model.MedicalFile
	bytesErr error
}

func (f *fakeFileService) Upload(ctx context.Context, userID uint, fileName, contentType string, size int64, reader io.Reader) (*model.MedicalFile, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeFileService) List(userID uint) ([]model.ReportFileDTO, error) {
	return f.files, nil
}

func (f *fakeFileService) Delete(ctx context.Context, userID uint, fileID string) error {
	return nil
}

func (f *fakeFileService) GetDownloadURL(ctx context.Context, userID uint, fileID string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeFileService) GetFileBytes(ctx context.Context, userID uint, fileID string) ([]byte, *model.MedicalFile, error) {
	if f.bytesErr != nil {
		return nil, nil, f.bytesErr
	}
	return f.data[fileID], f.meta[fileID], nil
}

func contextOf(t *testing.T, repo *fakeConversationRepo, userID uint) model.ReportAnalysisContext {
	t.Helper()
	saved, err := repo.GetAnalysisContext(context.Background(), userID)
	if err != nil {
		t.Fatalf("读取分析上下文失败: %v", err)
	}
	return saved
}

func TestHandleMessageSelectionRoundTrip(t *testing.T) {
	repo := newFakeConversationRepo()
	repo.texts["f1"] = "Glucose: 105 mg/dL (normal range 70-99). Result is elevated."
	files := &fakeFileService{files: selectionFiles()}
	svc := NewAssistantService(repo, files)
	ctx := context.Background()

	// 触发短语进入等待选择状态
	reply, err := svc.HandleMessage(ctx, 1, "please analyze my report")
	if err != nil {
		t.Fatalf("HandleMessage 返回错误: %v", err)
	}
	if reply.Kind != assistant.KindReportList {
		t.Fatalf("触发轮 Kind = %q, 期望 report-list", reply.Kind)
	}
	if got := contextOf(t, repo, 1); got.State != model.AnalysisStateAwaitingSelection {
		t.Fatalf("触发轮后状态 = %q, 期望 awaiting-selection", got.State)
	}

	// 按序号选择后完成分析并归位到零值 idle
	reply, err = svc.HandleMessage(ctx, 1, "1")
	if err != nil {
		t.Fatalf("HandleMessage 返回错误: %v", err)
	}
	if reply.Kind != assistant.KindReportAnalysis {
		t.Fatalf("选择轮 Kind = %q, 期望 report-analysis", reply.Kind)
	}
	if !strings.Contains(reply.Message.Content, "Analysis of: Blood_Panel_June.txt") {
		t.Errorf("分析回复缺少文件名标题: %q", reply.Message.Content)
	}
	if got := contextOf(t, repo, 1); got != (model.ReportAnalysisContext{State: model.AnalysisStateIdle}) {
		t.Errorf("分析完成后上下文应为零值 idle, got: %+v", got)
	}
}

func TestHandleMessagePasteLeg(t *testing.T) {
	repo := newFakeConversationRepo()
	files := &fakeFileService{}
	svc := NewAssistantService(repo, files)
	ctx := context.Background()

	// 没有任何已上传报告时直接进入粘贴流程
	reply, err := svc.HandleMessage(ctx, 2, "analyze my report")
	if err != nil {
		t.Fatalf("HandleMessage 返回错误: %v", err)
	}
	if reply.Kind != assistant.KindReportPasteRequest {
		t.Fatalf("空列表轮 Kind = %q, 期望 report-paste-request", reply.Kind)
	}
	if got := contextOf(t, repo, 2); got.State != model.AnalysisStateAwaitingPaste {
		t.Fatalf("空列表轮后状态 = %q, 期望 awaiting-paste", got.State)
	}

	// 过短的粘贴重新提示并保持原状态
	reply, err = svc.HandleMessage(ctx, 2, "too short")
	if err != nil {
		t.Fatalf("HandleMessage 返回错误: %v", err)
	}
	if reply.Kind != assistant.KindReportPasteRequest {
		t.Fatalf("短粘贴轮 Kind = %q, 期望 report-paste-request", reply.Kind)
	}
	if got := contextOf(t, repo, 2); got.State != model.AnalysisStateAwaitingPaste {
		t.Fatalf("短粘贴后状态 = %q, 期望仍为 awaiting-paste", got.State)
	}

	// 足够长的粘贴完成分析并归位到零值 idle
	paste := "Hemoglobin: 13.8 g/dL within normal limits. Cholesterol: 210 mg/dL slightly high."
	reply, err = svc.HandleMessage(ctx, 2, paste)
	if err != nil {
		t.Fatalf("HandleMessage 返回错误: %v", err)
	}
	if reply.Kind != assistant.KindReportAnalysis {
		t.Fatalf("粘贴轮 Kind = %q, 期望 report-analysis", reply.Kind)
	}
	if !strings.Contains(reply.Message.Content, "Analysis of: pasted report") {
		t.Errorf("粘贴分析标题不正确: %q", reply.Message.Content)
	}
	if got := contextOf(t, repo, 2); got != (model.ReportAnalysisContext{State: model.AnalysisStateIdle}) {
		t.Errorf("粘贴分析后上下文应为零值 idle, got: %+v", got)
	}
}

func TestHandlePasteTurnPreservesSelectionOnReprompt(t *testing.T) {
	svc := &assistantService{}
	awaiting := model.ReportAnalysisContext{
		State:                  model.AnalysisStateAwaitingPaste,
		SelectedReportID:       "f2",
		SelectedReportFilename: "xray-summary.md",
	}

	reply, next := svc.handlePasteTurn("hm", awaiting)
	if reply.Kind != assistant.KindReportPasteRequest {
		t.Errorf("短粘贴 Kind = %q, 期望 report-paste-request", reply.Kind)
	}
	if next != awaiting {
		t.Errorf("短粘贴应原样保留上下文, got: %+v", next)
	}

	paste := strings.Repeat("Blood pressure 128/82 mmHg. ", 3)
	reply, next = svc.handlePasteTurn(paste, awaiting)
	if reply.Kind != assistant.KindReportAnalysis {
		t.Errorf("完整粘贴 Kind = %q, 期望 report-analysis", reply.Kind)
	}
	if !strings.Contains(reply.Message.Content, "Analysis of: xray-summary.md") {
		t.Errorf("粘贴分析应沿用选中的文件名: %q", reply.Message.Content)
	}
	if next != (model.ReportAnalysisContext{State: model.AnalysisStateIdle}) {
		t.Errorf("完整粘贴后应为零值 idle, 不得残留选中文件: %+v", next)
	}
}

func TestHandleMessageBinaryFileFallsBackToPaste(t *testing.T) {
	repo := newFakeConversationRepo()
	repo.contexts[3] = model.ReportAnalysisContext{State: model.AnalysisStateAwaitingSelection}
	files := &fakeFileService{
		files: []model.ReportFileDTO{{FileID: "scan1", FileName: "chest-scan.png"}},
		data:  map[string][]byte{"scan1": {0x89, 0x50, 0x4E, 0x47}},
		meta:  map[string]*model.MedicalFile{"scan1": {FileID: "scan1", FileName: "chest-scan.png", ContentType: "image/png"}},
	}
	svc := NewAssistantService(repo, files)

	reply, err := svc.HandleMessage(context.Background(), 3, "chest-scan")
	if err != nil {
		t.Fatalf("HandleMessage 返回错误: %v", err)
	}
	if reply.Kind != assistant.KindReportPasteRequest {
		t.Fatalf("二进制文件轮 Kind = %q, 期望 report-paste-request", reply.Kind)
	}
	got := contextOf(t, repo, 3)
	if got.State != model.AnalysisStateAwaitingPaste {
		t.Errorf("二进制文件后状态 = %q, 期望 awaiting-paste", got.State)
	}
	if got.SelectedReportID != "scan1" || got.SelectedReportFilename != "chest-scan.png" {
		t.Errorf("粘贴回退应记住选中的报告, got: %+v", got)
	}
}

func TestHandleMessageBackendFailureUsesErrorFallback(t *testing.T) {
	repo := newFakeConversationRepo()
	repo.contexts[4] = model.ReportAnalysisContext{State: model.AnalysisStateAwaitingSelection}
	files := &fakeFileService{
		files:    []model.ReportFileDTO{{FileID: "f1", FileName: "Blood_Panel_June.txt"}},
		bytesErr: errors.New("object storage unavailable"),
	}
	svc := NewAssistantService(repo, files)

	reply, err := svc.HandleMessage(context.Background(), 4, "1")
	if err != nil {
		t.Fatalf("HandleMessage 返回错误: %v", err)
	}
	if reply.Message.Content != assistant.GetErrorFallbackResponse() {
		t.Errorf("基础设施故障应返回固定兜底文案, got: %q", reply.Message.Content)
	}
	if got := contextOf(t, repo, 4); got != (model.ReportAnalysisContext{State: model.AnalysisStateIdle}) {
		t.Errorf("基础设施故障后上下文应为零值 idle, got: %+v", got)
	}
}

func selectionFiles() []model.ReportFileDTO {
	return []model.ReportFileDTO{
		{FileID: "f1", FileName: "Blood_Panel_June.txt"},
		{FileID: "f2", FileName: "xray-summary.md"},
		{FileID: "f3", FileName: "annual-checkup.csv"},
	}
}

func TestResolveReportSelectionByIndex(t *testing.T) {
	files := selectionFiles()

	tests := []struct {
		input  string
		wantID string
		ok     bool
	}{
		{"1", "f1", true},
		{"3", "f3", true},
		{" 2 ", "f2", true},
		{"0", "", false},
		{"4", "", false},
		{"-1", "", false},
	}

	for _, tt := range tests {
		got, ok := ResolveReportSelection(tt.input, files)
		if ok != tt.ok {
			t.Errorf("ResolveReportSelection(%q) ok = %v, 期望 %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && got.FileID != tt.wantID {
			t.Errorf("ResolveReportSelection(%q) = %q, 期望 %q", tt.input, got.FileID, tt.wantID)
		}
	}
}

func TestResolveReportSelectionByFilename(t *testing.T) {
	files := selectionFiles()

	tests := []struct {
		input  string
		wantID string
		ok     bool
	}{
		{"xray", "f2", true},
		{"BLOOD_PANEL", "f1", true},
		{"checkup", "f3", true},
		{"mri", "", false},
		{"   ", "", false},
	}

	for _, tt := range tests {
		got, ok := ResolveReportSelection(tt.input, files)
		if ok != tt.ok {
			t.Errorf("ResolveReportSelection(%q) ok = %v, 期望 %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && got.FileID != tt.wantID {
			t.Errorf("ResolveReportSelection(%q) = %q, 期望 %q", tt.input, got.FileID, tt.wantID)
		}
	}
}

func TestResolveReportSelectionFirstMatchWins(t *testing.T) {
	files := []model.ReportFileDTO{
		{FileID: "a", FileName: "report-2024.txt"},
		{FileID: "b", FileName: "report-2025.txt"},
	}
	got, ok := ResolveReportSelection("report", files)
	if !ok || got.FileID != "a" {
		t.Errorf("多个命中时应取第一个, got: %+v ok=%v", got, ok)
	}
}
