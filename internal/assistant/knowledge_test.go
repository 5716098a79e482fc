package assistant

import (
	"strings"
	"testing"

	"med-assist-go/internal/model"
)

func TestFindMedicalTopic(t *testing.T) {
	tests := []struct {
		input       string
		wantKeyword string
	}{
		{"I have a migraine", "headache"},
		{"my blood sugar is acting up", "diabetes"},
		{"questions about my prescription", "medication"},
		{"cardiac concerns", "chest pain"},
		{"running a temperature", "fever"},
	}

	for _, tt := range tests {
		topic := FindMedicalTopic(tt.input)
		if topic == nil {
			t.Errorf("FindMedicalTopic(%q) = nil", tt.input)
			continue
		}
		if topic.Keywords[0] != tt.wantKeyword {
			t.Errorf("FindMedicalTopic(%q) 命中 %q, 期望 %q 所在话题", tt.input, topic.Keywords[0], tt.wantKeyword)
		}
	}

	if topic := FindMedicalTopic("completely unrelated text"); topic != nil {
		t.Errorf("无关输入不应命中话题: %v", topic.Keywords)
	}
}

func TestNeedsClarification(t *testing.T) {
	// 短问题 + 无历史 → 需要澄清
	if !NeedsClarification("headache", nil) {
		t.Error("首次短问题应需要澄清")
	}

	// 超过 3 个词不澄清
	if NeedsClarification("I have a bad headache today", nil) {
		t.Error("长问题不应澄清")
	}

	// 最近 4 条中助手已提问则不再澄清
	history := []model.AssistantMessage{
		{Role: model.MessageRoleAssistant, Content: "How severe is the pain?"},
	}
	if NeedsClarification("headache", history) {
		t.Error("助手近期已提问，不应重复澄清")
	}

	// 非助手消息中的问号不算
	history = []model.AssistantMessage{
		{Role: model.MessageRoleUser, Content: "what should I do?"},
	}
	if !NeedsClarification("headache", history) {
		t.Error("用户消息中的问号不应抑制澄清")
	}
}

func TestGenerateClarifyingResponse(t *testing.T) {
	topic := FindMedicalTopic("fever")
	if topic == nil {
		t.Fatal("fever 话题缺失")
	}

	response := GenerateClarifyingResponse(topic)
	// 只取前 3 个问题
	for _, q := range topic.ClarifyingQuestions[:3] {
		if !strings.Contains(response, q) {
			t.Errorf("澄清回复缺少问题 %q", q)
		}
	}
	if strings.Contains(response, topic.ClarifyingQuestions[3]) {
		t.Errorf("澄清回复不应包含第 4 个问题")
	}
}

func TestGenerateMedicalResponseEmergencyBanner(t *testing.T) {
	topic := FindMedicalTopic("chest pain")
	if topic == nil || !topic.IsEmergency {
		t.Fatal("chest pain 应为紧急话题")
	}

	response := GenerateMedicalResponse(topic)
	if !strings.HasPrefix(response, EmergencyGuidance) {
		t.Error("紧急话题回复应以紧急指引开头")
	}
	if !strings.Contains(response, "RED FLAGS:") {
		t.Error("紧急话题回复应列出红旗信号")
	}
	for _, flag := range topic.RedFlags {
		if !strings.Contains(response, flag) {
			t.Errorf("缺少红旗条目 %q", flag)
		}
	}
}

func TestGenerateMedicalResponseNonEmergency(t *testing.T) {
	topic := FindMedicalTopic("cough")
	if topic == nil {
		t.Fatal("cough 话题缺失")
	}

	response := GenerateMedicalResponse(topic)
	if response != topic.Response {
		t.Error("非紧急话题应原样返回固定回复")
	}
	if !strings.Contains(response, "educational purposes only") {
		t.Error("回复末尾应带免责声明")
	}
}
