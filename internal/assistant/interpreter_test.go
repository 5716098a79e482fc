package assistant

import (
	"strings"
	"testing"

	"med-assist-go/internal/model"
)

func TestInterpretEmergencyPriority(t *testing.T) {
	// 紧急关键词必须压过同句中的导航和话题关键词
	inputs := []string{
		"I have chest pain",
		"chest pain, take me to home",
		"I think my dad is having a heart attack",
		"she is unconscious",
		"I can't breathe",
		"possible stroke and severe headache",
		"feeling suicidal",
	}

	for _, input := range inputs {
		result := Interpret(input, nil)
		if result.Kind != KindMedical {
			t.Errorf("Interpret(%q).Kind = %q, 期望 medical", input, result.Kind)
		}
		if result.Message != EmergencyGuidance {
			t.Errorf("Interpret(%q) 未返回固定紧急指引", input)
		}
	}
}

func TestInterpretNavigation(t *testing.T) {
	tests := []struct {
		input   string
		target  string
		message string
	}{
		{"go to profile", "/profile", "Navigating to Profile..."},
		{"open home", "/home", "Navigating to Home..."},
		{"navigate to dashboard", "/home", "Navigating to Home..."},
		{"go to sign in", "/signin", "Navigating to Sign In..."},
		{"show reports", "/report", "Navigating to Medical Reports..."},
		{"visit medical reports", "/report", "Navigating to Medical Reports..."},
		{"back to welcome", "/", "Navigating to Welcome..."},
		{"profile", "/profile", "Navigating to Profile..."},
	}

	for _, tt := range tests {
		result := Interpret(tt.input, nil)
		if result.Kind != KindNavigation {
			t.Errorf("Interpret(%q).Kind = %q, 期望 navigation", tt.input, result.Kind)
			continue
		}
		if result.NavigationTarget != tt.target {
			t.Errorf("Interpret(%q).NavigationTarget = %q, 期望 %q", tt.input, result.NavigationTarget, tt.target)
		}
		if result.Message != tt.message {
			t.Errorf("Interpret(%q).Message = %q, 期望 %q", tt.input, result.Message, tt.message)
		}
	}
}

func TestInterpretBlankInput(t *testing.T) {
	for _, input := range []string{"", "   "} {
		result := Interpret(input, nil)
		if result.Kind != KindUnknown {
			t.Errorf("Interpret(%q).Kind = %q, 期望 unknown", input, result.Kind)
		}
		if result.Message == "" {
			t.Errorf("Interpret(%q) 兜底分支应返回非空消息", input)
		}
	}
}

func TestInterpretReportTrigger(t *testing.T) {
	inputs := []string{
		"analyze my report",
		"can you review my reports",
		"please check my lab report",
		"what does my report say",
	}

	for _, input := range inputs {
		result := Interpret(input, nil)
		if result.Kind != KindReportList {
			t.Errorf("Interpret(%q).Kind = %q, 期望 report-list", input, result.Kind)
			continue
		}
		if !result.AwaitingReportSelection {
			t.Errorf("Interpret(%q).AwaitingReportSelection 应为 true", input)
		}
		if result.Message != "" {
			t.Errorf("Interpret(%q).Message = %q, 应留空由编排层填充", input, result.Message)
		}
	}
}

func TestInterpretDeflection(t *testing.T) {
	inputs := []string{
		"convert this app to flutter",
		"can you make a .dart version",
		"write a dart file for this",
	}

	for _, input := range inputs {
		result := Interpret(input, nil)
		if result.Kind != KindHelp {
			t.Errorf("Interpret(%q).Kind = %q, 期望 help", input, result.Kind)
		}
		if !strings.Contains(result.Message, "Flutter/.dart conversion is not supported") {
			t.Errorf("Interpret(%q) 未返回技术栈偏题提示", input)
		}
	}
}

func TestInterpretClarificationGate(t *testing.T) {
	// 首次短问题：反问澄清
	result := Interpret("headache", nil)
	if result.Kind != KindMedical {
		t.Fatalf("Kind = %q, 期望 medical", result.Kind)
	}
	if !strings.Contains(result.Message, "Could you provide more details?") {
		t.Errorf("短问题首次出现应返回澄清问题, got: %q", result.Message)
	}

	// 助手近期已提问：返回完整话题回复
	history := []model.AssistantMessage{
		{Role: model.MessageRoleUser, Content: "headache"},
		{Role: model.MessageRoleAssistant, Content: "How long have you had this headache?"},
	}
	result = Interpret("headache", history)
	if !strings.Contains(result.Message, "COMMON TYPES:") {
		t.Errorf("重复短问题应返回完整话题回复, got: %q", result.Message)
	}

	// 带问号的助手消息在 4 条回看窗口之外：重新进入澄清
	history = []model.AssistantMessage{
		{Role: model.MessageRoleAssistant, Content: "How long have you had this headache?"},
		{Role: model.MessageRoleUser, Content: "a"},
		{Role: model.MessageRoleUser, Content: "b"},
		{Role: model.MessageRoleUser, Content: "c"},
		{Role: model.MessageRoleUser, Content: "d"},
	}
	result = Interpret("headache", history)
	if !strings.Contains(result.Message, "Could you provide more details?") {
		t.Errorf("窗口外的提问不应抑制澄清, got: %q", result.Message)
	}

	// 长问题直接返回完整回复
	result = Interpret("I have had a terrible headache since yesterday morning", nil)
	if !strings.Contains(result.Message, "COMMON TYPES:") {
		t.Errorf("长问题应返回完整话题回复, got: %q", result.Message)
	}
}

func TestInterpretMedicalFallback(t *testing.T) {
	result := Interpret("I feel really sick today", nil)
	if result.Kind != KindMedical {
		t.Fatalf("Kind = %q, 期望 medical", result.Kind)
	}
	if !strings.Contains(result.Message, "I can provide general health information") {
		t.Errorf("泛医疗输入应返回通用健康菜单, got: %q", result.Message)
	}
}

func TestInterpretGreetingAndHelp(t *testing.T) {
	result := Interpret("hello there", nil)
	if result.Kind != KindHelp || !strings.Contains(result.Message, "Hello! I'm your HealthCare assistant.") {
		t.Errorf("问候语未返回问候菜单: %+v", result)
	}

	result = Interpret("what can you do", nil)
	if result.Kind != KindHelp || !strings.Contains(result.Message, "I can help you navigate the app!") {
		t.Errorf("help 输入未返回能力菜单: %+v", result)
	}
}

func TestInterpretUnknown(t *testing.T) {
	result := Interpret("qwerty asdf zxcv", nil)
	if result.Kind != KindUnknown {
		t.Errorf("Kind = %q, 期望 unknown", result.Kind)
	}
	if !strings.Contains(result.Message, "I'm not sure how to help with that.") {
		t.Errorf("未知输入的兜底消息不正确: %q", result.Message)
	}
}
