package assistant

import (
	"fmt"
	"regexp"
	"strings"

	"med-assist-go/internal/model"
)

// CommandKind 标记一次解释的意图分类。
type CommandKind string

const (
	KindNavigation         CommandKind = "navigation"
	KindHelp               CommandKind = "help"
	KindUnknown            CommandKind = "unknown"
	KindMedical            CommandKind = "medical"
	KindReportList         CommandKind = "report-list"
	KindReportAnalysis     CommandKind = "report-analysis"
	KindReportPasteRequest CommandKind = "report-paste-request"
)

// CommandResult 是一次命令解释的结构化结果，只在单轮内使用，不持久化。
type CommandResult struct {
	Kind                    CommandKind `json:"type"`
	Message                 string      `json:"message"`
	NavigationTarget        string      `json:"navigationTarget,omitempty"`
	AwaitingReportSelection bool        `json:"awaitingReportSelection,omitempty"`
	AwaitingReportText      bool        `json:"awaitingReportText,omitempty"`
}

// 技术栈偏题检测（最高优先级）。
var deflectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(flutter|flitter)\b`),
	regexp.MustCompile(`(?i)\.dart\b`),
	regexp.MustCompile(`(?i)\bdart\s+(file|extension|code)\b`),
}

const deflectionMessage = "Flutter/.dart conversion is not supported in this project.\n\nThis application uses:\n• React + TypeScript for the frontend\n• Motoko for the backend (Internet Computer)\n• Tailwind CSS for styling\n\nI can help you:\n1. Build the requested feature in the existing React + TypeScript app\n2. Recreate specific functionality within the current stack\n\nWhat feature or process would you like to implement? I'm here to help you build it in React!"

// 报告分析触发短语。
var reportTriggerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(analyze|analyse|check|review|read|explain|interpret|look at)\b.*\breports?\b`),
	regexp.MustCompile(`(?i)\breports?\b.*\b(analyze|analyse|analysis|check|review|explain|interpret)\b`),
	regexp.MustCompile(`(?i)\bwhat\s+(does|do)\s+my\s+(report|results?|labs?)\s+(say|mean)\b`),
}

// 紧急关键词。命中即无条件返回固定紧急指引，优先于导航和话题匹配。
var emergencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bchest pain\b`),
	regexp.MustCompile(`(?i)\bheart attack\b`),
	regexp.MustCompile(`(?i)\b(can't|cannot|can not|difficulty|trouble)\s+breath`),
	regexp.MustCompile(`(?i)\bshortness of breath\b`),
	regexp.MustCompile(`(?i)\bstroke\b`),
	regexp.MustCompile(`(?i)\bsevere bleeding\b`),
	regexp.MustCompile(`(?i)\b(unconscious|loss of consciousness)\b`),
	regexp.MustCompile(`(?i)\bsuicid(e|al)\b`),
	regexp.MustCompile(`(?i)\boverdose\b`),
	regexp.MustCompile(`(?i)\bseizure\b`),
}

// navigationRule 一条导航规则：正则、目标路由和展示名。
type navigationRule struct {
	pattern *regexp.Regexp
	target  string
	label   string
}

// 导航规则按序匹配，动词短语在前，裸名词兜底在后。
var navigationRules = []navigationRule{
	{regexp.MustCompile(`(?i)\b(go to|open|navigate to|take me to|show|visit)\s+(home|dashboard)\b`), "/home", "Home"},
	{regexp.MustCompile(`(?i)\b(go to|open|navigate to|take me to|show|visit)\s+(profile|account|settings)\b`), "/profile", "Profile"},
	{regexp.MustCompile(`(?i)\b(go to|open|navigate to|take me to|show|visit)\s+(sign in|login|signin)\b`), "/signin", "Sign In"},
	{regexp.MustCompile(`(?i)\b(go to|open|navigate to|take me to|show|visit)\s+((medical\s+)?reports?)\b`), "/report", "Medical Reports"},
	{regexp.MustCompile(`(?i)\b(go to|open|navigate to|take me to|show|visit)\s+(welcome|start|beginning|main)\b`), "/", "Welcome"},
	{regexp.MustCompile(`(?i)\b(back to|return to)\s+(home|dashboard)\b`), "/home", "Home"},
	{regexp.MustCompile(`(?i)\b(back to|return to)\s+(welcome|start)\b`), "/", "Welcome"},
	{regexp.MustCompile(`(?i)\bhome\b`), "/home", "Home"},
	{regexp.MustCompile(`(?i)\bprofile\b`), "/profile", "Profile"},
	{regexp.MustCompile(`(?i)\breports?\b`), "/report", "Medical Reports"},
}

// 泛医疗词，没有命中具体话题时用于兜底判断。
var medicalSoundingPattern = regexp.MustCompile(`(?i)\b(symptom|symptoms|pain|sick|ill|hurt|ache|doctor|health|medical|nausea|dizzy|dizziness|rash|injury|vomit|infection)\b`)

var greetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(hi|hello|hey|greetings)\b`),
}

const greetingMessage = `Hello! I'm your HealthCare assistant. I can help you navigate the app. Try saying "go to home" or "open profile". Say "help" to see all available commands.`

var helpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(help|what can you do|commands|how do i|assist)\b`),
	regexp.MustCompile(`(?i)\b(what|how)\b.*\b(work|use)\b`),
}

const helpMessage = "I can help you navigate the app! Try saying:\n\n• \"Go to home\" or \"Open home\"\n• \"Go to profile\" or \"Show profile\"\n• \"Go to sign in\"\n• \"Back to welcome\"\n\nYou can also type these commands or ask me for help anytime."

const unknownMessage = "I'm not sure how to help with that. I can navigate you to different pages in the app. Try:\n\n• \"Go to home\"\n• \"Open profile\"\n• \"Go to sign in\"\n• \"Back to welcome\"\n\nSay \"help\" to see all available commands."

// Interpret 把一条用户输入分类为固定意图之一。纯函数：不修改对话
// 记录，不触发导航，任何输入都不会 panic。各阶段按序短路匹配，
// 紧急关键词优先于导航和话题。
func Interpret(userInput string, history []model.AssistantMessage) CommandResult {
	normalized := strings.TrimSpace(strings.ToLower(userInput))

	// 1. 不支持的技术栈偏题
	for _, pattern := range deflectionPatterns {
		if pattern.MatchString(normalized) {
			return CommandResult{Kind: KindHelp, Message: deflectionMessage}
		}
	}

	// 2. 报告分析触发短语，消息留空由编排层补齐文件列表
	for _, pattern := range reportTriggerPatterns {
		if pattern.MatchString(normalized) {
			return CommandResult{Kind: KindReportList, AwaitingReportSelection: true}
		}
	}

	// 3. 紧急关键词，无条件返回固定指引
	for _, pattern := range emergencyPatterns {
		if pattern.MatchString(normalized) {
			return CommandResult{Kind: KindMedical, Message: EmergencyGuidance}
		}
	}

	// 4. 导航短语
	for _, rule := range navigationRules {
		if rule.pattern.MatchString(normalized) {
			return CommandResult{
				Kind:             KindNavigation,
				Message:          fmt.Sprintf("Navigating to %s...", rule.label),
				NavigationTarget: rule.target,
			}
		}
	}

	// 5. 医疗话题
	if topic := FindMedicalTopic(userInput); topic != nil {
		if NeedsClarification(userInput, history) {
			return CommandResult{Kind: KindMedical, Message: GenerateClarifyingResponse(topic)}
		}
		return CommandResult{Kind: KindMedical, Message: GenerateMedicalResponse(topic)}
	}
	if medicalSoundingPattern.MatchString(normalized) {
		return CommandResult{Kind: KindMedical, Message: GetGeneralHealthResponse()}
	}

	// 6. 问候
	for _, pattern := range greetingPatterns {
		if pattern.MatchString(normalized) {
			return CommandResult{Kind: KindHelp, Message: greetingMessage}
		}
	}

	// 7. 帮助
	for _, pattern := range helpPatterns {
		if pattern.MatchString(normalized) {
			return CommandResult{Kind: KindHelp, Message: helpMessage}
		}
	}

	// 8. 默认兜底
	return CommandResult{Kind: KindUnknown, Message: unknownMessage}
}
