package assistant

import (
	"regexp"
	"strings"
)

// ReportAnalysisResult 一次确定性报告分析的结构化结果。
type ReportAnalysisResult struct {
	KeyFindings      []string `json:"keyFindings"`
	Interpretation   string   `json:"interpretation"`
	SuggestedActions []string `json:"suggestedActions"`
	RedFlags         []string `json:"redFlags"`
	Disclaimer       string   `json:"disclaimer"`
}

// 四类关键发现的提取正则：带数值的化验项、阳性/阴性结论、
// 诊断/印象/所见前缀行、"X is/was/measures Y" 句式。
var findingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([A-Za-z\s]+):\s*(\d+\.?\d*)\s*([a-zA-Z/%]+)?`),
	regexp.MustCompile(`(?i)(positive|negative|normal|abnormal|elevated|low|high)\s+for\s+([A-Za-z\s]+)`),
	regexp.MustCompile(`(?i)(diagnosis|impression|findings?):\s*([^\n]+)`),
	regexp.MustCompile(`(?i)([A-Za-z\s]+)\s+(?:is|was|measures?)\s+(\d+\.?\d*)\s*([a-zA-Z/%]+)?`),
}

var resultLinePattern = regexp.MustCompile(`(?i)result|test|level|count|pressure|rate`)

var digitPattern = regexp.MustCompile(`\d`)

// interpretationRule 一条解读规则：命中任一术语即附加固定解读段落。
type interpretationRule struct {
	terms     []string
	paragraph string
}

// 八个固定临床类别，按表序测试大小写不敏感的子串包含。
var interpretationRules = []interpretationRule{
	{[]string{"glucose", "blood sugar"}, "Blood glucose/sugar levels indicate how well your body is managing sugar. Normal fasting levels are typically 70-100 mg/dL."},
	{[]string{"cholesterol"}, "Cholesterol levels help assess heart disease risk. Total cholesterol under 200 mg/dL is generally considered desirable."},
	{[]string{"blood pressure", "bp"}, "Blood pressure readings show the force of blood against artery walls. Normal is typically below 120/80 mmHg."},
	{[]string{"hemoglobin", "hgb", "hb"}, "Hemoglobin carries oxygen in your blood. Low levels may indicate anemia; high levels may indicate dehydration or other conditions."},
	{[]string{"white blood cell", "wbc"}, "White blood cells fight infection. Elevated levels may indicate infection or inflammation; low levels may indicate immune system issues."},
	{[]string{"thyroid", "tsh"}, "Thyroid tests measure thyroid hormone levels, which regulate metabolism. Abnormal levels can affect energy, weight, and mood."},
	{[]string{"creatinine", "kidney"}, "Creatinine levels help assess kidney function. Elevated levels may indicate reduced kidney function."},
	{[]string{"liver", "alt", "ast"}, "Liver enzyme tests assess liver health. Elevated levels may indicate liver inflammation or damage."},
}

var abnormalPattern = regexp.MustCompile(`(?i)abnormal|elevated|high|low|outside.*range`)

var abnormalActionPattern = regexp.MustCompile(`(?i)abnormal|elevated|high|outside.*range`)

const cautionParagraph = "Some values appear to be outside normal ranges. This may or may not be concerning depending on your individual health context."

const genericInterpretation = "This report contains medical test results or health information. The specific values and their significance depend on your individual health history and current condition."

// redFlagRule 一条红旗规则：命中正则即收集对应警示语。
type redFlagRule struct {
	pattern *regexp.Regexp
	flag    string
}

var redFlagRules = []redFlagRule{
	{regexp.MustCompile(`(?i)critical|severe|emergency|urgent|immediate`), "Report contains urgent or critical findings"},
	{regexp.MustCompile(`(?i)malignant|cancer|tumor`), "Report mentions potentially serious conditions"},
	{regexp.MustCompile(`(?i)acute|crisis`), "Report indicates acute or crisis situation"},
	{regexp.MustCompile(`(?i)abnormal.*significant|significantly abnormal`), "Report notes significantly abnormal findings"},
}

const generalEmergencyReminder = "🚨 If you experience severe symptoms (chest pain, difficulty breathing, severe bleeding, loss of consciousness), call 911 immediately"

const reportDisclaimer = `⚠️ IMPORTANT DISCLAIMER:

This analysis is for educational purposes only and is NOT a medical diagnosis or professional medical advice.

• I am an AI assistant, not a doctor
• Medical reports require professional interpretation
• Lab values must be considered in context of your complete health history
• Normal ranges vary by lab, age, sex, and individual factors
• Only your healthcare provider can properly interpret these results

NEXT STEPS:
✓ Schedule an appointment with your healthcare provider to review these results
✓ Bring this report to your appointment
✓ Ask questions about anything you don't understand
✓ Follow your doctor's recommendations

If you have urgent concerns or symptoms, contact your healthcare provider immediately or call 911 for emergencies.`

// AnalyzeReportText 对报告文本做确定性的模式分析，四个独立扫描
// 分别产出关键发现、解读、建议和红旗警示。不调用任何外部服务。
func AnalyzeReportText(reportText, filename string) ReportAnalysisResult {
	findings := extractKeyFindings(reportText)

	return ReportAnalysisResult{
		KeyFindings:      findings,
		Interpretation:   generateInterpretation(reportText),
		SuggestedActions: generateSuggestedActions(reportText),
		RedFlags:         identifyRedFlags(reportText),
		Disclaimer:       reportDisclaimer,
	}
}

// extractKeyFindings 按正则族提取 5-200 字符的片段，重复片段
// 首次出现为准，零命中时退回逐行扫描。最多保留 10 条。
func extractKeyFindings(text string) []string {
	findings := make([]string, 0, 10)
	seen := make(map[string]bool)

	for _, pattern := range findingPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			if len(match) > 5 && len(match) < 200 {
				trimmed := strings.TrimSpace(match)
				if !seen[trimmed] {
					seen[trimmed] = true
					findings = append(findings, trimmed)
				}
			}
		}
	}

	if len(findings) == 0 {
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if len(line) > 10 && len(line) < 200 {
				if digitPattern.MatchString(line) || resultLinePattern.MatchString(line) {
					findings = append(findings, line)
				}
			}
		}
	}

	if len(findings) > 10 {
		findings = findings[:10]
	}
	return findings
}

func generateInterpretation(fullText string) string {
	lowerText := strings.ToLower(fullText)
	interpretations := make([]string, 0, len(interpretationRules)+1)

	for _, rule := range interpretationRules {
		for _, term := range rule.terms {
			if strings.Contains(lowerText, term) {
				interpretations = append(interpretations, rule.paragraph)
				break
			}
		}
	}

	if abnormalPattern.MatchString(fullText) {
		interpretations = append(interpretations, cautionParagraph)
	}

	if len(interpretations) == 0 {
		interpretations = append(interpretations, genericInterpretation)
	}

	return strings.Join(interpretations, "\n\n")
}

// generateSuggestedActions 首条永远是与医生沟通，末尾永远是两条
// 存档建议，中间按文本内容追加至多三条条件建议。
func generateSuggestedActions(fullText string) []string {
	lowerText := strings.ToLower(fullText)
	actions := []string{
		"Discuss these results with your healthcare provider to understand what they mean for your specific situation",
	}

	if abnormalActionPattern.MatchString(fullText) {
		actions = append(actions, "Ask your doctor about any values that are outside the normal range and what steps, if any, you should take")
	}

	if strings.Contains(lowerText, "follow") || strings.Contains(lowerText, "retest") || strings.Contains(lowerText, "repeat") {
		actions = append(actions, "Follow any recommended follow-up testing or appointments mentioned in the report")
	}

	if strings.Contains(lowerText, "medication") || strings.Contains(lowerText, "treatment") {
		actions = append(actions, "Discuss any recommended medications or treatments with your healthcare provider")
	}

	actions = append(actions,
		"Keep this report in your medical records for future reference",
		"Bring this report to your next medical appointment",
	)

	return actions
}

// identifyRedFlags 末条永远是通用急救提醒，与其余命中无关。
func identifyRedFlags(text string) []string {
	redFlags := make([]string, 0, len(redFlagRules)+1)

	for _, rule := range redFlagRules {
		if rule.pattern.MatchString(text) {
			redFlags = append(redFlags, rule.flag)
		}
	}

	redFlags = append(redFlags, generalEmergencyReminder)
	return redFlags
}

// FormatAnalysisMessage 把分析结果渲染为单条展示文本，
// 空列表的小节连同标题一起省略。
func FormatAnalysisMessage(analysis ReportAnalysisResult, filename string) string {
	var b strings.Builder

	b.WriteString("📋 **Analysis of: " + filename + "**\n\n")

	if len(analysis.KeyFindings) > 0 {
		b.WriteString("**KEY FINDINGS:**\n")
		for _, finding := range analysis.KeyFindings {
			b.WriteString("• " + finding + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("**WHAT THIS MAY INDICATE:**\n" + analysis.Interpretation + "\n\n")

	b.WriteString("**SUGGESTED NEXT STEPS:**\n")
	for _, action := range analysis.SuggestedActions {
		b.WriteString("• " + action + "\n")
	}
	b.WriteString("\n")

	if len(analysis.RedFlags) > 0 {
		b.WriteString("**⚠️ IMPORTANT NOTES:**\n")
		for _, flag := range analysis.RedFlags {
			b.WriteString("• " + flag + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + analysis.Disclaimer)

	return b.String()
}
