package assistant

import (
	"fmt"
	"strings"
	"testing"
)

func TestAnalyzeLabelledValues(t *testing.T) {
	result := AnalyzeReportText("Glucose: 250 mg/dL, Cholesterol: 180", "labs.txt")

	wantFindings := []string{"Glucose: 250 mg/dL", "Cholesterol: 180"}
	for _, want := range wantFindings {
		found := false
		for _, f := range result.KeyFindings {
			if f == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("KeyFindings 缺少 %q, got: %v", want, result.KeyFindings)
		}
	}

	if !strings.Contains(result.Interpretation, "Blood glucose/sugar levels") {
		t.Error("解读缺少血糖段落")
	}
	if !strings.Contains(result.Interpretation, "Cholesterol levels help assess heart disease risk") {
		t.Error("解读缺少胆固醇段落")
	}
	// 文本中不含 abnormal/elevated/high/low，不应出现告诫段落
	if strings.Contains(result.Interpretation, "outside normal ranges") {
		t.Error("不应出现告诫段落")
	}

	// 无紧急词时红旗仅有通用急救提醒一条
	if len(result.RedFlags) != 1 || result.RedFlags[0] != generalEmergencyReminder {
		t.Errorf("RedFlags = %v, 期望仅通用急救提醒", result.RedFlags)
	}
}

func TestAnalyzeCautionParagraph(t *testing.T) {
	result := AnalyzeReportText("Glucose: 250 mg/dL (elevated)", "labs.txt")
	if !strings.Contains(result.Interpretation, "outside normal ranges") {
		t.Error("出现 elevated 时应追加告诫段落")
	}
}

func TestAnalyzeGenericInterpretation(t *testing.T) {
	result := AnalyzeReportText("patient visit summary from March", "note.txt")
	if result.Interpretation != genericInterpretation {
		t.Errorf("无类别命中时应返回通用段落, got: %q", result.Interpretation)
	}
}

func TestAnalyzeRedFlags(t *testing.T) {
	result := AnalyzeReportText("Impression: severe acute pancreatitis", "ct.txt")

	wantFlags := []string{
		"Report contains urgent or critical findings",
		"Report indicates acute or crisis situation",
	}
	for _, want := range wantFlags {
		found := false
		for _, f := range result.RedFlags {
			if f == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("RedFlags 缺少 %q, got: %v", want, result.RedFlags)
		}
	}

	// 通用急救提醒永远是最后一条
	if result.RedFlags[len(result.RedFlags)-1] != generalEmergencyReminder {
		t.Errorf("最后一条红旗应为通用急救提醒: %v", result.RedFlags)
	}
}

func TestAnalyzeFindingsLineFallback(t *testing.T) {
	result := AnalyzeReportText("blood test completed yesterday\nshort\n", "note.txt")
	if len(result.KeyFindings) != 1 || result.KeyFindings[0] != "blood test completed yesterday" {
		t.Errorf("逐行兜底提取不正确: %v", result.KeyFindings)
	}
}

func TestAnalyzeFindingsCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&b, "Marker%c: %d units\n", 'A'+i, 100+i)
	}
	result := AnalyzeReportText(b.String(), "panel.txt")
	if len(result.KeyFindings) > 10 {
		t.Errorf("关键发现应截断到 10 条, got %d", len(result.KeyFindings))
	}
}

func TestAnalyzeSuggestedActions(t *testing.T) {
	// 基线：首条讨论 + 两条存档
	result := AnalyzeReportText("Glucose: 95 mg/dL", "labs.txt")
	if len(result.SuggestedActions) != 3 {
		t.Fatalf("基线建议应为 3 条, got %v", result.SuggestedActions)
	}
	if !strings.HasPrefix(result.SuggestedActions[0], "Discuss these results with your healthcare provider") {
		t.Errorf("首条建议不正确: %q", result.SuggestedActions[0])
	}
	if result.SuggestedActions[2] != "Bring this report to your next medical appointment" {
		t.Errorf("末条建议不正确: %q", result.SuggestedActions[2])
	}

	// 三个条件建议全部触发
	result = AnalyzeReportText("elevated ALT, retest in 3 months, adjust medication", "labs.txt")
	if len(result.SuggestedActions) != 6 {
		t.Errorf("全部条件命中时应为 6 条建议, got %v", result.SuggestedActions)
	}
}

func TestFormatAnalysisMessage(t *testing.T) {
	analysis := AnalyzeReportText("Glucose: 250 mg/dL", "labs.txt")
	message := FormatAnalysisMessage(analysis, "labs.txt")

	for _, section := range []string{
		"📋 **Analysis of: labs.txt**",
		"**KEY FINDINGS:**",
		"**WHAT THIS MAY INDICATE:**",
		"**SUGGESTED NEXT STEPS:**",
		"**⚠️ IMPORTANT NOTES:**",
		"⚠️ IMPORTANT DISCLAIMER:",
	} {
		if !strings.Contains(message, section) {
			t.Errorf("格式化消息缺少小节 %q", section)
		}
	}
}

func TestFormatAnalysisMessageOmitsEmptySections(t *testing.T) {
	analysis := ReportAnalysisResult{
		Interpretation:   genericInterpretation,
		SuggestedActions: []string{"Discuss these results with your healthcare provider to understand what they mean for your specific situation"},
		Disclaimer:       reportDisclaimer,
	}
	message := FormatAnalysisMessage(analysis, "empty.txt")

	if strings.Contains(message, "**KEY FINDINGS:**") {
		t.Error("空发现列表不应输出 KEY FINDINGS 小节")
	}
	if strings.Contains(message, "**⚠️ IMPORTANT NOTES:**") {
		t.Error("空红旗列表不应输出 IMPORTANT NOTES 小节")
	}
}
