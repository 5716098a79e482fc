package service

import (
	"regexp"
	"testing"
	"time"
)

func TestGetDailyMetricsDeterministic(t *testing.T) {
	svc := NewMetricsService()
	date := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	a := svc.GetDailyMetrics(7, date)
	b := svc.GetDailyMetrics(7, date)
	if a != b {
		t.Errorf("同一用户同一天的指标应一致:\n%+v\n%+v", a, b)
	}

	// 一天内不同时刻不影响结果
	c := svc.GetDailyMetrics(7, date.Add(9*time.Hour))
	if a != c {
		t.Errorf("同一天不同时刻的指标应一致:\n%+v\n%+v", a, c)
	}

	// 不同用户或不同日期应产生不同种子
	d := svc.GetDailyMetrics(8, date)
	e := svc.GetDailyMetrics(7, date.AddDate(0, 0, 1))
	if a == d && a == e {
		t.Error("不同用户与不同日期的指标不应全部相同")
	}
}

func TestGetDailyMetricsShape(t *testing.T) {
	svc := NewMetricsService()
	m := svc.GetDailyMetrics(42, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))

	if m.HealthScore < 62 || m.HealthScore > 97 {
		t.Errorf("健康评分越界: %d", m.HealthScore)
	}
	if m.Date != "2026-01-15" {
		t.Errorf("日期格式不正确: %q", m.Date)
	}

	checks := map[string]*regexp.Regexp{
		"HeartRate":     regexp.MustCompile(`^\d+ bpm$`),
		"Hydration":     regexp.MustCompile(`^\d/8 cups$`),
		"Sleep":         regexp.MustCompile(`^\d\.\d hrs$`),
		"ActiveMinutes": regexp.MustCompile(`^\d+ min$`),
	}
	values := map[string]string{
		"HeartRate":     m.HeartRate,
		"Hydration":     m.Hydration,
		"Sleep":         m.Sleep,
		"ActiveMinutes": m.ActiveMinutes,
	}
	for name, re := range checks {
		if !re.MatchString(values[name]) {
			t.Errorf("%s 格式不正确: %q", name, values[name])
		}
	}

	if !regexp.MustCompile(`^\d{1,2}(,\d{3})?$`).MatchString(m.Steps) {
		t.Errorf("Steps 格式不正确: %q", m.Steps)
	}
}
