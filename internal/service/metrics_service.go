package service

import (
	"fmt"
	"time"

	"med-assist-go/pkg/flaker"
)

// DashboardMetrics 首页展示的每日健康快照。演示数据，非真实采集。
type DashboardMetrics struct {
	HealthScore   int    `json:"healthScore"`
	HealthCaption string `json:"healthCaption"`
	HeartRate     string `json:"heartRate"`
	Hydration     string `json:"hydration"`
	Sleep         string `json:"sleep"`
	Steps         string `json:"steps"`
	Calories      string `json:"calories"`
	ActiveMinutes string `json:"activeMinutes"`
	Date          string `json:"date"`
}

// MetricsService 接口定义了仪表盘指标的业务操作。
type MetricsService interface {
	GetDailyMetrics(userID uint, date time.Time) DashboardMetrics
}

type metricsService struct{}

// NewMetricsService 创建一个新的 MetricsService 实例。
func NewMetricsService() MetricsService {
	return &metricsService{}
}

// GetDailyMetrics 生成某用户某天的确定性演示指标。
// 种子由用户 ID 和日期推导，同一用户同一天的数值稳定不变。
func (s *metricsService) GetDailyMetrics(userID uint, date time.Time) DashboardMetrics {
	day := date.UTC().Format("2006-01-02")
	seed := uint32(userID)*31 + dateSeed(date)
	rng := flaker.NewSeededRandom(seed)

	score := rng.NextInt(62, 97)
	caption := "Keep it up!"
	if score >= 85 {
		caption = "Great progress today!"
	} else if score < 70 {
		caption = "Room to improve today."
	}

	heartRate := rng.NextInt(58, 92)
	cups := rng.NextInt(2, 8)
	sleepTenths := rng.NextInt(50, 90)
	steps := rng.NextInt(2000, 14000)
	calories := rng.NextInt(1200, 2600)
	activeMinutes := rng.NextInt(10, 90)

	return DashboardMetrics{
		HealthScore:   score,
		HealthCaption: caption,
		HeartRate:     fmt.Sprintf("%d bpm", heartRate),
		Hydration:     fmt.Sprintf("%d/8 cups", cups),
		Sleep:         fmt.Sprintf("%.1f hrs", float64(sleepTenths)/10),
		Steps:         formatThousands(steps),
		Calories:      formatThousands(calories),
		ActiveMinutes: fmt.Sprintf("%d min", activeMinutes),
		Date:          day,
	}
}

func dateSeed(date time.Time) uint32 {
	y, m, d := date.UTC().Date()
	return uint32(y)*10000 + uint32(m)*100 + uint32(d)
}

// formatThousands 按千位加逗号，与前端展示格式一致。
func formatThousands(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d,%03d", n/1000, n%1000)
}
