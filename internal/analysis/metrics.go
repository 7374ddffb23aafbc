package analysis

import (
	"fmt"
	"time"

	"repo-scout/internal/common"
	"repo-scout/internal/domain"
)

const hoursPerDay = 24

// computeRawMetrics 计算单个仓库的时间/比率类原始指标
// now 是整个批次共享的分析时刻，绝不能在这里重新读时钟
// 时间戳缺失的记录返回错误，由调用方跳过，不影响批次里的其他记录
func computeRawMetrics(e *domain.EnrichedRepo, now time.Time, maxAgeDays float64) error {
	if e.CreatedAt.IsZero() || e.UpdatedAt.IsZero() {
		return common.WrapError(common.ErrCodeInvalidInput,
			fmt.Sprintf("仓库 %s 缺少时间戳", e.FullName), nil)
	}

	ageDays := now.Sub(e.CreatedAt).Hours() / hoursPerDay
	if ageDays < 0 {
		ageDays = 0
	}
	e.AgeDays = ageDays
	e.DaysSinceUpdate = now.Sub(e.UpdatedAt).Hours() / hoursPerDay

	// 分母统一下探到 1，避免刚创建的仓库除零
	ageFloor := ageDays
	if ageFloor < 1 {
		ageFloor = 1
	}

	e.StarVelocity = float64(e.Stars) / ageFloor

	// 增长率：满 30 天按实际月速率算；太年轻的仓库日速率噪声大，改用投影月速率
	if ageDays > 30 {
		e.GrowthRate = float64(e.Stars) / (ageDays / 30)
	} else {
		e.GrowthRate = float64(e.Stars) * 30 / ageFloor
	}

	e.ContributorVelocity = float64(e.Contributors) / ageFloor * 30

	// 活跃度：最近 7 天提交数，10 次封顶归一
	e.ActivityScore = clamp01(float64(e.RecentCommits) / 10)

	// 新鲜度：随年龄线性衰减，超过 maxAgeDays 归零
	e.FreshnessScore = float64(1 - ageDays/maxAgeDays)
	if e.FreshnessScore < 0 {
		e.FreshnessScore = 0
	}

	return nil
}

// clamp01 截断到 [0,1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
