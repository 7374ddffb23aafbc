package analysis

import "repo-scout/internal/domain"

// 质量分的四个信号权重是固定常量，不开放配置
const (
	qualityDescriptionWeight = 0.3
	qualityTopicsWeight      = 0.3
	qualityLicenseWeight     = 0.2
	qualityContributorWeight = 0.2

	// 贡献者速率按每月 5 人封顶归一
	contributorVelocityCap = 5
)

// scoreRepo 把原始指标归一化成 [0,1] 子分数，再按权重合成动量分和增长潜力分
// 对任何合法的 EnrichedRepo 都不会失败：计数为 0 是正常输入，不是错误
func scoreRepo(e *domain.EnrichedRepo, w Weights, caps Caps) {
	starsFloor := float64(e.Stars)
	if starsFloor < 1 {
		starsFloor = 1
	}

	// 1. 归一化
	e.StarVelocityNorm = clamp01(e.StarVelocity / caps.StarVelocityCap)
	e.GrowthRateNorm = clamp01(e.GrowthRate / caps.GrowthRateCap)
	e.EngagementNorm = clamp01(float64(e.OpenIssues+e.Forks) / starsFloor)
	e.ContributorVelocityNorm = clamp01(e.ContributorVelocity / contributorVelocityCap)

	// 2. 质量分：描述、topic、协议、贡献者四个信号的固定加权
	quality := 0.0
	if len(e.Description) > 20 {
		quality += qualityDescriptionWeight
	}
	if len(e.Topics) > 0 {
		quality += qualityTopicsWeight
	}
	if e.HasLicense() {
		quality += qualityLicenseWeight
	}
	quality += clamp01(float64(e.Contributors)/10) * qualityContributorWeight
	e.QualityNorm = quality

	// 3. 动量分：七个子分数的加权和，放大到 0-100
	momentum := w.StarVelocity*e.StarVelocityNorm +
		w.GrowthRate*e.GrowthRateNorm +
		w.Engagement*e.EngagementNorm +
		w.ContributorVelocity*e.ContributorVelocityNorm +
		w.Activity*e.ActivityScore +
		w.Freshness*e.FreshnessScore +
		w.Quality*e.QualityNorm
	e.MomentumScore = clamp01(momentum) * 100

	// 4. 增长潜力：刻意弱化存量规模、强调变化速率的第二套权重
	potential := 0.3*e.StarVelocityNorm +
		0.2*e.FreshnessScore +
		0.2*e.ActivityScore +
		0.15*e.EngagementNorm +
		0.15*e.QualityNorm
	e.GrowthPotential = clamp01(potential) * 100

	// 5. 社区互动：四个因子的平均值放大到 0-100
	// 注意这是独立于 EngagementNorm 的另一个指标，两者口径不同
	e.ForkRatio = float64(e.Forks) / starsFloor
	e.IssueRatio = float64(e.OpenIssues) / starsFloor
	engagementFactors := [...]float64{
		clamp01(e.ForkRatio * 2),
		clamp01(e.IssueRatio * 5),
		clamp01(float64(e.Contributors) / starsFloor * 100),
		e.ActivityScore,
	}
	sum := 0.0
	for _, f := range engagementFactors {
		sum += f
	}
	e.EngagementScore = sum / float64(len(engagementFactors)) * 100
}
