package analysis

import "repo-scout/internal/domain"

// typeRule 一条分类规则：谓词命中即得标签
type typeRule struct {
	label string
	match func(e *domain.EnrichedRepo) bool
}

// typeRules 仓库类型的判定规则链，按优先级从上到下，第一条命中即停
// 顺序本身就是契约的一部分：一个仓库可能同时满足多条规则，
// 比如既 viral 又 community，必须判成 viral
var typeRules = []typeRule{
	{domain.TypeViral, func(e *domain.EnrichedRepo) bool {
		return e.Stars > 1000 && e.AgeDays < 90
	}},
	{domain.TypeEstablished, func(e *domain.EnrichedRepo) bool {
		return e.Stars > 5000 && e.AgeDays > 365
	}},
	{domain.TypeRising, func(e *domain.EnrichedRepo) bool {
		return e.MomentumScore > 70 && e.AgeDays > 30 && e.AgeDays < 365
	}},
	{domain.TypeCommunity, func(e *domain.EnrichedRepo) bool {
		stars := float64(e.Stars)
		if stars < 1 {
			stars = 1
		}
		return float64(e.Contributors)/stars > 0.1
	}},
	{domain.TypeExperimental, func(e *domain.EnrichedRepo) bool {
		return e.Stars < 100 && e.AgeDays < 30
	}},
}

// classifyType 给仓库定类型，是个全函数：任何记录都会得到唯一一个标签
// 必须在动量分算完之后调用 (rising 规则依赖 MomentumScore)
func classifyType(e *domain.EnrichedRepo) string {
	for _, rule := range typeRules {
		if rule.match(e) {
			return rule.label
		}
	}
	return domain.TypeNiche
}

// classifyGrowth 按半开区间给增长潜力分档：
// [0,30) low, [30,60) moderate, [60,80) high, [80,100] exceptional
func classifyGrowth(growthPotential float64) string {
	switch {
	case growthPotential < 30:
		return domain.GrowthLow
	case growthPotential < 60:
		return domain.GrowthModerate
	case growthPotential < 80:
		return domain.GrowthHigh
	default:
		return domain.GrowthExceptional
	}
}

// classifyTrendDirection 用最近更新时间做活跃趋势判定
// 这里的 "rising" 和仓库类型里的 "rising" 只是重名，语义无关，
// 所以是独立字段、独立判定，谁也不读谁
func classifyTrendDirection(daysSinceUpdate float64) string {
	switch {
	case daysSinceUpdate <= 7:
		return domain.TrendRising
	case daysSinceUpdate <= 30:
		return domain.TrendStable
	default:
		return domain.TrendDeclining
	}
}
