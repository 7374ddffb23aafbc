package analysis

import (
	"fmt"
	"math"

	"repo-scout/internal/common"
)

// 权重校验容差：七个权重之和必须精确等于 1.0 (允许浮点误差)
const weightSumTolerance = 1e-6

// Weights 动量评分的七个权重，必须加起来等于 1.0
type Weights struct {
	StarVelocity        float64 `yaml:"star_velocity"`
	GrowthRate          float64 `yaml:"growth_rate"`
	Engagement          float64 `yaml:"engagement"`
	ContributorVelocity float64 `yaml:"contributor_velocity"`
	Activity            float64 `yaml:"activity"`
	Freshness           float64 `yaml:"freshness"`
	Quality             float64 `yaml:"quality"`
}

// Sum 七个权重之和
func (w Weights) Sum() float64 {
	return w.StarVelocity + w.GrowthRate + w.Engagement +
		w.ContributorVelocity + w.Activity + w.Freshness + w.Quality
}

// Caps 归一化上限，超过上限的指标直接截断到 1.0
type Caps struct {
	StarVelocityCap float64 `yaml:"star_velocity_cap"` // stars/天
	GrowthRateCap   float64 `yaml:"growth_rate_cap"`   // stars/月
	ActivityCap     float64 `yaml:"activity_cap"`      // commits/周 (保留字段，活跃度分固定按 10 封顶)
}

// Thresholds 过滤和时间衰减的阈值
type Thresholds struct {
	MinStars         int     `yaml:"min_stars"`
	MinContributors  int     `yaml:"min_contributors"`
	MaxAgeDays       float64 `yaml:"max_age_days"` // 新鲜度衰减到 0 的年龄
	MinActivityScore float64 `yaml:"min_activity_score"`
}

// Config 分析引擎的全部配置
type Config struct {
	Weights    Weights    `yaml:"scoring_weights"`
	Caps       Caps       `yaml:"normalization"`
	Thresholds Thresholds `yaml:"thresholds"`
	Clusters   int        `yaml:"clusters"`
}

// DefaultConfig 默认配置，和参考实现保持一致
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			StarVelocity:        0.25,
			GrowthRate:          0.20,
			Engagement:          0.15,
			ContributorVelocity: 0.15,
			Activity:            0.10,
			Freshness:           0.10,
			Quality:             0.05,
		},
		Caps: Caps{
			StarVelocityCap: 50,
			GrowthRateCap:   10,
			ActivityCap:     100,
		},
		Thresholds: Thresholds{
			MinStars:         10,
			MinContributors:  2,
			MaxAgeDays:       365,
			MinActivityScore: 0.1,
		},
		Clusters: 5,
	}
}

// Overrides 局部覆盖项，nil 的段保持默认值
// 权重段整体替换而不是逐字段合并：改动单个权重必然破坏"总和为 1"的约定，
// 所以要改就得给全七个
type Overrides struct {
	Weights    *Weights    `yaml:"scoring_weights"`
	Caps       *Caps       `yaml:"normalization"`
	Thresholds *Thresholds `yaml:"thresholds"`
	Clusters   *int        `yaml:"clusters"`
}

// Merge 把局部覆盖合并进默认配置，返回合并后的新配置
// 合并结果仍需调用 Validate，这里不做校验
func Merge(base Config, o *Overrides) Config {
	if o == nil {
		return base
	}
	if o.Weights != nil {
		base.Weights = *o.Weights
	}
	if o.Caps != nil {
		base.Caps = *o.Caps
	}
	if o.Thresholds != nil {
		base.Thresholds = *o.Thresholds
	}
	if o.Clusters != nil {
		base.Clusters = *o.Clusters
	}
	return base
}

// Validate 启动时校验配置，不合法直接报错，绝不悄悄归一化
func (c Config) Validate() error {
	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return common.NewError(common.ErrCodeConfig,
			fmt.Sprintf("评分权重之和必须为 1.0，实际为 %.6f", sum))
	}
	if c.Caps.StarVelocityCap <= 0 || c.Caps.GrowthRateCap <= 0 || c.Caps.ActivityCap <= 0 {
		return common.NewError(common.ErrCodeConfig, "归一化上限必须为正数")
	}
	if c.Thresholds.MaxAgeDays <= 0 {
		return common.NewError(common.ErrCodeConfig, "max_age_days 必须为正数")
	}
	if c.Thresholds.MinStars < 0 || c.Thresholds.MinContributors < 0 {
		return common.NewError(common.ErrCodeConfig, "过滤阈值不能为负数")
	}
	if c.Clusters < 1 {
		return common.NewError(common.ErrCodeConfig, "聚类数至少为 1")
	}
	return nil
}
