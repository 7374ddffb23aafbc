package domain

import "time"

// Repo 代表一个从 GitHub 抓取到的原始仓库记录
// 抓取完成后不再修改，所有派生指标都写到 EnrichedRepo 上
type Repo struct {
	// 基础信息 (来自 GitHub Search API)
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`      // 短名，例如 "hugo"
	FullName    string    `json:"full_name"` // 例如 "gohugoio/hugo"
	URL         string    `json:"html_url"`
	Description string    `json:"description"`
	Language    string    `json:"language"` // 为空表示未知语言，聚合时跳过
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	OpenIssues  int       `json:"issues"`
	IsFork      bool      `json:"is_fork"` // fork 不算原创项目，初筛直接淘汰
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 补充信息 (需要额外的 API 调用)
	Contributors  int      `json:"contributors"`
	RecentCommits int      `json:"recent_commits"` // 最近 7 天的提交数
	Topics        []string `json:"topics" gorm:"serializer:json"`
	// License 为 nil 表示仓库没有声明协议，和空字符串是两回事
	License *string `json:"license"`
}

// HasLicense 是否声明了开源协议
func (r *Repo) HasLicense() bool {
	return r.License != nil && *r.License != ""
}

// 仓库类型标签 (互斥，按规则优先级决出唯一一个)
const (
	TypeViral        = "viral"
	TypeEstablished  = "established"
	TypeRising       = "rising"
	TypeCommunity    = "community"
	TypeExperimental = "experimental"
	TypeNiche        = "niche"
)

// 增长潜力档位
const (
	GrowthLow         = "low"
	GrowthModerate    = "moderate"
	GrowthHigh        = "high"
	GrowthExceptional = "exceptional"
)

// 活跃趋势方向 (基于最近更新时间，和仓库类型里的 "rising" 是两个独立概念)
const (
	TrendRising    = "rising"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// EnrichedRepo 在原始记录之上挂上所有派生指标和分类结果
type EnrichedRepo struct {
	Repo `gorm:"embedded"`

	// 时间/比率类原始指标
	AgeDays             float64 `json:"age_days"`
	DaysSinceUpdate     float64 `json:"days_since_update"`
	StarVelocity        float64 `json:"star_velocity"` // stars/天
	GrowthRate          float64 `json:"growth_rate"`   // stars/月
	ContributorVelocity float64 `json:"contributor_velocity"`
	ActivityScore       float64 `json:"activity_score"`  // [0,1]
	FreshnessScore      float64 `json:"freshness_score"` // [0,1]

	// 归一化后的子分数，全部落在 [0,1]
	StarVelocityNorm        float64 `json:"star_velocity_norm"`
	GrowthRateNorm          float64 `json:"growth_rate_norm"`
	EngagementNorm          float64 `json:"engagement_norm"`
	ContributorVelocityNorm float64 `json:"contributor_velocity_norm"`
	QualityNorm             float64 `json:"quality_norm"`

	// 社区互动指标
	ForkRatio       float64 `json:"fork_ratio"`
	IssueRatio      float64 `json:"issue_ratio"`
	EngagementScore float64 `json:"engagement_score"` // [0,100]

	// 综合评分
	MomentumScore   float64 `json:"momentum_score"`   // [0,100]
	GrowthPotential float64 `json:"growth_potential"` // [0,100]

	// 分类结果
	RepoType       string `json:"repo_type"`
	GrowthCategory string `json:"growth_category"`
	TrendDirection string `json:"trend_direction"`

	// 聚类编号，-1 表示未聚类 (样本数不足时跳过聚类)
	Cluster int `json:"cluster"`

	// AI 简评 (可选，LLM 不可用时为空)
	Summary string `json:"summary,omitempty" gorm:"type:text"`
}

// InsightsSummary 一次分析的概览统计
type InsightsSummary struct {
	TotalRepos        int       `json:"total_repos"`
	AvgMomentumScore  float64   `json:"avg_momentum_score"`
	TopMomentumScore  float64   `json:"top_momentum_score"`
	AnalysisTimestamp time.Time `json:"analysis_timestamp"`
}

// MomentumHighlight 动量榜单条目
type MomentumHighlight struct {
	Name          string  `json:"name"`
	FullName      string  `json:"full_name"`
	MomentumScore float64 `json:"momentum_score"`
	Stars         int     `json:"stars"`
}

// VelocityHighlight 涨星速度榜单条目
type VelocityHighlight struct {
	Name         string  `json:"name"`
	FullName     string  `json:"full_name"`
	StarVelocity float64 `json:"star_velocity"`
	Stars        int     `json:"stars"`
}

// EngagementHighlight 社区活跃榜单条目
type EngagementHighlight struct {
	Name            string  `json:"name"`
	FullName        string  `json:"full_name"`
	EngagementScore float64 `json:"engagement_score"`
	Contributors    int     `json:"contributors"`
}

// TopPerformers 三份 Top-5 榜单
type TopPerformers struct {
	HighestMomentum []MomentumHighlight   `json:"highest_momentum"`
	FastestGrowing  []VelocityHighlight   `json:"fastest_growing"`
	MostEngaging    []EngagementHighlight `json:"most_engaging"`
}

// LanguageTrend 单个语言的聚合统计
// 注意这里用有序切片而不是 map：榜单按平均动量降序排列，JSON map 不保序
type LanguageTrend struct {
	Language    string  `json:"language"`
	Count       int     `json:"count"`
	AvgMomentum float64 `json:"avg_momentum"`
	AvgStars    float64 `json:"avg_stars"`
	TopRepo     string  `json:"top_repo"`
}

// GrowthPatterns 按年龄/规模分桶的动量分布
// 空桶的均值是 nil (JSON null)，绝不能伪装成 0
type GrowthPatterns struct {
	ByAge               map[string]*float64 `json:"by_age"`
	BySize              map[string]*float64 `json:"by_size"`
	GrowthPotentialDist map[string]int      `json:"growth_potential_distribution"`
}

// TrendInsights 一次分析产出的完整洞察结构
// 这是交给报告/看板/推送等下游的唯一交接点，必须可以直接序列化为 JSON
type TrendInsights struct {
	Summary         InsightsSummary `json:"summary"`
	TopPerformers   TopPerformers   `json:"top_performers"`
	LanguageTrends  []LanguageTrend `json:"language_trends"`
	GrowthPatterns  GrowthPatterns  `json:"growth_patterns"`
	RepositoryTypes map[string]int  `json:"repository_types"`
	TrendDirections map[string]int  `json:"trend_directions"`
	Recommendations []string        `json:"recommendations"`
}

// ClusterInfo 单个聚类的画像 (由聚类结果派生，不落库)
type ClusterInfo struct {
	ID          int     `json:"id"`
	Size        int     `json:"size"`
	AvgMomentum float64 `json:"avg_momentum"`
	AvgStars    float64 `json:"avg_stars"`
	TopLanguage string  `json:"top_language"`
}

// AIAnalysis LLM 生成的叙事性分析 (可选)
type AIAnalysis struct {
	Narrative string   `json:"narrative"`
	KeyTrends []string `json:"key_trends"`
}

// AnalysisRun 一次完整分析的产出，聚合完成后不再修改
type AnalysisRun struct {
	AnalyzedAt time.Time       `json:"analyzed_at"`
	Timeframe  string          `json:"timeframe"`
	Records    []*EnrichedRepo `json:"records"`
	Insights   *TrendInsights  `json:"insights"`
	Clusters   []ClusterInfo   `json:"clusters,omitempty"`
	AI         *AIAnalysis     `json:"ai_analysis,omitempty"`
}
