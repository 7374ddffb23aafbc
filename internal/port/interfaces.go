package port

import (
	"context"

	"repo-scout/internal/domain"
)

// Scouter (侦察兵): 负责去 GitHub 发现热门项目
// 它可以是爬虫，也可以是调 GitHub API
type Scouter interface {
	// 比如：GetTrendingRepos(ctx, "Go", "daily")
	GetTrendingRepos(ctx context.Context, language string, since string) ([]*domain.Repo, error)

	// 按 topic 补充搜索
	GetReposByTopic(ctx context.Context, topic string) ([]*domain.Repo, error)
}

// Filter (初筛漏斗): 硬性条件过滤，把明显的垃圾项目挡在分析引擎之外
type Filter interface {
	FilterQuality(repos []*domain.Repo) []*domain.Repo
}

// Summarizer (解说员): 负责调用 LLM 生成叙事性总结
// 纯粹的锦上添花，挂了不影响数值分析
type Summarizer interface {
	// 给单个项目写一句话简评
	Summarize(ctx context.Context, repo *domain.EnrichedRepo) (string, error)

	// 对整轮洞察做叙事性分析
	AnalyzeInsights(ctx context.Context, insights *domain.TrendInsights) (*domain.AIAnalysis, error)
}

// Notifier (信使): 负责把本轮摘要推送出去 (飞书/钉钉)
type Notifier interface {
	NotifyDigest(ctx context.Context, run *domain.AnalysisRun) error
}

// Repository (仓库管理员): 负责存储和查询历史分析结果
type Repository interface {
	// 保存一轮分析 (运行记录 + 所有 EnrichedRepo)
	SaveRun(ctx context.Context, run *domain.AnalysisRun) error

	// 按动量取历史榜单
	TopByMomentum(ctx context.Context, limit int) ([]*domain.EnrichedRepo, error)

	// 最近一轮的洞察 (看板接口用)
	LatestInsights(ctx context.Context) (*domain.TrendInsights, error)
}

// Exporter (归档员): 把分析结果落盘成 CSV / JSON
type Exporter interface {
	Export(run *domain.AnalysisRun) (csvPath string, jsonPath string, err error)
}
