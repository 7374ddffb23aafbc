package analysis

import (
	"fmt"
	"log"
	"sort"
	"time"

	"repo-scout/internal/domain"
)

// Engine 趋势分析引擎：指标计算 → 动量评分 → 分类 → 聚合
// 纯计算、同步、无副作用，唯一的外部依赖是 nowFunc 读一次时钟
type Engine struct {
	cfg     Config
	nowFunc func() time.Time // 便于测试注入当前时间
}

// NewEngine 创建分析引擎，配置不合法直接报错 (绝不带病运行)
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("分析配置校验失败: %w", err)
	}
	return &Engine{
		cfg:     cfg,
		nowFunc: time.Now,
	}, nil
}

// Config 返回引擎当前使用的配置
func (e *Engine) Config() Config {
	return e.cfg
}

// Analyze 对一批原始仓库记录做完整分析
// now 在批次开始时取一次，整个批次共享，保证同批记录的指标口径一致
// 时间戳残缺的记录跳过并记日志，绝不因为单条坏数据废掉整个批次
func (e *Engine) Analyze(repos []*domain.Repo) *domain.AnalysisRun {
	now := time.Now()
	if e != nil && e.nowFunc != nil {
		now = e.nowFunc()
	}

	enriched := make([]*domain.EnrichedRepo, 0, len(repos))
	for _, r := range repos {
		record := &domain.EnrichedRepo{Repo: *r, Cluster: -1}

		if err := computeRawMetrics(record, now, e.cfg.Thresholds.MaxAgeDays); err != nil {
			log.Printf("⚠️ 跳过仓库 %s: %v", r.FullName, err)
			continue
		}

		scoreRepo(record, e.cfg.Weights, e.cfg.Caps)

		// 类型规则依赖动量分，必须在评分之后
		record.RepoType = classifyType(record)
		record.GrowthCategory = classifyGrowth(record.GrowthPotential)
		record.TrendDirection = classifyTrendDirection(record.DaysSinceUpdate)

		enriched = append(enriched, record)
	}

	// 按动量降序排列，后面的榜单和报告都吃这个顺序
	sort.SliceStable(enriched, func(i, j int) bool {
		return enriched[i].MomentumScore > enriched[j].MomentumScore
	})

	return &domain.AnalysisRun{
		AnalyzedAt: now,
		Records:    enriched,
		Insights:   buildInsights(enriched, now),
	}
}

// Cluster 对一轮分析结果做探索性聚类，结果写回 run
// 样本不足时静默跳过 (run.Clusters 保持为空)
func (e *Engine) Cluster(run *domain.AnalysisRun) {
	if run == nil {
		return
	}
	if infos := clusterRepos(run.Records, e.cfg.Clusters); infos != nil {
		run.Clusters = infos
	}
}
