package service

import (
	"context"
	"fmt"
	"log"

	"repo-scout/internal/analysis"
	"repo-scout/internal/common"
	"repo-scout/internal/domain"
	"repo-scout/internal/port"
)

// 每轮只给动量最高的前 N 个项目写 AI 简评，控制 token 开销
const summarizeTopN = 10

// ScoutService 串起整条分析流水线
// 除了 scouter 和 engine，其余协作者都是可选的：传 nil 就跳过对应环节
type ScoutService struct {
	scouter    port.Scouter
	filter     port.Filter
	engine     *analysis.Engine
	store      port.Repository
	summarizer port.Summarizer
	notifier   port.Notifier
	exporter   port.Exporter
	maxRepos   int
}

// SetMaxRepos 限制单轮分析的仓库数量上限，0 表示不限制
// 搜索结果本身按 star 降序，截断保留的就是头部项目
func (s *ScoutService) SetMaxRepos(n int) {
	if n >= 0 {
		s.maxRepos = n
	}
}

func NewScoutService(
	scouter port.Scouter,
	filter port.Filter,
	engine *analysis.Engine,
	store port.Repository,
	summarizer port.Summarizer,
	notifier port.Notifier,
	exporter port.Exporter,
) *ScoutService {
	return &ScoutService{
		scouter:    scouter,
		filter:     filter,
		engine:     engine,
		store:      store,
		summarizer: summarizer,
		notifier:   notifier,
		exporter:   exporter,
	}
}

// RunAnalysisCycle 执行一轮完整的趋势分析：
// 抓取 → 去重 → 初筛 → 打分聚合 → 聚类 → AI 解读 → 落库 → 归档 → 推送
// 抓取必须至少成功一个来源；后面的环节谁挂了都只记日志，不中断流水线
func (s *ScoutService) RunAnalysisCycle(ctx context.Context, languages, topics []string, timeframe string) (*domain.AnalysisRun, error) {
	if s.scouter == nil || s.engine == nil {
		return nil, common.NewError(common.ErrCodeInternal, "缺少抓取器或分析引擎，无法启动流水线")
	}

	fmt.Println("🚀 [侦察模式] 开始搜寻 GitHub 热门项目...")

	// 1. 数据源
	var allRepos []*domain.Repo
	fetchFailures := 0

	for _, lang := range languages {
		fmt.Printf("📥 正在抓取 %s 热门项目...\n", displayLanguage(lang))
		repos, err := s.scouter.GetTrendingRepos(ctx, lang, timeframe)
		if err != nil {
			log.Printf("❌ 获取 %s 热门项目失败: %v", displayLanguage(lang), err)
			fetchFailures++
			continue
		}
		allRepos = append(allRepos, repos...)
		fmt.Printf("✅ 成功获取 %d 个 %s 项目\n", len(repos), displayLanguage(lang))
	}

	for _, topic := range topics {
		fmt.Printf("📥 正在抓取 topic '%s' 的项目...\n", topic)
		repos, err := s.scouter.GetReposByTopic(ctx, topic)
		if err != nil {
			log.Printf("❌ 获取 topic '%s' 的项目失败: %v", topic, err)
			fetchFailures++
			continue
		}
		allRepos = append(allRepos, repos...)
		fmt.Printf("✅ 成功获取 %d 个 '%s' topic 项目\n", len(repos), topic)
	}

	if len(allRepos) == 0 && fetchFailures > 0 {
		return nil, common.NewError(common.ErrCodeGitHubAPI, "所有数据源都抓取失败")
	}

	// 2. 去重：同一个仓库可能同时出现在多个语言/topic 的结果里
	unique := dedupeByFullName(allRepos)
	fmt.Printf("🔍 去重后剩余 %d 个项目\n", len(unique))

	// 3. 初筛漏斗
	if s.filter != nil {
		unique = s.filter.FilterQuality(unique)
		fmt.Printf("✅ 初筛后剩余 %d 个项目\n", len(unique))
	}

	if s.maxRepos > 0 && len(unique) > s.maxRepos {
		fmt.Printf("✂️ 超出单轮上限，只分析前 %d 个项目\n", s.maxRepos)
		unique = unique[:s.maxRepos]
	}

	// 4. 数值分析 + 聚类
	fmt.Println("🧠 开始动量分析...")
	run := s.engine.Analyze(unique)
	run.Timeframe = timeframe
	fmt.Printf("✅ 已完成 %d 个项目的打分和聚合\n", len(run.Records))

	s.engine.Cluster(run)
	if len(run.Clusters) > 0 {
		fmt.Printf("✅ 聚类完成，共 %d 个簇\n", len(run.Clusters))
	}

	// 5. AI 解读 (锦上添花，挂了不影响数值结果)
	s.enrichWithAI(ctx, run)

	// 6. 落库
	if s.store != nil {
		if err := s.store.SaveRun(ctx, run); err != nil {
			log.Printf("❌ 保存分析结果失败: %v", err)
		} else {
			fmt.Println("💾 分析结果已落库")
		}
	}

	// 7. 归档
	if s.exporter != nil {
		csvPath, jsonPath, err := s.exporter.Export(run)
		if err != nil {
			log.Printf("❌ 导出分析结果失败: %v", err)
		} else {
			fmt.Printf("📁 已归档: %s, %s\n", csvPath, jsonPath)
		}
	}

	// 8. 推送摘要
	if s.notifier != nil {
		if err := s.notifier.NotifyDigest(ctx, run); err != nil {
			log.Printf("❌ 推送摘要失败: %v", err)
		} else {
			fmt.Println("📲 摘要已推送")
		}
	}

	fmt.Printf("🎉 本轮分析完成，共 %d 个项目\n", len(run.Records))
	return run, nil
}

// enrichWithAI 给头部项目写简评，并对整轮洞察做叙事分析
func (s *ScoutService) enrichWithAI(ctx context.Context, run *domain.AnalysisRun) {
	if s.summarizer == nil {
		return
	}

	fmt.Println("🤖 开始 AI 解读...")
	top := run.Records
	if len(top) > summarizeTopN {
		top = top[:summarizeTopN]
	}
	for _, r := range top {
		summary, err := s.summarizer.Summarize(ctx, r)
		if err != nil {
			log.Printf("⚠️ 生成 %s 的简评失败: %v", r.FullName, err)
			continue
		}
		r.Summary = summary
	}

	ai, err := s.summarizer.AnalyzeInsights(ctx, run.Insights)
	if err != nil {
		log.Printf("⚠️ 趋势叙事分析失败: %v", err)
		return
	}
	run.AI = ai
}

// dedupeByFullName 按 full_name 去重，保留先出现的记录
func dedupeByFullName(repos []*domain.Repo) []*domain.Repo {
	seen := make(map[string]bool, len(repos))
	unique := make([]*domain.Repo, 0, len(repos))
	for _, r := range repos {
		if seen[r.FullName] {
			continue
		}
		seen[r.FullName] = true
		unique = append(unique, r)
	}
	return unique
}

func displayLanguage(lang string) string {
	if lang == "" {
		return "全语言"
	}
	return lang
}
