package analysis

import (
	"fmt"
	"sort"
	"time"

	"repo-scout/internal/domain"

	"github.com/montanaflynn/stats"
)

// 榜单长度固定取前 5
const topN = 5

// buildInsights 在完整批次上做聚合，产出交给下游的洞察结构
// 空批次返回零值结构而不是报错：没抓到项目是正常情况
func buildInsights(repos []*domain.EnrichedRepo, now time.Time) *domain.TrendInsights {
	insights := &domain.TrendInsights{
		Summary: domain.InsightsSummary{
			TotalRepos:        len(repos),
			AnalysisTimestamp: now,
		},
		TopPerformers: domain.TopPerformers{
			HighestMomentum: []domain.MomentumHighlight{},
			FastestGrowing:  []domain.VelocityHighlight{},
			MostEngaging:    []domain.EngagementHighlight{},
		},
		LanguageTrends:  []domain.LanguageTrend{},
		RepositoryTypes: map[string]int{},
		TrendDirections: map[string]int{},
		Recommendations: []string{},
		GrowthPatterns: domain.GrowthPatterns{
			ByAge:               map[string]*float64{},
			BySize:              map[string]*float64{},
			GrowthPotentialDist: map[string]int{},
		},
	}

	momentums := make(stats.Float64Data, 0, len(repos))
	for _, r := range repos {
		momentums = append(momentums, r.MomentumScore)
		insights.RepositoryTypes[r.RepoType]++
		insights.TrendDirections[r.TrendDirection]++
		insights.GrowthPatterns.GrowthPotentialDist[r.GrowthCategory]++
	}

	if avg, err := momentums.Mean(); err == nil {
		insights.Summary.AvgMomentumScore = avg
	}
	if top, err := momentums.Max(); err == nil {
		insights.Summary.TopMomentumScore = top
	}

	insights.TopPerformers = topPerformers(repos)
	insights.LanguageTrends = languageTrends(repos)
	insights.GrowthPatterns.ByAge = bucketMeans(repos, ageBuckets, func(r *domain.EnrichedRepo) float64 { return r.AgeDays })
	insights.GrowthPatterns.BySize = bucketMeans(repos, sizeBuckets, func(r *domain.EnrichedRepo) float64 { return float64(r.Stars) })
	insights.Recommendations = recommendations(repos, insights.LanguageTrends)

	return insights
}

// topPerformers 抽取三份 Top-5 榜单
func topPerformers(repos []*domain.EnrichedRepo) domain.TopPerformers {
	tp := domain.TopPerformers{
		HighestMomentum: []domain.MomentumHighlight{},
		FastestGrowing:  []domain.VelocityHighlight{},
		MostEngaging:    []domain.EngagementHighlight{},
	}

	sorted := make([]*domain.EnrichedRepo, len(repos))
	copy(sorted, repos)

	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MomentumScore > sorted[j].MomentumScore })
	for _, r := range firstN(sorted, topN) {
		tp.HighestMomentum = append(tp.HighestMomentum, domain.MomentumHighlight{
			Name: r.Name, FullName: r.FullName, MomentumScore: r.MomentumScore, Stars: r.Stars,
		})
	}

	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StarVelocity > sorted[j].StarVelocity })
	for _, r := range firstN(sorted, topN) {
		tp.FastestGrowing = append(tp.FastestGrowing, domain.VelocityHighlight{
			Name: r.Name, FullName: r.FullName, StarVelocity: r.StarVelocity, Stars: r.Stars,
		})
	}

	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].EngagementScore > sorted[j].EngagementScore })
	for _, r := range firstN(sorted, topN) {
		tp.MostEngaging = append(tp.MostEngaging, domain.EngagementHighlight{
			Name: r.Name, FullName: r.FullName, EngagementScore: r.EngagementScore, Contributors: r.Contributors,
		})
	}

	return tp
}

func firstN(repos []*domain.EnrichedRepo, n int) []*domain.EnrichedRepo {
	if len(repos) < n {
		return repos
	}
	return repos[:n]
}

// languageTrends 按语言聚合，结果按平均动量降序
// 语言为空的记录不参与 (对应参考数据里的 NaN 语言)
func languageTrends(repos []*domain.EnrichedRepo) []domain.LanguageTrend {
	type langAgg struct {
		momentums stats.Float64Data
		starSum   int
		topRepo   string
		topScore  float64
	}
	byLang := map[string]*langAgg{}

	for _, r := range repos {
		if r.Language == "" {
			continue
		}
		agg, ok := byLang[r.Language]
		if !ok {
			agg = &langAgg{topScore: -1}
			byLang[r.Language] = agg
		}
		agg.momentums = append(agg.momentums, r.MomentumScore)
		agg.starSum += r.Stars
		if r.MomentumScore > agg.topScore {
			agg.topScore = r.MomentumScore
			agg.topRepo = r.Name
		}
	}

	trends := make([]domain.LanguageTrend, 0, len(byLang))
	for lang, agg := range byLang {
		avgMomentum, _ := agg.momentums.Mean()
		trends = append(trends, domain.LanguageTrend{
			Language:    lang,
			Count:       len(agg.momentums),
			AvgMomentum: avgMomentum,
			AvgStars:    float64(agg.starSum) / float64(len(agg.momentums)),
			TopRepo:     agg.topRepo,
		})
	}

	sort.SliceStable(trends, func(i, j int) bool {
		if trends[i].AvgMomentum != trends[j].AvgMomentum {
			return trends[i].AvgMomentum > trends[j].AvgMomentum
		}
		// 动量打平时按语言名兜底，保证输出稳定
		return trends[i].Language < trends[j].Language
	})
	return trends
}

// bucket 一个左开右闭的数值分桶 (low, high]
type bucket struct {
	label string
	low   float64
	high  float64
}

var ageBuckets = []bucket{
	{"new (0-30 days)", -1, 30},
	{"young (31-90 days)", 30, 90},
	{"mature (91-365 days)", 90, 365},
	{"established (>365 days)", 365, -1},
}

var sizeBuckets = []bucket{
	{"small (0-100 stars)", -1, 100},
	{"medium (101-1000 stars)", 100, 1000},
	{"large (1001-10000 stars)", 1000, 10000},
	{"huge (>10000 stars)", 10000, -1},
}

// bucketMeans 按桶算平均动量，空桶显式给 nil (序列化成 JSON null)
func bucketMeans(repos []*domain.EnrichedRepo, buckets []bucket, key func(*domain.EnrichedRepo) float64) map[string]*float64 {
	result := make(map[string]*float64, len(buckets))
	for _, b := range buckets {
		var values stats.Float64Data
		for _, r := range repos {
			v := key(r)
			if v <= b.low {
				continue
			}
			if b.high >= 0 && v > b.high {
				continue
			}
			values = append(values, r.MomentumScore)
		}
		if mean, err := values.Mean(); err == nil {
			m := mean
			result[b.label] = &m
		} else {
			result[b.label] = nil
		}
	}
	return result
}

// recommendations 根据聚合阈值生成几条建议文案
// 纯展示用途，不会有任何组件反过来消费它
func recommendations(repos []*domain.EnrichedRepo, langTrends []domain.LanguageTrend) []string {
	recs := []string{}

	if len(langTrends) > 0 {
		recs = append(recs, fmt.Sprintf("🔥 %s repositories are showing the highest momentum right now", langTrends[0].Language))
	}

	rising := 0
	highEngagement := 0
	undervalued := 0
	for _, r := range repos {
		if r.AgeDays < 90 && r.MomentumScore > 70 {
			rising++
		}
		if r.EngagementScore > 80 {
			highEngagement++
		}
		if r.MomentumScore > 60 && r.Stars < 1000 {
			undervalued++
		}
	}

	if rising > 0 {
		recs = append(recs, fmt.Sprintf("⭐ %d emerging repositories show exceptional growth potential", rising))
	}
	if highEngagement > 0 {
		recs = append(recs, fmt.Sprintf("👥 %d repositories have very active communities worth watching", highEngagement))
	}
	if undervalued > 0 {
		recs = append(recs, fmt.Sprintf("💎 %d undervalued repositories could be tomorrow's stars", undervalued))
	}

	return recs
}
