package analysis

import (
	"math"
	"math/rand"
	"sort"

	"repo-scout/internal/domain"

	"github.com/montanaflynn/stats"
)

// 聚类参数固定，保证跨运行可复现
const (
	clusterSeed     = 42
	clusterRestarts = 10  // 取多次随机初始化里惯性最小的一次
	clusterMaxIter  = 300 // 单次迭代上限
)

// featureVector 聚类用的六维特征：全部是已经算好的子分数
func featureVector(e *domain.EnrichedRepo) [6]float64 {
	return [6]float64{
		e.MomentumScore,
		e.StarVelocity,
		e.EngagementScore,
		e.FreshnessScore,
		e.ActivityScore,
		e.GrowthPotential,
	}
}

// clusterRepos 用 K-means 把仓库分成 k 组，把聚类编号写回每条记录
// 样本数不足 k 时什么都不做，返回 nil (降级，不是错误)
func clusterRepos(repos []*domain.EnrichedRepo, k int) []domain.ClusterInfo {
	if len(repos) < k {
		return nil
	}

	points := make([][6]float64, len(repos))
	for i, r := range repos {
		points[i] = featureVector(r)
	}

	rng := rand.New(rand.NewSource(clusterSeed))

	bestInertia := math.Inf(1)
	var bestAssign []int

	for restart := 0; restart < clusterRestarts; restart++ {
		assign, inertia := lloyd(points, k, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			bestAssign = assign
		}
	}

	for i, r := range repos {
		r.Cluster = bestAssign[i]
	}

	return describeClusters(repos, k)
}

// lloyd 一次 K-means 迭代：随机选 k 个样本做初始质心，交替分配/更新直到收敛
func lloyd(points [][6]float64, k int, rng *rand.Rand) ([]int, float64) {
	centroids := make([][6]float64, k)
	for i, idx := range rng.Perm(len(points))[:k] {
		centroids[i] = points[idx]
	}

	assign := make([]int, len(points))
	for iter := 0; iter < clusterMaxIter; iter++ {
		changed := false

		// 分配：每个点归到最近的质心
		for i, p := range points {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := squaredDistance(p, centroid); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		// 更新：质心移到簇内均值；空簇保持原质心不动
		sums := make([][6]float64, k)
		counts := make([]int, k)
		for i, p := range points {
			c := assign[i]
			counts[c]++
			for d := 0; d < 6; d++ {
				sums[c][d] += p[d]
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for d := 0; d < 6; d++ {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}
	}

	inertia := 0.0
	for i, p := range points {
		inertia += squaredDistance(p, centroids[assign[i]])
	}
	return assign, inertia
}

func squaredDistance(a, b [6]float64) float64 {
	sum := 0.0
	for d := 0; d < 6; d++ {
		diff := a[d] - b[d]
		sum += diff * diff
	}
	return sum
}

// describeClusters 给每个簇算画像：规模、平均动量、平均 star 数、众数语言
func describeClusters(repos []*domain.EnrichedRepo, k int) []domain.ClusterInfo {
	infos := make([]domain.ClusterInfo, 0, k)
	for c := 0; c < k; c++ {
		var momentums, starCounts stats.Float64Data
		langCounts := map[string]int{}
		for _, r := range repos {
			if r.Cluster != c {
				continue
			}
			momentums = append(momentums, r.MomentumScore)
			starCounts = append(starCounts, float64(r.Stars))
			if r.Language != "" {
				langCounts[r.Language]++
			}
		}
		info := domain.ClusterInfo{ID: c, Size: len(momentums), TopLanguage: "Unknown"}
		if mean, err := momentums.Mean(); err == nil {
			info.AvgMomentum = mean
		}
		if mean, err := starCounts.Mean(); err == nil {
			info.AvgStars = mean
		}

		// 众数语言；计数打平时取字典序靠前的，保证稳定
		langs := make([]string, 0, len(langCounts))
		for lang := range langCounts {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
		bestCount := 0
		for _, lang := range langs {
			if langCounts[lang] > bestCount {
				bestCount = langCounts[lang]
				info.TopLanguage = lang
			}
		}
		infos = append(infos, info)
	}
	return infos
}
