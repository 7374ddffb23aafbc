package filter

import (
	"log"

	"repo-scout/internal/domain"
)

// QualityFilter 实现了 port.Filter 接口
// 硬性条件初筛：不达标的项目连打分的资格都没有，省下后面的 API 和算力
type QualityFilter struct {
	minStars        int
	minContributors int
}

// NewQualityFilter 创建初筛过滤器
// minContributors 传 0 表示不检查贡献者数量 (抓取阶段可能拿不到这个字段)
func NewQualityFilter(minStars, minContributors int) *QualityFilter {
	return &QualityFilter{
		minStars:        minStars,
		minContributors: minContributors,
	}
}

// FilterQuality 过滤掉不满足硬性条件的项目：
//   - star 数低于下限
//   - 没有描述 (连一句话介绍都懒得写的项目没有分析价值)
//   - fork 出来的仓库 (热度是母仓库的，不是它自己的)
//   - 贡献者数量低于下限 (可选)
func (f *QualityFilter) FilterQuality(repos []*domain.Repo) []*domain.Repo {
	filtered := make([]*domain.Repo, 0, len(repos))

	for _, repo := range repos {
		switch {
		case repo.Stars < f.minStars:
			continue
		case repo.Description == "":
			continue
		case repo.IsFork:
			continue
		case f.minContributors > 0 && repo.Contributors < f.minContributors:
			continue
		}
		filtered = append(filtered, repo)
	}

	if dropped := len(repos) - len(filtered); dropped > 0 {
		log.Printf("🧹 初筛淘汰 %d 个项目，剩余 %d 个", dropped, len(filtered))
	}

	return filtered
}
