package github

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"repo-scout/internal/common"
	"repo-scout/internal/domain"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

// 单次搜索最多取 100 条 (Search API 单页上限)
const defaultPerPage = 100

// 近期活跃度统计窗口：7 天内的提交
const recentCommitWindow = 7 * 24 * time.Hour

// Fetcher 实现了 port.Scouter 接口
type Fetcher struct {
	client   *github.Client
	perPage  int
	minStars int
	nowFunc  func() time.Time
}

// NewFetcher 初始化 GitHub 客户端
// token: GitHub Personal Access Token (空字符串则匿名访问，限制 60次/小时)
func NewFetcher(token string, minStars int) *Fetcher {
	var client *github.Client

	if token == "" {
		log.Println("⚠️ 未配置 GITHUB_TOKEN，匿名访问限流很紧 (60次/小时)")
		client = github.NewClient(nil)
	} else {
		ctx := context.Background()
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc := oauth2.NewClient(ctx, ts)
		client = github.NewClient(tc)
	}

	return &Fetcher{
		client:   client,
		perPage:  defaultPerPage,
		minStars: minStars,
		nowFunc:  time.Now,
	}
}

// GetTrendingRepos 获取某个语言的热门项目
// GitHub 没有官方 Trending API，用"近期创建 + 按 star 排序"的搜索来模拟
func (f *Fetcher) GetTrendingRepos(ctx context.Context, language string, since string) ([]*domain.Repo, error) {
	now := f.nowFunc()

	var dateRange string
	switch since {
	case "daily":
		dateRange = now.AddDate(0, 0, -1).Format("2006-01-02")
	case "weekly":
		dateRange = now.AddDate(0, 0, -7).Format("2006-01-02")
	case "monthly":
		dateRange = now.AddDate(0, -1, 0).Format("2006-01-02")
	default:
		dateRange = now.AddDate(0, 0, -1).Format("2006-01-02") // 默认按天
	}

	parts := []string{
		fmt.Sprintf("created:>%s", dateRange),
		fmt.Sprintf("stars:>%d", f.minStars),
	}
	if language != "" {
		parts = append(parts, fmt.Sprintf("language:%s", language))
	}
	query := strings.Join(parts, " ")

	result, err := f.search(ctx, query)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeGitHubAPI,
			fmt.Sprintf("搜索 %s 热门项目失败", language), err)
	}

	return f.convertAndEnrich(ctx, result.Repositories, now), nil
}

// GetReposByTopic 根据 Topic 获取项目
func (f *Fetcher) GetReposByTopic(ctx context.Context, topic string) ([]*domain.Repo, error) {
	now := f.nowFunc()

	result, err := f.search(ctx, fmt.Sprintf("topic:%s", topic))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeGitHubAPI,
			fmt.Sprintf("搜索 topic '%s' 失败", topic), err)
	}

	return f.convertAndEnrich(ctx, result.Repositories, now), nil
}

// search 带重试的 Search API 调用，按 star 降序
func (f *Fetcher) search(ctx context.Context, query string) (*github.RepositoriesSearchResult, error) {
	opts := &github.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: f.perPage,
		},
	}

	var result *github.RepositoriesSearchResult
	err := common.Do(ctx, func() error {
		var apiErr error
		result, _, apiErr = f.client.Search.Repositories(ctx, query, opts)
		return apiErr
	},
		common.WithMaxRetries(3),
		common.WithInitialDelay(time.Second),
		common.WithRetryIf(isRetryable),
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// isRetryable 客户端侧的错误 (非法查询、无权限) 重试也没用，直接放弃
func isRetryable(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		code := ghErr.Response.StatusCode
		// 403 大概率是限流，值得等一等再试
		if code == 403 || code == 429 || code >= 500 {
			return true
		}
		if code >= 400 && code < 500 {
			return false
		}
	}
	return true
}

// convertAndEnrich 把 GitHub 的数据结构转换为 Domain 实体 (DTO 转换)，
// 并补上需要额外 API 调用的字段 (贡献者数、近 7 天提交数)
// 补充调用失败只记日志，字段留 0，不放弃整条记录
func (f *Fetcher) convertAndEnrich(ctx context.Context, items []*github.Repository, now time.Time) []*domain.Repo {
	var repos []*domain.Repo
	for _, item := range items {
		repo := &domain.Repo{
			ID:          fmt.Sprintf("github-%d", item.GetID()), // 加上前缀防止冲突
			Name:        item.GetName(),
			FullName:    item.GetFullName(),
			URL:         item.GetHTMLURL(),
			Description: item.GetDescription(),
			Language:    item.GetLanguage(),
			Stars:       item.GetStargazersCount(),
			Forks:       item.GetForksCount(),
			OpenIssues:  item.GetOpenIssuesCount(),
			IsFork:      item.GetFork(),
			CreatedAt:   item.GetCreatedAt().Time,
			UpdatedAt:   item.GetUpdatedAt().Time,
			Topics:      item.Topics,
		}
		if lic := item.GetLicense(); lic != nil && lic.GetName() != "" {
			name := lic.GetName()
			repo.License = &name
		}

		owner, name := item.GetOwner().GetLogin(), item.GetName()
		repo.Contributors = f.contributorCount(ctx, owner, name)
		repo.RecentCommits = f.recentCommitCount(ctx, owner, name, now)

		repos = append(repos, repo)
	}

	return repos
}

// contributorCount 贡献者数量 (只取第一页，超过 100 人的项目按 100 算)
func (f *Fetcher) contributorCount(ctx context.Context, owner, name string) int {
	contributors, _, err := f.client.Repositories.ListContributors(ctx, owner, name,
		&github.ListContributorsOptions{
			ListOptions: github.ListOptions{PerPage: defaultPerPage},
		})
	if err != nil {
		log.Printf("⚠️ 获取 %s/%s 贡献者失败: %v", owner, name, err)
		return 0
	}
	return len(contributors)
}

// recentCommitCount 最近 7 天的提交数 (同样只取第一页)
func (f *Fetcher) recentCommitCount(ctx context.Context, owner, name string, now time.Time) int {
	commits, _, err := f.client.Repositories.ListCommits(ctx, owner, name,
		&github.CommitsListOptions{
			Since:       now.Add(-recentCommitWindow),
			ListOptions: github.ListOptions{PerPage: defaultPerPage},
		})
	if err != nil {
		log.Printf("⚠️ 获取 %s/%s 近期提交失败: %v", owner, name, err)
		return 0
	}
	return len(commits)
}
