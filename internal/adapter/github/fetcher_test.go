package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-github/v53/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMockGitHubServer 创建一个模拟的 GitHub API 服务器
func setupMockGitHubServer(t *testing.T, handler http.HandlerFunc) *Fetcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	baseURL, _ := url.Parse(server.URL + "/")
	client.BaseURL = baseURL

	return &Fetcher{
		client:  client,
		perPage: 10,
		nowFunc: func() time.Time {
			return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		},
	}
}

// createMockRepo 创建模拟的 GitHub 仓库对象
func createMockRepo(id int64, owner, name, language string, stars int, createdAt time.Time) *github.Repository {
	return &github.Repository{
		ID:              github.Int64(id),
		Name:            github.String(name),
		FullName:        github.String(owner + "/" + name),
		Owner:           &github.User{Login: github.String(owner)},
		HTMLURL:         github.String("https://github.com/" + owner + "/" + name),
		Description:     github.String("A test repository with enough text"),
		StargazersCount: github.Int(stars),
		ForksCount:      github.Int(stars / 10),
		OpenIssuesCount: github.Int(5),
		Language:        github.String(language),
		Topics:          []string{"testing"},
		License:         &github.License{Name: github.String("MIT License")},
		CreatedAt:       &github.Timestamp{Time: createdAt},
		UpdatedAt:       &github.Timestamp{Time: createdAt.AddDate(0, 0, 3)},
	}
}

func TestFetcher_GetTrendingRepos(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	var searchQuery string
	fetcher := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/search/repositories"):
			searchQuery = r.URL.Query().Get("q")
			result := &github.RepositoriesSearchResult{
				Total: github.Int(1),
				Repositories: []*github.Repository{
					createMockRepo(1, "acme", "rocket", "Go", 120, now.AddDate(0, 0, -5)),
				},
			}
			json.NewEncoder(w).Encode(result)
		case strings.HasSuffix(r.URL.Path, "/contributors"):
			json.NewEncoder(w).Encode([]*github.Contributor{
				{Login: github.String("alice")},
				{Login: github.String("bob")},
			})
		case strings.HasSuffix(r.URL.Path, "/commits"):
			json.NewEncoder(w).Encode([]*github.RepositoryCommit{
				{SHA: github.String("abc")},
				{SHA: github.String("def")},
				{SHA: github.String("ghi")},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	fetcher.minStars = 10

	repos, err := fetcher.GetTrendingRepos(context.Background(), "go", "weekly")
	require.NoError(t, err)
	require.Len(t, repos, 1)

	// 搜索条件：近一周创建 + star 下限 + 语言
	assert.Contains(t, searchQuery, "created:>2026-07-25")
	assert.Contains(t, searchQuery, "stars:>10")
	assert.Contains(t, searchQuery, "language:go")

	r := repos[0]
	assert.Equal(t, "github-1", r.ID)
	assert.Equal(t, "rocket", r.Name)
	assert.Equal(t, "acme/rocket", r.FullName)
	assert.Equal(t, 120, r.Stars)
	assert.Equal(t, 12, r.Forks)
	assert.Equal(t, 5, r.OpenIssues)
	assert.Equal(t, []string{"testing"}, r.Topics)
	require.NotNil(t, r.License)
	assert.Equal(t, "MIT License", *r.License)

	// 补充字段来自额外的 API 调用
	assert.Equal(t, 2, r.Contributors)
	assert.Equal(t, 3, r.RecentCommits)
}

func TestFetcher_GetTrendingRepos_EnrichmentFailureIsNotFatal(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	fetcher := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/search/repositories") {
			result := &github.RepositoriesSearchResult{
				Total: github.Int(1),
				Repositories: []*github.Repository{
					createMockRepo(7, "acme", "lonely", "Rust", 80, now.AddDate(0, 0, -2)),
				},
			}
			json.NewEncoder(w).Encode(result)
			return
		}
		// 贡献者/提交接口全挂
		w.WriteHeader(http.StatusInternalServerError)
	})

	repos, err := fetcher.GetTrendingRepos(context.Background(), "rust", "daily")
	require.NoError(t, err)
	require.Len(t, repos, 1)

	// 补充失败只是字段留 0，记录本身保留
	assert.Equal(t, 0, repos[0].Contributors)
	assert.Equal(t, 0, repos[0].RecentCommits)
}

func TestFetcher_GetReposByTopic(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	var searchQuery string
	fetcher := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/search/repositories"):
			searchQuery = r.URL.Query().Get("q")
			result := &github.RepositoriesSearchResult{
				Total: github.Int(1),
				Repositories: []*github.Repository{
					createMockRepo(9, "acme", "agents", "Python", 300, now.AddDate(0, 0, -10)),
				},
			}
			json.NewEncoder(w).Encode(result)
		default:
			json.NewEncoder(w).Encode([]any{})
		}
	})

	repos, err := fetcher.GetReposByTopic(context.Background(), "ai-agents")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "topic:ai-agents", searchQuery)
	assert.Equal(t, "acme/agents", repos[0].FullName)
}

func TestFetcher_SearchErrorIsWrapped(t *testing.T) {
	fetcher := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		// 422：非法查询，不该重试，立刻报错
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"Validation Failed"}`))
	})

	_, err := fetcher.GetTrendingRepos(context.Background(), "go", "daily")
	assert.Error(t, err)
}

func TestIsRetryable(t *testing.T) {
	makeErr := func(code int) error {
		return &github.ErrorResponse{
			Response: &http.Response{StatusCode: code},
		}
	}

	assert.False(t, isRetryable(makeErr(422)))
	assert.False(t, isRetryable(makeErr(401)))
	assert.False(t, isRetryable(makeErr(404)))
	assert.True(t, isRetryable(makeErr(403))) // 限流
	assert.True(t, isRetryable(makeErr(500)))
	assert.True(t, isRetryable(assert.AnError)) // 网络错误默认重试
}
