package social

import (
	"strings"
	"text/template"
	"time"

	"repo-scout/internal/common"
	"repo-scout/internal/domain"
)

// Post 一篇可以直接粘贴发布的 LinkedIn 帖子
type Post struct {
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Hashtags        []string `json:"hashtags"`
	PostType        string   `json:"post_type"`
	EngagementHooks []string `json:"engagement_hooks"`
	CallToAction    string   `json:"call_to_action"`
}

// 帖子里最多点名的项目/语言数量
const postTopN = 3

// Generator 把分析结果渲染成社交媒体文案
type Generator struct {
	weeklyTmpl *template.Template
	hotTmpl    *template.Template
	nowFunc    func() time.Time
}

var baseHashtags = []string{
	"#TechTrends", "#OpenSource", "#SoftwareDevelopment",
	"#Innovation", "#Programming", "#GitHub",
}

const weeklyTrendsTemplate = `🚀 Weekly Tech Trends Analysis - {{.Month}}

I analyzed {{.TotalRepos}} trending repositories this week. Here's what's driving innovation:

📈 TOP TRENDING LANGUAGES:
{{range .TopLanguages}}• {{.}}
{{end}}
💡 KEY INSIGHTS:
{{range .Recommendations}}• {{.}}
{{end}}
⚡ MOMENTUM METRICS:
• Average momentum score: {{printf "%.1f" .AvgMomentum}}/100
• Top momentum score: {{printf "%.1f" .TopMomentum}}/100

The open-source ecosystem continues to evolve rapidly. Developers focusing on these trending areas are positioning themselves well.

What technologies are you most excited about? Share your thoughts below! 👇

{{.HashtagLine}}`

const hotReposTemplate = `🔥 Hottest GitHub Repositories This Week

I've been analyzing trending open-source projects, and these are absolutely crushing it right now:

{{range .Repos}}🚀 {{.Name}} ({{.Language}})
   {{.Description}}
   ⭐ {{.Stars}} stars | 📈 {{printf "%.1f" .Momentum}}/100 momentum

{{end}}💡 WHY THESE MATTER:
• High momentum scores indicate rapid growth and community adoption
• Strong developer engagement and contribution activity

These projects are worth watching - they're solving real problems and gaining serious traction.

Which repository caught your attention? Are you using any similar tools in your projects?

{{.HashtagLine}}`

func NewGenerator() *Generator {
	return &Generator{
		weeklyTmpl: template.Must(template.New("weekly").Parse(weeklyTrendsTemplate)),
		hotTmpl:    template.Must(template.New("hot").Parse(hotReposTemplate)),
		nowFunc:    time.Now,
	}
}

// WeeklyTrendsPost 周度趋势帖：语言榜 + 行动建议 + 动量统计
func (g *Generator) WeeklyTrendsPost(insights *domain.TrendInsights) (*Post, error) {
	if insights == nil {
		return nil, common.NewError(common.ErrCodeInvalidInput, "趋势数据为空，无法生成帖子")
	}

	var langs []string
	for _, lt := range insights.LanguageTrends {
		langs = append(langs, lt.Language)
		if len(langs) == postTopN {
			break
		}
	}

	recs := insights.Recommendations
	if len(recs) > postTopN {
		recs = recs[:postTopN]
	}

	hashtags := deriveHashtags(langs)
	month := g.nowFunc().Format("January 2006")

	data := struct {
		Month           string
		TotalRepos      int
		TopLanguages    []string
		Recommendations []string
		AvgMomentum     float64
		TopMomentum     float64
		HashtagLine     string
	}{
		Month:           month,
		TotalRepos:      insights.Summary.TotalRepos,
		TopLanguages:    langs,
		Recommendations: recs,
		AvgMomentum:     insights.Summary.AvgMomentumScore,
		TopMomentum:     insights.Summary.TopMomentumScore,
		HashtagLine:     strings.Join(hashtags, " "),
	}

	var b strings.Builder
	if err := g.weeklyTmpl.Execute(&b, data); err != nil {
		return nil, common.WrapError(common.ErrCodeInternal, "渲染周度趋势帖失败", err)
	}

	return &Post{
		Title:    "Weekly Tech Trends - " + month,
		Content:  b.String(),
		Hashtags: hashtags,
		PostType: "weekly_trends",
		EngagementHooks: []string{
			"What technologies are you most excited about?",
			"Which trend surprised you the most?",
		},
		CallToAction: "Share your thoughts in the comments! What's trending in your tech stack?",
	}, nil
}

// HotReposPost 热门项目帖：动量 Top 3 的项目亮点
// 调用方需要保证 records 已按动量降序排列 (分析引擎的输出天然满足)
func (g *Generator) HotReposPost(records []*domain.EnrichedRepo) (*Post, error) {
	if len(records) == 0 {
		return nil, common.NewError(common.ErrCodeInvalidInput, "没有项目记录，无法生成帖子")
	}

	top := records
	if len(top) > postTopN {
		top = top[:postTopN]
	}

	type repoView struct {
		Name        string
		Language    string
		Description string
		Stars       int
		Momentum    float64
	}

	var views []repoView
	var langs []string
	for _, r := range top {
		lang := r.Language
		if lang == "" {
			lang = "N/A"
		} else {
			langs = append(langs, lang)
		}
		views = append(views, repoView{
			Name:        r.Name,
			Language:    lang,
			Description: truncate(r.Description, 80),
			Stars:       r.Stars,
			Momentum:    r.MomentumScore,
		})
	}

	hashtags := deriveHashtags(langs)

	data := struct {
		Repos       []repoView
		HashtagLine string
	}{
		Repos:       views,
		HashtagLine: strings.Join(hashtags, " "),
	}

	var b strings.Builder
	if err := g.hotTmpl.Execute(&b, data); err != nil {
		return nil, common.WrapError(common.ErrCodeInternal, "渲染热门项目帖失败", err)
	}

	return &Post{
		Title:    "Hottest GitHub Repositories This Week",
		Content:  b.String(),
		Hashtags: hashtags,
		PostType: "hot_repositories",
		EngagementHooks: []string{
			"Which repository caught your attention?",
			"Have you tried any of these tools?",
		},
		CallToAction: "Drop a comment with your favorite GitHub discoveries!",
	}, nil
}

// deriveHashtags 基础标签 + 语言标签，去重保序
func deriveHashtags(languages []string) []string {
	tags := make([]string, 0, len(baseHashtags)+len(languages))
	seen := make(map[string]bool)

	for _, t := range baseHashtags {
		tags = append(tags, t)
		seen[strings.ToLower(t)] = true
	}

	for _, lang := range languages {
		if lang == "" {
			continue
		}
		// "C++" 这种带符号的语言名做不成合法标签，去掉非字母数字字符
		cleaned := strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, lang)
		if cleaned == "" {
			continue
		}
		tag := "#" + cleaned
		if !seen[strings.ToLower(tag)] {
			tags = append(tags, tag)
			seen[strings.ToLower(tag)] = true
		}
	}

	return tags
}

// truncate 按字符数截断，避免把多字节字符切成两半
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
