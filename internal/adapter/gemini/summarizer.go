package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"repo-scout/internal/common"
	"repo-scout/internal/domain"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Summarizer 实现了 port.Summarizer 接口
type Summarizer struct {
	client *genai.Client
	// 两个模型配置：摘要返回纯文本，洞察分析强制返回 JSON
	textModel *genai.GenerativeModel
	jsonModel *genai.GenerativeModel
}

// 接收 AI 洞察分析返回的 JSON
type insightsResponse struct {
	Narrative string   `json:"narrative"`
	KeyTrends []string `json:"key_trends"`
}

func NewSummarizer(ctx context.Context, apiKey string) (*Summarizer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeAIProcessing, "初始化 Gemini 客户端失败", err)
	}

	textModel := client.GenerativeModel("gemini-2.5-flash-lite")

	jsonModel := client.GenerativeModel("gemini-2.5-flash-lite")
	// 强制要求返回 JSON，降低解析错误的概率
	jsonModel.ResponseMIMEType = "application/json"

	return &Summarizer{
		client:    client,
		textModel: textModel,
		jsonModel: jsonModel,
	}, nil
}

// Close 释放底层连接
func (s *Summarizer) Close() error {
	return s.client.Close()
}

// Summarize 为单个仓库生成一段中文简评
// 失败时返回错误，由调用方决定降级策略 (通常是套模板文案，不中断流水线)
func (s *Summarizer) Summarize(ctx context.Context, repo *domain.EnrichedRepo) (string, error) {
	prompt := fmt.Sprintf(`你是一个资深的开源技术观察者。请用一段话 (80字以内) 点评以下 GitHub 项目为什么最近值得关注：

项目名称: %s
项目描述: %s
主要语言: %s
Star 数: %d (日均增长 %.1f)
动量得分: %.1f/100
项目类型: %s

直接返回点评正文，不要任何前缀或 Markdown 格式。`,
		repo.FullName, repo.Description, repo.Language,
		repo.Stars, repo.StarVelocity, repo.MomentumScore, repo.RepoType)

	resp, err := s.textModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", common.WrapError(common.ErrCodeAIProcessing,
			fmt.Sprintf("生成 %s 的简评失败", repo.FullName), err)
	}

	text, err := extractText(resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// AnalyzeInsights 对一轮分析的整体趋势做叙事总结
func (s *Summarizer) AnalyzeInsights(ctx context.Context, insights *domain.TrendInsights) (*domain.AIAnalysis, error) {
	facts, err := json.Marshal(insights)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeAIProcessing, "序列化趋势数据失败", err)
	}

	prompt := fmt.Sprintf(`你是一个开源生态分析师。以下是一轮 GitHub 趋势分析的统计结果 (JSON)：

%s

请严格按照 JSON 格式返回分析结论，包含以下字段：
1. narrative: 一段中文叙事总结 (200字以内)，点出本轮最值得关注的动向。
2. key_trends: 3-5 条关键趋势，每条一句话。

请直接返回 JSON，不要包含 Markdown 格式标记。`, facts)

	resp, err := s.jsonModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeAIProcessing, "趋势洞察分析失败", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	parsed, err := parseInsightsResponse(text)
	if err != nil {
		return nil, err
	}

	return &domain.AIAnalysis{
		Narrative: parsed.Narrative,
		KeyTrends: parsed.KeyTrends,
	}, nil
}

// extractText 从响应中取出第一段文本
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", common.NewError(common.ErrCodeAIProcessing, "AI 返回内容为空")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", common.NewError(common.ErrCodeAIProcessing, "AI 返回格式错误")
	}
	return string(text), nil
}

// parseInsightsResponse 智能寻找 JSON 的起止位置再解析
// 即使 AI 返回 "```json { ... } \n ```"，也能精准抠出中间的 { ... }
func parseInsightsResponse(raw string) (*insightsResponse, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")

	if start == -1 || end == -1 || end <= start {
		return nil, common.NewError(common.ErrCodeAIProcessing,
			fmt.Sprintf("无法提取 JSON, AI 原文: %s", raw))
	}

	var res insightsResponse
	if err := json.Unmarshal([]byte(raw[start:end+1]), &res); err != nil {
		return nil, common.WrapError(common.ErrCodeAIProcessing,
			fmt.Sprintf("JSON 解析失败, 原文: %s", raw[start:end+1]), err)
	}

	return &res, nil
}
