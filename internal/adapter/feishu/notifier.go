package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"repo-scout/internal/common"
	"repo-scout/internal/domain"
)

// 摘要卡片里最多展示的项目数量
const digestTopN = 5

// statusError 记录飞书返回的 HTTP 状态码，用于判断要不要重试
type statusError int

func (e statusError) Error() string {
	return fmt.Sprintf("飞书 API 报错: 状态码 %d", int(e))
}

// 4xx 是请求本身的问题 (签名错、卡片格式错)，重试没有意义
func shouldRetry(err error) bool {
	var se statusError
	if errors.As(err, &se) {
		code := int(se)
		return code == 429 || code >= 500
	}
	return true
}

type Notifier struct {
	webhookURL string
}

func NewNotifier(webhook string) *Notifier {
	if webhook == "" {
		log.Println("⚠️ 警告: 飞书 Webhook 为空，推送功能将无法工作！")
	}
	return &Notifier{webhookURL: webhook}
}

// NotifyDigest 把一轮分析的摘要以飞书卡片 (Schema 2.0) 推送出去
func (n *Notifier) NotifyDigest(ctx context.Context, run *domain.AnalysisRun) error {
	if n.webhookURL == "" {
		return fmt.Errorf("Webhook URL 为空")
	}
	if run == nil || run.Insights == nil {
		return fmt.Errorf("分析结果为空，没有可推送的内容")
	}

	title := fmt.Sprintf("📊 GitHub 趋势日报: %d 个项目，平均动量 %.1f",
		run.Insights.Summary.TotalRepos, run.Insights.Summary.AvgMomentumScore)

	payload := map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"schema": "2.0",
			"config": map[string]interface{}{
				"update_multi": true,
			},
			"header": map[string]interface{}{
				"title": map[string]interface{}{
					"tag":     "plain_text",
					"content": title,
				},
				"template": "blue",
			},
			"body": map[string]interface{}{
				"direction": "vertical",
				"elements": []map[string]interface{}{
					{
						"tag":       "markdown",
						"content":   buildDigestMarkdown(run),
						"text_size": "normal",
					},
				},
			},
		},
	}

	body, _ := json.Marshal(payload)
	err := common.Do(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(body))
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("Content-Type", "application/json")

		resp, postErr := http.DefaultClient.Do(req)
		if postErr != nil {
			return postErr
		}
		defer resp.Body.Close()

		if resp.StatusCode != 200 {
			return statusError(resp.StatusCode)
		}
		return nil
	},
		common.WithMaxRetries(3),
		common.WithInitialDelay(500*time.Millisecond),
		common.WithRetryIf(shouldRetry),
	)
	if err != nil {
		return common.WrapError(common.ErrCodeNotification, "发送请求失败", err)
	}

	return nil
}

// buildDigestMarkdown 拼出卡片正文：Top 项目 + 行动建议 + AI 叙事
func buildDigestMarkdown(run *domain.AnalysisRun) string {
	var b strings.Builder

	b.WriteString("**🏆 动量 Top 项目:**\n")
	top := run.Records
	if len(top) > digestTopN {
		top = top[:digestTopN]
	}
	for i, r := range top {
		b.WriteString(fmt.Sprintf("%d. [%s](%s) — %.1f 分 | ⭐ %d | %s\n",
			i+1, r.FullName, r.URL, r.MomentumScore, r.Stars, r.RepoType))
	}

	if recs := run.Insights.Recommendations; len(recs) > 0 {
		b.WriteString("\n**💡 行动建议:**\n")
		for _, rec := range recs {
			b.WriteString(fmt.Sprintf("- %s\n", rec))
		}
	}

	if run.AI != nil && run.AI.Narrative != "" {
		b.WriteString("\n**🤖 AI 解读:**\n")
		b.WriteString(run.AI.Narrative)
		b.WriteString("\n")
	}

	return b.String()
}
