package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"repo-scout/internal/common"
	"repo-scout/internal/domain"
)

// FileExporter 实现了 port.Exporter 接口
// 每轮分析落两个文件：明细表 (CSV) 和洞察结构 (JSON)，文件名带时间戳不互相覆盖
type FileExporter struct {
	outputDir string
	nowFunc   func() time.Time
}

func NewFileExporter(outputDir string) *FileExporter {
	return &FileExporter{
		outputDir: outputDir,
		nowFunc:   time.Now,
	}
}

var csvHeader = []string{
	"id", "full_name", "url", "language", "stars", "forks", "open_issues",
	"contributors", "recent_commits", "age_days", "star_velocity", "growth_rate",
	"engagement_score", "momentum_score", "growth_potential",
	"repo_type", "growth_category", "trend_direction", "cluster",
}

// Export 把一轮分析写到 analysis_<ts>.csv 和 insights_<ts>.json
func (e *FileExporter) Export(run *domain.AnalysisRun) (string, string, error) {
	if run == nil {
		return "", "", common.NewError(common.ErrCodeInvalidInput, "分析结果为空，没有可导出的内容")
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", "", common.WrapError(common.ErrCodeExport, "创建输出目录失败", err)
	}

	timestamp := e.nowFunc().Format("20060102_150405")

	csvPath := filepath.Join(e.outputDir, fmt.Sprintf("analysis_%s.csv", timestamp))
	if err := e.writeCSV(csvPath, run.Records); err != nil {
		return "", "", err
	}
	log.Printf("📁 明细已导出: %s", csvPath)

	jsonPath := filepath.Join(e.outputDir, fmt.Sprintf("insights_%s.json", timestamp))
	if err := e.writeJSON(jsonPath, run.Insights); err != nil {
		return "", "", err
	}
	log.Printf("📁 洞察已导出: %s", jsonPath)

	return csvPath, jsonPath, nil
}

func (e *FileExporter) writeCSV(path string, records []*domain.EnrichedRepo) error {
	f, err := os.Create(path)
	if err != nil {
		return common.WrapError(common.ErrCodeExport, "创建 CSV 文件失败", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return common.WrapError(common.ErrCodeExport, "写入 CSV 表头失败", err)
	}

	for _, r := range records {
		row := []string{
			r.ID,
			r.FullName,
			r.URL,
			r.Language,
			strconv.Itoa(r.Stars),
			strconv.Itoa(r.Forks),
			strconv.Itoa(r.OpenIssues),
			strconv.Itoa(r.Contributors),
			strconv.Itoa(r.RecentCommits),
			formatFloat(r.AgeDays),
			formatFloat(r.StarVelocity),
			formatFloat(r.GrowthRate),
			formatFloat(r.EngagementScore),
			formatFloat(r.MomentumScore),
			formatFloat(r.GrowthPotential),
			r.RepoType,
			r.GrowthCategory,
			r.TrendDirection,
			strconv.Itoa(r.Cluster),
		}
		if err := w.Write(row); err != nil {
			return common.WrapError(common.ErrCodeExport,
				fmt.Sprintf("写入 %s 的 CSV 行失败", r.FullName), err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return common.WrapError(common.ErrCodeExport, "刷写 CSV 失败", err)
	}
	return nil
}

func (e *FileExporter) writeJSON(path string, insights *domain.TrendInsights) error {
	data, err := json.MarshalIndent(insights, "", "  ")
	if err != nil {
		return common.WrapError(common.ErrCodeExport, "序列化洞察数据失败", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return common.WrapError(common.ErrCodeExport, "写入 JSON 文件失败", err)
	}
	return nil
}

// formatFloat 保留两位小数，去掉多余的尾零让文件更好读
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
