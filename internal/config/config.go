package config

import (
	"fmt"
	"os"

	"repo-scout/internal/analysis"
	"repo-scout/internal/common"

	"gopkg.in/yaml.v3"
)

// AppConfig 应用级配置：抓什么、存哪里、推给谁
// 打分参数在 scoring 段单独覆盖，缺省用引擎内置值
type AppConfig struct {
	Languages       []string `yaml:"languages"`
	Topics          []string `yaml:"topics"`
	Timeframe       string   `yaml:"timeframe"` // daily / weekly / monthly
	MinStars        int      `yaml:"min_stars"`
	MinContributors int      `yaml:"min_contributors"`
	MaxRepos        int      `yaml:"max_repos"` // 单轮最多分析的仓库数，0 表示不设上限
	OutputDir       string   `yaml:"output_dir"`

	GitHub   GitHubConfig   `yaml:"github"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Feishu   FeishuConfig   `yaml:"feishu"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`

	Scoring *analysis.Overrides `yaml:"scoring"`
}

type GitHubConfig struct {
	Token string `yaml:"token"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
}

type FeishuConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default 返回一份开箱即用的默认配置
func Default() *AppConfig {
	return &AppConfig{
		Languages: []string{"go", "python", "rust", "typescript"},
		Timeframe: "weekly",
		MinStars:  10,
		MaxRepos:  100,
		OutputDir: "data",
		Server:    ServerConfig{Addr: ":8080"},
	}
}

// Load 读取 YAML 配置并叠加环境变量
// path 为空或文件不存在时直接用默认值，密钥类配置只认环境变量也能跑
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, common.WrapError(common.ErrCodeConfig,
					fmt.Sprintf("读取配置文件 %s 失败", path), err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, common.WrapError(common.ErrCodeConfig,
				fmt.Sprintf("解析配置文件 %s 失败", path), err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ScoringConfig 合并打分参数覆盖后的最终引擎配置
func (c *AppConfig) ScoringConfig() analysis.Config {
	return analysis.Merge(analysis.DefaultConfig(), c.Scoring)
}

// applyEnvOverrides 环境变量优先于配置文件 (密钥不应该写进 YAML)
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("FEISHU_WEBHOOK_URL"); v != "" {
		cfg.Feishu.WebhookURL = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SCOUT_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
}

func (c *AppConfig) validate() error {
	switch c.Timeframe {
	case "daily", "weekly", "monthly":
	default:
		return common.NewError(common.ErrCodeConfig,
			fmt.Sprintf("timeframe 必须是 daily/weekly/monthly，收到: %q", c.Timeframe))
	}

	if c.MinStars < 0 {
		return common.NewError(common.ErrCodeConfig, "min_stars 不能为负数")
	}
	if c.MinContributors < 0 {
		return common.NewError(common.ErrCodeConfig, "min_contributors 不能为负数")
	}
	if c.MaxRepos < 0 {
		return common.NewError(common.ErrCodeConfig, "max_repos 不能为负数")
	}
	if len(c.Languages) == 0 && len(c.Topics) == 0 {
		return common.NewError(common.ErrCodeConfig, "languages 和 topics 至少要配置一个")
	}

	// 打分参数覆盖也要能通过引擎校验
	return c.ScoringConfig().Validate()
}
