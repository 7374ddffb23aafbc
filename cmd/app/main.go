package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"repo-scout/internal/adapter/export"
	"repo-scout/internal/adapter/feishu"
	"repo-scout/internal/adapter/filter"
	"repo-scout/internal/adapter/gemini"
	"repo-scout/internal/adapter/github"
	"repo-scout/internal/adapter/repository"
	"repo-scout/internal/adapter/social"
	"repo-scout/internal/adapter/web"
	"repo-scout/internal/analysis"
	"repo-scout/internal/config"
	"repo-scout/internal/port"
	"repo-scout/internal/service"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// 单轮分析的超时上限
const cycleTimeout = 10 * time.Minute

func main() {
	// .env 不存在也没关系，环境变量可能已经在 shell 里了
	_ = godotenv.Load()

	// 1. 命令行参数
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	mode := flag.String("mode", "scan", "运行模式: scan (分析) / serve (看板) / post (生成文案)")
	cronSpec := flag.String("cron", "", "cron 表达式，非空时按计划重复执行 (仅 scan 模式)")
	languages := flag.String("languages", "", "逗号分隔的语言列表，覆盖配置文件")
	timeframe := flag.String("timeframe", "", "时间窗口: daily/weekly/monthly，覆盖配置文件")
	addr := flag.String("addr", "", "看板监听地址，覆盖配置文件")
	flag.Parse()

	// 2. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}
	if *languages != "" {
		cfg.Languages = strings.Split(*languages, ",")
	}
	if *timeframe != "" {
		cfg.Timeframe = *timeframe
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// 3. 根据模式分流
	switch *mode {
	case "scan":
		runScan(cfg, *cronSpec)
	case "serve":
		runServe(cfg)
	case "post":
		runPost(cfg)
	default:
		fmt.Println("❌ 未知模式，请使用 -mode=scan / serve / post")
		os.Exit(1)
	}
}

// buildService 按配置组装流水线，缺密钥的协作者留空让流水线自动跳过
func buildService(ctx context.Context, cfg *config.AppConfig) (*service.ScoutService, error) {
	engine, err := analysis.NewEngine(cfg.ScoringConfig())
	if err != nil {
		return nil, err
	}

	fetcher := github.NewFetcher(cfg.GitHub.Token, cfg.MinStars)
	qualityFilter := filter.NewQualityFilter(cfg.MinStars, cfg.MinContributors)

	var store port.Repository
	if cfg.Database.DSN != "" {
		store, err = repository.NewPostgresRepo(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
	} else {
		log.Println("⚠️ 未配置数据库 DSN，本轮结果不落库")
	}

	var summarizer port.Summarizer
	if cfg.Gemini.APIKey != "" {
		summarizer, err = gemini.NewSummarizer(ctx, cfg.Gemini.APIKey)
		if err != nil {
			return nil, err
		}
	} else {
		log.Println("⚠️ 未配置 GEMINI_API_KEY，跳过 AI 解读")
	}

	var notifier port.Notifier
	if cfg.Feishu.WebhookURL != "" {
		notifier = feishu.NewNotifier(cfg.Feishu.WebhookURL)
	}

	exporter := export.NewFileExporter(cfg.OutputDir)

	svc := service.NewScoutService(fetcher, qualityFilter, engine, store, summarizer, notifier, exporter)
	svc.SetMaxRepos(cfg.MaxRepos)
	return svc, nil
}

// runScan 单次或定时执行分析
func runScan(cfg *config.AppConfig, cronSpec string) {
	ctx := context.Background()
	svc, err := buildService(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ 初始化流水线失败: %v", err)
	}

	cycle := func() {
		cycleCtx, cancel := context.WithTimeout(ctx, cycleTimeout)
		defer cancel()

		if _, err := svc.RunAnalysisCycle(cycleCtx, cfg.Languages, cfg.Topics, cfg.Timeframe); err != nil {
			log.Printf("❌ 本轮分析失败: %v", err)
		}
	}

	if cronSpec == "" {
		cycle()
		return
	}

	// 定时模式：先跑一轮，再按 cron 计划重复
	c := cron.New()
	if _, err := c.AddFunc(cronSpec, cycle); err != nil {
		log.Fatalf("❌ cron 表达式不合法 %q: %v", cronSpec, err)
	}

	fmt.Printf("⏰ 定时执行模式已启动: %s\n", cronSpec)
	fmt.Println("按下 Ctrl+C 可以优雅停止程序")
	cycle()
	c.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n👋 收到停止信号，正在退出...")
	<-c.Stop().Done()
}

// runServe 启动只读看板
func runServe(cfg *config.AppConfig) {
	if cfg.Database.DSN == "" {
		log.Fatal("❌ serve 模式需要配置数据库 DSN")
	}

	store, err := repository.NewPostgresRepo(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("❌ DB 初始化失败: %v", err)
	}

	server := web.NewServer(store, cfg.Server.Addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("❌ 看板服务异常退出: %v", err)
	}
}

// runPost 用最近一轮的分析结果生成社交媒体文案
func runPost(cfg *config.AppConfig) {
	if cfg.Database.DSN == "" {
		log.Fatal("❌ post 模式需要配置数据库 DSN")
	}

	store, err := repository.NewPostgresRepo(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("❌ DB 初始化失败: %v", err)
	}

	ctx := context.Background()
	insights, err := store.LatestInsights(ctx)
	if err != nil {
		log.Fatalf("❌ 读取最近分析失败 (先运行 -mode=scan 生成一轮): %v", err)
	}

	top, err := store.TopByMomentum(ctx, 3)
	if err != nil {
		log.Fatalf("❌ 读取动量榜单失败: %v", err)
	}

	generator := social.NewGenerator()

	weekly, err := generator.WeeklyTrendsPost(insights)
	if err != nil {
		log.Fatalf("❌ 生成周度趋势帖失败: %v", err)
	}
	fmt.Println("================ [ 周度趋势帖 ] ================")
	fmt.Println(weekly.Content)

	hot, err := generator.HotReposPost(top)
	if err != nil {
		log.Printf("⚠️ 生成热门项目帖失败: %v", err)
		return
	}
	fmt.Println("\n================ [ 热门项目帖 ] ================")
	fmt.Println(hot.Content)
}
