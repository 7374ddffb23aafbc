package repository

import (
	"context"
	"encoding/json"
	"time"

	"repo-scout/internal/common"
	"repo-scout/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// runRecord 一轮分析的落库形态：洞察结构整体序列化成 JSON 存一列
// 洞察是只读的归档数据，不需要按字段查询，没必要拆表
type runRecord struct {
	ID         uint      `gorm:"primaryKey"`
	AnalyzedAt time.Time `gorm:"index"`
	Timeframe  string
	RepoCount  int
	Insights   string `gorm:"type:jsonb"`
}

func (runRecord) TableName() string {
	return "analysis_runs"
}

// PostgresRepo 实现了 port.Repository 接口
type PostgresRepo struct {
	db *gorm.DB
}

// NewPostgresRepo 初始化数据库连接并自动迁移表结构
func NewPostgresRepo(dsn string) (*PostgresRepo, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "连接数据库失败", err)
	}

	// AutoMigrate 会自动建表，字段变了也会自动更新
	if err := db.AutoMigrate(&runRecord{}, &domain.EnrichedRepo{}); err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "数据库迁移失败", err)
	}

	return &PostgresRepo{db: db}, nil
}

// SaveRun 保存一轮分析：运行记录 + 所有打好分的仓库 (按 ID upsert)
// 两部分放在同一个事务里，要么都落库，要么都不落
func (r *PostgresRepo) SaveRun(ctx context.Context, run *domain.AnalysisRun) error {
	if run == nil {
		return common.NewError(common.ErrCodeInvalidInput, "分析结果为空")
	}

	insightsJSON, err := json.Marshal(run.Insights)
	if err != nil {
		return common.WrapError(common.ErrCodeDatabase, "序列化洞察数据失败", err)
	}

	record := &runRecord{
		AnalyzedAt: run.AnalyzedAt,
		Timeframe:  run.Timeframe,
		RepoCount:  len(run.Records),
		Insights:   string(insightsJSON),
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		if len(run.Records) == 0 {
			return nil
		}

		// 同一个仓库在多轮分析中反复出现，只保留最新的指标
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(run.Records).Error
	})
	if err != nil {
		return common.WrapError(common.ErrCodeDatabase, "保存分析结果失败", err)
	}

	return nil
}

// TopByMomentum 按动量取历史榜单
func (r *PostgresRepo) TopByMomentum(ctx context.Context, limit int) ([]*domain.EnrichedRepo, error) {
	var repos []*domain.EnrichedRepo
	err := r.db.WithContext(ctx).
		Order("momentum_score DESC").
		Limit(limit).
		Find(&repos).Error
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "查询动量榜单失败", err)
	}
	return repos, nil
}

// LatestInsights 最近一轮的洞察 (看板接口用)
func (r *PostgresRepo) LatestInsights(ctx context.Context) (*domain.TrendInsights, error) {
	var record runRecord
	err := r.db.WithContext(ctx).
		Order("analyzed_at DESC").
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, common.NewError(common.ErrCodeNotFound, "还没有任何分析记录")
		}
		return nil, common.WrapError(common.ErrCodeDatabase, "查询最近分析失败", err)
	}

	var insights domain.TrendInsights
	if err := json.Unmarshal([]byte(record.Insights), &insights); err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "反序列化洞察数据失败", err)
	}

	return &insights, nil
}
