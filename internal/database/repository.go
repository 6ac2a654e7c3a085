package database

import (
	"context"

	"gorm.io/gorm"
)

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) CreateRun(ctx context.Context, run *CrawlRun) error {
	if run.Status == "" {
		run.Status = StatusRunning
	}
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *RunRepository) GetRunByID(ctx context.Context, id uint) (*CrawlRun, error) {
	var run CrawlRun
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *RunRepository) ListRuns(ctx context.Context, limit, offset int) ([]CrawlRun, error) {
	var runs []CrawlRun
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Offset(offset).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// FinishRun фиксирует итоги. Ненулевая runErr переводит запуск в failed.
func (r *RunRepository) FinishRun(ctx context.Context, id uint, stats RunStats, runErr error) error {
	return r.db.WithContext(ctx).Model(&CrawlRun{}).
		Where("id = ?", id).
		Updates(finishUpdates(stats, runErr)).Error
}

func finishUpdates(stats RunStats, runErr error) map[string]any {
	updates := map[string]any{
		"status":       StatusCompleted,
		"tree_nodes":   stats.TreeNodes,
		"simple_nodes": stats.SimpleNodes,
		"fit_nodes":    stats.FitNodes,
		"batches":      stats.Batches,
		"failed":       stats.Failed,
		"error":        "",
	}
	if runErr != nil {
		updates["status"] = StatusFailed
		updates["error"] = runErr.Error()
	}
	return updates
}

func (r *RunRepository) LogLLMRequest(ctx context.Context, runID *uint, batchNo int, role, promptText, responseText, model string, tokensUsed int) error {
	return r.db.WithContext(ctx).Create(&LlmLog{
		RunID:        runID,
		BatchNo:      batchNo,
		Role:         role,
		PromptText:   promptText,
		ResponseText: responseText,
		Model:        model,
		TokensUsed:   tokensUsed,
	}).Error
}

func (r *RunRepository) GetLogsByRunID(ctx context.Context, runID uint) ([]LlmLog, error) {
	var logs []LlmLog
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).Order("id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
