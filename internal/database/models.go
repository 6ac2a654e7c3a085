// Package database хранит историю обработки страниц и журнал запросов к LLM
// в PostgreSQL через GORM.
package database

import "time"

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// CrawlRun: один запуск обработки страницы или локального HTML.
type CrawlRun struct {
	ID          uint   `gorm:"primaryKey"`
	URL         string `gorm:"type:text"`
	Name        string `gorm:"type:varchar(255);not null"`
	SavePath    string `gorm:"type:text;not null"`
	Status      string `gorm:"type:varchar(32);not null;default:'running'"`
	TreeNodes   int
	SimpleNodes int
	FitNodes    int
	Batches     int
	Failed      int
	Error       string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// LlmLog: один запрос к модели. Промпт и ответ уже очищены от секретов.
type LlmLog struct {
	ID           uint      `gorm:"primaryKey"`
	RunID        *uint     `gorm:"index"`
	BatchNo      int       `gorm:"not null;default:0"`
	Role         string    `gorm:"type:varchar(16);not null"`
	PromptText   string    `gorm:"type:text;not null"`
	ResponseText string    `gorm:"type:text"`
	Model        string    `gorm:"type:varchar(64)"`
	TokensUsed   int
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// RunStats: итоги обработки для завершения запуска.
type RunStats struct {
	TreeNodes   int
	SimpleNodes int
	FitNodes    int
	Batches     int
	Failed      int
}
