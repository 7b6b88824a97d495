package models

import (
	"time"

	"github.com/google/uuid"
)

// MappingStrategy selects how the mapping table is rebuilt at the start of a
// run. Exactly one strategy is active per run.
type MappingStrategy string

const (
	StrategyProductNumber MappingStrategy = "product_number"
	StrategyEanOem        MappingStrategy = "ean_oem"
	StrategyDistributor   MappingStrategy = "distributor"
)

// SyncAlgorithm selects the device-product synchronization variant.
type SyncAlgorithm string

const (
	AlgorithmFullRebuild  SyncAlgorithm = "v1"
	AlgorithmDifferential SyncAlgorithm = "v2"
)

// RunStatus represents the status of a sync run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// LogLevel represents the severity of a run log entry
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// RunCounters accumulates per-phase counts for the run report. Each phase
// builds its own value and the orchestrator merges them into the run row.
type RunCounters struct {
	MappingsInserted        int `json:"mappingsInserted"`
	ProductsMatched         int `json:"productsMatched"`
	ProductsSkipped         int `json:"productsSkipped"`
	DevicesEnabled          int `json:"devicesEnabled"`
	DevicesDisabled         int `json:"devicesDisabled"`
	BrandsEnabled           int `json:"brandsEnabled"`
	BrandsDisabled          int `json:"brandsDisabled"`
	SeriesEnabled           int `json:"seriesEnabled"`
	SeriesDisabled          int `json:"seriesDisabled"`
	TypesEnabled            int `json:"typesEnabled"`
	TypesDisabled           int `json:"typesDisabled"`
	LinksInserted           int `json:"linksInserted"`
	LinksDeleted            int `json:"linksDeleted"`
	RelationshipsInserted   int `json:"relationshipsInserted"`
	RelationshipsDeleted    int `json:"relationshipsDeleted"`
	CrossSellingsUpdated    int `json:"crossSellingsUpdated"`
	FailedItems             int `json:"failedItems"`
}

// Merge adds the counts of other into c.
func (c *RunCounters) Merge(other RunCounters) {
	c.MappingsInserted += other.MappingsInserted
	c.ProductsMatched += other.ProductsMatched
	c.ProductsSkipped += other.ProductsSkipped
	c.DevicesEnabled += other.DevicesEnabled
	c.DevicesDisabled += other.DevicesDisabled
	c.BrandsEnabled += other.BrandsEnabled
	c.BrandsDisabled += other.BrandsDisabled
	c.SeriesEnabled += other.SeriesEnabled
	c.SeriesDisabled += other.SeriesDisabled
	c.TypesEnabled += other.TypesEnabled
	c.TypesDisabled += other.TypesDisabled
	c.LinksInserted += other.LinksInserted
	c.LinksDeleted += other.LinksDeleted
	c.RelationshipsInserted += other.RelationshipsInserted
	c.RelationshipsDeleted += other.RelationshipsDeleted
	c.CrossSellingsUpdated += other.CrossSellingsUpdated
	c.FailedItems += other.FailedItems
}

// SyncRun represents one reconciliation run and its persisted report.
type SyncRun struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Strategy  MappingStrategy `gorm:"type:varchar(50);not null" json:"strategy"`
	Algorithm SyncAlgorithm   `gorm:"type:varchar(10);not null" json:"algorithm"`
	Status    RunStatus       `gorm:"type:varchar(20);not null;default:'RUNNING';index:idx_catalog_sync_runs_status" json:"status"`

	// Report counters, serialized as one JSONB document
	Counters JSONB `gorm:"type:jsonb;default:'{}'" json:"counters"`

	ErrorMessage string `gorm:"type:text" json:"errorMessage,omitempty"`

	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for SyncRun
func (SyncRun) TableName() string {
	return "catalog_sync_runs"
}

// SyncRunLog is a structured log row attached to a run, for post-hoc
// inspection of skips and per-item failures.
type SyncRunLog struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RunID   uuid.UUID `gorm:"type:uuid;not null;index:idx_catalog_sync_run_logs_run" json:"runId"`
	Level   LogLevel  `gorm:"type:varchar(10);not null" json:"level"`
	Message string    `gorm:"type:text;not null" json:"message"`
	Data    JSONB     `gorm:"type:jsonb" json:"data,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for SyncRunLog
func (SyncRunLog) TableName() string {
	return "catalog_sync_run_logs"
}
