package models

import "time"

type MetricType string

const (
	MetricCO2         MetricType = "co2"
	MetricTemperature MetricType = "temperature"
	MetricHumidity    MetricType = "humidity"
)

type AlertDirection string

const (
	DirectionLow  AlertDirection = "low"
	DirectionHigh AlertDirection = "high"
)

type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

type RiskLevel string

const (
	RiskUnknown  RiskLevel = "Unknown"
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

type RiskSource string

const (
	RiskSourceModel    RiskSource = "ml-model"
	RiskSourceFallback RiskSource = "rule-based-fallback"
	RiskSourceNoData   RiskSource = "no-data"
)

// Reading is one persisted metric row. Three rows sharing a source and
// timestamp form a snapshot.
type Reading struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	SourceID   string     `gorm:"index" json:"source_id"`
	Metric     MetricType `gorm:"type:varchar(20);check:metric IN ('co2','temperature','humidity')" json:"metric"`
	Value      float64    `json:"value"`
	CapturedAt time.Time  `gorm:"index" json:"captured_at"`
}

// Snapshot is the in-flight reading triple. Not a table of its own.
type Snapshot struct {
	SourceID    string    `json:"source_id"`
	CO2         float64   `json:"co2"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	CapturedAt  time.Time `json:"captured_at"`
}

// CropThreshold is one owner-scoped override of the built-in range table.
// At most one active row per (owner, crop, metric).
type CropThreshold struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Owner     string     `gorm:"uniqueIndex:idx_owner_crop_metric" json:"owner"`
	CropName  string     `gorm:"uniqueIndex:idx_owner_crop_metric" json:"crop_name"`
	Metric    MetricType `gorm:"type:varchar(20);uniqueIndex:idx_owner_crop_metric" json:"metric"`
	CropStage string     `json:"crop_stage"`
	MinValue  float64    `json:"min_value"`
	MaxValue  float64    `json:"max_value"`
	Unit      string     `json:"unit"`
}

type Alert struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Owner      string         `gorm:"index" json:"owner"`
	Metric     MetricType     `gorm:"type:varchar(20)" json:"metric"`
	Value      float64        `json:"value"`
	Unit       string         `json:"unit"`
	IdealMin   float64        `json:"ideal_min"`
	IdealMax   float64        `json:"ideal_max"`
	Direction  AlertDirection `gorm:"type:varchar(10)" json:"direction"`
	Severity   AlertSeverity  `gorm:"type:varchar(10);index" json:"severity"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion"`
	CropType   string         `json:"crop_type"`
	CropStage  string         `json:"crop_stage"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

// RiskVerdict is computed fresh per request and never persisted.
type RiskVerdict struct {
	RiskLevel       RiskLevel  `json:"risk_level"`
	Confidence      float64    `json:"confidence"`
	Analysis        string     `json:"analysis"`
	Recommendations []string   `json:"recommendations"`
	Source          RiskSource `json:"source"`
}

// ModelRequest is the outbound inference payload.
type ModelRequest struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	CO2         float64 `json:"co2"`
	CropType    string  `json:"crop_type"`
	CropStage   string  `json:"crop_stage"`
}

// ModelResponse is the inference reply; Status is one of
// optimal/warning/critical, case-insensitive.
type ModelResponse struct {
	RiskScore float64 `json:"risk_score"`
	Status    string  `json:"status"`
}

// MetricSummary aggregates one metric over a query window.
type MetricSummary struct {
	Metric MetricType `json:"metric"`
	Avg    float64    `json:"avg"`
	Min    float64    `json:"min"`
	Max    float64    `json:"max"`
	Count  int        `json:"count"`
}

// TrendBucket is one hour of averaged readings.
type TrendBucket struct {
	Hour time.Time              `json:"hour"`
	Avg  map[MetricType]float64 `json:"avg"`
}
