package models

import "time"

// Severity grades an alert.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// AlertStatus is the lifecycle state of an alert within a session.
// Dismissal removes the alert from the working set rather than storing a
// terminal status; see the session package.
type AlertStatus string

const (
	AlertNew          AlertStatus = "new"
	AlertAcknowledged AlertStatus = "acknowledged"
)

// Alert is an anomaly raised by the pipeline for operator attention.
type Alert struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Severity    Severity    `json:"severity"`
	Status      AlertStatus `json:"status"`
	KPIID       string      `json:"kpiId,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	Source      string      `json:"source,omitempty"`
}

// InsightType classifies a generated insight.
type InsightType string

const (
	InsightTrend          InsightType = "trend"
	InsightAnomaly        InsightType = "anomaly"
	InsightRecommendation InsightType = "recommendation"
	InsightRisk           InsightType = "risk"
)

// AIInsight is a generated narrative over the article corpus. Read-only.
type AIInsight struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Summary       string      `json:"summary"`
	Type          InsightType `json:"type"`
	Confidence    float64     `json:"confidence"`
	RelatedKPIIDs []string    `json:"relatedKpiIds"`
	CreatedAt     time.Time   `json:"createdAt"`
}
