// Package models defines GORM data models and API DTOs for hostwatch.
package models

import (
	"gorm.io/gorm"
)

// AlertKind identifies which resource breached its threshold.
type AlertKind string

const (
	AlertKindCPU    AlertKind = "CPU"
	AlertKindMemory AlertKind = "Memory"
)

// Sample is a point-in-time host resource reading. Samples are append-only:
// the collector creates them on a fixed cadence and nothing ever mutates them.
// Timestamp is wall-clock seconds since epoch, matching the API wire format.
type Sample struct {
	gorm.Model

	Timestamp     float64 `gorm:"index;not null" json:"timestamp"`
	CPUPercent    float64 `json:"cpu"`    // percent 0-100
	MemoryPercent float64 `json:"memory"` // percent 0-100
}

// Alert records a threshold breach at a point in time. The Threshold field is
// a snapshot of the registry value at evaluation time, so history stays
// accurate after the limits change.
type Alert struct {
	gorm.Model

	Timestamp float64   `gorm:"index;not null" json:"timestamp"`
	Kind      AlertKind `gorm:"index;not null" json:"type"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	Message   string    `json:"message"`
}

// User holds a registered account. Only the bcrypt digest is ever stored;
// the clear-text password never touches the database or the logs.
type User struct {
	gorm.Model

	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
}

// ─── API DTOs ─────────────────────────────────────────────────────────────────

// SamplePoint is the wire shape of one metric reading.
type SamplePoint struct {
	Timestamp float64 `json:"timestamp"`
	CPU       float64 `json:"cpu"`
	Memory    float64 `json:"memory"`
}

// AlertRecord is the wire shape of one alert.
type AlertRecord struct {
	Timestamp float64   `json:"timestamp"`
	Kind      AlertKind `json:"type"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	Message   string    `json:"message"`
}

// AlertDigest is the compact alert form embedded in Summary.LastAlerts.
// Timestamp is pre-formatted for display ("2006-01-02 15:04:05").
type AlertDigest struct {
	Kind      AlertKind `json:"type"`
	Timestamp string    `json:"timestamp"`
	Message   string    `json:"message"`
}

// Breakdown splits the alert total by kind.
type Breakdown struct {
	CPU    int `json:"cpu"`
	Memory int `json:"memory"`
}

// Averages holds the arithmetic mean of the latest samples.
type Averages struct {
	CPU    float64 `json:"cpu"`
	Memory float64 `json:"memory"`
}

// Summary is the aggregated reporting view over alert and sample history.
type Summary struct {
	TotalAlerts int           `json:"totalAlerts"`
	Breakdown   Breakdown     `json:"breakdown"`
	LastAlerts  []AlertDigest `json:"lastAlerts"`
	Averages    Averages      `json:"averages"`
}
