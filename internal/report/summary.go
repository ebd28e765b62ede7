// Package report implements the read-only aggregation layer over the sample
// and alert stores. It never mutates anything; figures are best-effort
// as-of-call-time snapshots taken concurrently with collector writes.
package report

import (
	"time"

	"hostwatch/internal/models"
	"hostwatch/internal/store"
)

const (
	// DefaultSampleLimit is used when a caller passes limit <= 0.
	DefaultSampleLimit = 20
	// summaryWindow is how many of the latest samples feed the averages.
	summaryWindow = 10
	// lastAlertCount bounds Summary.LastAlerts.
	lastAlertCount = 10
)

// Summarizer aggregates alert and sample history for the reporting API.
type Summarizer struct {
	samples *store.SampleStore
	alerts  *store.AlertStore
}

// NewSummarizer wraps the two stores.
func NewSummarizer(samples *store.SampleStore, alerts *store.AlertStore) *Summarizer {
	return &Summarizer{samples: samples, alerts: alerts}
}

// RecentSamples returns the latest limit samples ordered oldest→newest.
func (s *Summarizer) RecentSamples(limit int) ([]models.SamplePoint, error) {
	if limit <= 0 {
		limit = DefaultSampleLimit
	}
	rows, err := s.samples.Recent(limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.SamplePoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.SamplePoint{
			Timestamp: r.Timestamp,
			CPU:       r.CPUPercent,
			Memory:    r.MemoryPercent,
		})
	}
	return out, nil
}

// AllAlerts returns the full alert history, newest-first.
func (s *Summarizer) AllAlerts() ([]models.AlertRecord, error) {
	rows, err := s.alerts.All()
	if err != nil {
		return nil, err
	}
	out := make([]models.AlertRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.AlertRecord{
			Timestamp: r.Timestamp,
			Kind:      r.Kind,
			Value:     r.Value,
			Threshold: r.Threshold,
			Message:   r.Message,
		})
	}
	return out, nil
}

// Summary computes the aggregate reporting view: total alert count, breakdown
// by kind, the last 10 alerts, and the mean CPU/memory over the latest 10
// samples. An empty sample store yields zero averages rather than an error.
func (s *Summarizer) Summary() (*models.Summary, error) {
	alerts, err := s.alerts.All()
	if err != nil {
		return nil, err
	}
	samples, err := s.samples.Recent(summaryWindow)
	if err != nil {
		return nil, err
	}

	sum := &models.Summary{
		TotalAlerts: len(alerts),
		LastAlerts:  make([]models.AlertDigest, 0, lastAlertCount),
	}

	for _, a := range alerts {
		switch a.Kind {
		case models.AlertKindCPU:
			sum.Breakdown.CPU++
		case models.AlertKindMemory:
			sum.Breakdown.Memory++
		}
	}

	// alerts are newest-first; the first 10 are the most recent.
	for _, a := range alerts {
		if len(sum.LastAlerts) == lastAlertCount {
			break
		}
		sum.LastAlerts = append(sum.LastAlerts, models.AlertDigest{
			Kind:      a.Kind,
			Timestamp: formatTimestamp(a.Timestamp),
			Message:   a.Message,
		})
	}

	if len(samples) > 0 {
		var cpu, mem float64
		for _, m := range samples {
			cpu += m.CPUPercent
			mem += m.MemoryPercent
		}
		n := float64(len(samples))
		sum.Averages = models.Averages{CPU: cpu / n, Memory: mem / n}
	}

	return sum, nil
}

// formatTimestamp renders epoch seconds as a local "2006-01-02 15:04:05".
func formatTimestamp(ts float64) string {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).Format("2006-01-02 15:04:05")
}
