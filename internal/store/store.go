// Package store manages the hostwatch database layer.
// It initializes GORM with SQLite and provides the append-only sample and
// alert stores plus the user table. Samples and alerts are never updated in
// place; the collector is the only writer and API handlers only read.
package store

import (
	"errors"
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hostwatch/internal/models"
)

// ErrDuplicateUser is returned when registering an already-taken username.
var ErrDuplicateUser = errors.New("user already exists")

// Open opens the database at path and runs AutoMigrate.
// Use ":memory:" for an ephemeral database (tests).
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.AutoMigrate(&models.Sample{}, &models.Alert{}, &models.User{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	log.Printf("[db] opened sqlite/%s", path)
	return db, nil
}

// ─── Samples ──────────────────────────────────────────────────────────────────

// SampleStore is the append-only store of metric samples.
type SampleStore struct {
	db *gorm.DB
}

// NewSampleStore wraps db.
func NewSampleStore(db *gorm.DB) *SampleStore {
	return &SampleStore{db: db}
}

// Append persists one sample.
func (s *SampleStore) Append(sample *models.Sample) error {
	return s.db.Create(sample).Error
}

// Recent returns the latest limit samples ordered oldest→newest (newest-last),
// so callers can chart them left to right.
func (s *SampleStore) Recent(limit int) ([]models.Sample, error) {
	var rows []models.Sample
	err := s.db.Order("timestamp desc").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	// Reverse the DESC page into chronological order.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// Prune deletes the oldest samples beyond max. A max of 0 disables retention.
func (s *SampleStore) Prune(max int) error {
	if max <= 0 {
		return nil
	}
	var count int64
	if err := s.db.Model(&models.Sample{}).Count(&count).Error; err != nil {
		return err
	}
	excess := count - int64(max)
	if excess <= 0 {
		return nil
	}
	var victims []uint
	err := s.db.Model(&models.Sample{}).
		Order("timestamp asc").
		Limit(int(excess)).
		Pluck("id", &victims).Error
	if err != nil {
		return err
	}
	return s.db.Unscoped().Delete(&models.Sample{}, victims).Error
}

// Count returns the number of stored samples.
func (s *SampleStore) Count() (int64, error) {
	var count int64
	err := s.db.Model(&models.Sample{}).Count(&count).Error
	return count, err
}

// ─── Alerts ───────────────────────────────────────────────────────────────────

// AlertStore is the append-only store of alert events.
type AlertStore struct {
	db *gorm.DB
}

// NewAlertStore wraps db.
func NewAlertStore(db *gorm.DB) *AlertStore {
	return &AlertStore{db: db}
}

// Append persists one alert.
func (a *AlertStore) Append(alert *models.Alert) error {
	return a.db.Create(alert).Error
}

// All returns the full alert history, newest-first.
func (a *AlertStore) All() ([]models.Alert, error) {
	var rows []models.Alert
	err := a.db.Order("timestamp desc").Find(&rows).Error
	return rows, err
}

// Recent returns the latest limit alerts, newest-first.
func (a *AlertStore) Recent(limit int) ([]models.Alert, error) {
	var rows []models.Alert
	err := a.db.Order("timestamp desc").Limit(limit).Find(&rows).Error
	return rows, err
}

// ─── Users ────────────────────────────────────────────────────────────────────

// UserStore persists registered accounts.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore wraps db.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create stores a new user. Returns ErrDuplicateUser if the username is taken.
func (u *UserStore) Create(username, passwordHash string) error {
	var existing models.User
	err := u.db.Where("username = ?", username).First(&existing).Error
	switch {
	case err == nil:
		return ErrDuplicateUser
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	return u.db.Create(&models.User{Username: username, PasswordHash: passwordHash}).Error
}

// FindByUsername looks up a user; returns gorm.ErrRecordNotFound when absent.
func (u *UserStore) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := u.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
