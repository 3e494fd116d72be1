package repositories

import (
	"errors"
	"time"

	"CryptoSignalBot/internal/models"

	"gorm.io/gorm"
)

type SignalRepository struct {
	db *gorm.DB
}

// NewSignalRepository creates a new instance of SignalRepository
func NewSignalRepository(db *gorm.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

// Create adds a new signal record to the journal
func (r *SignalRepository) Create(signal *models.SignalModel) error {
	if signal == nil {
		return errors.New("signal cannot be nil")
	}
	return r.db.Create(signal).Error
}

// FindByID retrieves a signal by its ID
func (r *SignalRepository) FindByID(id string) (*models.SignalModel, error) {
	if id == "" {
		return nil, errors.New("invalid id")
	}
	var signal models.SignalModel
	err := r.db.First(&signal, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &signal, err
}

// FindBySymbol retrieves the most recent signals for a symbol, newest
// first, capped at limit
func (r *SignalRepository) FindBySymbol(symbol string, limit int) ([]models.SignalModel, error) {
	if symbol == "" {
		return nil, errors.New("invalid symbol")
	}
	if limit <= 0 {
		limit = 50
	}
	var signals []models.SignalModel
	err := r.db.Where("symbol = ?", symbol).
		Order("created_at DESC").
		Limit(limit).
		Find(&signals).Error
	return signals, err
}

// FindSince retrieves all signals created at or after the given time
func (r *SignalRepository) FindSince(since time.Time) ([]models.SignalModel, error) {
	var signals []models.SignalModel
	err := r.db.Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&signals).Error
	return signals, err
}

// CountByDirection tallies signals per direction since the given time
func (r *SignalRepository) CountByDirection(since time.Time) (map[models.SignalDirection]int64, error) {
	type Row struct {
		Direction models.SignalDirection
		Count     int64
	}
	var rows []Row

	err := r.db.Model(&models.SignalModel{}).
		Select("direction, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("direction").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[models.SignalDirection]int64, len(rows))
	for _, row := range rows {
		result[row.Direction] = row.Count
	}
	return result, nil
}

// DeleteOlderThan removes journal entries created before the cutoff and
// reports how many went away
func (r *SignalRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res := r.db.Where("created_at < ?", cutoff).Delete(&models.SignalModel{})
	return res.RowsAffected, res.Error
}
