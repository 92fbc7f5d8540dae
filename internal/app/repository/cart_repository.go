package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/pkg/logger"
)

type CartRepository interface {
	Load(userID uint) (model.Cart, error)
	Save(userID uint, cart model.Cart) error
	Delete(userID uint) error
	DeleteStale(olderThan time.Time) (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// Load returns the user's persisted cart, or an empty cart when none exists.
func (r *cartRepository) Load(userID uint) (model.Cart, error) {
	var record model.CartRecord
	err := r.db.First(&record, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, nil
	}
	if err != nil {
		return nil, err
	}

	cart, err := model.UnmarshalItems(record.Items)
	if err != nil {
		logger.Error("Corrupt cart payload, resetting", err, map[string]interface{}{
			"user_id": userID,
		})
		return model.Cart{}, nil
	}
	return cart, nil
}

// Save upserts the user's cart as a JSON payload.
func (r *cartRepository) Save(userID uint, cart model.Cart) error {
	items, err := cart.MarshalItems()
	if err != nil {
		return err
	}

	record := model.CartRecord{
		UserID:    userID,
		Items:     items,
		UpdatedAt: time.Now(),
	}
	err = r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"items", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		logger.Error("Failed to save cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) Delete(userID uint) error {
	return r.db.Delete(&model.CartRecord{}, "user_id = ?", userID).Error
}

// DeleteStale removes carts not touched since olderThan.
func (r *cartRepository) DeleteStale(olderThan time.Time) (int64, error) {
	res := r.db.Delete(&model.CartRecord{}, "updated_at < ?", olderThan)
	return res.RowsAffected, res.Error
}
