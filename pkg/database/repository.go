package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a vector set does not exist
var ErrNotFound = errors.New("vector set not found")

// VectorRepository handles vector set database operations
type VectorRepository struct {
	db *gorm.DB
}

// NewVectorRepository creates a new vector repository
func NewVectorRepository(db *gorm.DB) *VectorRepository {
	return &VectorRepository{db: db}
}

// Create stores a set together with its vectors in one transaction
func (r *VectorRepository) Create(set *VectorSet) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(set).Error
	})
}

// Get retrieves a set and its vectors ordered by index
func (r *VectorRepository) Get(id string) (*VectorSet, error) {
	var set VectorSet
	err := r.db.Preload("Vectors", func(db *gorm.DB) *gorm.DB {
		return db.Order("frame_index ASC")
	}).Where("id = ?", id).First(&set).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &set, nil
}

// Latest retrieves the most recently created set and its vectors
func (r *VectorRepository) Latest() (*VectorSet, error) {
	var set VectorSet
	err := r.db.Order("created_at DESC").First(&set).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.Get(set.ID)
}

// List retrieves the most recent sets without their vectors
func (r *VectorRepository) List(limit int) ([]VectorSet, error) {
	var sets []VectorSet
	err := r.db.Order("created_at DESC").Limit(limit).Find(&sets).Error
	return sets, err
}

// Count returns the number of stored sets
func (r *VectorRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&VectorSet{}).Count(&count).Error
	return count, err
}

// Delete removes a set and its vectors
func (r *VectorRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("set_id = ?", id).Delete(&ReferenceVector{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&VectorSet{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil
	})
}
