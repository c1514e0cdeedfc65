package pois

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/needlink/needlink-backend/pkg/db/models"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Repository exposes poi persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new poi.
func (r *Repository) Create(ctx context.Context, poi *models.Poi) error {
	return r.db.WithContext(ctx).Create(poi).Error
}

// FindByID loads a poi by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Poi, error) {
	var poi models.Poi
	if err := r.db.WithContext(ctx).First(&poi, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &poi, nil
}

// List returns every poi ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Poi, error) {
	var rows []models.Poi
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the provided poi fields.
func (r *Repository) Update(ctx context.Context, poi *models.Poi) error {
	return r.db.WithContext(ctx).Save(poi).Error
}

// Delete removes a poi; the database blocks the delete while dependents exist.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Poi{}, "id = ?", id).Error
}
