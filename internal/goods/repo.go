package goods

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/needlink/needlink-backend/internal/authz"
	"github.com/needlink/needlink-backend/pkg/db/models"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Repository exposes goods persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new catalog item.
func (r *Repository) Create(ctx context.Context, item *models.Goods) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID loads a catalog item by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Goods, error) {
	var item models.Goods
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByPois returns catalog items scoped to the authorized poi set.
func (r *Repository) ListByPois(ctx context.Context, poiIDs []uuid.UUID) ([]models.Goods, error) {
	var rows []models.Goods
	err := r.db.WithContext(ctx).
		Scopes(authz.PoiScope(poiIDs)).
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the provided catalog item.
func (r *Repository) Update(ctx context.Context, item *models.Goods) error {
	return r.db.WithContext(ctx).Save(item).Error
}
