package needs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/needlink/needlink-backend/internal/authz"
	"github.com/needlink/needlink-backend/pkg/db/models"
	"github.com/needlink/needlink-backend/pkg/enums"
	"github.com/needlink/needlink-backend/pkg/pagination"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

type boardItemRow struct {
	NeedID    uuid.UUID       `gorm:"column:need_id"`
	PoiID     uuid.UUID       `gorm:"column:poi_id"`
	PoiName   string          `gorm:"column:poi_name"`
	GoodName  string          `gorm:"column:good_name"`
	Quantity  decimal.Decimal `gorm:"column:quantity"`
	Unit      enums.Unit      `gorm:"column:unit"`
	DueTime   time.Time       `gorm:"column:due_time"`
	CreatedAt time.Time       `gorm:"column:created_at"`
}

// ActiveNeedLine is one poi-scoped active need with its good's name; the
// share-image renderer consumes these.
type ActiveNeedLine struct {
	NeedID   uuid.UUID       `gorm:"column:need_id"`
	GoodName string          `gorm:"column:good_name"`
	Quantity decimal.Decimal `gorm:"column:quantity"`
	Unit     enums.Unit      `gorm:"column:unit"`
	DueTime  time.Time       `gorm:"column:due_time"`
}

// Repository exposes need persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new need.
func (r *Repository) Create(ctx context.Context, need *models.Need) error {
	return r.db.WithContext(ctx).Create(need).Error
}

// FindByID loads a need by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Need, error) {
	var need models.Need
	if err := r.db.WithContext(ctx).First(&need, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &need, nil
}

// ListByPois returns needs scoped to the authorized poi set.
func (r *Repository) ListByPois(ctx context.Context, poiIDs []uuid.UUID) ([]models.Need, error) {
	var rows []models.Need
	err := r.db.WithContext(ctx).
		Scopes(authz.PoiScope(poiIDs)).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListBoard returns a page of the public board: active needs newest
// first, joined with their good and poi names. The cursor continues a
// previous page via keyset pagination on (created_at, id).
func (r *Repository) ListBoard(ctx context.Context, cursor *pagination.Cursor, limit int) ([]BoardItemDTO, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Need{}).
		Select("needs.id AS need_id, needs.poi_id, pois.name AS poi_name, goods.name AS good_name, needs.quantity, needs.unit, needs.due_time, needs.created_at").
		Joins("JOIN goods ON goods.id = needs.good_id").
		Joins("JOIN pois ON pois.id = needs.poi_id").
		Where("needs.status = ?", enums.NeedStatusActive).
		Order("needs.created_at DESC").
		Order("needs.id DESC")
	if cursor != nil {
		query = query.Where("(needs.created_at, needs.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []boardItemRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]BoardItemDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, BoardItemDTO{
			NeedID:    row.NeedID,
			PoiID:     row.PoiID,
			PoiName:   row.PoiName,
			GoodName:  row.GoodName,
			Quantity:  row.Quantity,
			Unit:      row.Unit,
			DueTime:   row.DueTime,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

// ListActiveByPoi returns a poi's active needs with good names, oldest
// first; the share-image renderer consumes this ordering.
func (r *Repository) ListActiveByPoi(ctx context.Context, poiID uuid.UUID) ([]ActiveNeedLine, error) {
	var rows []ActiveNeedLine
	err := r.db.WithContext(ctx).
		Model(&models.Need{}).
		Select("needs.id AS need_id, goods.name AS good_name, needs.quantity, needs.unit, needs.due_time").
		Joins("JOIN goods ON goods.id = needs.good_id").
		Where("needs.poi_id = ? AND needs.status = ?", poiID, enums.NeedStatusActive).
		Order("needs.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the provided need fields.
func (r *Repository) Update(ctx context.Context, need *models.Need) error {
	return r.db.WithContext(ctx).Save(need).Error
}

// Delete removes a need; the database blocks the delete while shipments exist.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Need{}, "id = ?", id).Error
}
