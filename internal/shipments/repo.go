package shipments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/needlink/needlink-backend/internal/authz"
	"github.com/needlink/needlink-backend/pkg/db/models"
	"github.com/needlink/needlink-backend/pkg/enums"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Repository exposes shipment persistence operations. The admission path
// runs inside a caller-provided transaction so the quota guard and the
// need claim commit atomically.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a shipment by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.WithContext(ctx).First(&shipment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shipment, nil
}

// ListMine returns the user's own shipments, open ones before done,
// newest first within each group.
func (r *Repository) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Shipment, error) {
	var rows []models.Shipment
	err := r.db.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("CASE WHEN status = 'done' THEN 1 ELSE 0 END").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByPois returns shipments whose parent need belongs to the
// authorized poi set.
func (r *Repository) ListByPois(ctx context.Context, poiIDs []uuid.UUID) ([]models.Shipment, error) {
	var rows []models.Shipment
	err := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Select("shipments.*").
		Scopes(authz.ShipmentPoiScope(poiIDs)).
		Order("shipments.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// OpenCount returns how many not-yet-done shipments the user holds.
func (r *Repository) OpenCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("created_by = ? AND status IN ?", userID, enums.OpenShipmentStatuses).
		Count(&count).Error
	return count, err
}

// InsertWithinQuota inserts the shipment only while the creator's open
// shipment count stays below limit. The guard reads an aggregate, so the
// caller must run it under serializable isolation: under read committed
// two concurrent inserts see the same committed count and both pass.
// Returns false when the quota guard rejected the row.
func InsertWithinQuota(tx *gorm.DB, shipment *models.Shipment, limit int) (bool, error) {
	now := time.Now().UTC()
	res := tx.Exec(`
		INSERT INTO shipments (id, need_id, status, created_by, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE (
			SELECT COUNT(*) FROM shipments
			WHERE created_by = ? AND status IN (?, ?)
		) < ?`,
		shipment.ID, shipment.NeedID, shipment.Status, shipment.CreatedBy, now, now,
		shipment.CreatedBy, enums.ShipmentStatusToDo, enums.ShipmentStatusInProgress, limit,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ClaimNeed flips the need from active to disabled. Returns false when the
// need was not active anymore, meaning a concurrent pledge won the race.
func ClaimNeed(tx *gorm.DB, needID uuid.UUID) (bool, error) {
	res := tx.Model(&models.Need{}).
		Where("id = ? AND status = ?", needID, enums.NeedStatusActive).
		Update("status", enums.NeedStatusDisabled)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
