package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/needlink/needlink-backend/pkg/enums"
)

// Shipment is a volunteer's pledge against a single need. The need
// reference is immutable after creation; created_by drives quota
// accounting and visibility, not control.
type Shipment struct {
	ID     uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	NeedID uuid.UUID            `gorm:"column:need_id;type:uuid;not null"`
	Status enums.ShipmentStatus `gorm:"column:status;type:text;not null"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
