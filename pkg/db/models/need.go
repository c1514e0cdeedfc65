package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/needlink/needlink-backend/pkg/enums"
)

// Need is a quantified request for a good at a poi. Its status field is
// mutated by the shipment admission controller only; the normal edit flow
// never touches it.
type Need struct {
	ID       uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	GoodID   uuid.UUID        `gorm:"column:good_id;type:uuid;not null"`
	PoiID    uuid.UUID        `gorm:"column:poi_id;type:uuid;not null"`
	Quantity decimal.Decimal  `gorm:"column:quantity;type:numeric(10,2);not null"`
	Unit     enums.Unit       `gorm:"column:unit;type:text;not null"`
	DueTime  time.Time        `gorm:"column:due_time;not null"`
	Status   enums.NeedStatus `gorm:"column:status;type:text;not null;default:'active'"`

	Shipments []Shipment `gorm:"foreignKey:NeedID;constraint:OnDelete:RESTRICT"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
