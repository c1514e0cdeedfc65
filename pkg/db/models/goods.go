package models

import (
	"time"

	"github.com/google/uuid"
)

// Goods is a catalog item type a poi can request.
type Goods struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;type:text;not null"`
	Description string    `gorm:"column:description;type:text;not null;default:''"`
	Link        *string   `gorm:"column:link;type:text"`
	PoiID       uuid.UUID `gorm:"column:poi_id;type:uuid;not null"`

	Needs []Need `gorm:"foreignKey:GoodID;constraint:OnDelete:RESTRICT"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
