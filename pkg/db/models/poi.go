package models

import (
	"time"

	"github.com/google/uuid"
)

// Poi is a point of interest: a location/organization publishing needs.
type Poi struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;type:text;not null"`
	Description string    `gorm:"column:description;type:text;not null;default:''"`
	Contact     string    `gorm:"column:contact;type:text;not null;default:''"`

	Memberships []PoiMembership `gorm:"foreignKey:PoiID;constraint:OnDelete:RESTRICT"`
	Goods       []Goods         `gorm:"foreignKey:PoiID;constraint:OnDelete:RESTRICT"`
	Needs       []Need          `gorm:"foreignKey:PoiID;constraint:OnDelete:RESTRICT"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
