package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/needlink/needlink-backend/pkg/enums"
)

// PoiMembership links a user with a poi and captures the granted role group.
// Only active memberships confer authority. A user may hold at most one
// active membership per poi (partial unique index).
type PoiMembership struct {
	ID       uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	MemberID uuid.UUID       `gorm:"column:member_id;type:uuid;not null;index:idx_poi_memberships_active,unique,where:is_active"`
	PoiID    uuid.UUID       `gorm:"column:poi_id;type:uuid;not null;index:idx_poi_memberships_active,unique,where:is_active"`
	Role     enums.RoleGroup `gorm:"column:role;type:text;not null"`
	IsActive bool            `gorm:"column:is_active;not null"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
