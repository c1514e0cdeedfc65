package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/needlink/needlink-backend/pkg/db/models"
	"github.com/needlink/needlink-backend/pkg/enums"
)

// MembershipDTO is the transport shape for a raw membership record.
type MembershipDTO struct {
	ID        uuid.UUID       `json:"id"`
	PoiID     uuid.UUID       `json:"poi_id"`
	MemberID  uuid.UUID       `json:"member_id"`
	Role      enums.RoleGroup `json:"role"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PoiMemberDTO mixes membership metadata with the member's profile for
// poi admins.
type PoiMemberDTO struct {
	MembershipID uuid.UUID       `json:"membership_id"`
	PoiID        uuid.UUID       `json:"poi_id"`
	MemberID     uuid.UUID       `json:"member_id"`
	Email        string          `json:"email"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Role         enums.RoleGroup `json:"role"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CreateMembershipDTO holds the data required to persist a membership.
type CreateMembershipDTO struct {
	PoiID     uuid.UUID
	MemberID  uuid.UUID
	Role      enums.RoleGroup
	CreatedBy uuid.UUID
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.PoiMembership) *MembershipDTO {
	if m == nil {
		return nil
	}

	return &MembershipDTO{
		ID:        m.ID,
		PoiID:     m.PoiID,
		MemberID:  m.MemberID,
		Role:      m.Role,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
