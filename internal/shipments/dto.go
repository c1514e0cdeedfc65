package shipments

import (
	"time"

	"github.com/google/uuid"

	"github.com/needlink/needlink-backend/pkg/db/models"
	"github.com/needlink/needlink-backend/pkg/enums"
)

// ShipmentDTO is the transport shape for a shipment.
type ShipmentDTO struct {
	ID        uuid.UUID            `json:"id"`
	NeedID    uuid.UUID            `json:"need_id"`
	Status    enums.ShipmentStatus `json:"status"`
	CreatedBy uuid.UUID            `json:"created_by"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// FromModel converts a model to the external DTO.
func FromModel(s *models.Shipment) *ShipmentDTO {
	if s == nil {
		return nil
	}
	return &ShipmentDTO{
		ID:        s.ID,
		NeedID:    s.NeedID,
		Status:    s.Status,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func fromModels(rows []models.Shipment) []ShipmentDTO {
	out := make([]ShipmentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
