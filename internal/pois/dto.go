package pois

import (
	"time"

	"github.com/google/uuid"

	"github.com/needlink/needlink-backend/pkg/db/models"
)

// PoiDTO is the transport shape for a poi.
type PoiDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Contact     string    `json:"contact,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreatePoiInput captures the fields accepted when registering a poi.
type CreatePoiInput struct {
	Name        string
	Description string
	Contact     string
}

// UpdatePoiInput captures the mutable poi fields.
type UpdatePoiInput struct {
	Name        *string
	Description *string
	Contact     *string
}

// FromModel converts a model to the external DTO.
func FromModel(p *models.Poi) *PoiDTO {
	if p == nil {
		return nil
	}
	return &PoiDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Contact:     p.Contact,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromModels(rows []models.Poi) []PoiDTO {
	out := make([]PoiDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
