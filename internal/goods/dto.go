package goods

import (
	"time"

	"github.com/google/uuid"

	"github.com/needlink/needlink-backend/pkg/db/models"
)

// GoodsDTO is the transport shape for a catalog item.
type GoodsDTO struct {
	ID          uuid.UUID `json:"id"`
	PoiID       uuid.UUID `json:"poi_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Link        *string   `json:"link,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateGoodsInput captures the fields accepted when adding a catalog item.
type CreateGoodsInput struct {
	PoiID       uuid.UUID
	Name        string
	Description string
	Link        *string
}

// UpdateGoodsInput captures the mutable catalog fields.
type UpdateGoodsInput struct {
	Name        *string
	Description *string
	Link        *string
}

// FromModel converts a model to the external DTO.
func FromModel(g *models.Goods) *GoodsDTO {
	if g == nil {
		return nil
	}
	return &GoodsDTO{
		ID:          g.ID,
		PoiID:       g.PoiID,
		Name:        g.Name,
		Description: g.Description,
		Link:        g.Link,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func fromModels(rows []models.Goods) []GoodsDTO {
	out := make([]GoodsDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
