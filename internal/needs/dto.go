package needs

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/needlink/needlink-backend/pkg/db/models"
	"github.com/needlink/needlink-backend/pkg/enums"
)

// NeedDTO is the transport shape for a need.
type NeedDTO struct {
	ID        uuid.UUID        `json:"id"`
	PoiID     uuid.UUID        `json:"poi_id"`
	GoodID    uuid.UUID        `json:"good_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Unit      enums.Unit       `json:"unit"`
	DueTime   time.Time        `json:"due_time"`
	Status    enums.NeedStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// BoardItemDTO is a public board row: an active need with display names.
type BoardItemDTO struct {
	NeedID    uuid.UUID       `json:"need_id"`
	PoiID     uuid.UUID       `json:"poi_id"`
	PoiName   string          `json:"poi_name"`
	GoodName  string          `json:"good_name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      enums.Unit      `json:"unit"`
	DueTime   time.Time       `json:"due_time"`
	CreatedAt time.Time       `json:"created_at"`
}

// BoardPageDTO is a page of the public board plus the cursor for the next one.
type BoardPageDTO struct {
	Items      []BoardItemDTO `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// CreateNeedInput captures the fields accepted when publishing a need.
type CreateNeedInput struct {
	PoiID    uuid.UUID
	GoodID   uuid.UUID
	Quantity decimal.Decimal
	Unit     enums.Unit
	DueTime  time.Time
}

// UpdateNeedInput captures the mutable need fields. Status is absent on
// purpose: the normal flow never touches it.
type UpdateNeedInput struct {
	Quantity *decimal.Decimal
	Unit     *enums.Unit
	DueTime  *time.Time
}

// FromModel converts a model to the external DTO.
func FromModel(n *models.Need) *NeedDTO {
	if n == nil {
		return nil
	}
	return &NeedDTO{
		ID:        n.ID,
		PoiID:     n.PoiID,
		GoodID:    n.GoodID,
		Quantity:  n.Quantity,
		Unit:      n.Unit,
		DueTime:   n.DueTime,
		Status:    n.Status,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func fromModels(rows []models.Need) []NeedDTO {
	out := make([]NeedDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
