package memberships

import (
	"github.com/needlink/needlink-backend/pkg/db/models"
)

type poiMemberRow struct {
	models.PoiMembership
	Email     string `gorm:"column:email"`
	FirstName string `gorm:"column:first_name"`
	LastName  string `gorm:"column:last_name"`
}

func poiMemberFromRow(row poiMemberRow) PoiMemberDTO {
	return PoiMemberDTO{
		MembershipID: row.ID,
		PoiID:        row.PoiID,
		MemberID:     row.MemberID,
		Email:        row.Email,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Role:         row.Role,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt,
	}
}

func poiMembersFromRows(rows []poiMemberRow) []PoiMemberDTO {
	out := make([]PoiMemberDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, poiMemberFromRow(row))
	}
	return out
}
