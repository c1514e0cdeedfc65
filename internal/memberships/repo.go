package memberships

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/needlink/needlink-backend/pkg/db/models"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Repository exposes membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetActiveMemberships returns the user's active memberships across all pois.
func (r *Repository) GetActiveMemberships(ctx context.Context, userID uuid.UUID) ([]models.PoiMembership, error) {
	var rows []models.PoiMembership
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND is_active", userID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetActiveMembership retrieves the user's active membership at a poi, if any.
func (r *Repository) GetActiveMembership(ctx context.Context, userID, poiID uuid.UUID) (*models.PoiMembership, error) {
	var membership models.PoiMembership
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND poi_id = ? AND is_active", userID, poiID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// FindByID loads a membership record regardless of its active flag.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PoiMembership, error) {
	var membership models.PoiMembership
	if err := r.db.WithContext(ctx).First(&membership, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

// Create persists a new membership record.
func (r *Repository) Create(ctx context.Context, dto CreateMembershipDTO) (*models.PoiMembership, error) {
	if !dto.Role.IsValid() {
		return nil, fmt.Errorf("invalid role group %q", dto.Role)
	}

	membership := &models.PoiMembership{
		ID:        uuid.New(),
		PoiID:     dto.PoiID,
		MemberID:  dto.MemberID,
		Role:      dto.Role,
		IsActive:  true,
		CreatedBy: dto.CreatedBy,
	}

	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// SetActive flips the membership's active flag.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.PoiMembership{}).
		Where("id = ?", id).
		UpdateColumn("is_active", active).Error
}

// ListPoiMembers returns memberships for the poi along with member metadata.
func (r *Repository) ListPoiMembers(ctx context.Context, poiID uuid.UUID) ([]PoiMemberDTO, error) {
	var rows []poiMemberRow
	err := r.db.WithContext(ctx).
		Model(&models.PoiMembership{}).
		Select("poi_memberships.*, users.email, users.first_name, users.last_name").
		Joins("JOIN users ON users.id = poi_memberships.member_id").
		Where("poi_memberships.poi_id = ?", poiID).
		Order("poi_memberships.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return poiMembersFromRows(rows), nil
}

// AllPoiIDs returns every poi id; used for the privileged resolver path.
func (r *Repository) AllPoiIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Poi{}).
		Order("created_at").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
