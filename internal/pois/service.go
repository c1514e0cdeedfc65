package pois

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/needlink/needlink-backend/pkg/auth"
	"github.com/needlink/needlink-backend/pkg/db"
	"github.com/needlink/needlink-backend/pkg/db/models"
	"github.com/needlink/needlink-backend/pkg/enums"
	pkgerrors "github.com/needlink/needlink-backend/pkg/errors"
)

type poiRepository interface {
	Create(ctx context.Context, poi *models.Poi) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Poi, error)
	List(ctx context.Context) ([]models.Poi, error)
	Update(ctx context.Context, poi *models.Poi) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type authorizer interface {
	Authorized(ctx context.Context, actor *auth.Actor, poiID uuid.UUID, perms ...enums.Permission) (bool, error)
}

// Service exposes poi operations. Listings and detail reads are public;
// registration and deletion are reserved for staff, field updates for
// members holding change_poi.
type Service interface {
	Create(ctx context.Context, actor *auth.Actor, input CreatePoiInput) (*PoiDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*PoiDTO, error)
	List(ctx context.Context) ([]PoiDTO, error)
	Update(ctx context.Context, actor *auth.Actor, id uuid.UUID, input UpdatePoiInput) (*PoiDTO, error)
	Delete(ctx context.Context, actor *auth.Actor, id uuid.UUID) error
}

type service struct {
	repo     poiRepository
	resolver authorizer
}

// NewService builds a poi service.
func NewService(repo poiRepository, resolver authorizer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("poi repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver required")
	}
	return &service{repo: repo, resolver: resolver}, nil
}

func (s *service) Create(ctx context.Context, actor *auth.Actor, input CreatePoiInput) (*PoiDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !actor.Privileged() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "poi registration is restricted")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	poi := &models.Poi{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Contact:     input.Contact,
		CreatedBy:   actor.ID,
	}
	if err := s.repo.Create(ctx, poi); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create poi")
	}
	return FromModel(poi), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*PoiDTO, error) {
	poi, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "poi not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find poi")
	}
	return FromModel(poi), nil
}

func (s *service) List(ctx context.Context) ([]PoiDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pois")
	}
	return fromModels(rows), nil
}

func (s *service) Update(ctx context.Context, actor *auth.Actor, id uuid.UUID, input UpdatePoiInput) (*PoiDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	ok, err := s.resolver.Authorized(ctx, actor, id, enums.PermChangePoi)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve membership")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role at this poi")
	}

	poi, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "poi not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find poi")
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		poi.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		poi.Description = *input.Description
	}
	if input.Contact != nil {
		poi.Contact = *input.Contact
	}

	if err := s.repo.Update(ctx, poi); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update poi")
	}
	return FromModel(poi), nil
}

func (s *service) Delete(ctx context.Context, actor *auth.Actor, id uuid.UUID) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !actor.Privileged() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "poi deletion is restricted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeReferentialIntegrity, "poi still has memberships, goods, or needs")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete poi")
	}
	return nil
}
