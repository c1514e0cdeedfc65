package goods

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/needlink/needlink-backend/internal/authz"
	"github.com/needlink/needlink-backend/pkg/auth"
	"github.com/needlink/needlink-backend/pkg/db/models"
	pkgerrors "github.com/needlink/needlink-backend/pkg/errors"
)

type goodsRepository interface {
	Create(ctx context.Context, item *models.Goods) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Goods, error)
	ListByPois(ctx context.Context, poiIDs []uuid.UUID) ([]models.Goods, error)
	Update(ctx context.Context, item *models.Goods) error
}

// Service exposes the goods catalog operations.
type Service interface {
	Create(ctx context.Context, actor *auth.Actor, input CreateGoodsInput) (*GoodsDTO, error)
	GetByID(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*GoodsDTO, error)
	List(ctx context.Context, actor *auth.Actor) ([]GoodsDTO, error)
	Update(ctx context.Context, actor *auth.Actor, id uuid.UUID, input UpdateGoodsInput) (*GoodsDTO, error)
}

type service struct {
	repo   goodsRepository
	policy authz.Policy
}

// NewService builds a goods service.
func NewService(repo goodsRepository, policy authz.Policy) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("goods repository required")
	}
	if policy == nil {
		return nil, fmt.Errorf("goods policy required")
	}
	return &service{repo: repo, policy: policy}, nil
}

func (s *service) Create(ctx context.Context, actor *auth.Actor, input CreateGoodsInput) (*GoodsDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	// The creation form is already restricted to authorized pois; the
	// submitted poi id is checked again here regardless.
	ok, err := s.policy.CanAdd(ctx, actor, input.PoiID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve membership")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role at this poi")
	}

	item := &models.Goods{
		ID:          uuid.New(),
		PoiID:       input.PoiID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Link:        input.Link,
		CreatedBy:   actor.ID,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create goods")
	}
	return FromModel(item), nil
}

func (s *service) GetByID(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*GoodsDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "goods not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find goods")
	}

	ok, err := s.policy.CanView(ctx, actor, item.PoiID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve membership")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role at this poi")
	}
	return FromModel(item), nil
}

func (s *service) List(ctx context.Context, actor *auth.Actor) ([]GoodsDTO, error) {
	scope, err := s.policy.ViewScope(ctx, actor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve visibility")
	}

	rows, err := s.repo.ListByPois(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list goods")
	}
	return fromModels(rows), nil
}

func (s *service) Update(ctx context.Context, actor *auth.Actor, id uuid.UUID, input UpdateGoodsInput) (*GoodsDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "goods not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find goods")
	}

	ok, err := s.policy.CanChange(ctx, actor, item.PoiID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve membership")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role at this poi")
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Link != nil {
		item.Link = input.Link
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update goods")
	}
	return FromModel(item), nil
}
