package needs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/needlink/needlink-backend/internal/authz"
	"github.com/needlink/needlink-backend/pkg/auth"
	"github.com/needlink/needlink-backend/pkg/db"
	dbmodels "github.com/needlink/needlink-backend/pkg/db/models"
	"github.com/needlink/needlink-backend/pkg/enums"
	pkgerrors "github.com/needlink/needlink-backend/pkg/errors"
	"github.com/needlink/needlink-backend/pkg/pagination"
)

type needsRepository interface {
	Create(ctx context.Context, need *dbmodels.Need) error
	FindByID(ctx context.Context, id uuid.UUID) (*dbmodels.Need, error)
	ListByPois(ctx context.Context, poiIDs []uuid.UUID) ([]dbmodels.Need, error)
	ListBoard(ctx context.Context, cursor *pagination.Cursor, limit int) ([]BoardItemDTO, error)
	ListActiveByPoi(ctx context.Context, poiID uuid.UUID) ([]ActiveNeedLine, error)
	Update(ctx context.Context, need *dbmodels.Need) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type goodsLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*dbmodels.Goods, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes need lifecycle operations.
type Service interface {
	Create(ctx context.Context, actor *auth.Actor, input CreateNeedInput) (*NeedDTO, error)
	GetByID(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*NeedDTO, error)
	List(ctx context.Context, actor *auth.Actor) ([]NeedDTO, error)
	Board(ctx context.Context, params pagination.Params) (*BoardPageDTO, error)
	Update(ctx context.Context, actor *auth.Actor, id uuid.UUID, input UpdateNeedInput) (*NeedDTO, error)
	Delete(ctx context.Context, actor *auth.Actor, id uuid.UUID) error
	OverrideStatus(ctx context.Context, actor *auth.Actor, id uuid.UUID, status enums.NeedStatus) error
	ActiveLines(ctx context.Context, poiID uuid.UUID) ([]ActiveNeedLine, error)
}

type service struct {
	repo   needsRepository
	goods  goodsLookup
	policy authz.Policy
	tx     txRunner
}

// NewService builds a needs service.
func NewService(repo needsRepository, goodsRepo goodsLookup, policy authz.Policy, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("needs repository required")
	}
	if goodsRepo == nil {
		return nil, fmt.Errorf("goods repository required")
	}
	if policy == nil {
		return nil, fmt.Errorf("needs policy required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, goods: goodsRepo, policy: policy, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, actor *auth.Actor, input CreateNeedInput) (*NeedDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !input.Unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid unit %q", input.Unit))
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.DueTime.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due_time is required")
	}

	ok, err := s.policy.CanAdd(ctx, actor, input.PoiID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve membership")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role at this poi")
	}

	good, err := s.goods.FindByID(ctx, input.GoodID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "good not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find good")
	}
	if good.PoiID != input.PoiID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "good belongs to a different poi")
	}

	need := &dbmodels.Need{
		ID:        uuid.New(),
		GoodID:    input.GoodID,
		PoiID:     input.PoiID,
		Quantity:  input.Quantity.Round(2),
		Unit:      input.Unit,
		DueTime:   input.DueTime,
		Status:    enums.NeedStatusActive,
		CreatedBy: actor.ID,
	}
	if err := s.repo.Create(ctx, need); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create need")
	}
	return FromModel(need), nil
}

func (s *service) GetByID(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*NeedDTO, error) {
	need, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find need")
	}

	ok, err := s.policy.CanView(ctx, actor, need.PoiID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve membership")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role at this poi")
	}
	return FromModel(need), nil
}

func (s *service) List(ctx context.Context, actor *auth.Actor) ([]NeedDTO, error) {
	scope, err := s.policy.ViewScope(ctx, actor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve visibility")
	}

	rows, err := s.repo.ListByPois(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list needs")
	}
	return fromModels(rows), nil
}

// Board serves the public active-needs listing, newest first, with
// cursor pagination.
func (s *service) Board(ctx context.Context, params pagination.Params) (*BoardPageDTO, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListBoard(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list board")
	}

	page := &BoardPageDTO{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		last := page.Items[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.NeedID,
		})
	}
	return page, nil
}

func (s *service) Update(ctx context.Context, actor *auth.Actor, id uuid.UUID, input UpdateNeedInput) (*NeedDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	need, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find need")
	}

	ok, err := s.policy.CanChange(ctx, actor, need.PoiID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve membership")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role at this poi")
	}

	if input.Quantity != nil {
		if !input.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		need.Quantity = input.Quantity.Round(2)
	}
	if input.Unit != nil {
		if !input.Unit.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid unit %q", *input.Unit))
		}
		need.Unit = *input.Unit
	}
	if input.DueTime != nil {
		need.DueTime = *input.DueTime
	}

	if err := s.repo.Update(ctx, need); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update need")
	}
	return FromModel(need), nil
}

func (s *service) Delete(ctx context.Context, actor *auth.Actor, id uuid.UUID) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	need, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find need")
	}

	ok, err := s.policy.CanDelete(ctx, actor, need.PoiID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve membership")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role at this poi")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeReferentialIntegrity, "need still has shipments")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete need")
	}
	return nil
}

// OverrideStatus is the administrative escape hatch around the state
// machine. Setting fulfilled cascades the need's open shipments to done;
// the cascade is idempotent.
func (s *service) OverrideStatus(ctx context.Context, actor *auth.Actor, id uuid.UUID, status enums.NeedStatus) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid need status %q", status))
	}

	need, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find need")
	}

	ok, err := s.policy.CanChange(ctx, actor, need.PoiID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve membership")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role at this poi")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&dbmodels.Need{}).
			Where("id = ? AND status <> ?", id, status).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}

		if status == enums.NeedStatusFulfilled {
			return tx.Model(&dbmodels.Shipment{}).
				Where("need_id = ? AND status <> ?", id, enums.ShipmentStatusDone).
				Update("status", enums.ShipmentStatusDone).Error
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "override need status")
	}
	return nil
}

func (s *service) ActiveLines(ctx context.Context, poiID uuid.UUID) ([]ActiveNeedLine, error) {
	rows, err := s.repo.ListActiveByPoi(ctx, poiID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active needs")
	}
	return rows, nil
}
