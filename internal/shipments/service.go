package shipments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/needlink/needlink-backend/internal/authz"
	"github.com/needlink/needlink-backend/pkg/auth"
	"github.com/needlink/needlink-backend/pkg/db"
	dbmodels "github.com/needlink/needlink-backend/pkg/db/models"
	"github.com/needlink/needlink-backend/pkg/enums"
	pkgerrors "github.com/needlink/needlink-backend/pkg/errors"
	"github.com/needlink/needlink-backend/pkg/metrics"
)

type shipmentsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*dbmodels.Shipment, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]dbmodels.Shipment, error)
	ListByPois(ctx context.Context, poiIDs []uuid.UUID) ([]dbmodels.Shipment, error)
}

type needsLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*dbmodels.Need, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithSerializableTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Admission outcome labels.
const (
	outcomeAdmitted = "admitted"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// admissionAttempts bounds retries of the admission transaction when a
// concurrent commit forces a serialization failure.
const admissionAttempts = 3

// Service runs the shipment admission controller and the privileged
// completion flow.
type Service interface {
	Create(ctx context.Context, actor *auth.Actor, needID uuid.UUID) (*ShipmentDTO, error)
	MarkDone(ctx context.Context, actor *auth.Actor, id uuid.UUID) error
	GetByID(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*ShipmentDTO, error)
	ListMine(ctx context.Context, actor *auth.Actor) ([]ShipmentDTO, error)
	List(ctx context.Context, actor *auth.Actor) ([]ShipmentDTO, error)
}

type service struct {
	repo      shipmentsRepository
	needs     needsLookup
	policy    authz.Policy
	tx        txRunner
	openLimit int
	metrics   *metrics.AdmissionMetrics
}

// NewService builds a shipments service. openLimit is the per-user cap on
// not-yet-done shipments; metrics may be nil.
func NewService(repo shipmentsRepository, needsRepo needsLookup, policy authz.Policy, tx txRunner, openLimit int, admission *metrics.AdmissionMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipments repository required")
	}
	if needsRepo == nil {
		return nil, fmt.Errorf("needs repository required")
	}
	if policy == nil {
		return nil, fmt.Errorf("shipments policy required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if openLimit <= 0 {
		return nil, fmt.Errorf("open shipment limit must be positive, got %d", openLimit)
	}
	return &service{
		repo:      repo,
		needs:     needsRepo,
		policy:    policy,
		tx:        tx,
		openLimit: openLimit,
		metrics:   admission,
	}, nil
}

// Create pledges a shipment against an active need. The whole admission
// runs in one serializable transaction: the quota guard, the insert, and
// the need's active→disabled flip either all commit or none do. The
// quota guard counts rows, so read committed is not enough — two
// concurrent pledges against different needs would both see the same
// open count and both pass. Serialization failures retry a few times
// before surfacing as a conflict.
func (s *service) Create(ctx context.Context, actor *auth.Actor, needID uuid.UUID) (*ShipmentDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	start := time.Now()
	shipment := &dbmodels.Shipment{
		ID:        uuid.New(),
		NeedID:    needID,
		Status:    enums.ShipmentStatusInProgress,
		CreatedBy: actor.ID,
	}

	err := s.admit(ctx, shipment)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			s.metrics.ObserveDuration(outcomeRejected, time.Since(start))
			return nil, err
		}
		s.metrics.ObserveDuration(outcomeError, time.Since(start))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "admit shipment")
	}

	s.metrics.IncAdmitted()
	s.metrics.ObserveDuration(outcomeAdmitted, time.Since(start))

	created, err := s.repo.FindByID(ctx, shipment.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload shipment")
	}
	return FromModel(created), nil
}

func (s *service) admit(ctx context.Context, shipment *dbmodels.Shipment) error {
	var err error
	for attempt := 0; attempt < admissionAttempts; attempt++ {
		err = s.admitOnce(ctx, shipment)
		if !db.IsSerializationFailure(err) {
			return err
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "concurrent pledges, please retry")
}

func (s *service) admitOnce(ctx context.Context, shipment *dbmodels.Shipment) error {
	needID := shipment.NeedID
	return s.tx.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		var need dbmodels.Need
		if err := tx.First(&need, "id = ?", needID).Error; err != nil {
			if isNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
			}
			return err
		}
		if need.Status != enums.NeedStatusActive {
			s.metrics.IncRejected(metrics.ReasonNeedInactive)
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("need is %s, only active needs accept shipments", need.Status))
		}

		inserted, err := InsertWithinQuota(tx, shipment, s.openLimit)
		if err != nil {
			return err
		}
		if !inserted {
			s.metrics.IncRejected(metrics.ReasonQuota)
			return pkgerrors.New(pkgerrors.CodeQuotaExceeded,
				fmt.Sprintf("open shipment limit of %d reached", s.openLimit))
		}

		claimed, err := ClaimNeed(tx, needID)
		if err != nil {
			return err
		}
		if !claimed {
			// Someone pledged between our read and the claim.
			s.metrics.IncRejected(metrics.ReasonNeedInactive)
			return pkgerrors.New(pkgerrors.CodeStateConflict, "need was just pledged by someone else")
		}
		return nil
	})
}

// MarkDone completes a shipment: shipment and its siblings go to done,
// the need goes to fulfilled. Staff or holders of the change permission at
// the need's poi only; the pledging volunteer cannot complete their own
// shipment. Repeating the call on a done shipment is a no-op.
func (s *service) MarkDone(ctx context.Context, actor *auth.Actor, id uuid.UUID) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	// Reads and the permission check run inside the transaction so a
	// membership revoked mid-flight cannot slip a completion through.
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var shipment dbmodels.Shipment
		if err := tx.First(&shipment, "id = ?", id).Error; err != nil {
			if isNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
			}
			return err
		}

		var need dbmodels.Need
		if err := tx.First(&need, "id = ?", shipment.NeedID).Error; err != nil {
			return err
		}

		ok, err := s.policy.CanChange(ctx, actor, need.PoiID)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role at this poi")
		}

		res := tx.Model(&dbmodels.Need{}).
			Where("id = ? AND status <> ?", need.ID, enums.NeedStatusFulfilled).
			Update("status", enums.NeedStatusFulfilled)
		if res.Error != nil {
			return res.Error
		}
		return tx.Model(&dbmodels.Shipment{}).
			Where("need_id = ? AND status <> ?", need.ID, enums.ShipmentStatusDone).
			Update("status", enums.ShipmentStatusDone).Error
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete shipment")
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*ShipmentDTO, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find shipment")
	}

	if actor != nil && shipment.CreatedBy == actor.ID {
		return FromModel(shipment), nil
	}

	need, err := s.needs.FindByID(ctx, shipment.NeedID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find need")
	}
	ok, err := s.policy.CanView(ctx, actor, need.PoiID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve membership")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role at this poi")
	}
	return FromModel(shipment), nil
}

// ListMine returns the volunteer's own shipments, open before done.
func (s *service) ListMine(ctx context.Context, actor *auth.Actor) ([]ShipmentDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	rows, err := s.repo.ListMine(ctx, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipments")
	}
	return fromModels(rows), nil
}

// List returns shipments at the actor's authorized pois.
func (s *service) List(ctx context.Context, actor *auth.Actor) ([]ShipmentDTO, error) {
	scope, err := s.policy.ViewScope(ctx, actor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve visibility")
	}
	rows, err := s.repo.ListByPois(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipments")
	}
	return fromModels(rows), nil
}
