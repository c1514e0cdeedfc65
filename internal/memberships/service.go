package memberships

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/needlink/needlink-backend/pkg/auth"
	"github.com/needlink/needlink-backend/pkg/db"
	"github.com/needlink/needlink-backend/pkg/db/models"
	"github.com/needlink/needlink-backend/pkg/enums"
	pkgerrors "github.com/needlink/needlink-backend/pkg/errors"
)

type serviceRepository interface {
	GetActiveMembership(ctx context.Context, userID, poiID uuid.UUID) (*models.PoiMembership, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PoiMembership, error)
	Create(ctx context.Context, dto CreateMembershipDTO) (*models.PoiMembership, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ListPoiMembers(ctx context.Context, poiID uuid.UUID) ([]PoiMemberDTO, error)
}

type usersRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type authorizer interface {
	Authorized(ctx context.Context, actor *auth.Actor, poiID uuid.UUID, perms ...enums.Permission) (bool, error)
}

// Service exposes membership management operations.
type Service interface {
	ListMembers(ctx context.Context, actor *auth.Actor, poiID uuid.UUID) ([]PoiMemberDTO, error)
	AddMember(ctx context.Context, actor *auth.Actor, poiID uuid.UUID, input AddMemberInput) (*MembershipDTO, error)
	Deactivate(ctx context.Context, actor *auth.Actor, poiID, membershipID uuid.UUID) error
}

// AddMemberInput captures the data required to grant a role at a poi.
type AddMemberInput struct {
	Email string
	Role  enums.RoleGroup
}

type service struct {
	repo     serviceRepository
	users    usersRepository
	resolver authorizer
}

// NewService builds a membership service.
func NewService(repo serviceRepository, usersRepo usersRepository, resolver authorizer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver required")
	}
	return &service{repo: repo, users: usersRepo, resolver: resolver}, nil
}

func (s *service) ListMembers(ctx context.Context, actor *auth.Actor, poiID uuid.UUID) ([]PoiMemberDTO, error) {
	if err := s.require(ctx, actor, poiID, enums.PermViewPoiMembership); err != nil {
		return nil, err
	}

	members, err := s.repo.ListPoiMembers(ctx, poiID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list poi members")
	}
	return members, nil
}

func (s *service) AddMember(ctx context.Context, actor *auth.Actor, poiID uuid.UUID, input AddMemberInput) (*MembershipDTO, error) {
	if err := s.require(ctx, actor, poiID, enums.PermAddPoiMembership); err != nil {
		return nil, err
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role group %q", input.Role))
	}

	member, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}

	membership, err := s.repo.Create(ctx, CreateMembershipDTO{
		PoiID:     poiID,
		MemberID:  member.ID,
		Role:      input.Role,
		CreatedBy: actor.ID,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_poi_memberships_active") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already holds an active membership at this poi")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
	}
	return ToDTO(membership), nil
}

func (s *service) Deactivate(ctx context.Context, actor *auth.Actor, poiID, membershipID uuid.UUID) error {
	if err := s.require(ctx, actor, poiID, enums.PermChangePoiMembership); err != nil {
		return err
	}

	membership, err := s.repo.FindByID(ctx, membershipID)
	if err != nil {
		if isNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find membership")
	}
	if membership.PoiID != poiID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	if !membership.IsActive {
		return nil
	}

	if err := s.repo.SetActive(ctx, membershipID, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate membership")
	}
	return nil
}

func (s *service) require(ctx context.Context, actor *auth.Actor, poiID uuid.UUID, perm enums.Permission) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	ok, err := s.resolver.Authorized(ctx, actor, poiID, perm)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve membership")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role at this poi")
	}
	return nil
}
