package memberships

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/needlink/needlink-backend/pkg/auth"
	"github.com/needlink/needlink-backend/pkg/db/models"
	"github.com/needlink/needlink-backend/pkg/enums"
)

type resolverRepository interface {
	GetActiveMemberships(ctx context.Context, userID uuid.UUID) ([]models.PoiMembership, error)
	GetActiveMembership(ctx context.Context, userID, poiID uuid.UUID) (*models.PoiMembership, error)
	AllPoiIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Resolver computes the set of pois where an actor holds sufficient active
// role. It is a pure read; authorization mutations go through the service.
type Resolver struct {
	repo resolverRepository
}

// NewResolver binds the resolver to a membership repository.
func NewResolver(repo resolverRepository) (*Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	return &Resolver{repo: repo}, nil
}

// AuthorizedPois returns the ids of pois where the actor's active
// membership grants ANY of the requested permission codes. Unauthenticated
// actors get an empty set; privileged actors get every poi.
func (r *Resolver) AuthorizedPois(ctx context.Context, actor *auth.Actor, perms ...enums.Permission) ([]uuid.UUID, error) {
	if actor == nil {
		return []uuid.UUID{}, nil
	}
	if actor.Privileged() {
		return r.repo.AllPoiIDs(ctx)
	}

	rows, err := r.repo.GetActiveMemberships(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, membership := range rows {
		if membership.Role.GrantsAny(perms...) {
			ids = append(ids, membership.PoiID)
		}
	}
	return ids, nil
}

// Authorized reports whether the actor holds ANY of the permission codes
// at the specific poi. This is the write-time check backing the
// form-render restriction.
func (r *Resolver) Authorized(ctx context.Context, actor *auth.Actor, poiID uuid.UUID, perms ...enums.Permission) (bool, error) {
	if actor == nil {
		return false, nil
	}
	if actor.Privileged() {
		return true, nil
	}

	membership, err := r.repo.GetActiveMembership(ctx, actor.ID, poiID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return membership.Role.GrantsAny(perms...), nil
}

// CanCreate reports whether the actor may create entities guarded by the
// permission anywhere: true when at least one poi is authorized.
func (r *Resolver) CanCreate(ctx context.Context, actor *auth.Actor, perm enums.Permission) (bool, error) {
	if actor.Privileged() {
		return true, nil
	}
	ids, err := r.AuthorizedPois(ctx, actor, perm)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}
