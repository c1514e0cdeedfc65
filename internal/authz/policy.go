package authz

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/needlink/needlink-backend/pkg/auth"
	"github.com/needlink/needlink-backend/pkg/enums"
)

// Resolver is the membership resolver surface the policies delegate to.
type Resolver interface {
	AuthorizedPois(ctx context.Context, actor *auth.Actor, perms ...enums.Permission) ([]uuid.UUID, error)
	Authorized(ctx context.Context, actor *auth.Actor, poiID uuid.UUID, perms ...enums.Permission) (bool, error)
}

// Policy answers the four authorization questions for one entity type,
// scoped to a poi. Composable strategies replace per-screen permission
// overrides: each entity gets one policy wired to its permission codes.
type Policy interface {
	CanView(ctx context.Context, actor *auth.Actor, poiID uuid.UUID) (bool, error)
	CanChange(ctx context.Context, actor *auth.Actor, poiID uuid.UUID) (bool, error)
	CanAdd(ctx context.Context, actor *auth.Actor, poiID uuid.UUID) (bool, error)
	CanDelete(ctx context.Context, actor *auth.Actor, poiID uuid.UUID) (bool, error)

	// ViewScope returns the poi ids whose rows the actor may list. An
	// empty slice means the listing renders empty, never an error.
	ViewScope(ctx context.Context, actor *auth.Actor) ([]uuid.UUID, error)

	// CanCreateAnywhere reports whether at least one poi accepts creates
	// from this actor; it backs the create form gate.
	CanCreateAnywhere(ctx context.Context, actor *auth.Actor) (bool, error)
}

type entityPolicy struct {
	resolver Resolver
	view     []enums.Permission
	change   []enums.Permission
	add      []enums.Permission
	delete   []enums.Permission
	// listPerms is the broader set used for list visibility.
	listPerms []enums.Permission
}

func newEntityPolicy(resolver Resolver, view, change, add, del, list []enums.Permission) (Policy, error) {
	if resolver == nil {
		return nil, fmt.Errorf("resolver required")
	}
	return &entityPolicy{
		resolver:  resolver,
		view:      view,
		change:    change,
		add:       add,
		delete:    del,
		listPerms: list,
	}, nil
}

func (p *entityPolicy) CanView(ctx context.Context, actor *auth.Actor, poiID uuid.UUID) (bool, error) {
	return p.check(ctx, actor, poiID, p.view)
}

func (p *entityPolicy) CanChange(ctx context.Context, actor *auth.Actor, poiID uuid.UUID) (bool, error) {
	return p.check(ctx, actor, poiID, p.change)
}

func (p *entityPolicy) CanAdd(ctx context.Context, actor *auth.Actor, poiID uuid.UUID) (bool, error) {
	return p.check(ctx, actor, poiID, p.add)
}

func (p *entityPolicy) CanDelete(ctx context.Context, actor *auth.Actor, poiID uuid.UUID) (bool, error) {
	return p.check(ctx, actor, poiID, p.delete)
}

func (p *entityPolicy) ViewScope(ctx context.Context, actor *auth.Actor) ([]uuid.UUID, error) {
	return p.resolver.AuthorizedPois(ctx, actor, p.listPerms...)
}

func (p *entityPolicy) CanCreateAnywhere(ctx context.Context, actor *auth.Actor) (bool, error) {
	if actor.Privileged() {
		return true, nil
	}
	ids, err := p.resolver.AuthorizedPois(ctx, actor, p.add...)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func (p *entityPolicy) check(ctx context.Context, actor *auth.Actor, poiID uuid.UUID, perms []enums.Permission) (bool, error) {
	if len(perms) == 0 {
		return false, nil
	}
	return p.resolver.Authorized(ctx, actor, poiID, perms...)
}

// GoodsPolicy gates the goods catalog.
func GoodsPolicy(resolver Resolver) (Policy, error) {
	return newEntityPolicy(resolver,
		[]enums.Permission{enums.PermViewGoods},
		[]enums.Permission{enums.PermChangeGoods},
		[]enums.Permission{enums.PermAddGoods},
		nil,
		[]enums.Permission{enums.PermViewGoods, enums.PermChangeGoods, enums.PermAddGoods},
	)
}

// NeedsPolicy gates needs CRUD; deletion has its own permission code.
func NeedsPolicy(resolver Resolver) (Policy, error) {
	return newEntityPolicy(resolver,
		[]enums.Permission{enums.PermViewNeeds},
		[]enums.Permission{enums.PermChangeNeeds},
		[]enums.Permission{enums.PermAddNeeds},
		[]enums.Permission{enums.PermDeleteNeeds},
		[]enums.Permission{enums.PermViewNeeds, enums.PermChangeNeeds, enums.PermAddNeeds},
	)
}

// ShipmentsPolicy gates shipments; lists join through the need's poi.
func ShipmentsPolicy(resolver Resolver) (Policy, error) {
	return newEntityPolicy(resolver,
		[]enums.Permission{enums.PermViewShipments},
		[]enums.Permission{enums.PermChangeShipments},
		[]enums.Permission{enums.PermAddShipments},
		nil,
		[]enums.Permission{enums.PermViewShipments},
	)
}

// MembershipsPolicy gates membership administration.
func MembershipsPolicy(resolver Resolver) (Policy, error) {
	return newEntityPolicy(resolver,
		[]enums.Permission{enums.PermViewPoiMembership},
		[]enums.Permission{enums.PermChangePoiMembership},
		[]enums.Permission{enums.PermAddPoiMembership},
		nil,
		[]enums.Permission{enums.PermViewPoiMembership, enums.PermChangePoiMembership, enums.PermAddPoiMembership},
	)
}
