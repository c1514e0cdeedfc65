package auth

import "github.com/google/uuid"

// Actor is the authenticated principal derived from access token claims.
// A nil *Actor means the request is unauthenticated.
type Actor struct {
	ID          uuid.UUID
	IsStaff     bool
	IsSuperuser bool
}

// Privileged reports whether the actor bypasses membership checks.
func (a *Actor) Privileged() bool {
	return a != nil && (a.IsStaff || a.IsSuperuser)
}

// ActorFromClaims builds an Actor from parsed token claims.
func ActorFromClaims(claims *AccessTokenClaims) *Actor {
	if claims == nil {
		return nil
	}
	return &Actor{
		ID:          claims.UserID,
		IsStaff:     claims.IsStaff,
		IsSuperuser: claims.IsSuperuser,
	}
}
