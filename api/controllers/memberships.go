package controllers

import (
	"net/http"
	"strings"

	"github.com/needlink/needlink-backend/api/middleware"
	"github.com/needlink/needlink-backend/api/responses"
	"github.com/needlink/needlink-backend/api/validators"
	"github.com/needlink/needlink-backend/internal/memberships"
	"github.com/needlink/needlink-backend/pkg/enums"
	pkgerrors "github.com/needlink/needlink-backend/pkg/errors"
	"github.com/needlink/needlink-backend/pkg/logger"
)

type memberAddRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

func MembersList(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poiID, err := pathUUID(r, "poiId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		members, err := svc.ListMembers(r.Context(), middleware.ActorFromContext(r.Context()), poiID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, members)
	}
}

func MemberAdd(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poiID, err := pathUUID(r, "poiId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload memberAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := enums.ParseRoleGroup(strings.TrimSpace(payload.Role))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid role"))
			return
		}

		input := memberships.AddMemberInput{Email: payload.Email, Role: role}
		membership, err := svc.AddMember(r.Context(), middleware.ActorFromContext(r.Context()), poiID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, membership)
	}
}

func MemberDeactivate(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poiID, err := pathUUID(r, "poiId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		membershipID, err := pathUUID(r, "membershipId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Deactivate(r.Context(), middleware.ActorFromContext(r.Context()), poiID, membershipID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
