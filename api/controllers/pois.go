package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/needlink/needlink-backend/api/middleware"
	"github.com/needlink/needlink-backend/api/responses"
	"github.com/needlink/needlink-backend/api/validators"
	"github.com/needlink/needlink-backend/internal/pois"
	pkgerrors "github.com/needlink/needlink-backend/pkg/errors"
	"github.com/needlink/needlink-backend/pkg/logger"
)

type poiCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Contact     string `json:"contact"`
}

type poiUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Contact     *string `json:"contact"`
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return id, nil
}

func PoiList(svc pois.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func PoiDetail(svc pois.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "poiId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		poi, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, poi)
	}
}

func PoiCreate(svc pois.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload poiCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		poi, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), pois.CreatePoiInput{
			Name:        payload.Name,
			Description: payload.Description,
			Contact:     payload.Contact,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, poi)
	}
}

func PoiUpdate(svc pois.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "poiId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload poiUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		poi, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, pois.UpdatePoiInput{
			Name:        payload.Name,
			Description: payload.Description,
			Contact:     payload.Contact,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, poi)
	}
}

func PoiDelete(svc pois.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "poiId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), middleware.ActorFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
