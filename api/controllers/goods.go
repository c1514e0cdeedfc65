package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/needlink/needlink-backend/api/middleware"
	"github.com/needlink/needlink-backend/api/responses"
	"github.com/needlink/needlink-backend/api/validators"
	"github.com/needlink/needlink-backend/internal/goods"
	pkgerrors "github.com/needlink/needlink-backend/pkg/errors"
	"github.com/needlink/needlink-backend/pkg/logger"
)

type goodsCreateRequest struct {
	PoiID       string  `json:"poi_id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Link        *string `json:"link"`
}

type goodsUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Link        *string `json:"link"`
}

func (req goodsCreateRequest) toInput() (goods.CreateGoodsInput, error) {
	poiID, err := uuid.Parse(strings.TrimSpace(req.PoiID))
	if err != nil {
		return goods.CreateGoodsInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid poi_id")
	}
	return goods.CreateGoodsInput{
		PoiID:       poiID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Link:        req.Link,
	}, nil
}

func GoodsList(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GoodsDetail(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "goodId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.GetByID(r.Context(), middleware.ActorFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func GoodsCreate(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload goodsCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func GoodsUpdate(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "goodId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload goodsUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, goods.UpdateGoodsInput{
			Name:        payload.Name,
			Description: payload.Description,
			Link:        payload.Link,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
