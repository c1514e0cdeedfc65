package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/needlink/needlink-backend/api/middleware"
	"github.com/needlink/needlink-backend/api/responses"
	"github.com/needlink/needlink-backend/api/validators"
	"github.com/needlink/needlink-backend/internal/needs"
	"github.com/needlink/needlink-backend/internal/shipments"
	"github.com/needlink/needlink-backend/pkg/enums"
	pkgerrors "github.com/needlink/needlink-backend/pkg/errors"
	"github.com/needlink/needlink-backend/pkg/logger"
)

type needCreateRequest struct {
	PoiID    string          `json:"poi_id" validate:"required"`
	GoodID   string          `json:"good_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
	Unit     string          `json:"unit" validate:"required"`
	DueTime  time.Time       `json:"due_time" validate:"required"`
}

type needUpdateRequest struct {
	Quantity *decimal.Decimal `json:"quantity"`
	Unit     *string          `json:"unit"`
	DueTime  *time.Time       `json:"due_time"`
}

type needStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (req needCreateRequest) toInput() (needs.CreateNeedInput, error) {
	poiID, err := uuid.Parse(strings.TrimSpace(req.PoiID))
	if err != nil {
		return needs.CreateNeedInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid poi_id")
	}
	goodID, err := uuid.Parse(strings.TrimSpace(req.GoodID))
	if err != nil {
		return needs.CreateNeedInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid good_id")
	}
	unit, err := enums.ParseUnit(strings.TrimSpace(req.Unit))
	if err != nil {
		return needs.CreateNeedInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit")
	}
	return needs.CreateNeedInput{
		PoiID:    poiID,
		GoodID:   goodID,
		Quantity: req.Quantity,
		Unit:     unit,
		DueTime:  req.DueTime,
	}, nil
}

// NeedsBoard serves the public active-needs listing.
func NeedsBoard(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.PaginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.Board(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func NeedList(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func NeedDetail(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "needId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		need, err := svc.GetByID(r.Context(), middleware.ActorFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, need)
	}
}

func NeedCreate(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload needCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		need, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, need)
	}
}

func NeedUpdate(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "needId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload needUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := needs.UpdateNeedInput{
			Quantity: payload.Quantity,
			DueTime:  payload.DueTime,
		}
		if payload.Unit != nil {
			unit, err := enums.ParseUnit(strings.TrimSpace(*payload.Unit))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit"))
				return
			}
			input.Unit = &unit
		}

		need, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, need)
	}
}

func NeedDelete(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "needId")
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

// NeedOverrideStatus is the administrative status escape hatch.
func NeedOverrideStatus(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "needId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload needStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseNeedStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status"))
			return
		}

		if err := svc.OverrideStatus(r.Context(), middleware.ActorFromContext(r.Context()), id, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(status)})
	}
}

// NeedPledge runs the shipment admission controller for the need.
func NeedPledge(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "needId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shipment, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, shipment)
	}
}
