package controllers

import (
	"bytes"
	"fmt"
	"image/png"
	"net/http"
	"time"

	"github.com/needlink/needlink-backend/api/responses"
	"github.com/needlink/needlink-backend/internal/needs"
	"github.com/needlink/needlink-backend/internal/pois"
	"github.com/needlink/needlink-backend/internal/shareimage"
	pkgerrors "github.com/needlink/needlink-backend/pkg/errors"
	"github.com/needlink/needlink-backend/pkg/logger"
)

// PoiNeedsImage renders the poi's active needs as a shareable PNG.
func PoiNeedsImage(poiSvc pois.Service, needsSvc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "poiId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		poi, err := poiSvc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines, err := needsSvc.ActiveLines(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bullets := make([]string, 0, len(lines))
		for _, line := range lines {
			bullets = append(bullets, fmt.Sprintf("%s: %s %s", line.GoodName, line.Quantity.String(), line.Unit))
		}

		img, err := shareimage.Render(shareimage.Compose(poi.Name, time.Now(), bullets))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render needs image"))
			return
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode needs image"))
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
