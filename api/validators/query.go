package validators

import (
	"net/http"
	"strconv"

	pkgerrors "github.com/needlink/needlink-backend/pkg/errors"
	"github.com/needlink/needlink-backend/pkg/pagination"
)

// PaginationFromQuery reads limit and cursor query parameters. Limit
// bounds are enforced downstream by the pagination package.
func PaginationFromQuery(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{
		Cursor: r.URL.Query().Get("cursor"),
	}

	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return params, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return params, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a non-negative integer")
	}
	params.Limit = limit
	return params, nil
}
