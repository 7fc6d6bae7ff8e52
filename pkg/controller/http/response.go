package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"github.com/secmon-lab/orgdesk/pkg/domain/model/auth"
	"github.com/secmon-lab/orgdesk/pkg/usecase"
	"github.com/secmon-lab/orgdesk/pkg/utils/errutil"
)

// maxBodySize caps request bodies
const maxBodySize = 1 << 20

var errInvalidRequest = goerr.New("invalid request")

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(errInvalidRequest, "failed to decode body", goerr.V("error", err.Error()))
	}
	return nil
}

// statusOf maps use case errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, usecase.ErrInvalidEmployee),
		errors.Is(err, usecase.ErrInvalidDepartment),
		errors.Is(err, usecase.ErrInvalidManager),
		errors.Is(err, usecase.ErrInvalidAvatar),
		errors.Is(err, auth.ErrPasswordTooShort):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrInvalidCredential),
		errors.Is(err, usecase.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrEmployeeNotFound),
		errors.Is(err, usecase.ErrDepartmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrEmailAlreadyExists),
		errors.Is(err, usecase.ErrDepartmentHasEmployees):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}

// listQueryFromRequest reads q, page and per_page. Malformed numbers fall back to defaults.
func listQueryFromRequest(r *http.Request) model.ListQuery {
	values := r.URL.Query()
	q := model.ListQuery{Query: values.Get("q")}
	if page, err := strconv.Atoi(values.Get("page")); err == nil {
		q.Page = page
	}
	if perPage, err := strconv.Atoi(values.Get("per_page")); err == nil {
		q.PerPage = perPage
	}
	return q
}

type pageResponse[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func newPageResponse[S, T any](page *model.Page[S], convert func(S) T) pageResponse[T] {
	items := make([]T, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, convert(item))
	}
	return pageResponse[T]{
		Items:      items,
		Page:       page.Page,
		PerPage:    page.PerPage,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
}

type idResponse struct {
	ID string `json:"id"`
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}
