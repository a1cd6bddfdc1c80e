package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/Daskott/swiftly/server/dispatch"
	"github.com/Daskott/swiftly/shared"
)

const (
	HEALTH_MESSAGE = "✅ SOS API is running. Use POST /sos to send alerts."
	LOGS_PAGE_SIZE = 20
)

type alertService interface {
	Submit(ctx context.Context, req shared.AlertRequest) (*shared.AlertResponse, error)
}

// logReader is satisfied by *auditlog.Writer
type logReader interface {
	Entries() ([]shared.LogEntry, error)
}

type handler struct {
	service alertService
	logs    logReader
}

func (h *handler) health(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	rw.Write([]byte(HEALTH_MESSAGE))
}

func (h *handler) submitAlert(rw http.ResponseWriter, r *http.Request) {
	req := shared.AlertRequest{}

	// A field of the wrong type is left empty & then reported by validation
	err := json.NewDecoder(r.Body).Decode(&req)
	var typeErr *json.UnmarshalTypeError
	if err != nil && !errors.As(err, &typeErr) && !errors.Is(err, io.EOF) {
		writeResponse(rw, shared.ErrorResponse{Error: "invalid JSON payload"}, http.StatusBadRequest)
		return
	}

	resp, err := h.service.Submit(r.Context(), req)
	var validationErr *dispatch.ValidationError
	if errors.As(err, &validationErr) {
		writeResponse(rw, shared.ErrorResponse{Error: validationErr.Message}, http.StatusBadRequest)
		return
	}

	if err != nil {
		writeResponse(rw, shared.ErrorResponse{Error: err.Error()}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, resp, http.StatusOK)
}

func (h *handler) listLogs(rw http.ResponseWriter, r *http.Request) {
	page := int64(1)
	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		var err error
		page, err = strconv.ParseInt(pageParam, 10, 64)
		if err != nil || page < 1 {
			writeResponse(rw, shared.ErrorResponse{Error: "page must be a positive integer"}, http.StatusBadRequest)
			return
		}
	}

	entries, err := h.logs.Entries()
	if err != nil {
		writeResponse(rw, shared.ErrorResponse{Error: err.Error()}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, pageOfLogs(entries, page, LOGS_PAGE_SIZE), http.StatusOK)
}

// pageOfLogs returns the given page of entries, newest first.
func pageOfLogs(entries []shared.LogEntry, page, pageSize int64) shared.LogsResponse {
	total := int64(len(entries))
	data := []shared.LogEntry{}

	start := (page - 1) * pageSize
	for i := start; i < start+pageSize && i < total; i++ {
		data = append(data, entries[total-1-i])
	}

	return shared.LogsResponse{Data: data, Paging: newPaging(page, pageSize, total)}
}

func newPaging(page, pageSize, total int64) *shared.Paging {
	paging := &shared.Paging{Page: page, Total: total}
	if paging.Page == 0 {
		paging.Page = 1
	}

	paging.Pages = int64(math.Ceil(float64(paging.Total) / float64(pageSize)))
	if paging.Pages == 0 {
		paging.Pages = 1
	}

	return paging
}
