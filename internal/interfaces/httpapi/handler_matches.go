package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/matchday-streams/internal/usecase"
)

type listMatchesByDateRequest struct {
	Date string `validate:"required,datetime=2006-01-02"`
}

type listMatchesByRangeRequest struct {
	From string `validate:"required,datetime=2006-01-02"`
	To   string `validate:"required,datetime=2006-01-02"`
}

// ListMatchesByDate serves the enriched fixtures of one date as a bare JSON array.
func (h *Handler) ListMatchesByDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchesByDate")
	defer span.End()

	req := listMatchesByDateRequest{Date: strings.TrimSpace(r.PathValue("date"))}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	records, err := h.matchService.ListByDate(ctx, req.Date)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "date", req.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, toMatchRecordResponses(records))
}

func (h *Handler) ListMatchesByRange(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchesByRange")
	defer span.End()

	query := r.URL.Query()
	req := listMatchesByRangeRequest{
		From: strings.TrimSpace(query.Get("from")),
		To:   strings.TrimSpace(query.Get("to")),
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	days, err := h.matchService.ListByDateRange(ctx, req.From, req.To)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches by range failed", "from", req.From, "to", req.To, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, toMatchDayResponses(days))
}

func (h *Handler) ListStreams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStreams")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, toStreamResponses(h.matchService.Streams()))
}

// TestAPI relays one raw provider response for connectivity checks.
func (h *Handler) TestAPI(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TestAPI")
	defer span.End()

	if h.prober == nil {
		writeError(ctx, w, fmt.Errorf("%w: diagnostics probe is not configured", usecase.ErrNotFound))
		return
	}

	status, body, err := h.prober.Probe(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "provider probe failed", "error", err)
		writeError(ctx, w, fmt.Errorf("%w: probe provider: %v", usecase.ErrDependencyUnavailable, err))
		return
	}

	var data any
	if err := sonic.Unmarshal(body, &data); err != nil {
		data = string(body)
	}
	writeJSON(ctx, w, http.StatusOK, testAPIResponse{Status: status, Data: data})
}
