package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/matchday-streams/internal/domain/match"
	"github.com/riskibarqy/matchday-streams/internal/platform/logging"
	"github.com/riskibarqy/matchday-streams/internal/usecase"
)

type Handler struct {
	matchService *usecase.MatchService
	prober       match.Prober
	logger       *logging.Logger
	validator    *validator.Validate
}

// NewHandler builds the handler set. prober may be nil when diagnostics are off.
func NewHandler(matchService *usecase.MatchService, prober match.Prober, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService: matchService,
		prober:       prober,
		logger:       logger,
		validator:    validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
