package pricing

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/herbstock/herbstock/internal/platform/httpx"
	"github.com/herbstock/herbstock/internal/shared"
)

// Handler wires HTTP endpoints for product pricing.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a pricing handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers pricing routes under an authenticated group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/bottles", h.handleBottles)
	r.Post("/calculate", h.handleCalculate)
	r.Post("/prices", h.handleCalculateAndSave)
	r.Get("/prices", h.handleList)
	r.Get("/prices/{id}", h.handleGet)
	r.Delete("/prices/{id}", h.handleDelete)
}

func (h *Handler) handleBottles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"bottles": Bottles()})
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	result, err := h.service.Calculate(r.Context(), userID, req.Name, req.toRows(), req.toBottle())
	if err != nil {
		h.writeDomainError(w, err, "price calculation failed")
		return
	}
	httpx.JSON(w, http.StatusOK, calculateResponse{Rows: result.Rows, Calculations: result.Calculations})
}

func (h *Handler) handleCalculateAndSave(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	rec, err := h.service.CalculateAndSave(r.Context(), userID, req.Name, req.Description,
		req.toRows(), req.toBottle(), r.Header.Get("Idempotency-Key"))
	if err != nil {
		h.writeDomainError(w, err, "price save failed")
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	records, err := h.service.List(r.Context(), userID)
	if err != nil {
		httpx.Internal(w, h.logger, "list product prices failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"prices": records})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	rec, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "get product price failed")
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err, "delete product price failed")
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (calculateRequest, bool) {
	var req calculateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return req, false
	}
	return req, true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error, logMsg string) {
	var stockErr *StockError
	switch {
	case errors.As(err, &stockErr):
		httpx.JSON(w, http.StatusConflict, stockFailureResponse{
			Detail:   "stock check failed",
			Problems: stockErr.Problems,
		})
	case errors.Is(err, ErrProductNameRequired),
		errors.Is(err, ErrRowUnselected),
		errors.Is(err, ErrInvalidBottleCount),
		errors.Is(err, ErrUnknownBottle),
		errors.Is(err, ErrUnknownMaterial):
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Error(w, http.StatusConflict, "duplicate submission")
	case errors.Is(err, ErrRecordNotFound):
		httpx.Error(w, http.StatusNotFound, err.Error())
	default:
		httpx.Internal(w, h.logger, logMsg, err)
	}
}
