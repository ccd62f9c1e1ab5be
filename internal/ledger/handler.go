package ledger

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/herbstock/herbstock/internal/platform/httpx"
	"github.com/herbstock/herbstock/internal/shared"
)

// Handler wires HTTP endpoints for the purchase ledger.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a ledger handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers ledger routes. Callers mount this under an
// authenticated group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/materials", h.handleListMaterials)
	r.Get("/materials/low-stock", h.handleLowStock)
	r.Get("/materials/categories", h.handleCategories)
	r.Get("/materials/{material}", h.handlePrefill)
	r.Get("/materials/{material}/history", h.handleHistory)
	r.Post("/purchases", h.handleRecordPurchase)
	r.Put("/purchases/{id}", h.handleEditPurchase)
	r.Delete("/purchases/{id}", h.handleDeletePurchase)
	r.Post("/stock/check", h.handleCheckStock)
}

func (h *Handler) handleRecordPurchase(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	var req purchaseRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	rec, isNew, err := h.service.RecordPurchase(r.Context(), userID, req.toEntry())
	if err != nil {
		h.writeDomainError(w, err, "record purchase failed")
		return
	}
	httpx.JSON(w, http.StatusCreated, purchaseResponse{Record: rec, NewMaterial: isNew})
}

func (h *Handler) handleEditPurchase(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")
	var req purchaseRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	rec, err := h.service.EditPurchase(r.Context(), userID, id, req.toEntry())
	if err != nil {
		h.writeDomainError(w, err, "edit purchase failed")
		return
	}
	httpx.JSON(w, http.StatusOK, purchaseResponse{Record: rec})
}

func (h *Handler) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if err := h.service.DeletePurchase(r.Context(), userID, id); err != nil {
		h.writeDomainError(w, err, "delete purchase failed")
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	materials, err := h.service.Materials(r.Context(), userID)
	if err != nil {
		httpx.Internal(w, h.logger, "list materials failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"materials": materials})
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	materials, err := h.service.LowStock(r.Context(), userID)
	if err != nil {
		httpx.Internal(w, h.logger, "low stock scan failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"materials": materials})
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	categories, err := h.service.Categories(r.Context(), userID)
	if err != nil {
		httpx.Internal(w, h.logger, "list categories failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) handlePrefill(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	material := chi.URLParam(r, "material")
	rec, err := h.service.PrefillMaterial(r.Context(), userID, material)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			httpx.Error(w, http.StatusNotFound, "material has no purchases yet")
			return
		}
		httpx.Internal(w, h.logger, "material prefill failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	material := chi.URLParam(r, "material")
	history, err := h.service.MaterialHistory(r.Context(), userID, material)
	if err != nil {
		httpx.Internal(w, h.logger, "material history failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"history": history})
}

func (h *Handler) handleCheckStock(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	var req stockCheckRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationError(w, err)
		return
	}

	rows := make([]DeductionRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, row.toRow())
	}
	problems, err := h.service.CheckStock(r.Context(), userID, rows)
	if err != nil {
		httpx.Internal(w, h.logger, "stock check failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stockCheckResponse{Sufficient: len(problems) == 0, Problems: problems})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, ErrMaterialRequired),
		errors.Is(err, ErrInvalidUnit),
		errors.Is(err, ErrNegativeQuantity):
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrRecordNotFound):
		httpx.Error(w, http.StatusNotFound, err.Error())
	default:
		httpx.Internal(w, h.logger, logMsg, err)
	}
}
