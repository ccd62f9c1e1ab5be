package drugs

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/herbstock/herbstock/internal/platform/httpx"
	"github.com/herbstock/herbstock/internal/shared"
	"github.com/herbstock/herbstock/internal/units"
)

type drugRequest struct {
	DrugName     string       `json:"drugName" validate:"required"`
	Quantity     float64      `json:"quantity" validate:"gte=0"`
	QuantityUnit string       `json:"quantityUnit"`
	Price        float64      `json:"price" validate:"gte=0"`
	PricePerUnit float64      `json:"pricePerUnit" validate:"gte=0"`
	Preparation  string       `json:"preparation"`
	ExtraFields  []ExtraField `json:"anotherFields"`
}

func (p drugRequest) toRecord() DrugRecord {
	return DrugRecord{
		DrugName:     p.DrugName,
		Quantity:     p.Quantity,
		QuantityUnit: units.Unit(p.QuantityUnit),
		Price:        p.Price,
		PricePerUnit: p.PricePerUnit,
		Preparation:  p.Preparation,
		ExtraFields:  p.ExtraFields,
	}
}

// Handler wires HTTP endpoints for the drug log.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a drugs handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers drug routes under an authenticated group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleAdd)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
	r.Get("/history/{name}", h.handleHistory)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	var (
		records []DrugRecord
		err     error
	)
	if search := r.URL.Query().Get("search"); search != "" {
		records, err = h.service.Search(r.Context(), userID, search)
	} else {
		records, err = h.service.List(r.Context(), userID)
	}
	if err != nil {
		httpx.Internal(w, h.logger, "list drugs failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"drugs": records})
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Add(r.Context(), userID, req.toRecord())
	if err != nil {
		h.writeDomainError(w, err, "add drug failed")
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	rec, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "get drug failed")
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req.toRecord())
	if err != nil {
		h.writeDomainError(w, err, "update drug failed")
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err, "delete drug failed")
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	history, err := h.service.History(r.Context(), userID, chi.URLParam(r, "name"))
	if err != nil {
		httpx.Internal(w, h.logger, "drug history failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"history": history})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (drugRequest, bool) {
	var req drugRequest
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
	switch {
	case errors.Is(err, ErrDrugNameRequired):
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrRecordNotFound):
		httpx.Error(w, http.StatusNotFound, err.Error())
	default:
		httpx.Internal(w, h.logger, logMsg, err)
	}
}
