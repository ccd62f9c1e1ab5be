package export

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/herbstock/herbstock/internal/ledger"
	"github.com/herbstock/herbstock/internal/platform/httpx"
	"github.com/herbstock/herbstock/internal/pricing"
	"github.com/herbstock/herbstock/internal/shared"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves xlsx downloads.
type Handler struct {
	logger  *slog.Logger
	ledger  *ledger.Service
	pricing *pricing.Service
}

// NewHandler constructs an export handler.
func NewHandler(logger *slog.Logger, ledgerSvc *ledger.Service, pricingSvc *pricing.Service) *Handler {
	return &Handler{logger: logger, ledger: ledgerSvc, pricing: pricingSvc}
}

// MountRoutes registers export routes under an authenticated group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/materials.xlsx", h.handleMaterials)
	r.Get("/prices/{id}.xlsx", h.handlePrice)
}

func (h *Handler) handleMaterials(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	materials, err := h.ledger.Materials(r.Context(), userID)
	if err != nil {
		httpx.Internal(w, h.logger, "materials export failed", err)
		return
	}
	buf, err := MaterialsWorkbook(materials)
	if err != nil {
		httpx.Internal(w, h.logger, "materials workbook failed", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="materials.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handlePrice(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	rec, err := h.pricing.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, pricing.ErrRecordNotFound) {
			httpx.Error(w, http.StatusNotFound, "product price record not found")
			return
		}
		httpx.Internal(w, h.logger, "price export failed", err)
		return
	}
	buf, err := PriceWorkbook(rec)
	if err != nil {
		httpx.Internal(w, h.logger, "price workbook failed", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="product-price.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}
