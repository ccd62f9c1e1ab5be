package pricing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/herbstock/herbstock/internal/ledger"
	"github.com/herbstock/herbstock/internal/shared"
)

// RepositoryPort abstracts product price persistence.
type RepositoryPort interface {
	Insert(ctx context.Context, rec ProductPriceRecord) error
	List(ctx context.Context, userID int64) ([]ProductPriceRecord, error)
	Get(ctx context.Context, userID int64, id string) (ProductPriceRecord, error)
	Delete(ctx context.Context, userID int64, id string) error
}

// LedgerPort is the slice of the ledger service the pricer needs.
type LedgerPort interface {
	LatestSnapshot(ctx context.Context, userID int64) (map[string]ledger.PurchaseRecord, error)
	CheckStock(ctx context.Context, userID int64, rows []ledger.DeductionRow) ([]string, error)
	Deduct(ctx context.Context, userID int64, rows []ledger.DeductionRow) error
}

// IdempotencyPort guards CalculateAndSave against double submits.
type IdempotencyPort interface {
	Claim(ctx context.Context, userID int64, operation, key string) error
	Release(ctx context.Context, userID int64, operation, key string) error
}

// AuditPort abstracts best-effort audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog)
}

// Service coordinates pricing calculations and saved records.
type Service struct {
	repo        RepositoryPort
	ledger      LedgerPort
	idempotency IdempotencyPort
	audit       AuditPort
	logger      *slog.Logger
}

// NewService builds a Service. idempotency and audit may be nil.
func NewService(repo RepositoryPort, ledger LedgerPort, idempotency IdempotencyPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, ledger: ledger, idempotency: idempotency, audit: audit, logger: logger}
}

const saveOperation = "pricing:save"

// Calculate prices a bill of materials with no side effect.
func (s *Service) Calculate(ctx context.Context, userID int64, name string, rows []Row, bottle BottleInfo) (PricingResult, error) {
	latest, err := s.ledger.LatestSnapshot(ctx, userID)
	if err != nil {
		return PricingResult{}, err
	}
	return Price(name, rows, bottle, latest)
}

// CalculateAndSave prices the bill, verifies stock for every ingredient
// row, persists the frozen result and then deducts stock. The stock
// pre-check is all-or-nothing: one insufficient row aborts the save
// before anything is written or deducted.
func (s *Service) CalculateAndSave(ctx context.Context, userID int64, name, description string, rows []Row, bottle BottleInfo, idempotencyKey string) (ProductPriceRecord, error) {
	latest, err := s.ledger.LatestSnapshot(ctx, userID)
	if err != nil {
		return ProductPriceRecord{}, err
	}
	result, err := Price(name, rows, bottle, latest)
	if err != nil {
		return ProductPriceRecord{}, err
	}

	deductions := ingredientDeductions(rows, latest)
	problems, err := s.ledger.CheckStock(ctx, userID, deductions)
	if err != nil {
		return ProductPriceRecord{}, err
	}
	if len(problems) > 0 {
		return ProductPriceRecord{}, &StockError{Problems: problems}
	}

	if s.idempotency != nil {
		if err := s.idempotency.Claim(ctx, userID, saveOperation, idempotencyKey); err != nil {
			return ProductPriceRecord{}, err
		}
	}

	rec := ProductPriceRecord{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          name,
		Description:   description,
		MaterialsUsed: result.Rows,
		BottleInfo: BottleInfo{
			NumBottles:      bottle.NumBottles,
			CostPerBottle:   bottle.CostPerBottle,
			TotalBottleCost: float64(bottle.NumBottles) * bottle.CostPerBottle,
		},
		Calculations: result.Calculations,
		Timestamp:    time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		if s.idempotency != nil {
			_ = s.idempotency.Release(ctx, userID, saveOperation, idempotencyKey)
		}
		return ProductPriceRecord{}, err
	}

	// Deduction failures after the save are per-row best-effort; the
	// saved record stands either way.
	if err := s.ledger.Deduct(ctx, userID, deductions); err != nil {
		s.logger.Warn("stock deduction after save failed",
			slog.String("product", name),
			slog.Any("error", err))
	}

	if s.audit != nil {
		s.audit.Record(ctx, shared.AuditLog{
			UserID:   userID,
			Action:   "pricing:save",
			Entity:   "product_price",
			EntityID: rec.ID,
			Meta: map[string]any{
				"name":          rec.Name,
				"total_selling": rec.Calculations.TotalSellingPrice,
			},
		})
	}
	return rec, nil
}

// List returns the saved price records, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]ProductPriceRecord, error) {
	return s.repo.List(ctx, userID)
}

// Get fetches a single saved record.
func (s *Service) Get(ctx context.Context, userID int64, id string) (ProductPriceRecord, error) {
	return s.repo.Get(ctx, userID, id)
}

// Delete removes a saved record. The deduction that happened at save
// time is never reversed.
func (s *Service) Delete(ctx context.Context, userID int64, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	if s.audit != nil {
		s.audit.Record(ctx, shared.AuditLog{
			UserID:   userID,
			Action:   "pricing:delete",
			Entity:   "product_price",
			EntityID: id,
		})
	}
	return nil
}

// ingredientDeductions maps the ingredient rows of a bill to deduction
// rows; bottle rows never touch the ledger.
func ingredientDeductions(rows []Row, latest map[string]ledger.PurchaseRecord) []ledger.DeductionRow {
	var out []ledger.DeductionRow
	for _, row := range rows {
		if row.BottleID != "" || !row.Ingredient() {
			continue
		}
		material := row.Material
		if rec, ok := latest[row.Material]; ok {
			material = rec.Material
		}
		out = append(out, ledger.DeductionRow{
			MaterialID: row.MaterialID,
			Material:   material,
			Quantity:   row.Quantity,
			Unit:       row.Unit,
		})
	}
	return out
}
