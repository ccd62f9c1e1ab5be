package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/herbstock/herbstock/internal/shared"
)

// RepositoryPort abstracts purchase persistence for the service.
type RepositoryPort interface {
	Insert(ctx context.Context, rec PurchaseRecord) error
	Update(ctx context.Context, rec PurchaseRecord) error
	UpdateStock(ctx context.Context, userID int64, id string, stock float64) error
	Delete(ctx context.Context, userID int64, id string) error
	Get(ctx context.Context, userID int64, id string) (PurchaseRecord, error)
	ListAll(ctx context.Context, userID int64) ([]PurchaseRecord, error)
	LatestByMaterial(ctx context.Context, userID int64, material string) (PurchaseRecord, error)
	HistoryByMaterial(ctx context.Context, userID int64, material string) ([]PurchaseRecord, error)
}

// AuditPort abstracts best-effort audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog)
}

// Service coordinates ledger operations.
type Service struct {
	repo      RepositoryPort
	audit     AuditPort
	snapshots *SnapshotCache
	logger    *slog.Logger
}

// NewService builds a Service. audit and snapshots may be nil.
func NewService(repo RepositoryPort, audit AuditPort, snapshots *SnapshotCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, snapshots: snapshots, logger: logger}
}

// RecordPurchase reconciles a new purchase entry against the previous
// latest record for the material and appends it to the ledger. The
// returned flag reports whether this was the first purchase of the
// material.
func (s *Service) RecordPurchase(ctx context.Context, userID int64, entry Entry) (PurchaseRecord, bool, error) {
	var prev *PurchaseRecord
	latest, err := s.repo.LatestByMaterial(ctx, userID, entry.Material)
	switch {
	case err == nil:
		prev = &latest
	case errors.Is(err, ErrRecordNotFound):
		// First purchase of this material.
	default:
		return PurchaseRecord{}, false, err
	}

	rec, err := Reconcile(entry, prev, time.Now().UTC())
	if err != nil {
		return PurchaseRecord{}, false, err
	}
	rec.ID = uuid.NewString()
	rec.UserID = userID

	if err := s.repo.Insert(ctx, rec); err != nil {
		return PurchaseRecord{}, false, err
	}
	s.invalidateSnapshot(ctx, userID)
	if s.audit != nil {
		s.audit.Record(ctx, auditEntry(userID, "ledger:purchase", rec.ID, map[string]any{
			"material": rec.Material,
			"quantity": rec.Quantity,
			"unit":     string(rec.QuantityUnit),
			"stock":    rec.Stock,
		}))
	}
	return rec, prev == nil, nil
}

// EditPurchase rewrites an existing purchase in place. Price and cost
// per unit are recomputed from the edited figures unless pinned; the
// running stock keeps its stored value unless explicitly overridden,
// since an edit is a correction, not a new delivery.
func (s *Service) EditPurchase(ctx context.Context, userID int64, id string, entry Entry) (PurchaseRecord, error) {
	existing, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return PurchaseRecord{}, err
	}
	rec, err := Reconcile(entry, nil, existing.Timestamp)
	if err != nil {
		return PurchaseRecord{}, err
	}
	if !entry.Stock.Manual() {
		rec.Stock = existing.Stock
	}
	if entry.BillPhotoURL == "" {
		rec.BillPhotoURL = existing.BillPhotoURL
	}
	rec.ID = existing.ID
	rec.UserID = userID

	if err := s.repo.Update(ctx, rec); err != nil {
		return PurchaseRecord{}, err
	}
	s.invalidateSnapshot(ctx, userID)
	if s.audit != nil {
		s.audit.Record(ctx, auditEntry(userID, "ledger:edit", rec.ID, map[string]any{
			"material": rec.Material,
		}))
	}
	return rec, nil
}

// DeletePurchase removes a single purchase row.
func (s *Service) DeletePurchase(ctx context.Context, userID int64, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx, userID)
	if s.audit != nil {
		s.audit.Record(ctx, auditEntry(userID, "ledger:delete", id, nil))
	}
	return nil
}

// PrefillMaterial returns the latest record for a material name, used
// to seed the entry form. ErrRecordNotFound marks a new material.
func (s *Service) PrefillMaterial(ctx context.Context, userID int64, material string) (PurchaseRecord, error) {
	return s.repo.LatestByMaterial(ctx, userID, material)
}

// LatestSnapshot projects the full ledger into the latest record per
// material, served from the snapshot cache when warm.
func (s *Service) LatestSnapshot(ctx context.Context, userID int64) (map[string]PurchaseRecord, error) {
	if s.snapshots != nil {
		return s.snapshots.Fetch(ctx, userID, func(ctx context.Context) (map[string]PurchaseRecord, error) {
			return s.projectAll(ctx, userID)
		})
	}
	return s.projectAll(ctx, userID)
}

func (s *Service) projectAll(ctx context.Context, userID int64) (map[string]PurchaseRecord, error) {
	records, err := s.repo.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Project(records), nil
}

// Materials lists the current snapshot sorted by material name.
func (s *Service) Materials(ctx context.Context, userID int64) ([]PurchaseRecord, error) {
	latest, err := s.LatestSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]PurchaseRecord, 0, len(latest))
	for _, rec := range latest {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Material < out[j].Material })
	return out, nil
}

// MaterialHistory lists every purchase of one material, newest first.
func (s *Service) MaterialHistory(ctx context.Context, userID int64, material string) ([]PurchaseRecord, error) {
	return s.repo.HistoryByMaterial(ctx, userID, material)
}

// LowStock lists materials below their reorder threshold.
func (s *Service) LowStock(ctx context.Context, userID int64) ([]PurchaseRecord, error) {
	latest, err := s.LatestSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return LowStockMaterials(latest), nil
}

// Categories returns the distinct category labels across the ledger.
func (s *Service) Categories(ctx context.Context, userID int64) ([]string, error) {
	records, err := s.repo.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, rec := range records {
		for _, cat := range rec.Categories {
			seen[cat] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out, nil
}

// CheckStock validates a bill of materials against current stock.
func (s *Service) CheckStock(ctx context.Context, userID int64, rows []DeductionRow) ([]string, error) {
	latest, err := s.LatestSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return CheckStock(rows, latest), nil
}

func (s *Service) invalidateSnapshot(ctx context.Context, userID int64) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("snapshot invalidation failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}
}

func auditEntry(userID int64, action, entityID string, meta map[string]any) shared.AuditLog {
	return shared.AuditLog{
		UserID:   userID,
		Action:   action,
		Entity:   "material_purchase",
		EntityID: entityID,
		Meta:     meta,
	}
}
