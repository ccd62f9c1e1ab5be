package drugs

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort abstracts drug record persistence.
type RepositoryPort interface {
	Insert(ctx context.Context, rec DrugRecord) error
	Update(ctx context.Context, rec DrugRecord) error
	Delete(ctx context.Context, userID int64, id string) error
	Get(ctx context.Context, userID int64, id string) (DrugRecord, error)
	ListAll(ctx context.Context, userID int64) ([]DrugRecord, error)
}

// Service coordinates drug log operations.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Add appends a drug entry to the log.
func (s *Service) Add(ctx context.Context, userID int64, rec DrugRecord) (DrugRecord, error) {
	if strings.TrimSpace(rec.DrugName) == "" {
		return DrugRecord{}, ErrDrugNameRequired
	}
	rec.ID = uuid.NewString()
	rec.UserID = userID
	rec.DrugName = strings.TrimSpace(rec.DrugName)
	rec.Timestamp = time.Now().UTC()
	if err := s.repo.Insert(ctx, rec); err != nil {
		return DrugRecord{}, err
	}
	return rec, nil
}

// Update rewrites an existing entry, keeping its original timestamp.
func (s *Service) Update(ctx context.Context, userID int64, id string, rec DrugRecord) (DrugRecord, error) {
	if strings.TrimSpace(rec.DrugName) == "" {
		return DrugRecord{}, ErrDrugNameRequired
	}
	existing, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return DrugRecord{}, err
	}
	rec.ID = existing.ID
	rec.UserID = userID
	rec.DrugName = strings.TrimSpace(rec.DrugName)
	rec.Timestamp = existing.Timestamp
	if err := s.repo.Update(ctx, rec); err != nil {
		return DrugRecord{}, err
	}
	return rec, nil
}

// Delete removes one entry.
func (s *Service) Delete(ctx context.Context, userID int64, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// Get fetches one entry.
func (s *Service) Get(ctx context.Context, userID int64, id string) (DrugRecord, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns all entries sorted by drug name, case-insensitively.
func (s *Service) List(ctx context.Context, userID int64) ([]DrugRecord, error) {
	records, err := s.repo.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return strings.ToLower(records[i].DrugName) < strings.ToLower(records[j].DrugName)
	})
	return records, nil
}

// Search filters the log by a case-insensitive name substring.
func (s *Service) Search(ctx context.Context, userID int64, name string) ([]DrugRecord, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	records, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if needle == "" {
		return records, nil
	}
	out := records[:0:0]
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.DrugName), needle) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// History returns every entry with an exact drug name match, newest
// first.
func (s *Service) History(ctx context.Context, userID int64, drugName string) ([]DrugRecord, error) {
	records, err := s.repo.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []DrugRecord
	for _, rec := range records {
		if rec.DrugName == drugName {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}
