package account

import (
	"context"
	"sync"
	"time"

	models "github.com/remedyhub/entitlement/internal/models"
	"github.com/remedyhub/entitlement/pkg/tool"
	"github.com/remedyhub/entitlement/pkg/types"
)

// MemoryStore is a process-local Store with the same conditional-write
// semantics as GormStore. Used by tests and local development.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*models.UserEntitlement
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*models.UserEntitlement), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*models.UserEntitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) GetOrCreate(_ context.Context, userID string) (*models.UserEntitlement, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[userID]; ok {
		return rec.Clone(), false, nil
	}
	rec := models.NewUserEntitlement(userID)
	rec.ID = tool.GenerateUUIDV7()
	rec.CreatedAt = s.now()
	rec.UpdatedAt = rec.CreatedAt
	s.records[userID] = rec
	return rec.Clone(), true, nil
}

func (s *MemoryStore) StartTrial(_ context.Context, userID string, at time.Time) (*models.UserEntitlement, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, false, ErrNotFound
	}
	if rec.TrialUsed {
		return rec.Clone(), false, nil
	}
	start := at
	rec.TrialUsed = true
	rec.TrialStartAt = &start
	rec.UpdatedAt = s.now()
	return rec.Clone(), true, nil
}

func (s *MemoryStore) ApplySubscription(_ context.Context, userID string, tier types.SubscriptionTier, status types.SubscriptionStatus, effectiveAt time.Time) (*models.UserEntitlement, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, false, ErrNotFound
	}
	if rec.StatusEffectiveAt != nil && !rec.StatusEffectiveAt.Before(effectiveAt) {
		return rec.Clone(), false, nil
	}
	at := effectiveAt
	rec.PurchasedTier = tier
	rec.SubscriptionStatus = status
	rec.StatusEffectiveAt = &at
	rec.UpdatedAt = s.now()
	return rec.Clone(), true, nil
}
