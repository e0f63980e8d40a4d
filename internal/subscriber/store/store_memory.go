package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"coregw/internal/subscriber/models"
	"coregw/pkg/platform/sentinel"
)

// InMemory is a map-backed Store for unit tests and local runs. Records are
// deep-copied on the way in and out so callers never share state with the
// store.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]*models.SubscriberRecord
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[string]*models.SubscriberRecord)}
}

func (s *InMemory) List(_ context.Context, filter Filter, limit, offset int) ([]*models.SubscriberRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Stable order: ascending IMSI.
	imsis := make([]string, 0, len(s.records))
	for imsi := range s.records {
		imsis = append(imsis, imsi)
	}
	sort.Strings(imsis)

	out := make([]*models.SubscriberRecord, 0, limit)
	skipped := 0
	for _, imsi := range imsis {
		rec := s.records[imsi]
		if !filter.Matches(rec) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, rec.Clone())
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemory) GetByIMSI(_ context.Context, imsi string) (*models.SubscriberRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[imsi]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *InMemory) Create(_ context.Context, rec *models.SubscriberRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.IMSI]; exists {
		return sentinel.ErrDuplicate
	}
	s.records[rec.IMSI] = rec.Clone()
	return nil
}

func (s *InMemory) ReplaceByIMSI(_ context.Context, imsi string, rec *models.SubscriberRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[imsi]; !exists {
		return sentinel.ErrNotFound
	}
	s.records[imsi] = rec.Clone()
	return nil
}

func (s *InMemory) DeleteByIMSI(_ context.Context, imsi string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[imsi]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.records, imsi)
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
