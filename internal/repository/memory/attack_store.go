package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"honeypot-service/internal/models"
	"honeypot-service/internal/repository"
)

// AttackStore is an in-memory repository.AttackStore. It backs local
// development when no MongoDB URL is configured and doubles as the fake
// store in service and handler tests. Semantics mirror the MongoDB
// implementation: append-only inserts, newest-first reads, substring
// group keys.
type AttackStore struct {
	mu     sync.RWMutex
	events []models.AttackEvent
}

// NewAttackStore creates an empty in-memory store.
func NewAttackStore() *AttackStore {
	return &AttackStore{}
}

func (s *AttackStore) matches(filter repository.EventFilter, event *models.AttackEvent) bool {
	return filter.TimestampGTE == "" || event.Timestamp >= filter.TimestampGTE
}

// Insert appends one event.
func (s *AttackStore) Insert(_ context.Context, event *models.AttackEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

// Find returns a page of matching events sorted newest first.
func (s *AttackStore) Find(_ context.Context, filter repository.EventFilter, skip, limit int64) ([]models.AttackEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.AttackEvent, 0, len(s.events))
	for i := range s.events {
		if s.matches(filter, &s.events[i]) {
			matched = append(matched, s.events[i])
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp > matched[j].Timestamp
	})

	if skip >= int64(len(matched)) {
		return []models.AttackEvent{}, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < int64(len(matched)) {
		matched = matched[:limit]
	}
	return matched, nil
}

// Count returns the number of matching events.
func (s *AttackStore) Count(_ context.Context, filter repository.EventFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for i := range s.events {
		if s.matches(filter, &s.events[i]) {
			count++
		}
	}
	return count, nil
}

// Distinct returns the distinct values of a field.
func (s *AttackStore) Distinct(_ context.Context, field string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	values := []string{}
	for i := range s.events {
		v := fieldValue(&s.events[i], field)
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	return values, nil
}

// GroupCount groups matching events by the given keys and counts each bucket.
func (s *AttackStore) GroupCount(_ context.Context, spec repository.GroupSpec) ([]repository.GroupCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for i := range s.events {
		if !s.matches(spec.Filter, &s.events[i]) {
			continue
		}
		keys := make([]string, len(spec.Keys))
		for k, key := range spec.Keys {
			keys[k] = keyValue(&s.events[i], key)
		}
		counts[strings.Join(keys, "\x00")]++
	}

	results := make([]repository.GroupCount, 0, len(counts))
	for joined, count := range counts {
		results = append(results, repository.GroupCount{
			Keys:  strings.Split(joined, "\x00"),
			Count: count,
		})
	}
	return results, nil
}

// DeleteAll drops every event and returns the number removed.
func (s *AttackStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := int64(len(s.events))
	s.events = nil
	return deleted, nil
}

func keyValue(event *models.AttackEvent, key repository.GroupKey) string {
	v := fieldValue(event, key.Field)
	if key.SubstrLen > 0 {
		end := key.SubstrStart + key.SubstrLen
		if key.SubstrStart >= len(v) {
			return ""
		}
		if end > len(v) {
			end = len(v)
		}
		return v[key.SubstrStart:end]
	}
	return v
}

func fieldValue(event *models.AttackEvent, field string) string {
	switch field {
	case "timestamp":
		return event.Timestamp
	case "ip_address":
		return event.IPAddress
	case "attack_type":
		return string(event.AttackType)
	case "severity":
		return string(event.Severity)
	case "country":
		return event.Country
	case "city":
		return event.City
	case "endpoint":
		return event.Endpoint
	default:
		return ""
	}
}
