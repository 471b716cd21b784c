package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-service/internal/models"
	"honeypot-service/internal/repository"
)

func seed(t *testing.T, store *AttackStore, events ...models.AttackEvent) {
	t.Helper()
	for i := range events {
		require.NoError(t, store.Insert(context.Background(), &events[i]))
	}
}

func event(id, timestamp, ip, country string, category models.AttackCategory) models.AttackEvent {
	return models.AttackEvent{
		ID:         id,
		Timestamp:  timestamp,
		IPAddress:  ip,
		Country:    country,
		AttackType: category,
		Severity:   models.SeverityLow,
	}
}

func TestFindSortsNewestFirst(t *testing.T) {
	store := NewAttackStore()
	seed(t, store,
		event("a", "2026-08-01T10:00:00.000000Z", "1.1.1.1", "France", models.CategoryBruteForce),
		event("b", "2026-08-03T10:00:00.000000Z", "1.1.1.1", "France", models.CategoryBruteForce),
		event("c", "2026-08-02T10:00:00.000000Z", "1.1.1.1", "France", models.CategoryBruteForce),
	)

	events, err := store.Find(context.Background(), repository.EventFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "b", events[0].ID)
	assert.Equal(t, "c", events[1].ID)
	assert.Equal(t, "a", events[2].ID)
}

func TestFindAppliesFilterSkipAndLimit(t *testing.T) {
	store := NewAttackStore()
	for i := 0; i < 5; i++ {
		seed(t, store, event(
			fmt.Sprintf("e%d", i),
			fmt.Sprintf("2026-08-0%dT10:00:00.000000Z", i+1),
			"1.1.1.1", "France", models.CategoryBruteForce,
		))
	}

	events, err := store.Find(context.Background(),
		repository.EventFilter{TimestampGTE: "2026-08-02T00:00:00.000000Z"}, 1, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e3", events[0].ID)
	assert.Equal(t, "e2", events[1].ID)

	empty, err := store.Find(context.Background(), repository.EventFilter{}, 99, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDistinct(t *testing.T) {
	store := NewAttackStore()
	seed(t, store,
		event("a", "2026-08-01T10:00:00.000000Z", "1.1.1.1", "France", models.CategoryBruteForce),
		event("b", "2026-08-01T11:00:00.000000Z", "2.2.2.2", "France", models.CategoryBruteForce),
		event("c", "2026-08-01T12:00:00.000000Z", "1.1.1.1", "France", models.CategoryBruteForce),
	)

	ips, err := store.Distinct(context.Background(), "ip_address")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1.1.1.1", "2.2.2.2"}, ips)
}

func TestGroupCountBySubstring(t *testing.T) {
	store := NewAttackStore()
	seed(t, store,
		event("a", "2026-08-01T10:00:00.000000Z", "1.1.1.1", "France", models.CategorySQLInjection),
		event("b", "2026-08-01T10:30:00.000000Z", "1.1.1.1", "France", models.CategoryXSS),
		event("c", "2026-08-02T10:00:00.000000Z", "1.1.1.1", "France", models.CategorySQLInjection),
	)

	rows, err := store.GroupCount(context.Background(), repository.GroupSpec{
		Keys: []repository.GroupKey{
			{Field: "timestamp", SubstrLen: 10},
			{Field: "attack_type"},
		},
	})
	require.NoError(t, err)

	counts := make(map[string]int64)
	for _, row := range rows {
		counts[row.Keys[0]+"/"+row.Keys[1]] = row.Count
	}
	assert.Equal(t, int64(1), counts["2026-08-01/sql_injection"])
	assert.Equal(t, int64(1), counts["2026-08-01/xss"])
	assert.Equal(t, int64(1), counts["2026-08-02/sql_injection"])
}

func TestDeleteAll(t *testing.T) {
	store := NewAttackStore()
	seed(t, store,
		event("a", "2026-08-01T10:00:00.000000Z", "1.1.1.1", "France", models.CategoryBruteForce),
		event("b", "2026-08-01T11:00:00.000000Z", "2.2.2.2", "France", models.CategoryBruteForce),
	)

	deleted, err := store.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	count, err := store.Count(context.Background(), repository.EventFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}
