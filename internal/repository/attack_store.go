package repository

import (
	"context"

	"honeypot-service/internal/models"
)

// EventFilter restricts a query to a slice of the event stream. Timestamps
// are fixed-width UTC strings, so a plain string comparison is a time
// comparison.
type EventFilter struct {
	// TimestampGTE is an inclusive lower bound; empty means unbounded.
	TimestampGTE string
}

// GroupKey names one grouping dimension: a document field, optionally
// reduced to a substring before grouping (date and hour buckets are
// substrings of the timestamp).
type GroupKey struct {
	Field       string
	SubstrStart int
	// SubstrLen of zero groups by the whole field value.
	SubstrLen int
}

// GroupSpec describes a group-and-count aggregation.
type GroupSpec struct {
	Keys   []GroupKey
	Filter EventFilter
}

// GroupCount is one aggregated bucket; Keys holds the grouped values in the
// same order as the GroupSpec keys.
type GroupCount struct {
	Keys  []string
	Count int64
}

// AttackStore is the storage collaborator contract the recorder and
// aggregator are written against. Events are append-only: inserted once,
// never updated, removed only by DeleteAll. Find returns events newest
// first; every reader in the system wants that order.
type AttackStore interface {
	Insert(ctx context.Context, event *models.AttackEvent) error
	Find(ctx context.Context, filter EventFilter, skip, limit int64) ([]models.AttackEvent, error)
	Count(ctx context.Context, filter EventFilter) (int64, error)
	Distinct(ctx context.Context, field string) ([]string, error)
	GroupCount(ctx context.Context, spec GroupSpec) ([]GroupCount, error)
	DeleteAll(ctx context.Context) (int64, error)
}
