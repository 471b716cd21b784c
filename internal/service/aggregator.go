package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"honeypot-service/internal/models"
	"honeypot-service/internal/repository"
)

const (
	recentAttacksLimit = 20
	topCountriesLimit  = 10
)

// Aggregator computes dashboard views over the event store. All queries are
// read-only and return zeroed structures, never errors, for an empty store.
type Aggregator struct {
	store  repository.AttackStore
	logger *zap.Logger
	now    func() time.Time
}

// NewAggregator creates an aggregator over the given store.
func NewAggregator(store repository.AttackStore, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Overview assembles the dashboard summary. The independent sub-queries run
// concurrently; any store error fails the whole call.
func (a *Aggregator) Overview(ctx context.Context) (*models.AttackStats, error) {
	var (
		total     int64
		addresses []string
		byType    []repository.GroupCount
		bySev     []repository.GroupCount
		byCountry []repository.GroupCount
		byHour    []repository.GroupCount
		recent    []models.AttackEvent
	)

	since24h := a.now().UTC().Add(-24 * time.Hour).Format(models.TimestampLayout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = a.store.Count(gctx, repository.EventFilter{})
		return err
	})
	g.Go(func() (err error) {
		addresses, err = a.store.Distinct(gctx, "ip_address")
		return err
	})
	g.Go(func() (err error) {
		byType, err = a.store.GroupCount(gctx, repository.GroupSpec{
			Keys: []repository.GroupKey{{Field: "attack_type"}},
		})
		return err
	})
	g.Go(func() (err error) {
		bySev, err = a.store.GroupCount(gctx, repository.GroupSpec{
			Keys: []repository.GroupKey{{Field: "severity"}},
		})
		return err
	})
	g.Go(func() (err error) {
		byCountry, err = a.store.GroupCount(gctx, repository.GroupSpec{
			Keys: []repository.GroupKey{{Field: "country"}},
		})
		return err
	})
	g.Go(func() (err error) {
		// Hour-of-day buckets: events from different calendar days with the
		// same hour accumulate together. Only the trailing 24h window counts.
		byHour, err = a.store.GroupCount(gctx, repository.GroupSpec{
			Keys:   []repository.GroupKey{{Field: "timestamp", SubstrStart: 11, SubstrLen: 2}},
			Filter: repository.EventFilter{TimestampGTE: since24h},
		})
		return err
	})
	g.Go(func() (err error) {
		recent, err = a.store.Find(gctx, repository.EventFilter{}, 0, recentAttacksLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute attack stats: %w", err)
	}

	return &models.AttackStats{
		TotalAttacks:      total,
		UniqueIPs:         int64(len(addresses)),
		AttackTypes:       toHistogram(byType),
		SeverityBreakdown: toHistogram(bySev),
		AttacksByCountry:  topCountries(byCountry),
		AttacksByHour:     hourHistogram(byHour),
		RecentAttacks:     recent,
	}, nil
}

// Timeline returns per-day category counts for the trailing window. Days
// with zero events are absent; dates sort ascending.
func (a *Aggregator) Timeline(ctx context.Context, days int) ([]models.TimelineEntry, error) {
	since := a.now().UTC().AddDate(0, 0, -days).Format(models.TimestampLayout)

	rows, err := a.store.GroupCount(ctx, repository.GroupSpec{
		Keys: []repository.GroupKey{
			{Field: "timestamp", SubstrLen: 10},
			{Field: "attack_type"},
		},
		Filter: repository.EventFilter{TimestampGTE: since},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute attack timeline: %w", err)
	}

	byDate := make(map[string]*models.TimelineEntry)
	for _, row := range rows {
		date, category := row.Keys[0], row.Keys[1]
		entry, ok := byDate[date]
		if !ok {
			entry = &models.TimelineEntry{Date: date, ByType: make(map[string]int64)}
			byDate[date] = entry
		}
		entry.ByType[category] += row.Count
		entry.Total += row.Count
	}

	timeline := make([]models.TimelineEntry, 0, len(byDate))
	for _, entry := range byDate {
		timeline = append(timeline, *entry)
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Date < timeline[j].Date })
	return timeline, nil
}

// Live returns the most recent events, newest first.
func (a *Aggregator) Live(ctx context.Context, limit int64) ([]models.AttackEvent, error) {
	events, err := a.store.Find(ctx, repository.EventFilter{}, 0, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch live attacks: %w", err)
	}
	return events, nil
}

// List returns one page of the full event listing plus the total count.
func (a *Aggregator) List(ctx context.Context, limit, offset int64) (*models.AttackPage, error) {
	var (
		events []models.AttackEvent
		total  int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		events, err = a.store.Find(gctx, repository.EventFilter{}, offset, limit)
		return err
	})
	g.Go(func() (err error) {
		total, err = a.store.Count(gctx, repository.EventFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list attack events: %w", err)
	}

	return &models.AttackPage{Attacks: events, Total: total}, nil
}

func toHistogram(rows []repository.GroupCount) map[string]int64 {
	hist := make(map[string]int64, len(rows))
	for _, row := range rows {
		hist[row.Keys[0]] = row.Count
	}
	return hist
}

// topCountries ranks countries by count descending, breaking ties by country
// name ascending so the ranking is deterministic, and caps the list at ten.
func topCountries(rows []repository.GroupCount) []models.CountryCount {
	counts := make([]models.CountryCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, models.CountryCount{Country: row.Keys[0], Count: row.Count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Country < counts[j].Country
	})
	if len(counts) > topCountriesLimit {
		counts = counts[:topCountriesLimit]
	}
	return counts
}

func hourHistogram(rows []repository.GroupCount) []models.HourCount {
	hours := make([]models.HourCount, 0, len(rows))
	for _, row := range rows {
		hours = append(hours, models.HourCount{Hour: row.Keys[0], Count: row.Count})
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Hour < hours[j].Hour })
	return hours
}
