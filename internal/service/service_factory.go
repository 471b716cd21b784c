package service

import (
	"go.uber.org/zap"

	"honeypot-service/internal/repository"
)

// ServiceFactory wires the recorder and aggregator over a shared store.
type ServiceFactory struct {
	store      repository.AttackStore
	recorder   *Recorder
	aggregator *Aggregator
}

// NewServiceFactory creates the service layer over the given store and sinks.
func NewServiceFactory(store repository.AttackStore, sinks []EventSink, logger *zap.Logger) *ServiceFactory {
	return &ServiceFactory{
		store:      store,
		recorder:   NewRecorder(store, sinks, logger),
		aggregator: NewAggregator(store, logger),
	}
}

// Recorder returns the event recorder.
func (f *ServiceFactory) Recorder() *Recorder {
	return f.recorder
}

// Aggregator returns the dashboard aggregator.
func (f *ServiceFactory) Aggregator() *Aggregator {
	return f.aggregator
}

// Store exposes the event store for the bulk-clear admin operation, which is
// a direct store capability rather than an aggregation.
func (f *ServiceFactory) Store() repository.AttackStore {
	return f.store
}
