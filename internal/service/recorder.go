package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"honeypot-service/internal/classifier"
	"honeypot-service/internal/geo"
	"honeypot-service/internal/models"
	"honeypot-service/internal/repository"
	"honeypot-service/internal/util"
)

const (
	maxPayloadChars    = 500
	maxCredentialChars = 100
)

// EventSink receives recorded events after the durable insert. Sinks are
// best-effort: a sink failure is logged and never fails the record call.
type EventSink interface {
	Name() string
	Publish(ctx context.Context, event *models.AttackEvent) error
}

// RecordInput carries one inbound login attempt plus its request context.
type RecordInput struct {
	Username  string
	Password  string
	IPAddress string
	UserAgent string
	Endpoint  string
}

// Recorder turns login attempts into classified, geolocated, durable events.
type Recorder struct {
	store  repository.AttackStore
	sinks  []EventSink
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder creates a recorder over the given store and optional sinks.
func NewRecorder(store repository.AttackStore, sinks []EventSink, logger *zap.Logger) *Recorder {
	return &Recorder{
		store:  store,
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}
}

// Record classifies the attempt, resolves its pseudo-geolocation, and
// appends exactly one event to the store. The classifier sees the full
// "{username}:{password}" payload; truncation applies only to the stored
// fields. A store failure fails the whole call; there is no retry or
// buffering here.
func (r *Recorder) Record(ctx context.Context, input RecordInput) (*models.AttackEvent, error) {
	payload := input.Username + ":" + input.Password
	verdict := classifier.Classify(payload)
	country, city := geo.Locate(input.IPAddress)

	event := &models.AttackEvent{
		ID:                uuid.NewString(),
		Timestamp:         r.now().UTC().Format(models.TimestampLayout),
		IPAddress:         input.IPAddress,
		UserAgent:         input.UserAgent,
		AttackType:        verdict.Category,
		Payload:           truncate(payload, maxPayloadChars),
		UsernameAttempted: truncate(input.Username, maxCredentialChars),
		PasswordAttempted: truncate(input.Password, maxCredentialChars),
		Endpoint:          input.Endpoint,
		Country:           country,
		City:              city,
		Severity:          verdict.Severity,
		DetectedPatterns:  verdict.MatchedRules,
	}

	if err := r.store.Insert(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record attack event: %w", err)
	}

	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			r.logger.Warn("event sink publish failed",
				util.String("sink", sink.Name()),
				util.String("event_id", event.ID),
				util.ErrorField(err),
			)
		}
	}

	r.logger.Info("Attack event recorded",
		util.String("event_id", event.ID),
		util.String("ip_address", event.IPAddress),
		util.String("attack_type", string(event.AttackType)),
		util.String("severity", string(event.Severity)),
		util.Int("matched_rules", len(event.DetectedPatterns)),
	)

	return event, nil
}

// truncate limits s to max characters without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
