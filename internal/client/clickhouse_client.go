package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"honeypot-service/internal/config"
	"honeypot-service/internal/models"
	"honeypot-service/internal/util"
)

// ClickHouseMirror copies recorded attack events into a ClickHouse table for
// long-term analytics, independent of the MongoDB working set. It implements
// the recorder's EventSink contract.
type ClickHouseMirror struct {
	conn   driver.Conn
	table  string
	logger *zap.Logger
}

// NewClickHouseMirror opens the connection and ensures the analytics table
// exists.
func NewClickHouseMirror(cfg *config.Config, logger *zap.Logger) (*ClickHouseMirror, error) {
	chConfig := cfg.Clickhouse

	conn, err := ch.Open(&ch.Options{
		Addr: []string{hostPort(chConfig.URL)},
		Auth: ch.Auth{
			Username: chConfig.Username,
			Password: chConfig.Password,
			Database: chConfig.Database,
		},
		DialTimeout:     30 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	mirror := &ClickHouseMirror{
		conn:   conn,
		table:  chConfig.Table,
		logger: logger,
	}
	if err := mirror.ensureTable(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	util.Info("ClickHouse mirror initialized",
		zap.String("database", chConfig.Database),
		zap.String("table", chConfig.Table),
	)

	return mirror, nil
}

func (m *ClickHouseMirror) ensureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id                 String,
			timestamp          String,
			ip_address         String,
			user_agent         String,
			attack_type        String,
			payload            String,
			username_attempted String,
			password_attempted String,
			endpoint           String,
			country            String,
			city               String,
			severity           String,
			detected_patterns  Array(String)
		) ENGINE = MergeTree() ORDER BY timestamp`, m.table)

	if err := m.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create ClickHouse table: %w", err)
	}
	return nil
}

// Name identifies the sink in recorder logs.
func (m *ClickHouseMirror) Name() string {
	return "clickhouse"
}

// Publish inserts one event row.
func (m *ClickHouseMirror) Publish(ctx context.Context, event *models.AttackEvent) error {
	query := fmt.Sprintf(
		"INSERT INTO %s VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", m.table)

	err := m.conn.Exec(ctx, query,
		event.ID,
		event.Timestamp,
		event.IPAddress,
		event.UserAgent,
		string(event.AttackType),
		event.Payload,
		event.UsernameAttempted,
		event.PasswordAttempted,
		event.Endpoint,
		event.Country,
		event.City,
		string(event.Severity),
		event.DetectedPatterns,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event into ClickHouse: %w", err)
	}
	return nil
}

// HealthCheck verifies ClickHouse connectivity.
func (m *ClickHouseMirror) HealthCheck(ctx context.Context) error {
	return m.conn.Ping(ctx)
}

// Close releases the connection.
func (m *ClickHouseMirror) Close() error {
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			util.Error("failed to close ClickHouse connection", zap.Error(err))
			return err
		}
		util.Info("ClickHouse connection closed")
	}
	return nil
}

func hostPort(url string) string {
	clean := strings.TrimPrefix(url, "tcp://")
	clean = strings.TrimPrefix(clean, "http://")
	clean = strings.TrimPrefix(clean, "https://")
	if !strings.Contains(clean, ":") {
		return clean + ":9000"
	}
	return clean
}
