package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"honeypot-service/internal/config"
	"honeypot-service/internal/util"
)

// Client wraps the MongoDB connection used by the attack repository.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoConfig
}

// NewClient connects to MongoDB and verifies the connection with a ping.
func NewClient(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	mongoConfig := cfg.Mongo

	opts := options.Client().
		ApplyURI(mongoConfig.URL).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second).
		SetMaxPoolSize(uint64(mongoConfig.PoolSize))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	util.Info("MongoDB client initialized",
		zap.String("database", mongoConfig.Database),
		zap.Int("pool_size", mongoConfig.PoolSize),
	)

	return &Client{
		client:   client,
		database: client.Database(mongoConfig.Database),
		config:   &mongoConfig,
	}, nil
}

// Collection returns a handle to a collection in the configured database.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// HealthCheck verifies MongoDB connectivity.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.client.Disconnect(ctx); err != nil {
		util.Error("failed to disconnect MongoDB client", zap.Error(err))
		return err
	}
	util.Info("MongoDB client closed")
	return nil
}
