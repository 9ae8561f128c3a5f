// Package mongodb manages a MongoDB client and exposes the configured database.
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/worksheet-lab/pkg/lifecycle"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// System owns the client lifecycle.
type System interface {
	Database() *mongo.Database
	Start(lc *lifecycle.Coordinator) error
}

type client struct {
	client      *mongo.Client
	database    *mongo.Database
	logger      *slog.Logger
	connTimeout time.Duration
}

// New configures a client. The driver connects lazily; Start verifies reachability.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnTimeoutDuration())

	c, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	return &client{
		client:      c,
		database:    c.Database(cfg.Database),
		logger:      logger.With("system", "mongodb"),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (c *client) Database() *mongo.Database {
	return c.database
}

func (c *client) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting mongodb client", "database", c.database.Name())

	pingCtx, cancel := context.WithTimeout(lc.Context(), c.connTimeout)
	defer cancel()

	if err := c.client.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("ping mongodb: %w", err)
	}

	c.logger.Info("mongodb connection established")

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		c.logger.Info("disconnecting mongodb client")

		ctx, cancel := context.WithTimeout(context.Background(), c.connTimeout)
		defer cancel()

		if err := c.client.Disconnect(ctx); err != nil {
			c.logger.Error("mongodb disconnect failed", "error", err)
			return
		}
		c.logger.Info("mongodb client disconnected")
	})

	return nil
}
