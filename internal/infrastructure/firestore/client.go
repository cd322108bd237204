package firestore

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/ecopoint-service/internal/config"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Client - обёртка над firestore.Client
type Client struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewClient создаёт клиент Firestore. Порядок аутентификации:
// FIRESTORE_EMULATOR_HOST (без учётных данных), файл ключа из конфига,
// затем Application Default Credentials.
func NewClient(ctx context.Context, cfg *config.FirestoreConfig, logger *zap.Logger) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestore project id is required")
	}

	var opts []option.ClientOption
	switch {
	case os.Getenv("FIRESTORE_EMULATOR_HOST") != "":
		logger.Info("Using Firestore emulator", zap.String("host", os.Getenv("FIRESTORE_EMULATOR_HOST")))
	case cfg.CredentialsFile != "":
		if _, err := os.Stat(cfg.CredentialsFile); err != nil {
			logger.Warn("Credentials file not found, trying default authentication",
				zap.String("file", cfg.CredentialsFile))
		} else {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	logger.Info("Firestore client initialized",
		zap.String("project_id", cfg.ProjectID),
		zap.String("collection", cfg.Collection),
	)

	return &Client{client: client, logger: logger}, nil
}

func (c *Client) Close() error {
	c.logger.Info("Closing Firestore client")
	return c.client.Close()
}

func (c *Client) Firestore() *firestore.Client {
	return c.client
}
