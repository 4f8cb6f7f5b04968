// Package storage builds object stores from configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/DjonatanS/dasida/internal/config"
	"github.com/DjonatanS/dasida/internal/interfaces"
	"github.com/DjonatanS/dasida/internal/providers/aws"
	"github.com/DjonatanS/dasida/internal/providers/azure"
	"github.com/DjonatanS/dasida/internal/providers/gcp"
	"github.com/DjonatanS/dasida/internal/providers/minio"
)

// Open builds the object store described by sess.
func Open(ctx context.Context, sess config.Session) (interfaces.ObjectStore, error) {
	switch sess.Provider {
	case config.AWS:
		return aws.NewClient(aws.Config{
			Profile:         sess.AWS.Profile,
			Region:          sess.AWS.Region,
			AccessKeyID:     sess.AWS.AccessKeyID,
			SecretAccessKey: sess.AWS.SecretAccessKey,
			SessionToken:    sess.AWS.SessionToken,
			Endpoint:        sess.AWS.Endpoint,
			DisableSSL:      sess.AWS.DisableSSL,
		})

	case config.MINIO:
		return minio.NewClient(minio.Config{
			Endpoint:   sess.MinIO.Endpoint,
			AccessKey:  sess.MinIO.AccessKey,
			SecretKey:  sess.MinIO.SecretKey,
			UseSSL:     sess.MinIO.UseSSL,
			Region:     sess.MinIO.Region,
			MaxRetries: sess.MinIO.MaxRetries,
		})

	case config.GCS:
		return gcp.NewClient(ctx, gcp.Config{
			ProjectID: sess.GCS.ProjectID,
			Endpoint:  sess.GCS.Endpoint,
		})

	case config.AZURE:
		return azure.NewClient(azure.Config{
			AccountName: sess.Azure.AccountName,
			AccountKey:  sess.Azure.AccountKey,
			EndpointURL: sess.Azure.EndpointURL,
		})

	default:
		return nil, fmt.Errorf("unknown provider type: %s", sess.Provider)
	}
}

// Factory manages object store instances keyed by provider ID
type Factory struct {
	providers map[string]interfaces.ObjectStore
	logger    *slog.Logger
}

// NewFactory opens every provider in cfg
func NewFactory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Factory, error) {
	factory := &Factory{
		providers: make(map[string]interfaces.ObjectStore),
		logger:    logger.With("component", "storage_factory"),
	}

	for _, providerCfg := range cfg.Providers {
		factory.logger.Debug("Initializing storage provider", "provider_id", providerCfg.ID, "provider_type", providerCfg.Type)

		sess, err := cfg.Session(providerCfg.ID)
		if err != nil {
			factory.Close()
			return nil, err
		}

		provider, err := Open(ctx, sess)
		if err != nil {
			factory.logger.Error("Failed to initialize provider", "provider_id", providerCfg.ID, "provider_type", providerCfg.Type, "error", err)
			// Close any previously initialized providers before returning error
			factory.Close()
			return nil, fmt.Errorf("error creating provider %s: %w", providerCfg.ID, err)
		}

		factory.providers[providerCfg.ID] = provider
	}

	return factory, nil
}

// GetProvider returns the store opened for a provider ID.
func (f *Factory) GetProvider(id string) (interfaces.ObjectStore, error) {
	provider, exists := f.providers[id]
	if !exists {
		return nil, fmt.Errorf("provider not found: %s", id)
	}
	return provider, nil
}

// IDs returns the provider IDs in sorted order.
func (f *Factory) IDs() []string {
	ids := make([]string, 0, len(f.providers))
	for id := range f.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close cleans up resources used by the providers
func (f *Factory) Close() {
	for id, provider := range f.providers {
		if err := provider.Close(); err != nil {
			f.logger.Warn("Failed to close provider", "provider_id", id, "error", err)
		}
	}
}
