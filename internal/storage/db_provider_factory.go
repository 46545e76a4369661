package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shaibs3/studyhub/internal/storage/gormstore"
	"github.com/shaibs3/studyhub/internal/storage/shared"
	"github.com/shaibs3/studyhub/internal/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ProviderFactory defines the interface for creating storage providers
type ProviderFactory interface {
	CreateProvider(configJSON string) (Provider, error)
}

// DbProviderFactory builds providers from a JSON configuration document.
type DbProviderFactory struct {
	logger    *zap.Logger
	telemetry *telemetry.Telemetry
}

func NewDbProviderFactory(logger *zap.Logger, tel *telemetry.Telemetry) *DbProviderFactory {
	return &DbProviderFactory{
		logger:    logger.Named("factory"),
		telemetry: tel,
	}
}

// CreateProvider parses configJSON and opens the selected provider. A blank
// document selects the in-memory provider.
func (f *DbProviderFactory) CreateProvider(configJSON string) (Provider, error) {
	config := shared.DbProviderConfig{DbType: shared.DbTypeMemory}
	if strings.TrimSpace(configJSON) != "" {
		if err := json.Unmarshal([]byte(configJSON), &config); err != nil {
			return nil, fmt.Errorf("failed to parse database configuration JSON: %w", err)
		}
	}

	f.logger.Info("creating database provider", zap.String("db_type", config.DbType.String()))

	if !config.DbType.IsValid() {
		return nil, fmt.Errorf("unsupported database type: %s", config.DbType)
	}

	var (
		provider Provider
		err      error
	)
	switch config.DbType {
	case shared.DbTypePostgres:
		provider, err = NewPostgresProvider(config, f.logger)
	case shared.DbTypeGorm:
		provider, err = gormstore.NewProvider(config, f.logger)
	case shared.DbTypeMemory:
		f.logger.Info("Using InMemoryProvider for DB")
		provider = NewInMemoryProvider()
	}
	if err != nil {
		return nil, err
	}

	var meter metric.Meter
	if f.telemetry != nil {
		meter = f.telemetry.Meter
	}
	if meter == nil {
		return provider, nil
	}
	instrumented, err := newInstrumentedProvider(provider, config.DbType.String(), meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create store metrics: %w", err)
	}
	return instrumented, nil
}
