package backend

import (
	"context"
	"fmt"
	"log/slog"

	"cashbook/internal/amqp"
	"cashbook/internal/config"
	"cashbook/internal/services"
	"cashbook/internal/sheets/memory"
	"cashbook/internal/sheets/workbook"
	"cashbook/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case XLSXBackend:
		store := workbook.NewFileStore(config.LedgerFile)
		f.logger.Info("Initialized xlsx backend", "ledger_file", store.Path())
		return &BackendResult{Store: store}, nil
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return &BackendResult{Store: memory.New()}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{Store: repo, Cleanup: repo.Close}, nil
}

// NewLedgerService builds the ledger service for an application config:
// the configured table store plus an AMQP publisher when events are
// enabled. A broker that cannot be reached is logged and skipped.
func NewLedgerService(ctx context.Context, appConfig *config.Config, logger *slog.Logger) (*services.LedgerService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	bcfg, err := FromAppConfig(appConfig)
	if err != nil {
		return nil, err
	}
	result, err := NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	var publisher services.EventPublisher
	if appConfig.EventsEnabled() {
		client, err := amqp.NewClient(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
		} else {
			logger.Info("Initialized AMQP client",
				"exchange", appConfig.AMQPExchange,
				"queue", appConfig.AMQPQueue)
			publisher = client
		}
	}

	return services.NewLedgerService(result.Store, publisher), nil
}
