package backend

import (
	"context"
	"fmt"

	"savings/internal/log"
	"savings/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case DiskBackend:
		return f.createDiskBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"schema_version", store.Version())

	return &BackendResult{
		Store:   store,
		Type:    SQLiteBackend,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createDiskBackend(config Config) (*BackendResult, error) {
	store, err := storage.NewDiskStore(config.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize disk store: %w", err)
	}

	f.logger.Info("Initialized disk backend", "data_directory", store.BasePath())

	return &BackendResult{Store: store, Type: DiskBackend}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Warn("Initialized memory backend; goals will not survive a restart")
	return &BackendResult{Store: storage.NewMemoryStore(), Type: MemoryBackend}, nil
}
