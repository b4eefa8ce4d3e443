package storage

import (
	"context"
	"fmt"

	"github.com/mtlprog/pricebot/internal/database"
	"github.com/mtlprog/pricebot/internal/domain"
)

// Store owns the backend and the typed maps built on it.
// It is opened once at startup and passed to the services that need it.
type Store struct {
	backend Backend

	Configs *Map[domain.ConfigKey, domain.Config]
	Prices  *Map[string, domain.PriceStore]
	FAQs    *Map[domain.ConfigKey, string]
}

type configKeyCodec = BinaryCodec[domain.ConfigKey, *domain.ConfigKey]

// NewStore wraps backend with the config, price and FAQ maps.
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		Configs: NewMap[domain.ConfigKey, domain.Config](backend, PartitionConfig, configKeyCodec{}, JSONCodec[domain.Config]{}),
		Prices:  NewMap[string, domain.PriceStore](backend, PartitionPrice, StringCodec{}, JSONCodec[domain.PriceStore]{}),
		FAQs:    NewMap[domain.ConfigKey, string](backend, PartitionFAQ, configKeyCodec{}, StringCodec{}),
	}
}

// Close flushes and releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Options selects and locates a backend.
type Options struct {
	Backend     string
	LevelDBPath string
	DatabaseURL string
	RedisAddr   string
}

// Open connects to the backend named in opts: memory, leveldb, postgres or redis.
func Open(ctx context.Context, opts Options) (*Store, error) {
	var (
		backend Backend
		err     error
	)

	switch opts.Backend {
	case "memory":
		backend = NewMemory()
	case "leveldb", "":
		backend, err = OpenLevelDB(opts.LevelDBPath)
	case "postgres":
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for postgres storage")
		}
		pool, cerr := database.Connect(ctx, opts.DatabaseURL)
		if cerr != nil {
			return nil, cerr
		}
		if merr := database.RunMigrations(ctx, pool, database.Migrations()); merr != nil {
			pool.Close()
			return nil, fmt.Errorf("migrating database: %w", merr)
		}
		backend = NewPostgres(pool)
	case "redis":
		backend, err = OpenRedis(ctx, opts.RedisAddr)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	return NewStore(backend), nil
}
