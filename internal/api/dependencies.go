package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"infinite-experiment/briefing/internal/cache"
	"infinite-experiment/briefing/internal/config"
	"infinite-experiment/briefing/internal/constants"
	"infinite-experiment/briefing/internal/db"
	"infinite-experiment/briefing/internal/db/repositories"
	"infinite-experiment/briefing/internal/logging"
	"infinite-experiment/briefing/internal/metrics"
	"infinite-experiment/briefing/internal/models/dtos"
	"infinite-experiment/briefing/internal/providers"
	"infinite-experiment/briefing/internal/services"
	"infinite-experiment/briefing/internal/upstream"
	"infinite-experiment/briefing/internal/validation"
	"infinite-experiment/briefing/internal/wx"
)

type Repositories struct {
	// Audits is nil when no database is configured.
	Audits *repositories.CompositionAuditRepository
}

type Services struct {
	Upstream       *upstream.Client
	AerodromeCache *cache.TimedCache[dtos.AerodromeRecord]
	Composer       *services.FplComposer
}

type Dependencies struct {
	Config   *config.Config
	Metrics  *metrics.MetricsRegistry
	Repo     *Repositories
	Services *Services

	// Optional infrastructure, nil when not configured.
	DB    *sqlx.DB
	Redis *redis.Client
}

func InitDependencies(cfg *config.Config, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Metrics: metricsReg,
		Repo:    &Repositories{},
	}

	store, err := deps.initCacheStore()
	if err != nil {
		return nil, err
	}

	if cfg.Database.Enabled() {
		if err := deps.initDatabase(); err != nil {
			_ = store.Close()
			return nil, err
		}
	} else {
		logging.Info("DB_DSN not set, composition audits disabled")
	}

	client := upstream.NewClient(cfg.Upstream, metricsReg)
	aerodromeCache := cache.New[dtos.AerodromeRecord](store,
		string(constants.CachePrefixAerodrome),
		cache.WithMetrics[dtos.AerodromeRecord](metricsReg),
	)

	lookups := services.Lookups{
		Aerodrome:  providers.NewAerodromeProvider(client, aerodromeCache, cfg.Cache.AerodromeTTL, metricsReg),
		Weather:    providers.NewWeatherProvider(client, wx.Parser{}, metricsReg),
		Notam:      providers.NewNotamProvider(client, metricsReg),
		AtsPreview: providers.NewAtsPreviewProvider(client, metricsReg),
	}

	var recorder services.CompositionRecorder
	if deps.Repo.Audits != nil {
		recorder = deps.Repo.Audits
	}

	deps.Services = &Services{
		Upstream:       client,
		AerodromeCache: aerodromeCache,
		Composer:       services.NewFplComposer(validation.Default(), lookups, cfg.FanoutLimit, recorder, metricsReg),
	}

	return deps, nil
}

// initCacheStore builds the aerodrome cache backend. Stores keep entries for
// twice the TTL so a stale entry is still there to be superseded.
func (d *Dependencies) initCacheStore() (cache.Store, error) {
	ttl := d.Config.Cache.AerodromeTTL
	retention := 2 * ttl

	switch d.Config.Cache.Backend {
	case config.CacheBackendLRU:
		logging.Info("Using LRU aerodrome cache", "size", d.Config.Cache.LRUSize)
		return cache.NewLRUStore(d.Config.Cache.LRUSize)
	case config.CacheBackendRedis:
		client, err := cache.NewRedisClient(d.Config.Redis)
		if err != nil {
			return nil, err
		}
		d.Redis = client
		logging.Info("Using Redis aerodrome cache", "addr", d.Config.Redis.Addr())
		return cache.NewRedisStore(client, retention), nil
	default:
		logging.Info("Using in-memory aerodrome cache", "ttl", ttl.String())
		return cache.NewMemoryStore(retention, time.Minute), nil
	}
}

func (d *Dependencies) initDatabase() error {
	orm, err := db.InitORM(d.Config.Database)
	if err != nil {
		return err
	}
	if err := db.Migrate(orm); err != nil {
		return err
	}

	conn, err := db.InitSQLX(d.Config.Database, orm)
	if err != nil {
		return fmt.Errorf("failed to open sqlx connection: %w", err)
	}

	d.DB = conn
	d.Repo.Audits = repositories.NewCompositionAuditRepository(orm, conn)
	return nil
}

// Close releases the cache store and database connections.
func (d *Dependencies) Close() error {
	var errs []error
	if d.Services != nil && d.Services.AerodromeCache != nil {
		errs = append(errs, d.Services.AerodromeCache.Close())
	}
	if d.DB != nil {
		errs = append(errs, d.DB.Close())
	}
	return errors.Join(errs...)
}
