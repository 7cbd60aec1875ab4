package provision

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"frappe-site-bootstrap/models"
)

// ServiceChecker probes the services a new site depends on. Probes never fail
// the bootstrap, they only warn.
type ServiceChecker struct {
	logger       *zap.Logger
	cache        *redis.Client
	pingPostgres func(ctx context.Context, cfg *models.BootstrapConfig) error
}

// NewServiceChecker creates a checker with no open connections
func NewServiceChecker(logger *zap.Logger) *ServiceChecker {
	return &ServiceChecker{logger: logger, pingPostgres: pingPostgres}
}

// CheckCache connects to the redis cache at redisURL and pings it.
// The connection stays open until Close.
func (s *ServiceChecker) CheckCache(ctx context.Context, redisURL string) {
	if redisURL == "" {
		return
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		s.logger.Warn("Invalid redis_cache url", zap.Error(err))
		return
	}

	if s.cache == nil {
		s.cache = redis.NewClient(opts)
	}

	if err := s.cache.Ping(ctx).Err(); err != nil {
		s.logger.Warn("Redis cache not reachable", zap.String("addr", opts.Addr), zap.Error(err))
		return
	}
	s.logger.Info("Redis cache reachable", zap.String("addr", opts.Addr))
}

// CheckPostgres logs in to the postgres server with the root credentials
func (s *ServiceChecker) CheckPostgres(ctx context.Context, cfg *models.BootstrapConfig) {
	if err := s.pingPostgres(ctx, cfg); err != nil {
		s.logger.Warn("Postgres not reachable", zap.String("host", cfg.DBHost), zap.Error(err))
		return
	}
	s.logger.Info("Postgres reachable", zap.String("host", cfg.DBHost))
}

// Close releases the cache connection pool if one was opened
func (s *ServiceChecker) Close() error {
	if s.cache == nil {
		return nil
	}
	err := s.cache.Close()
	s.cache = nil
	return err
}

func pingPostgres(ctx context.Context, cfg *models.BootstrapConfig) error {
	connector, err := pq.NewConnector(postgresDSN(cfg))
	if err != nil {
		return errors.Wrap(err, "invalid postgres connection settings")
	}

	db := sql.OpenDB(connector)
	defer db.Close()

	return db.PingContext(ctx)
}

func postgresDSN(cfg *models.BootstrapConfig) string {
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.RootUsername, cfg.PostgresRootPassword),
		Host:   net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort)),
		Path:   "/postgres",
	}
	q := dsn.Query()
	q.Set("sslmode", "disable")
	q.Set("connect_timeout", "5")
	dsn.RawQuery = q.Encode()
	return dsn.String()
}
