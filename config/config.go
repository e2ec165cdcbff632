// Package config loads go-access runtime settings from the environment and
// opens the backends they describe.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goliatone/go-access/authz"
	"github.com/goliatone/go-access/events"
	"github.com/goliatone/go-access/pkg/logging"
	"github.com/goliatone/go-access/pkg/types"
	"github.com/goliatone/go-access/service"
	"github.com/goliatone/go-access/store"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Authorizer modes.
const (
	AuthJWT   = "jwt"
	AuthActor = "actor"
	AuthDeny  = "deny"
)

// Config holds runtime configuration read from ACCESS_* variables.
type Config struct {
	StoreDriver string `envconfig:"STORE" default:"memory" validate:"oneof=memory sqlite redis"`
	SQLiteDSN   string `envconfig:"SQLITE_DSN" default:"file:access.db?cache=shared&_fk=1"`

	DBDebug       bool          `envconfig:"DB_DEBUG"`
	DBPingTimeout time.Duration `envconfig:"DB_PING_TIMEOUT" default:"5s"`

	RedisAddr    string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPrefix  string `envconfig:"REDIS_PREFIX" default:"access:"`
	RedisChannel string `envconfig:"REDIS_CHANNEL" default:"access.roles"`

	Authorizer  string `envconfig:"AUTHORIZER" default:"jwt" validate:"oneof=jwt actor deny"`
	JWTSecret   string `envconfig:"JWT_SECRET" validate:"required_if=Authorizer jwt"`
	JWTIssuer   string `envconfig:"JWT_ISSUER" default:"go-access"`
	JWTAudience string `envconfig:"JWT_AUDIENCE"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"omitempty,oneof=text json"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("access", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate normalizes and checks driver and authorizer selections.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil config")
	}
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.Authorizer = strings.ToLower(strings.TrimSpace(c.Authorizer))

	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fieldError(fieldErrs[0])
	}
	return err
}

func fieldError(fe validator.FieldError) error {
	switch fe.Field() {
	case "StoreDriver":
		return fmt.Errorf("config: unsupported store driver %q", fe.Value())
	case "Authorizer":
		return fmt.Errorf("config: unsupported authorizer %q", fe.Value())
	case "JWTSecret":
		return errors.New("config: jwt secret must be provided")
	default:
		return fmt.Errorf("config: invalid %s (%s)", fe.Field(), fe.Tag())
	}
}

// Runtime bundles the service configuration built by Open with the handles a
// host needs afterwards.
type Runtime struct {
	Service service.Config
	// JWT is set when the jwt authorizer is selected so hosts can issue proofs.
	JWT *authz.JWT
	// DB is the migrated ledger database for the sqlite driver.
	DB *bun.DB

	closers []func() error
}

// Close releases the backends opened by Open, last opened first.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Open connects the configured store and event sink and builds the
// authorizer. The caller owns the returned Runtime and must Close it.
func Open(ctx context.Context, cfg *Config) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := NewLogger(cfg)
	rt := &Runtime{}
	rt.Service.Logger = logger

	if err := openBackend(ctx, cfg, rt); err != nil {
		_ = rt.Close()
		return nil, err
	}

	switch cfg.Authorizer {
	case AuthJWT:
		jwtAuth, err := authz.NewJWT(authz.JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			Logger:   logger,
		})
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		rt.JWT = jwtAuth
		rt.Service.Authorizer = jwtAuth
	case AuthActor:
		rt.Service.Authorizer = authz.ActorContext()
	default:
		rt.Service.Authorizer = authz.DenyAll()
	}

	logger.Info("access runtime opened", "store", cfg.StoreDriver, "authorizer", cfg.Authorizer)
	return rt, nil
}

func openBackend(ctx context.Context, cfg *Config, rt *Runtime) error {
	switch cfg.StoreDriver {
	case DriverSQLite:
		db, err := openSQLite(ctx, cfg, rt.Service.Logger)
		if err != nil {
			return err
		}
		rt.DB = db
		rt.closers = append(rt.closers, db.Close)

		st, err := store.NewBunStore(store.BunStoreConfig{DB: db})
		if err != nil {
			return err
		}
		sink, err := events.NewRepository(events.RepositoryConfig{DB: db})
		if err != nil {
			return err
		}
		rt.Service.Store = st
		rt.Service.Sink = sink
	case DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		rt.closers = append(rt.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("config: redis ping: %w", err)
		}
		st, err := store.NewRedisStore(store.RedisStoreConfig{Client: client, Prefix: cfg.RedisPrefix})
		if err != nil {
			return err
		}
		sink, err := events.NewRedisPublisher(events.RedisPublisherConfig{Client: client, Channel: cfg.RedisChannel})
		if err != nil {
			return err
		}
		rt.Service.Store = st
		rt.Service.Sink = sink
	default:
		rt.Service.Store = store.NewMemoryStore()
	}
	return nil
}

// NewLogger builds the slog backed logger described by cfg.
func NewLogger(cfg *Config) types.Logger {
	level := slog.LevelInfo
	if cfg != nil {
		switch strings.ToLower(cfg.LogLevel) {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg != nil && strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return logging.NewSlog(slog.New(handler))
}
