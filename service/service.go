package service

import (
	"context"

	"github.com/goliatone/go-access/authz"
	"github.com/goliatone/go-access/command"
	"github.com/goliatone/go-access/pkg/types"
	"github.com/goliatone/go-access/query"
	"github.com/goliatone/go-access/registry"
)

// Service is the entry point for go-access. It wires the store, authorizer,
// event sink and hooks supplied by the host into a role registry and exposes
// command/query facades over it.
type Service struct {
	cfg      Config
	registry *registry.RoleRegistry
	commands Commands
	queries  Queries
}

// Commands exposes the service command handlers.
type Commands struct {
	Init       *command.InitCommand
	GrantRole  *command.GrantRoleCommand
	RevokeRole *command.RevokeRoleCommand
}

// Queries exposes the service query handlers.
type Queries struct {
	HasRole  *query.HasRoleQuery
	GetAdmin *query.GetAdminQuery
}

// Config captures the dependencies required by the service.
type Config struct {
	Store      types.Store
	Authorizer types.Authorizer
	Sink       types.EventSink
	Hooks      types.Hooks
	Logger     types.Logger
}

// New wires a service from cfg. Store is required.
func New(cfg Config) (*Service, error) {
	cfg = normalizeConfig(cfg)

	reg, err := registry.New(registry.Config{
		Store:      cfg.Store,
		Authorizer: cfg.Authorizer,
		Sink:       cfg.Sink,
		Hooks:      cfg.Hooks,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:      cfg,
		registry: reg,
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s, nil
}

func normalizeConfig(cfg Config) Config {
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.Authorizer == nil {
		cfg.Authorizer = authz.DenyAll()
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Registry returns the underlying role registry for callers that guard their
// own operations with RequireAdmin/RequireRole.
func (s *Service) Registry() *registry.RoleRegistry {
	if s == nil {
		return nil
	}
	return s.registry
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil &&
		s.registry != nil &&
		s.cfg.Store != nil &&
		s.cfg.Authorizer != nil
}

// HealthCheck surfaces missing wiring and probes the store with a read of the
// admin record.
func (s *Service) HealthCheck(ctx context.Context) error {
	if !s.Ready() {
		return types.ErrServiceNotReady
	}
	if _, err := s.cfg.Store.Has(ctx, types.AdminKey()); err != nil {
		return types.StoreError(err, "health")
	}
	return nil
}

func (s *Service) buildCommands() Commands {
	return Commands{
		Init:       command.NewInitCommand(s.registry),
		GrantRole:  command.NewGrantRoleCommand(s.registry),
		RevokeRole: command.NewRevokeRoleCommand(s.registry),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		HasRole:  query.NewHasRoleQuery(s.registry),
		GetAdmin: query.NewGetAdminQuery(s.registry),
	}
}
