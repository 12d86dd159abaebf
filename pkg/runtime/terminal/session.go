package terminal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/de-tools/sales-atlas/pkg/services/dashboard"
	"github.com/de-tools/sales-atlas/pkg/store/client"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb/refresh"
	"github.com/rs/zerolog"
)

// SessionOptions are the global flags every command shares.
type SessionOptions struct {
	ConfigPath   string
	ProfilesPath string
	Profile      string
	BackendURL   string
	Days         int
}

// Session lazily builds the dashboard and its history store from the
// resolved settings. It is not safe for concurrent use.
type Session struct {
	opts     *SessionOptions
	settings *config.Settings
	db       *sql.DB
	history  refresh.Store
	dash     *dashboard.Dashboard
}

func NewSession(opts *SessionOptions) *Session {
	return &Session{opts: opts}
}

// Settings resolves config file, profile and flags, in that order.
func (s *Session) Settings(ctx context.Context) (*config.Settings, error) {
	if s.settings != nil {
		return s.settings, nil
	}

	settings, err := config.LoadSettings(s.opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if s.opts.Profile != "" {
		registry, err := config.NewRegistry(s.opts.ProfilesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read profiles from %s: %w", s.opts.ProfilesPath, err)
		}
		profile, err := registry.GetProfile(ctx, s.opts.Profile)
		if err != nil {
			return nil, err
		}
		settings.ApplyProfile(profile)
	}

	if s.opts.BackendURL != "" {
		settings.BackendURL = s.opts.BackendURL
	}
	if s.opts.Days > 0 {
		settings.ForecastDays = s.opts.Days
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	s.settings = settings
	return settings, nil
}

func (s *Session) History(ctx context.Context) (refresh.Store, error) {
	if s.history != nil {
		return s.history, nil
	}

	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: settings.DBPath})
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB at %s: %w", settings.DBPath, err)
	}
	history, err := refresh.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create refresh store: %w", err)
	}

	s.db, s.history = db, history
	return history, nil
}

// Dashboard returns the session's page. Refresh history is recorded when
// the database opens; otherwise refreshes run unrecorded.
func (s *Session) Dashboard(ctx context.Context) (*dashboard.Dashboard, error) {
	if s.dash != nil {
		return s.dash, nil
	}
	logger := zerolog.Ctx(ctx)

	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	backend, err := client.NewClient(settings.BackendURL)
	if err != nil {
		return nil, err
	}

	history, err := s.History(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("refresh history disabled")
		history = nil
	}

	d := dashboard.New(backend, history, settings.ForecastDays)
	if _, err := d.Theme.ApplyTheme(settings.Theme); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("backend", settings.BackendURL).
		Int("days", settings.ForecastDays).
		Msg("dashboard session ready")

	s.dash = d
	return d, nil
}

func (s *Session) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
