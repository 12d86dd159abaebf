package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/de-tools/sales-atlas/pkg/server"
	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/de-tools/sales-atlas/pkg/services/dashboard"
	"github.com/de-tools/sales-atlas/pkg/services/workflow"
	"github.com/de-tools/sales-atlas/pkg/store/client"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
	duckdbrefresh "github.com/de-tools/sales-atlas/pkg/store/duckdb/refresh"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath      string
	profilesPath string
	profile      string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Sales Atlas",
		RunE:  runServer,
	}

	defaultProfiles := ".salesatlascfg"
	if home, err := os.UserHomeDir(); err == nil {
		defaultProfiles = filepath.Join(home, ".salesatlascfg")
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to a YAML settings file")
	rootCmd.Flags().StringVar(&profilesPath, "profiles", defaultProfiles,
		"Path to the profiles file (default is $HOME/.salesatlascfg)")
	rootCmd.Flags().StringVarP(&profile, "profile", "p", "", "Backend profile to use")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	settings, err := config.LoadSettings(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if profile != "" {
		registry, err := config.NewRegistry(profilesPath)
		if err != nil {
			return fmt.Errorf("failed to create config registry: %w", err)
		}

		logger.Info().Msgf("Profiles file found at `%s` successfully loaded.", profilesPath)
		names, _ := registry.GetProfiles(ctx)
		logger.Info().Strs("profiles", names).Msg("available profiles")

		p, err := registry.GetProfile(ctx, profile)
		if err != nil {
			return err
		}
		settings.ApplyProfile(p)
		if err := settings.Validate(); err != nil {
			return err
		}
	}

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: settings.DBPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close DuckDB")
		}
	}()

	history, err := duckdbrefresh.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create refresh store: %w", err)
	}

	backend, err := client.NewClient(settings.BackendURL)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	dash := dashboard.New(backend, history, settings.ForecastDays)
	if _, err := dash.Theme.ApplyTheme(settings.Theme); err != nil {
		return fmt.Errorf("failed to apply theme: %w", err)
	}

	logger.Info().
		Str("backend", settings.BackendURL).
		Int("forecast_days", settings.ForecastDays).
		Msg("loading dashboard")
	if err := dash.Refresher.RefreshAll(ctx, dashboard.TriggerStartup); err != nil {
		logger.Warn().Err(err).Msg("initial refresh incomplete, serving partial page")
	}

	scheduler := workflow.NewController(dash.Refresher)
	if err := scheduler.Start(ctx, settings.Server.RefreshInterval); err != nil {
		return fmt.Errorf("failed to start scheduled refresh: %w", err)
	}
	if settings.Server.RefreshInterval > 0 {
		logger.Info().Dur("interval", settings.Server.RefreshInterval).Msg("scheduled refresh enabled")
		defer func() {
			_ = scheduler.Cancel(ctx)
		}()
	}

	api, err := server.NewWebAPI(server.Config{
		Addr:            settings.Server.Addr(),
		ShutdownTimeout: settings.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Dashboard: dash,
			Logger:    logger,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to configure server: %w", err)
	}

	return api.Start(ctx)
}
