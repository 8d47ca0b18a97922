package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"animestudio/internal/api"
	"animestudio/internal/config"
	"animestudio/internal/logging"
	"animestudio/internal/telemetry"
	"animestudio/internal/ui"
)

// globalFlags override the loaded configuration when set.
type globalFlags struct {
	configPath string
	apiURL     string
	imageHost  string
	logFile    string
	logLevel   string
}

func (f globalFlags) apply(cfg *config.Config) {
	if f.apiURL != "" {
		cfg.APIURL = f.apiURL
	}
	if f.imageHost != "" {
		cfg.ImageHost = f.imageHost
	}
	if f.logFile != "" {
		cfg.LogFile = f.logFile
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "animestudio",
		Short: "Terminal client for the anime character and scene generator",
		Long: `animestudio talks to the image generation backend: it tracks dependency
installation, manages characters and generates scenes.

Run without a subcommand to open the interactive UI.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), *flags)
			if err != nil {
				return err
			}
			defer rt.Close()
			return rt.runTUI()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (.toml, .yaml or .json)")
	pf.StringVar(&flags.apiURL, "api-url", "", "backend API base URL")
	pf.StringVar(&flags.imageHost, "image-host", "", "host prefixed to image paths")
	pf.StringVar(&flags.logFile, "log-file", "", "log file path")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newStatusCmd(flags),
		newInstallCmd(flags),
		newCharactersCmd(flags),
	)
	return root
}

// runtime is everything a command needs once configuration is resolved.
type runtime struct {
	cfg      config.Config
	logger   *slog.Logger
	client   *api.Client
	exporter *telemetry.Exporter
	logs     io.Closer
}

func setup(ctx context.Context, flags globalFlags) (*runtime, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	flags.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, logs, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	exporter, err := telemetry.NewExporter(ctx)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	client := api.NewClient(cfg.APIURL,
		api.WithImageHost(cfg.ImageHost),
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout.D()}),
		api.WithLogger(logger),
		api.WithTracer(exporter.Tracer("animestudio/api")),
	)
	logger.Debug("configuration resolved",
		"api_url", cfg.APIURL,
		"image_host", cfg.ImageHost,
		"tracing", exporter.Enabled(),
	)
	return &runtime{cfg: cfg, logger: logger, client: client, exporter: exporter, logs: logs}, nil
}

// Close flushes spans and closes the log file.
func (r *runtime) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(r.exporter.Shutdown(ctx), r.logs.Close())
}

// requestContext bounds a single CLI request by the configured timeout.
func (r *runtime) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if d := r.cfg.RequestTimeout.D(); d > 0 {
		return context.WithTimeout(parent, d)
	}
	return context.WithCancel(parent)
}

func (r *runtime) runTUI() error {
	model := ui.NewAppModel(
		&ui.Services{
			Backend:        r.client,
			Logger:         r.logger,
			RequestTimeout: r.cfg.RequestTimeout.D(),
		},
		ui.Options{
			StatusPollInterval:  r.cfg.StatusPollInterval.D(),
			InstallPollInterval: r.cfg.InstallPollInterval.D(),
		},
	)
	defer model.Shutdown()

	r.logger.Info("starting ui", "api_url", r.cfg.APIURL)
	p := tea.NewProgram(model.AsTeaModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
