package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"soccer-forecasts/cmd/forecasts-cli/globals"
	"soccer-forecasts/internal/config"
	"soccer-forecasts/lib/restyutil"
	"soccer-forecasts/lib/telemetry"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	config       string
	verbose      bool
	workers      int
	output       string
	competitions []string
	seasons      []int
	dumpHttp     string
}

var flags rootFlags

// shutdown is set when telemetry was started for the current command.
var shutdown func(ctx context.Context) error

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.config, "config", config.DefaultPath, "The config file to read, a sibling .local file is merged over it.")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Log at debug level.")
	pf.IntVar(&flags.workers, "workers", 0, "The number of items fetched concurrently (overrides the config).")
	pf.StringVarP(&flags.output, "output", "o", "", "The directory data and logos are written to (overrides the config).")
	pf.StringArrayVarP(&flags.competitions, "competition", "c", nil, "Only process this competition, can be repeated.")
	pf.IntSliceVarP(&flags.seasons, "season", "s", nil, "Only process this season (starting year), can be repeated.")
	pf.StringVar(&flags.dumpHttp, "dump-http", "", "With --verbose, write every http request and response to this directory.")
}

var rootCmd = &cobra.Command{
	Use:           "forecasts-cli",
	Short:         "forecasts-cli downloads soccer club forecasts and team logos into csv files and images.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(flags.verbose)

		cfg, err := loadConfig(flags)
		if err != nil {
			return err
		}

		if cfg.Telemetry.Enabled() {
			tel, err := telemetry.Setup(cmd.Context(), "forecasts-cli", cfg.Telemetry)
			if err != nil {
				slog.Warn("failed to setup telemetry, continuing without it", "err", err)
			} else {
				shutdown = tel.Shutdown
				telemetry.InstrumentPerfStats(cmd.Context(), time.Second*5)
			}
		}

		http, err := newHttpClient(cfg, flags)
		if err != nil {
			return err
		}

		cmd.SetContext(globals.Set(cmd.Context(), &globals.Value{
			Config: cfg,
			Http:   http,
		}))
		return nil
	},
}

// loadConfig reads the config file and applies the command line overrides on top of it.
func loadConfig(f rootFlags) (config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return config.Config{}, err
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.output != "" {
		cfg.OutputDir = f.output
	}

	cfg, err = cfg.Filter(f.competitions, f.seasons)
	if err != nil {
		return config.Config{}, err
	}
	err = cfg.Validate()
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	cfg.WarnUnknown()
	return cfg, nil
}

func newHttpClient(cfg config.Config, f rootFlags) (*resty.Client, error) {
	opts := restyutil.ClientOptions{
		BaseUrl:           cfg.BaseUrl,
		Timeout:           time.Duration(cfg.Http.Timeout),
		RetryCount:        cfg.Http.RetryCount,
		RetryWait:         time.Duration(cfg.Http.RetryWait),
		RetryMaxWait:      time.Duration(cfg.Http.RetryMaxWait),
		RequestsPerSecond: cfg.Http.RequestsPerSecond,
		UserAgent:         cfg.Http.UserAgent,
		BypassCloudflare:  cfg.BypassCloudflare(),
	}
	if f.dumpHttp != "" {
		if !f.verbose {
			slog.Warn("--dump-http only takes effect with --verbose")
		}
		output, err := restyutil.NewFilesystemOutput(f.dumpHttp)
		if err != nil {
			return nil, fmt.Errorf("create http dump directory: %w", err)
		}
		opts.Output = output
	}
	return restyutil.NewClient(opts), nil
}

// flushTelemetry exports whatever spans and metrics are still buffered. Cobra skips
// PostRun hooks when RunE fails, so this runs after Execute returns instead.
func flushTelemetry() {
	if shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	err := shutdown(ctx)
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
	shutdown = nil
}

func execute(ctx context.Context) error {
	defer flushTelemetry()
	return rootCmd.ExecuteContext(ctx)
}

func ExecuteContext(ctx context.Context) {
	if err := execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
