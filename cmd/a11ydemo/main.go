// Command a11ydemo drives one widget from a terminal. Keys and mouse clicks become
// host events, widget effects move the terminal focus, and callbacks are spoken
// through the live regions at the bottom of the screen.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/amp-labs/amp-a11y/cli"
	"github.com/amp-labs/amp-a11y/envutil"
	"github.com/amp-labs/amp-a11y/logger"
	"github.com/amp-labs/amp-a11y/shutdown"
	"github.com/amp-labs/amp-a11y/telemetry"
	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	appName           = "a11ydemo"
	readHeaderTimeout = 5 * time.Second
	drainTimeout      = 2 * time.Second
)

var errUnknownWidget = errors.New("unknown widget")

type config struct {
	widget      string
	optionsPath string
	metricsAddr string
	logFile     string
	env         string
	chart       string
}

func parseFlags(args []string) (config, error) {
	var cfg config

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.StringVar(&cfg.widget, "widget", "", "widget to drive; prompts when empty")
	fs.StringVar(&cfg.optionsPath, "options", "", "file with one listbox or combobox option per line")
	fs.StringVar(&cfg.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.StringVar(&cfg.logFile, "log-file", "", "append logs to this file; the terminal is busy drawing")
	fs.StringVar(&cfg.env, "env", envutil.String("RUNNING_ENV").ValueOrElse(""), "environment reported to OpenTelemetry")
	fs.StringVar(&cfg.chart, "chart", "", "print the widget's state chart as mermaid or dot and exit")

	err := fs.Parse(args)

	return cfg, err
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}

	if err != nil {
		os.Exit(2) //nolint:mnd
	}

	err = run(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	sig := shutdown.SetupHandler(logger.WithSubsystem(context.Background(), appName))
	defer func() {
		sig.Shutdown()
		sig.Wait()
	}()

	ctx := sig.Context()

	closeLog, err := setupLogging(ctx, cfg)
	if err != nil {
		return err
	}

	sig.BeforeShutdown(func(context.Context) { closeLog() })

	err = setupTelemetry(ctx, cfg, sig)
	if err != nil {
		return err
	}

	if cfg.metricsAddr != "" {
		serveMetrics(ctx, cfg.metricsAddr, sig)
	}

	name := cfg.widget
	if name == "" {
		name, err = cli.Select("Widget", widgetNames...)
		if errors.Is(err, cli.ErrAborted) {
			return nil
		}

		if err != nil {
			return err
		}
	}

	if cfg.chart != "" {
		return printChart(os.Stdout, name, cfg.chart)
	}

	options, err := loadOptions(cfg.optionsPath)
	if err != nil {
		return err
	}

	widget, err := newWidget(ctx, name, options)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}

	err = screen.Init()
	if err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}

	defer screen.Fini()

	screen.EnableMouse()

	logger.Get(ctx).Info("Demo started", "widget", name, "options", len(options))

	return newApp(screen, widget).run(ctx)
}

// setupLogging sends logs to the log file, or nowhere, since stdout belongs to the
// screen.
func setupLogging(ctx context.Context, cfg config) (func(), error) {
	var (
		out    io.Writer = io.Discard
		closer           = func() {}
	)

	if cfg.logFile != "" {
		f, err := os.OpenFile(cfg.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:mnd
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}

		out = f
		closer = func() { _ = f.Close() }
	}

	otelLogs, err := telemetry.LogsEnabledFromEnv()
	if err != nil {
		closer()

		return nil, err
	}

	opts := []logger.Option{logger.WithOutput(out)}
	if otelLogs {
		opts = append(opts, logger.WithOTel())
	}

	_, err = logger.ConfigureLogging(ctx, appName, opts...)
	if err != nil {
		closer()

		return nil, err
	}

	return closer, nil
}

func setupTelemetry(ctx context.Context, cfg config, sig *shutdown.Handler) error {
	otelCfg, err := telemetry.LoadConfigFromEnv(ctx, cfg.env)
	if err != nil {
		return err
	}

	err = telemetry.Initialize(ctx, otelCfg)
	if err != nil {
		return err
	}

	sig.BeforeShutdown(func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, drainTimeout)
		defer cancel()

		if err := telemetry.Shutdown(ctx); err != nil {
			slog.Error("Failed to flush telemetry", "error", err)
		}
	})

	return nil
}

func serveMetrics(ctx context.Context, addr string, sig *shutdown.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.Get(ctx).Info("Serving metrics", "addr", addr)

		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Get(ctx).Error("Metrics server failed", "error", err)
		}
	}()

	sig.BeforeShutdown(func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, drainTimeout)
		defer cancel()

		_ = server.Shutdown(ctx)
	})
}
