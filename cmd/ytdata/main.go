package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kapu/youtube-data-go/internal/app"
	"github.com/kapu/youtube-data-go/internal/config"
	"github.com/kapu/youtube-data-go/internal/service/cache"
	"github.com/kapu/youtube-data-go/internal/service/report"
	"github.com/kapu/youtube-data-go/internal/service/youtube"
	"github.com/kapu/youtube-data-go/internal/util"
	"github.com/kapu/youtube-data-go/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Exit codes.
const (
	exitOK           = 0
	exitFailure      = 1
	exitInvalidInput = 2
	exitNotFound     = 3
	exitUpstream     = 4
)

const usage = `usage: ytdata [flags] <command> [args]

commands:
  video <url>          report one video
  playlist <url>       report every video of a playlist
  channel <url>        report a channel and its uploads
  auth                 run the OAuth consent flow and store the token
  cache-clear [kind]   drop cached reports (video, playlist, channel or all)

flags:
`

type options struct {
	export      bool
	json        bool
	refresh     bool
	metricsAddr string
	timeout     time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseArgs(args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{}
	fs := flag.NewFlagSet("ytdata", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.export, "export", false, "write CSV and JSON files to the configured export sink")
	fs.BoolVar(&opts.json, "json", false, "print the report as JSON instead of tables")
	fs.BoolVar(&opts.refresh, "refresh", false, "ignore cached reports")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "overall deadline for the command")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return nil, nil, fmt.Errorf("missing command")
	}

	switch rest[0] {
	case "video", "playlist", "channel":
		if len(rest) != 2 {
			return nil, nil, fmt.Errorf("%s needs exactly one URL", rest[0])
		}
	case "auth":
		if len(rest) != 1 {
			return nil, nil, fmt.Errorf("auth takes no arguments")
		}
	case "cache-clear":
		if len(rest) > 2 {
			return nil, nil, fmt.Errorf("cache-clear takes at most one kind")
		}
		if len(rest) == 2 {
			if _, err := cacheKind(rest[1]); err != nil {
				return nil, nil, err
			}
		}
	default:
		fs.Usage()
		return nil, nil, fmt.Errorf("unknown command %q", rest[0])
	}
	return opts, rest, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, cmdArgs, err := parseArgs(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitInvalidInput
	}

	// auth and cache-clear never call the API, so they skip the credential checks.
	load := config.Load
	if cmdArgs[0] == "auth" || cmdArgs[0] == "cache-clear" {
		load = config.LoadWithoutCredentials
	}
	cfg, err := load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return exitFailure
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return exitFailure
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	switch cmdArgs[0] {
	case "auth":
		return runAuth(ctx, cfg, logger, stdin, stdout, stderr)
	case "cache-clear":
		reportCache, closeCache, err := app.BuildReportCache(cfg, logger)
		if err != nil {
			logger.Error("Failed to connect report cache", zap.Error(err))
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCode(err)
		}
		defer closeCache()
		kind := ""
		if len(cmdArgs) == 2 {
			kind, _ = cacheKind(cmdArgs[1])
		}
		return runCacheClear(ctx, reportCache, kind, stdout, stderr)
	}

	registry := prometheus.NewRegistry()
	if opts.metricsAddr != "" {
		shutdown := serveMetrics(opts.metricsAddr, registry, logger)
		defer shutdown()
	}

	container, err := app.Build(ctx, cfg, logger, registry)
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	defer container.Close()

	req := report.Request{URL: cmdArgs[1], Refresh: opts.refresh, Export: opts.export}
	if err := runReport(ctx, container.Reports, cmdArgs[0], req, opts.json, stdout); err != nil {
		logger.Error("Report failed",
			zap.String("command", cmdArgs[0]),
			zap.String("url", req.URL),
			zap.String("code", errors.CodeOf(err)),
			zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}

	used, remaining, reset := container.YouTube.QuotaStatus()
	logger.Info("Quota status",
		zap.Int("used", used),
		zap.Int("remaining", remaining),
		zap.Time("reset", reset))
	return exitOK
}

func runReport(ctx context.Context, svc *report.Service, command string, req report.Request, asJSON bool, out io.Writer) error {
	switch command {
	case "video":
		result, err := svc.Video(ctx, req)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(out, result)
		}
		return renderVideo(out, result)
	case "playlist":
		result, err := svc.Playlist(ctx, req)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(out, result)
		}
		return renderPlaylist(out, result)
	case "channel":
		result, err := svc.Channel(ctx, req)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(out, result)
		}
		return renderChannel(out, result)
	}
	return fmt.Errorf("unknown command %q", command)
}

func runAuth(ctx context.Context, cfg *config.Config, logger *zap.Logger, stdin io.Reader, stdout, stderr io.Writer) int {
	creds, err := youtube.LoadOAuthCredentials(cfg.YouTube.CredentialsFile, cfg.YouTube.TokenFile, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	if creds.IsAuthorized() {
		fmt.Fprintf(stdout, "Already authorized, token at %s\n", cfg.YouTube.TokenFile)
		return exitOK
	}
	if err := creds.Authorize(ctx, stdin, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func runCacheClear(ctx context.Context, reports *cache.ReportCache, kind string, stdout, stderr io.Writer) int {
	if reports == nil {
		fmt.Fprintln(stderr, "Error: report cache is disabled, set REDIS_ENABLED=true")
		return exitFailure
	}
	deleted, err := reports.Clear(ctx, kind)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	fmt.Fprintf(stdout, "Deleted %d cached reports\n", deleted)
	return exitOK
}

func cacheKind(arg string) (string, error) {
	switch util.Normalize(arg) {
	case "all", "":
		return "", nil
	case cache.KindVideo:
		return cache.KindVideo, nil
	case cache.KindPlaylist:
		return cache.KindPlaylist, nil
	case cache.KindChannel:
		return cache.KindChannel, nil
	}
	return "", fmt.Errorf("unknown cache kind %q", arg)
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("Serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.IsInvalidInput(err):
		return exitInvalidInput
	case errors.IsNotFound(err):
		return exitNotFound
	case errors.IsUpstream(err):
		return exitUpstream
	}
	return exitFailure
}
