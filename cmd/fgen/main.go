// Command fgen serves the batch folder generation tool.
//
// Usage:
//
//	fgen                        # run with defaults
//	fgen -config config.yaml    # run with config file
//	fgen -addr 127.0.0.1:9000   # override listen address
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	internal "github.com/foldergen/foldergen/fgen"
	"github.com/foldergen/foldergen/fgen/config"
	"github.com/foldergen/foldergen/fgen/db"
	"github.com/foldergen/foldergen/fgen/server"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml file")
	addr := flag.String("addr", "", "listen address override")
	openBrowser := flag.Bool("open", false, "open the tool in the local browser once serving")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *addr, *openBrowser); err != nil {
		logger := internal.GetLogger()
		logger.Fatal().Err(err).Msg("fgen: fatal")
	}
}

func run(ctx context.Context, configPath, addr string, openBrowser bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if openBrowser {
		cfg.Server.OpenBrowser = true
	}

	var history *db.HistoryProvider
	if cfg.History.Enabled {
		history, err = db.NewHistoryProvider(cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		defer history.Close()
	}

	srv := server.New(slog.Default(), cfg, history)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	if cfg.Server.OpenBrowser {
		go func() {
			if err := waitAndOpenBrowser(ctx, cfg.Server.Addr); err != nil {
				slog.Warn("Failed to open browser", "error", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	}
}

// waitAndOpenBrowser polls the server until it answers, then opens the
// system browser on it.
func waitAndOpenBrowser(ctx context.Context, addr string) error {
	url := fmt.Sprintf("http://%s/", addr)
	client := &http.Client{Timeout: time.Second}

	for i := 0; i < 20; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}

		resp, err := client.Get(url)
		if err != nil {
			continue
		}
		resp.Body.Close()
		return openInBrowser(url)
	}

	return fmt.Errorf("server at %s never became reachable", addr)
}

func openInBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
