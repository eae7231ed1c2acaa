package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moyoez/gtranslate-ipcheck/api"
	"github.com/moyoez/gtranslate-ipcheck/iprange"
	"github.com/moyoez/gtranslate-ipcheck/notify"
	"github.com/moyoez/gtranslate-ipcheck/pipeline"
	"github.com/moyoez/gtranslate-ipcheck/tool"
	"github.com/moyoez/gtranslate-ipcheck/types"
)

func main() {
	cfg := tool.SetFlags()

	// initialize logger
	tool.InitLogger()
	tool.SetLogMode(cfg.Log)

	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	if cfg.SkipNotify {
		notify.SetUseNotify(false)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RefreshRanges {
		refreshRanges(ctx, &appCfg, cfg.UseIPv6)
	}

	opts := pipeline.OptionsFromFlags(cfg)
	if cfg.Interval > 0 && !opts.AutoConfirm && !opts.ScanOnly {
		tool.DefaultLogger.Warn("Interval mode without -y does not touch the hosts file")
		opts.ScanOnly = true
	}
	runner, err := pipeline.New(appCfg, opts)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	loop := pipeline.NewLoop(runner, time.Duration(cfg.Interval)*time.Second)

	var server *api.Server
	if cfg.Serve {
		server = api.NewServer(appCfg.Listen, loop)
		go func() {
			if err := server.Start(); err != nil {
				tool.DefaultLogger.Errorf("API server stopped: %v", err)
				stop()
			}
		}()
		defer shutdown(server)
	}

	if cfg.Interval > 0 {
		loop.Run(ctx, true)
		return
	}

	_, err = runner.RunOnce(ctx)
	if err != nil {
		tool.DefaultLogger.Errorf("%v", err)
	}
	if server != nil && ctx.Err() == nil {
		// keep serving, scan-now triggers further runs
		loop.Run(ctx, false)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		if server != nil {
			shutdown(server)
		}
		os.Exit(1)
	}
}

// refreshRanges replaces the configured ranges of one family with Google's published ranges.
func refreshRanges(ctx context.Context, appCfg *types.AppConfig, ipv6 bool) {
	ranges, err := iprange.FetchGoogleRanges(ctx, tool.GetRemoteHttpClient(), appCfg.GoogleRangesURL, appCfg.CloudRangesURL, ipv6)
	if err != nil {
		tool.DefaultLogger.Warnf("Failed to refresh ranges, keeping configured ones: %v", err)
		return
	}
	tool.DefaultLogger.Infof("Using %d published ranges", len(ranges))
	if ipv6 {
		appCfg.IPv6Range = ranges
	} else {
		appCfg.IPRange = ranges
	}
}

func shutdown(server *api.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		tool.DefaultLogger.Warnf("API server shutdown: %v", err)
	}
}
