package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mohammed-shakir/dggs-ldapi/internal/cache/filtercache"
	"github.com/mohammed-shakir/dggs-ldapi/internal/cache/redisstore"
	"github.com/mohammed-shakir/dggs-ldapi/internal/catalog"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/config"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/executor"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/health"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/httpclient"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/observability"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/router"
	"github.com/mohammed-shakir/dggs-ldapi/internal/core/server"
	"github.com/mohammed-shakir/dggs-ldapi/internal/filter"
	"github.com/mohammed-shakir/dggs-ldapi/internal/geosource"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid/gridindex"
	"github.com/mohammed-shakir/dggs-ldapi/internal/grid/rhealpix"
	"github.com/mohammed-shakir/dggs-ldapi/internal/invalidation/kafkaconsumer"
	"github.com/mohammed-shakir/dggs-ldapi/internal/logger"
	"github.com/mohammed-shakir/dggs-ldapi/internal/metrics"
	"github.com/mohammed-shakir/dggs-ldapi/internal/render"
)

var (
	Version   = "dev"
	Revision  = ""
	BuildDate = ""
)

func main() {
	os.Exit(run())
}

func run() int {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Service:   "dggs-ldapi",
		Component: "api",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	appLog.Info("starting dggs-ldapi",
		"addr", cfg.Addr,
		"version", Version,
		"geometry_source", cfg.GeometrySource,
		"catalog_snapshot", cfg.CatalogSnapshot)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts server.Options
	if cfg.Metrics.Enabled {
		p := metrics.Init(metrics.Config{
			Enabled: true,
			Addr:    cfg.Metrics.Addr,
			Path:    cfg.Metrics.Path,
			Build: metrics.BuildInfo{
				Version:   Version,
				Revision:  Revision,
				BuildDate: BuildDate,
			},
		})
		observability.Init(p.Registerer(), true)

		if cfg.Metrics.Addr == "" {
			opts.Metrics = p.Handler()
			opts.MetricsPath = p.Path()
		} else {
			go func() {
				if err := p.Serve(ctx, appLog); err != nil {
					appLog.Error("metrics server exited", "err", err)
				}
			}()
		}
	} else {
		observability.Init(nil, false)
	}

	var rdb *redisstore.Client
	if cfg.RedisAddr != "" {
		c, err := redisstore.New(ctx, cfg.RedisAddr)
		if err != nil {
			appLog.Error("redis connect failed", "addr", cfg.RedisAddr, "err", err)
			return 1
		}
		defer func() { _ = c.Close() }()
		rdb = c
		opts.Ready = append(opts.Ready, health.Check{Name: "redis", Fn: c.Ping})
	}

	snapshots, err := snapshotStore(cfg, rdb, appLog)
	if err != nil {
		appLog.Error("catalog snapshot setup failed", "err", err)
		return 1
	}
	catCache := catalog.NewCache(catalog.YAMLSource{Dir: cfg.CatalogDir}, appLog,
		catalog.WithTTL(cfg.CatalogTTL),
		catalog.WithSnapshotStore(snapshots))
	if _, err := catCache.Get(ctx); err != nil {
		appLog.Error("catalog build failed", "dir", cfg.CatalogDir, "err", err)
		return 1
	}
	opts.Ready = append(opts.Ready, health.Check{Name: "catalog", Fn: func(ctx context.Context) error {
		_, err := catCache.Get(ctx)
		return err
	}})

	g := rhealpix.New()
	src, err := geometrySource(cfg, appLog, g)
	if err != nil {
		appLog.Error("geometry source setup failed", "source", cfg.GeometrySource, "err", err)
		return 1
	}

	fcOpts := []filtercache.Option{
		filtercache.WithTTL(cfg.FilterCacheTTL),
		filtercache.WithOpTimeout(cfg.CacheOpTimeout),
	}
	if cfg.FilterCacheRedis && rdb != nil {
		fcOpts = append(fcOpts, filtercache.WithRedis(rdb))
	}
	fc, err := filtercache.New(appLog, src, cfg.FilterCacheSize, fcOpts...)
	if err != nil {
		appLog.Error("filter cache setup failed", "err", err)
		return 1
	}

	rd, err := render.New(appLog, cfg.APITitle)
	if err != nil {
		appLog.Error("templates failed to parse", "err", err)
		return 1
	}

	if cfg.Invalidation.Enabled {
		kc := kafkaconsumer.New(kafkaconsumer.FromConfig(cfg.Invalidation), appLog, catCache, fc)
		opts.Ready = append(opts.Ready, health.Check{Name: "kafka", Fn: kc.Ready})
		go func() {
			if err := kc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				appLog.Error("invalidation consumer exited", "err", err)
			}
		}()
	}

	routes := router.New(appLog, catCache, filter.NewEngine(fc), g, rd,
		router.WithBaseURL(cfg.BaseURL))
	handler := server.NewHandler(cfg, appLog, routes, opts)

	if err := server.Run(ctx, cfg, appLog, handler); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}

func snapshotStore(cfg config.Config, rdb *redisstore.Client, log *slog.Logger) (catalog.SnapshotStore, error) {
	switch cfg.CatalogSnapshot {
	case config.SnapshotFile:
		return catalog.FileStore{Path: cfg.CatalogSnapshotPath}, nil
	case config.SnapshotRedis:
		if rdb == nil {
			return nil, errors.New("CATALOG_SNAPSHOT=redis requires REDIS_ADDR")
		}
		return catalog.NewRedisStore(rdb, cfg.CatalogTTL), nil
	default:
		log.Debug("catalog snapshots disabled")
		return catalog.NopStore{}, nil
	}
}

func geometrySource(cfg config.Config, log *slog.Logger, g *rhealpix.Grid) (geosource.Source, error) {
	switch cfg.GeometrySource {
	case "local":
		ix, err := gridindex.Build(g, gridindex.DefaultResolution)
		if err != nil {
			return nil, fmt.Errorf("build grid index: %w", err)
		}
		log.Info("grid index built", "resolution", ix.Resolution(), "cells", ix.Size())
		return geosource.NewLocal(log, g, ix, geosource.WithMaxZones(cfg.MaxZones)), nil
	case "sparql":
		client := httpclient.NewOutbound(httpclient.WithTimeout(cfg.UpstreamTimeout))
		exec, err := executor.New(log, client, cfg.SPARQLEndpoint)
		if err != nil {
			return nil, err
		}
		return geosource.NewRemote(exec), nil
	default:
		return nil, fmt.Errorf("unknown geometry source %q", cfg.GeometrySource)
	}
}
