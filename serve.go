package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof" // register handlers
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/slidewin/service"
)

func cliServe(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Listen == "" {
		return errors.New("nothing to serve: no listen address configured")
	}
	rec, kv, err := loadRecorder(ctx, cfg.DB)
	if err != nil {
		return err
	}
	if rec != nil {
		defer rec.Close()
	}
	mm := newMetrics()
	svc := &service.Server{
		Recorder: rec,
		Metrics:  mm,
		Every:    fseconds(cfg.Rate.Every),
		Burst:    cfg.Rate.Num,
	}
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return api(ctx, cfg.Listen, svc, mm.Collectors())
	})
	if kv != nil {
		group.Go(func() error {
			return kvGC(ctx, kv)
		})
	}
	return group.Wait()
}

// api serves the scan endpoint along with metrics and debugging.
func api(ctx context.Context, listen string, svc *service.Server, metrics []prometheus.Collector) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(metrics...)
	opts := promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, opts))
	mux.HandleFunc("GET /debug/pprof/", pprof.Index)
	mux.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	mux.Handle("GET /scan", svc.Handler())
	l, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("couldn't start scan server: %w", err)
	}
	srv := http.Server{
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}
	go func() {
		slog.InfoContext(ctx, "scan server", slog.Any("addr", l.Addr()))
		err := srv.Serve(l)
		if err == http.ErrServerClosed {
			return
		}
		slog.ErrorContext(ctx, "scan server closed", slog.Any("err", err))
	}()
	<-ctx.Done()
	// The context is now done, so it is obviously the wrong choice for
	// managing the shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// kvGC periodically compacts the kv history's value log.
func kvGC(ctx context.Context, kv *badger.DB) error {
	t := time.NewTicker(5 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			err := kv.RunValueLogGC(0.5)
			switch {
			case err == nil, errors.Is(err, badger.ErrNoRewrite):
				// do nothing
			default:
				slog.ErrorContext(ctx, "kv history GC", slog.Any("err", err))
			}
		}
	}
}
