// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/DataDog/hashmeter/persist"
	"github.com/DataDog/hashmeter/sampler"
	"github.com/DataDog/hashmeter/tdigest/encoding"
)

const metricsShutdownTimeout = 5 * time.Second

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Samples PBKDF2 latency until interrupted",
		Args:  cobra.NoArgs,
		RunE:  a.run,
	}

	flags := cmd.Flags()
	flags.String("data-dir", DefaultDataDir, "directory of the snapshot and observation logs")
	flags.String("snapshot", DefaultSnapshot, "snapshot file, relative to the data directory; the extension picks the format (.json, .pb, .bin)")
	flags.String("password", sampler.DefaultPassword, "password to hash")
	flags.String("salt", sampler.DefaultSalt, "salt for hashing")
	flags.Int("iterations", sampler.DefaultIterations, "PBKDF2 iterations")
	flags.Int("key-size", sampler.DefaultKeySize, "derived key size in bytes")
	flags.Duration("interval", sampler.DefaultInterval, "pause between two samples")
	flags.Int("save-every", sampler.DefaultSaveEvery, "observations between two snapshot saves")
	flags.Bool("log-percentiles", false, "log the live percentiles of every sample at info level")
	flags.String("metrics-addr", "", "address of the Prometheus metrics endpoint, disabled when empty")
	addDigestFlags(flags)
	return cmd
}

func (a *app) run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var config sampler.Config
	if err := a.config.Unmarshal(&config); err != nil {
		return errors.Wrap(err, "reading sampler configuration")
	}
	var pbkdf2Config sampler.PBKDF2Config
	if err := a.config.Unmarshal(&pbkdf2Config); err != nil {
		return errors.Wrap(err, "reading PBKDF2 configuration")
	}
	opts, err := a.digestOptions()
	if err != nil {
		return err
	}
	source, err := sampler.NewPBKDF2Source(pbkdf2Config)
	if err != nil {
		return err
	}

	logger := a.component("sampler")
	dataDir := a.config.GetString("data-dir")
	path := a.config.GetString("snapshot")
	if !filepath.IsAbs(path) {
		path = filepath.Join(dataDir, path)
	}
	store := persist.NewFileStore(path, encoding.ForPath(path), opts...)
	digest, err := persist.LoadOrEmpty(store, logger, opts...)
	if err != nil {
		return err
	}
	logger.WithField("path", path).Infof("Loaded snapshot with %g observations", digest.Count())

	observations, err := sampler.OpenObservationLog(dataDir, time.Now())
	if err != nil {
		return err
	}
	defer observations.Close()

	driver, err := sampler.NewDriver(config, source, store, digest, observations, logger)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g.Go(func() error {
		defer cancel()
		return driver.Run(ctx)
	})
	if addr := a.config.GetString("metrics-addr"); addr != "" {
		a.serveMetrics(ctx, g, addr, driver)
	}
	return g.Wait()
}

func (a *app) serveMetrics(ctx context.Context, g *errgroup.Group, addr string, driver *sampler.Driver) {
	logger := a.component("metrics")
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		sampler.NewCollector(driver, sampler.DefaultSummaryQuantiles, logger),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	g.Go(func() error {
		logger.Infof("Serving metrics on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "serving metrics on %s", addr)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
}
