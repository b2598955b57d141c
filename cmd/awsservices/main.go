package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nextops/aws-services/config"
	"github.com/nextops/aws-services/internal/bootstrap"
	"github.com/nextops/aws-services/internal/logging"
	"github.com/nextops/aws-services/internal/metrics"
	"github.com/nextops/aws-services/internal/schedule"
	"github.com/nextops/aws-services/internal/workflow"
)

const serviceName = "aws-services"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()

	if err != nil {
		log.Printf("awsservices: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("awsservices", flag.ContinueOnError)
	fs.SetOutput(stdout)
	list := fs.Bool("list", false, "print all AWS service names and exit")
	write := fs.Bool("write", false, "write AWS service names to the graph store")
	serve := fs.Bool("serve", false, "serve health, metrics and sync endpoints and sync on SYNC_SCHEDULE")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if !*list && !*write && !*serve {
		fs.Usage()
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.App.LogLevel))

	cat, err := bootstrap.BuildCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cat.Close()

	// --list wins over the other modes and never touches the store.
	if *list {
		if *write || *serve {
			logger.Warn("main", "--list given together with --write/--serve, only listing")
		}
		names, err := workflow.New(cat.Provider, nil).ListServices(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	store, err := bootstrap.OpenStore(ctx, cfg.Graph, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error("main", err)
		}
	}()

	reg := metrics.NewRegistry()
	wf := workflow.New(cat.Provider, store,
		workflow.WithLogger(logger),
		workflow.WithMetrics(reg),
		workflow.WithWorkers(cfg.Sync.Workers),
	)

	if *write {
		report, err := wf.RunSync(ctx)
		if err == nil || report.Aborted {
			fmt.Fprintln(stdout, report.String())
		}
		if err != nil {
			return err
		}
	}

	if *serve {
		return serveHTTP(ctx, cfg, bootstrap.RouterDeps{
			ServiceName: serviceName,
			Version:     cfg.App.Version,
			Store:       store,
			Workflow:    wf,
			Refresher:   cat.Refresher(),
			Metrics:     reg,
			Logger:      logger,
		}, wf, logger)
	}
	return nil
}

func serveHTTP(ctx context.Context, cfg *config.Config, deps bootstrap.RouterDeps, syncer schedule.Syncer, logger *logging.Logger) error {
	bootstrap.SetGinMode(cfg.App.Environment)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           bootstrap.BuildRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler := schedule.NewScheduler(syncer, logger)
	if err := scheduler.Start(ctx, cfg.Sync.Schedule); err != nil {
		return err
	}
	defer scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("main", "listening addr=%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	logger.Info("main", "server stopped")
	return nil
}
