// cmd/stalker/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tedbot101/Stalker-Recon/internal/adapters/output"
	"github.com/tedbot101/Stalker-Recon/internal/core/domain"
	"github.com/tedbot101/Stalker-Recon/internal/core/ports"
	"github.com/tedbot101/Stalker-Recon/internal/core/usecases"
	"github.com/tedbot101/Stalker-Recon/internal/platform/config"
	"github.com/tedbot101/Stalker-Recon/internal/platform/httpclient"
	"github.com/tedbot101/Stalker-Recon/internal/platform/logx"
	"github.com/tedbot101/Stalker-Recon/internal/platform/quota"
	"github.com/tedbot101/Stalker-Recon/internal/platform/retry"
	"github.com/tedbot101/Stalker-Recon/internal/platform/ui"
	"github.com/tedbot101/Stalker-Recon/internal/probe"
	"github.com/tedbot101/Stalker-Recon/internal/sources/censys"
	"github.com/tedbot101/Stalker-Recon/internal/sources/certspotter"
	"github.com/tedbot101/Stalker-Recon/internal/sources/crtsh"
	"github.com/tedbot101/Stalker-Recon/internal/sources/virustotal"
)

var (
	// Rellenables con -ldflags en build
	version = "dev"
	commit  = "none"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: configuration load failed: %v\n", err)
		os.Exit(2)
	}

	if cfg.PrintVersion {
		fmt.Printf("stalker %s (%s)\n", version, commit)
		return
	}

	logger := logx.New()
	logger.Info("Stalker-Recon starting",
		"version", version,
		"rate_limit", cfg.RateLimit,
		"ports", fmt.Sprintf("%v", cfg.Ports),
		"debug", cfg.Debug,
	)

	ctx, cancel := rootContextWithSignals(cfg.Timeout())
	defer cancel()

	domains, err := cfg.Domains()
	if err != nil {
		logger.Err(err, "phase", "config")
		os.Exit(2)
	}

	orch, presenter, err := buildPipeline(cfg, logger)
	if err != nil {
		logger.Err(err, "phase", "build")
		os.Exit(2)
	}

	exitCode := 0
	for _, d := range domains {
		target := domain.NewTarget(d, cfg.Ports)
		presenter.Start(target.Root, target.Ports, cfg.RateLimit)

		summary, runErr := orch.Run(ctx, *target)
		if runErr != nil {
			logger.Err(runErr, "phase", "run", "target", d)
			exitCode = 1
			if ctx.Err() != nil {
				break // interrupted, no point starting the next domain
			}
			continue
		}

		presenter.Summary(summary)
	}

	os.Exit(exitCode)
}

// buildPipeline cablea el pipeline completo a partir de la configuración.
func buildPipeline(cfg config.Config, logger logx.Logger) (*usecases.Orchestrator, *ui.Presenter, error) {
	client, err := httpclient.New(httpclient.Config{
		Timeout:   30 * time.Second,
		UserAgent: cfg.UserAgent,
		ProxyURL:  cfg.ProxyURL,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	keeper := quota.NewKeeper(0, logger)

	// crt.sh no requiere credenciales y siempre está habilitada.
	sources := []ports.Source{crtsh.New(client, logger)}

	keyed := map[string]func() ports.Source{
		"certspotter": func() ports.Source { return certspotter.New(client, keeper, logger) },
		"censys":      func() ports.Source { return censys.New(client, keeper, logger) },
		"virustotal":  func() ports.Source { return virustotal.New(client, keeper, logger) },
	}

	for name, build := range keyed {
		creds := cfg.Services[name]
		if len(creds.Keys) == 0 {
			logger.Warn("source disabled, no API credentials configured", "source", name)
			continue
		}
		// Un servicio con keys declaradas pero inválidas es un error de
		// configuración fatal, no un fallo silencioso en runtime.
		if err := keeper.Register(name, creds.Budget, creds.Keys); err != nil {
			return nil, nil, err
		}
		sources = append(sources, build())
	}

	prober, err := probe.New(probe.Config{
		RateLimit: cfg.RateLimit,
		UserAgent: cfg.UserAgent,
		ProxyURL:  cfg.ProxyURL,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	var sink ports.ResultSink = output.NewJSONSink(cfg.OutputDir, logger)
	if cfg.CSV {
		sink = output.Multi(sink, output.NewCSVSink(cfg.OutputDir, logger))
	}

	orch := usecases.NewOrchestrator(usecases.OrchestratorOptions{
		Sources:    sources,
		Retrier:    retry.NewExecutor(retry.DefaultMaxAttempts, retry.DefaultBaseWait, retry.DefaultMaxWait, logger),
		Prober:     prober,
		Sink:       sink,
		Logger:     logger,
		MaxWorkers: cfg.Workers,
		Debug:      cfg.Debug,
	})

	return orch, ui.NewPresenter(), nil
}

// rootContextWithSignals crea el contexto raíz con timeout opcional y
// cancelación por señales del sistema.
func rootContextWithSignals(timeout time.Duration) (context.Context, context.CancelFunc) {
	var base context.Context
	var baseCancel context.CancelFunc

	if timeout > 0 {
		base, baseCancel = context.WithTimeout(context.Background(), timeout)
	} else {
		base, baseCancel = context.WithCancel(context.Background())
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-ch:
			baseCancel()
		case <-base.Done():
		}
	}()

	cleanup := func() {
		signal.Stop(ch)
		baseCancel()
	}

	return base, cleanup
}
