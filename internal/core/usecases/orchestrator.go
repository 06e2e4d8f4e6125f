// internal/core/usecases/orchestrator.go
package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/tedbot101/Stalker-Recon/internal/core/domain"
	"github.com/tedbot101/Stalker-Recon/internal/core/ports"
	"github.com/tedbot101/Stalker-Recon/internal/platform/logx"
	"github.com/tedbot101/Stalker-Recon/internal/platform/retry"
)

// LivenessProber es la fase de verificación consumida por el orchestrator.
type LivenessProber interface {
	Probe(ctx context.Context, targets []domain.ProbeTarget) *domain.ProbeResultBatch
}

// Orchestrator coordina el pipeline completo: fuentes en paralelo,
// agregación, sondeo de liveness y persistencia. Los fallos por fuente y por
// target quedan aislados; solo un fallo de escritura del sink o una
// configuración inválida son fatales para el run.
type Orchestrator struct {
	sources    []ports.Source
	retrier    *retry.Executor
	aggregator *Aggregator
	prober     LivenessProber
	sink       ports.ResultSink
	logger     logx.Logger

	maxWorkers int
	debug      bool
}

// OrchestratorOptions configura el orchestrator.
type OrchestratorOptions struct {
	Sources    []ports.Source
	Retrier    *retry.Executor
	Prober     LivenessProber
	Sink       ports.ResultSink
	Logger     logx.Logger
	MaxWorkers int
	Debug      bool
}

// RunSummary resume un run para presentación y tests.
type RunSummary struct {
	Target       string
	PerSource    map[string]int
	SourceErrors map[string]string
	Merged       int
	Probed       int
	Live         int
	ProbeSkipped bool
	Duration     time.Duration
}

// NewOrchestrator crea una nueva instancia del orchestrator.
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 4
	}
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.Retrier == nil {
		opts.Retrier = retry.NewExecutor(0, 0, 0, opts.Logger)
	}

	return &Orchestrator{
		sources:    opts.Sources,
		retrier:    opts.Retrier,
		aggregator: NewAggregator(opts.Logger),
		prober:     opts.Prober,
		sink:       opts.Sink,
		logger:     opts.Logger.With("component", "orchestrator"),
		maxWorkers: opts.MaxWorkers,
		debug:      opts.Debug,
	}
}

// Run ejecuta el pipeline contra el target.
func (o *Orchestrator) Run(ctx context.Context, target domain.Target) (*RunSummary, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if len(o.sources) == 0 {
		return nil, domain.ErrNoSources
	}

	start := time.Now()
	summary := &RunSummary{
		Target:       target.Root,
		PerSource:    make(map[string]int),
		SourceErrors: make(map[string]string),
	}

	o.logger.Info("starting scan",
		"target", target.Root,
		"sources", len(o.sources),
		"workers", o.maxWorkers,
	)

	// Fase 1: fuentes en paralelo, fallos aislados
	sets := o.fetchAll(ctx, target.Root, summary)

	// Fase 2: unión deduplicada sin wildcards
	merged := o.aggregator.Combine(sets...)
	summary.Merged = merged.Len()

	// Cero fuentes con datos no es un error: se reporta y el run termina
	// limpio sin fase de liveness.
	if merged.Len() == 0 {
		summary.ProbeSkipped = true
		summary.Duration = time.Since(start)
		o.logger.Info("no subdomains found, skipping liveness phase", "target", target.Root)
		return summary, nil
	}

	if err := o.sink.WriteSubdomains(target, merged); err != nil {
		return summary, err
	}

	// Fase 3: liveness sobre el producto hosts x puertos
	targets := domain.BuildProbeTargets(merged.Hosts(), target.Ports)
	batch := o.prober.Probe(ctx, targets)
	summary.Probed = batch.Len()
	summary.Live = batch.LiveOnly().Len()

	// En modo no-debug solo se conservan los Live
	if !o.debug {
		batch = batch.LiveOnly()
	}

	if err := o.sink.WriteLiveness(target, batch); err != nil {
		return summary, err
	}

	summary.Duration = time.Since(start)
	o.logger.Info("scan completed",
		"target", target.Root,
		"merged", summary.Merged,
		"probed", summary.Probed,
		"live", summary.Live,
		"duration_ms", summary.Duration.Milliseconds(),
	)

	return summary, ctx.Err()
}

// fetchAll ejecuta todas las fuentes con un semáforo de workers. Cada fetch
// pasa por el retry executor; el fallo de una fuente nunca bloquea al resto.
func (o *Orchestrator) fetchAll(ctx context.Context, root string, summary *RunSummary) []*domain.CandidateSet {
	sem := make(chan struct{}, o.maxWorkers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	sets := make([]*domain.CandidateSet, 0, len(o.sources))

	for _, source := range o.sources {
		wg.Add(1)
		go func(src ports.Source) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			var names []string
			err := o.retrier.Run(ctx, "source "+src.Name(), func(ctx context.Context) error {
				var fetchErr error
				names, fetchErr = src.Fetch(ctx, root)
				return fetchErr
			})

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				o.logger.Warn("source failed, continuing with partial results",
					"source", src.Name(),
					"error", err.Error(),
				)
				summary.SourceErrors[src.Name()] = err.Error()
				summary.PerSource[src.Name()] = 0
				return
			}

			set := domain.NewCandidateSet()
			for _, name := range names {
				set.Add(name, src.Name())
			}
			summary.PerSource[src.Name()] = set.Len()
			sets = append(sets, set)

			o.logger.Info("source completed",
				"source", src.Name(),
				"candidates", set.Len(),
			)
		}(source)
	}

	wg.Wait()
	return sets
}
