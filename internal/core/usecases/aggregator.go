// internal/core/usecases/aggregator.go
package usecases

import (
	"github.com/tedbot101/Stalker-Recon/internal/core/domain"
	"github.com/tedbot101/Stalker-Recon/internal/platform/logx"
)

// Aggregator fusiona los resultados de todas las fuentes en un conjunto
// deduplicado y sin wildcards. El filtrado de wildcards es una etapa del
// pipeline: las fuentes pueden retornar wildcards legítimamente.
type Aggregator struct {
	logger logx.Logger
}

// NewAggregator crea una nueva instancia del agregador.
func NewAggregator(logger logx.Logger) *Aggregator {
	if logger == nil {
		logger = logx.New()
	}
	return &Aggregator{logger: logger.With("component", "aggregator")}
}

// Combine hace la unión de todos los conjuntos y descarta cualquier hostname
// con marcador wildcard. La operación es idempotente: combinar el mismo
// conjunto dos veces produce el mismo resultado.
func (a *Aggregator) Combine(sets ...*domain.CandidateSet) *domain.CandidateSet {
	merged := domain.NewCandidateSet()
	dropped := 0

	for _, set := range sets {
		if set == nil {
			continue
		}
		for _, c := range set.Candidates() {
			if c.IsWildcard() {
				dropped++
				continue
			}
			merged.AddCandidate(c)
		}
	}

	a.logger.Debug("candidate sets combined",
		"sets", len(sets),
		"merged", merged.Len(),
		"wildcards_dropped", dropped,
	)

	return merged
}
