// internal/adapters/output/multi.go
package output

import (
	"github.com/tedbot101/Stalker-Recon/internal/core/domain"
	"github.com/tedbot101/Stalker-Recon/internal/core/ports"
)

// MultiSink encadena varios sinks. El primer fallo de escritura corta y se
// propaga: los fallos de sink son fatales para el run.
type MultiSink struct {
	sinks []ports.ResultSink
}

// Multi construye un sink compuesto.
func Multi(sinks ...ports.ResultSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) WriteSubdomains(target domain.Target, set *domain.CandidateSet) error {
	for _, s := range m.sinks {
		if err := s.WriteSubdomains(target, set); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) WriteLiveness(target domain.Target, batch *domain.ProbeResultBatch) error {
	for _, s := range m.sinks {
		if err := s.WriteLiveness(target, batch); err != nil {
			return err
		}
	}
	return nil
}
