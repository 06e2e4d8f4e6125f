// internal/core/ports/sink.go
package ports

import (
	"github.com/tedbot101/Stalker-Recon/internal/core/domain"
)

// ResultSink persiste los artefactos finales de un run. El core lo invoca
// exactamente una vez por fase lógica y no reintenta en caso de fallo de
// escritura: un fallo aquí es fatal para el run completo.
type ResultSink interface {
	// WriteSubdomains persiste el conjunto combinado con procedencia.
	WriteSubdomains(target domain.Target, set *domain.CandidateSet) error

	// WriteLiveness persiste el batch de resultados de sondeo.
	WriteLiveness(target domain.Target, batch *domain.ProbeResultBatch) error
}
