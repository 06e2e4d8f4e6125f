// internal/adapters/output/csv.go
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tedbot101/Stalker-Recon/internal/core/domain"
	"github.com/tedbot101/Stalker-Recon/internal/platform/logx"
)

// CSVSink exporta los mismos artefactos en CSV, pensado para importar en
// hojas de cálculo. Opcional; se encadena tras el JSONSink con Multi.
type CSVSink struct {
	dir    string
	logger logx.Logger
}

// NewCSVSink crea un sink CSV bajo el directorio dado.
func NewCSVSink(dir string, logger logx.Logger) *CSVSink {
	if dir == "" {
		dir = "."
	}
	return &CSVSink{
		dir:    dir,
		logger: logger.With("component", "csv-sink"),
	}
}

// WriteSubdomains exporta host,fuentes por fila.
func (s *CSVSink) WriteSubdomains(target domain.Target, set *domain.CandidateSet) error {
	path := filepath.Join(s.dir, fmt.Sprintf("%s_all_subdomains.csv", target.Root))

	rows := [][]string{{"host", "sources"}}
	for _, c := range set.Candidates() {
		rows = append(rows, []string{c.Host, joinSources(c.Sources)})
	}

	return s.writeCSV(path, rows)
}

// WriteLiveness exporta url,status,status_code por fila.
func (s *CSVSink) WriteLiveness(target domain.Target, batch *domain.ProbeResultBatch) error {
	path := filepath.Join(s.dir, fmt.Sprintf("%s_liveliness_check_results.csv", target.Root))

	rows := [][]string{{"url", "status", "status_code"}}
	for _, r := range batch.Sorted() {
		code := ""
		if r.Outcome != domain.StateUnreachable {
			code = strconv.Itoa(r.StatusCode)
		}
		rows = append(rows, []string{r.Target.URL(), r.StatusText(), code})
	}

	return s.writeCSV(path, rows)
}

func (s *CSVSink) writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}

	s.logger.Debug("csv written", "file", path, "rows", len(rows)-1)
	return nil
}

func joinSources(sources []string) string {
	out := ""
	for i, src := range sources {
		if i > 0 {
			out += ";"
		}
		out += src
	}
	return out
}
