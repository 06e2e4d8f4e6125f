// internal/adapters/output/json.go
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tedbot101/Stalker-Recon/internal/core/domain"
	"github.com/tedbot101/Stalker-Recon/internal/platform/domainutil"
	"github.com/tedbot101/Stalker-Recon/internal/platform/logx"
)

// JSONSink persiste los artefactos del run en ficheros JSON por dominio:
// {dominio}_all_subdomains.json y {dominio}_liveliness_check_results.json.
type JSONSink struct {
	dir    string
	logger logx.Logger
}

// NewJSONSink crea un sink que escribe bajo el directorio dado.
func NewJSONSink(dir string, logger logx.Logger) *JSONSink {
	if dir == "" {
		dir = "."
	}
	return &JSONSink{
		dir:    dir,
		logger: logger.With("component", "json-sink"),
	}
}

// subdomainsFile es el artefacto de la fase de agregación.
type subdomainsFile struct {
	Date       string              `json:"date"`
	Subdomains map[string][]string `json:"subdomains"`
}

// livenessEntry es una entrada del artefacto de liveness. StatusCode es nil
// para targets inalcanzables.
type livenessEntry struct {
	URL        string `json:"url"`
	Status     string `json:"status"`
	StatusCode *int   `json:"status_code"`
}

// WriteSubdomains persiste el conjunto combinado agrupado por fuente, cada
// lista en orden lexicográfico, más la lista de dominios raíz derivada.
func (s *JSONSink) WriteSubdomains(target domain.Target, set *domain.CandidateSet) error {
	payload := subdomainsFile{
		Date:       time.Now().Format("2006-01-02 15:04:05"),
		Subdomains: set.BySource(),
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s_all_subdomains.json", target.Root))
	if err := s.writeJSON(path, payload); err != nil {
		return err
	}

	s.logger.Info("subdomains written", "file", path, "count", set.Len())

	// Artefacto suplementario: dominios raíz (apex) de todos los hallazgos.
	roots := domainutil.RegisteredSet(set.Hosts())
	rootsPath := filepath.Join(s.dir, fmt.Sprintf("%s_root_domains.json", target.Root))
	return s.writeJSON(rootsPath, roots)
}

// WriteLiveness persiste el batch ordenado por URL.
func (s *JSONSink) WriteLiveness(target domain.Target, batch *domain.ProbeResultBatch) error {
	entries := make([]livenessEntry, 0, batch.Len())
	for _, r := range batch.Sorted() {
		entry := livenessEntry{
			URL:    r.Target.URL(),
			Status: r.StatusText(),
		}
		if r.Outcome != domain.StateUnreachable {
			code := r.StatusCode
			entry.StatusCode = &code
		}
		entries = append(entries, entry)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s_liveliness_check_results.json", target.Root))
	if err := s.writeJSON(path, entries); err != nil {
		return err
	}

	s.logger.Info("liveness results written", "file", path, "count", len(entries))
	return nil
}

// writeJSON crea el directorio si hace falta y codifica con indentación.
func (s *JSONSink) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
