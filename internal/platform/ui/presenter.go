// internal/platform/ui/presenter.go
package ui

import (
	"fmt"
	"sort"

	"github.com/pterm/pterm"

	"github.com/tedbot101/Stalker-Recon/internal/core/usecases"
)

// Presenter renderiza el arranque y el resumen de un run en terminal usando
// pterm. Toda la salida es cosmética; los artefactos persistidos viven en los
// sinks.
type Presenter struct{}

// NewPresenter crea una nueva instancia del presenter.
func NewPresenter() *Presenter {
	return &Presenter{}
}

// Start imprime el header del run.
func (p *Presenter) Start(domain string, ports []int, rateLimit float64) {
	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("Stalker-Recon - Subdomain Discovery Pipeline")

	pterm.Println()
	pterm.DefaultSection.Println("Run Configuration")
	pterm.Printf("  Target: %s\n", pterm.Cyan(domain))
	pterm.Printf("  Ports: %v\n", ports)
	pterm.Printf("  Rate limit: %.1f req/s\n", rateLimit)
	pterm.Println()
}

// Summary imprime la tabla de resultados por fuente y los totales del run.
func (p *Presenter) Summary(s *usecases.RunSummary) {
	pterm.DefaultSection.Println("Results: " + s.Target)

	data := pterm.TableData{{"Source", "Candidates", "Status"}}
	for _, name := range sortedKeys(s.PerSource) {
		status := "ok"
		if msg, failed := s.SourceErrors[name]; failed {
			status = "failed: " + truncate(msg, 60)
		}
		data = append(data, []string{name, fmt.Sprintf("%d", s.PerSource[name]), status})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		// Render solo falla con terminales rotas; el resumen no es crítico
		return
	}

	pterm.Println()
	if s.ProbeSkipped {
		pterm.Warning.Printf("No subdomains found for %s, liveness phase skipped\n", s.Target)
		return
	}

	pterm.Success.Printf("Merged %d unique subdomains, probed %d targets, %d live (%.2fs)\n",
		s.Merged, s.Probed, s.Live, s.Duration.Seconds())
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
