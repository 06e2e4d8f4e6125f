// internal/core/domain/probe.go
package domain

import (
	"fmt"
	"sort"
)

// ProbeState modela la máquina de estados de un target individual:
// Pending -> Requesting -> {Live | NonLive | Unreachable} (terminales).
type ProbeState int

const (
	StatePending ProbeState = iota
	StateRequesting
	StateLive
	StateNonLive
	StateUnreachable
)

// String retorna la representación legible del estado.
func (s ProbeState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRequesting:
		return "requesting"
	case StateLive:
		return "live"
	case StateNonLive:
		return "non-live"
	case StateUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Terminal reporta si el estado es terminal.
func (s ProbeState) Terminal() bool {
	return s == StateLive || s == StateNonLive || s == StateUnreachable
}

// ProbeTarget es un par (hostname, puerto) derivado del producto cartesiano
// CandidateSet x puertos configurados.
type ProbeTarget struct {
	Host string
	Port int
}

// URL construye la URL de sondeo del target.
func (t ProbeTarget) URL() string {
	return fmt.Sprintf("http://%s:%d", t.Host, t.Port)
}

// ProbeResult es el resultado inmutable de sondear un target.
type ProbeResult struct {
	Target ProbeTarget

	// Outcome es el estado terminal alcanzado.
	Outcome ProbeState

	// StatusCode es el código HTTP observado (0 si no hubo respuesta).
	StatusCode int

	// Detail describe el fallo de conexión para targets Unreachable.
	Detail string
}

// StatusText retorna el texto de estado persistido en el artefacto de salida.
func (r ProbeResult) StatusText() string {
	switch r.Outcome {
	case StateLive:
		return "live"
	case StateNonLive:
		return fmt.Sprintf("status code %d", r.StatusCode)
	case StateUnreachable:
		return fmt.Sprintf("could not be reached: %s", r.Detail)
	default:
		return r.Outcome.String()
	}
}

// ProbeResultBatch es la secuencia de resultados de una ejecución completa.
// Se produce una vez, se persiste y se descarta; nunca se muta después.
type ProbeResultBatch struct {
	Results []ProbeResult
}

// Append añade un resultado al batch.
func (b *ProbeResultBatch) Append(r ProbeResult) {
	b.Results = append(b.Results, r)
}

// Len retorna el número de resultados.
func (b *ProbeResultBatch) Len() int {
	return len(b.Results)
}

// LiveOnly retorna un batch conteniendo solo resultados Live. Es el filtro
// aplicado en modo no-debug; en modo debug se conservan todos los outcomes.
func (b *ProbeResultBatch) LiveOnly() *ProbeResultBatch {
	filtered := &ProbeResultBatch{Results: make([]ProbeResult, 0, len(b.Results))}
	for _, r := range b.Results {
		if r.Outcome == StateLive {
			filtered.Append(r)
		}
	}
	return filtered
}

// Sorted retorna los resultados ordenados por URL, solo para serialización.
func (b *ProbeResultBatch) Sorted() []ProbeResult {
	out := append([]ProbeResult(nil), b.Results...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Target.Host == out[j].Target.Host {
			return out[i].Target.Port < out[j].Target.Port
		}
		return out[i].Target.Host < out[j].Target.Host
	})
	return out
}

// BuildProbeTargets deriva el producto cartesiano hosts x puertos.
func BuildProbeTargets(hosts []string, ports []int) []ProbeTarget {
	targets := make([]ProbeTarget, 0, len(hosts)*len(ports))
	for _, h := range hosts {
		for _, p := range ports {
			targets = append(targets, ProbeTarget{Host: h, Port: p})
		}
	}
	return targets
}
