// internal/core/domain/candidate.go
package domain

import (
	"sort"
	"strings"
)

// Candidate representa un hostname descubierto junto con su procedencia.
// El valor siempre está normalizado: minúsculas, sin espacios, nunca vacío.
type Candidate struct {
	Host    string
	Sources []string
}

// NewCandidate crea un candidate normalizado. Retorna nil si el hostname
// queda vacío tras la normalización.
func NewCandidate(host, source string) *Candidate {
	host = NormalizeHost(host)
	if host == "" {
		return nil
	}

	c := &Candidate{Host: host}
	c.AddSource(source)
	return c
}

// AddSource añade una fuente a la procedencia sin duplicados.
func (c *Candidate) AddSource(source string) {
	if source == "" {
		return
	}
	for _, s := range c.Sources {
		if s == source {
			return
		}
	}
	c.Sources = append(c.Sources, source)
}

// IsWildcard reporta si el hostname contiene un marcador wildcard.
func (c *Candidate) IsWildcard() bool {
	return strings.Contains(c.Host, "*")
}

// NormalizeHost normaliza un hostname: minúsculas, sin espacios, sin punto final.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimSuffix(host, ".")
}

// CandidateSet es un conjunto de candidates indexado por hostname
// (case-insensitive). La inserción es idempotente: un host repetido solo
// acumula procedencia.
type CandidateSet struct {
	members map[string]*Candidate
}

// NewCandidateSet crea un conjunto vacío.
func NewCandidateSet() *CandidateSet {
	return &CandidateSet{members: make(map[string]*Candidate)}
}

// Add inserta un hostname con su fuente. Entradas vacías se descartan.
func (s *CandidateSet) Add(host, source string) {
	c := NewCandidate(host, source)
	if c == nil {
		return
	}

	if existing, ok := s.members[c.Host]; ok {
		for _, src := range c.Sources {
			existing.AddSource(src)
		}
		return
	}
	s.members[c.Host] = c
}

// AddCandidate inserta un candidate ya construido, fusionando procedencia.
func (s *CandidateSet) AddCandidate(c *Candidate) {
	if c == nil || c.Host == "" {
		return
	}
	if existing, ok := s.members[c.Host]; ok {
		for _, src := range c.Sources {
			existing.AddSource(src)
		}
		return
	}
	s.members[c.Host] = &Candidate{
		Host:    c.Host,
		Sources: append([]string(nil), c.Sources...),
	}
}

// Contains reporta si el hostname pertenece al conjunto.
func (s *CandidateSet) Contains(host string) bool {
	_, ok := s.members[NormalizeHost(host)]
	return ok
}

// Len retorna el número de candidates.
func (s *CandidateSet) Len() int {
	return len(s.members)
}

// Hosts retorna los hostnames en orden lexicográfico. El orden interno del
// conjunto es irrelevante; solo se ordena en la frontera de serialización.
func (s *CandidateSet) Hosts() []string {
	hosts := make([]string, 0, len(s.members))
	for h := range s.members {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// Candidates retorna los candidates ordenados por hostname.
func (s *CandidateSet) Candidates() []*Candidate {
	out := make([]*Candidate, 0, len(s.members))
	for _, c := range s.members {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Host < out[j].Host })
	return out
}

// BySource agrupa los hostnames por fuente, cada lista ordenada.
func (s *CandidateSet) BySource() map[string][]string {
	grouped := make(map[string][]string)
	for _, c := range s.members {
		for _, src := range c.Sources {
			grouped[src] = append(grouped[src], c.Host)
		}
	}
	for src := range grouped {
		sort.Strings(grouped[src])
	}
	return grouped
}
