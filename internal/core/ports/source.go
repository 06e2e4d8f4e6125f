// internal/core/ports/source.go
package ports

import (
	"context"
)

// Source es el port primario para todas las fuentes de inteligencia
// (certificate transparency, OSINT). Cada adapter construye su request
// específico y parsea su propio esquema JSON.
type Source interface {
	// Name retorna el nombre único de la fuente (ej: "crtsh", "censys")
	Name() string

	// Fetch consulta la fuente y retorna hostnames crudos, sin filtrar.
	// Los wildcards NO se filtran aquí: eso es una etapa del pipeline,
	// no una responsabilidad de la fuente.
	Fetch(ctx context.Context, domain string) ([]string, error)
}

// KeyedSource es implementado por fuentes que requieren credenciales y por
// tanto pasan por el rotador de keys antes de cada request.
type KeyedSource interface {
	Source

	// Service retorna el identificador de servicio registrado en el quota keeper.
	Service() string
}
