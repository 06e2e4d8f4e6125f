// internal/core/domain/target.go
package domain

import (
	"fmt"

	"github.com/tedbot101/Stalker-Recon/internal/platform/validator"
)

// Target representa el objetivo del reconocimiento.
type Target struct {
	// Root es el dominio raíz objetivo
	Root string

	// Ports son los puertos a sondear en la fase de liveness
	Ports []int
}

// NewTarget crea un target normalizado.
func NewTarget(root string, ports []int) *Target {
	return &Target{
		Root:  validator.NormalizeDomain(root),
		Ports: append([]int(nil), ports...),
	}
}

// Validate verifica que el target sea válido.
func (t *Target) Validate() error {
	if t.Root == "" {
		return ErrEmptyTarget
	}

	t.Root = validator.NormalizeDomain(t.Root)
	if !validator.IsDomain(t.Root) {
		return fmt.Errorf("%w: %s", ErrInvalidDomain, t.Root)
	}

	if len(t.Ports) == 0 {
		return ErrNoPorts
	}
	for _, p := range t.Ports {
		if !validator.IsPort(p) {
			return fmt.Errorf("%w: %d", ErrInvalidPort, p)
		}
	}

	return nil
}

// String retorna una representación legible del target.
func (t *Target) String() string {
	return fmt.Sprintf("Target{root=%s, ports=%v}", t.Root, t.Ports)
}
