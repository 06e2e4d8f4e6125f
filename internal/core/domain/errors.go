// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Errores de validación del target y la configuración.
var (
	ErrEmptyTarget   = errors.New("target domain is empty")
	ErrInvalidDomain = errors.New("invalid target domain")
	ErrNoPorts       = errors.New("no probe ports configured")
	ErrInvalidPort   = errors.New("invalid probe port")
	ErrNoSources     = errors.New("no sources configured")
)

// FetchError describe el fallo de una consulta a una fuente: un status HTTP
// no exitoso o un fallo de transporte. No es un crash; la fuente contribuye
// cero candidates y el run continúa.
type FetchError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: fetch failed with status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: fetch failed: %v", e.Service, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError describe un payload malformado de una fuente. La fuente
// contribuye cero candidates y el run continúa.
type ParseError struct {
	Service string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Service, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
