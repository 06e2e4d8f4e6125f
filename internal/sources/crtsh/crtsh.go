// internal/sources/crtsh/crtsh.go
package crtsh

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tedbot101/Stalker-Recon/internal/core/domain"
	"github.com/tedbot101/Stalker-Recon/internal/platform/httpclient"
	"github.com/tedbot101/Stalker-Recon/internal/platform/logx"
)

const sourceName = "crtsh"

// CRT consulta la base de datos crt.sh para descubrir hostnames observados
// en certificados emitidos. No requiere autenticación.
type CRT struct {
	client *httpclient.Client
	logger logx.Logger
}

// New crea una nueva instancia de la fuente crt.sh.
func New(client *httpclient.Client, logger logx.Logger) *CRT {
	return &CRT{
		client: client,
		logger: logger.With("source", sourceName),
	}
}

// Name retorna el nombre de la fuente.
func (c *CRT) Name() string {
	return sourceName
}

// Fetch consulta crt.sh y retorna los hostnames crudos de los certificados.
func (c *CRT) Fetch(ctx context.Context, target string) ([]string, error) {
	url := fmt.Sprintf("https://crt.sh/?q=%%25.%s&output=json", target)
	c.logger.Debug("fetching crt.sh data", "target", target, "url", url)

	resp, err := c.client.Get(ctx, url, nil)
	if err != nil {
		return nil, &domain.FetchError{Service: sourceName, Err: err}
	}
	defer resp.Body.Close()

	if statusErr := httpclient.CheckStatus(resp); statusErr != nil {
		return nil, &domain.FetchError{
			Service:    sourceName,
			StatusCode: resp.StatusCode,
			Err:        statusErr,
		}
	}

	var records []certRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		// crt.sh devuelve HTML en lugar de JSON cuando está sobrecargado
		return nil, &domain.ParseError{Service: sourceName, Err: err}
	}

	names := ParseRecords(records)
	c.logger.Info("crt.sh fetch completed", "target", target, "names", len(names))
	return names, nil
}

// ParseRecords extrae hostnames de los registros de certificados.
// name_value puede contener múltiples nombres separados por saltos de línea;
// un registro sin name_value no contribuye nada, no es un fallo.
func ParseRecords(records []certRecord) []string {
	names := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.NameValue == "" {
			continue
		}
		for _, name := range strings.Split(rec.NameValue, "\n") {
			name = strings.TrimSpace(name)
			if name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// certRecord representa un registro de certificado de crt.sh.
type certRecord struct {
	NameValue string `json:"name_value"`
}
