// internal/sources/certspotter/certspotter.go
package certspotter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tedbot101/Stalker-Recon/internal/core/domain"
	"github.com/tedbot101/Stalker-Recon/internal/platform/errors"
	"github.com/tedbot101/Stalker-Recon/internal/platform/httpclient"
	"github.com/tedbot101/Stalker-Recon/internal/platform/logx"
	"github.com/tedbot101/Stalker-Recon/internal/platform/quota"
)

const sourceName = "certspotter"

// CertSpotter consulta la API de issuances de SSLMate. Autenticación Bearer;
// cada request pasa por el quota keeper para rotación de keys.
type CertSpotter struct {
	client *httpclient.Client
	keeper *quota.Keeper
	logger logx.Logger
}

// New crea una nueva instancia de la fuente CertSpotter.
func New(client *httpclient.Client, keeper *quota.Keeper, logger logx.Logger) *CertSpotter {
	return &CertSpotter{
		client: client,
		keeper: keeper,
		logger: logger.With("source", sourceName),
	}
}

// Name retorna el nombre de la fuente.
func (c *CertSpotter) Name() string {
	return sourceName
}

// Service retorna el identificador registrado en el quota keeper.
func (c *CertSpotter) Service() string {
	return sourceName
}

// Fetch consulta CertSpotter y retorna los dns_names de las issuances.
func (c *CertSpotter) Fetch(ctx context.Context, target string) ([]string, error) {
	key, err := c.keeper.Acquire(ctx, sourceName)
	if err != nil {
		return nil, &domain.FetchError{Service: sourceName, Err: err}
	}

	url := fmt.Sprintf(
		"https://api.certspotter.com/v1/issuances?domain=%s&include_subdomains=true&expand=dns_names",
		target,
	)
	headers := map[string]string{"Authorization": "Bearer " + key}

	c.logger.Debug("fetching certspotter data", "target", target, "url", url)

	resp, err := c.client.Get(ctx, url, headers)
	if err != nil {
		return nil, &domain.FetchError{Service: sourceName, Err: err}
	}
	defer resp.Body.Close()

	if statusErr := httpclient.CheckStatus(resp); statusErr != nil {
		// Un 429 suspende el servicio el tiempo que el servidor pida;
		// ese slot no cuenta como consumido.
		if hint, ok := errors.RetryAfter(statusErr); ok {
			c.keeper.Suspend(sourceName, hint)
		}
		return nil, &domain.FetchError{
			Service:    sourceName,
			StatusCode: resp.StatusCode,
			Err:        statusErr,
		}
	}

	var issuances []issuance
	if err := json.NewDecoder(resp.Body).Decode(&issuances); err != nil {
		return nil, &domain.ParseError{Service: sourceName, Err: err}
	}

	names := ParseIssuances(issuances)
	c.logger.Info("certspotter fetch completed", "target", target, "names", len(names))
	return names, nil
}

// ParseIssuances aplana los dns_names de todas las issuances. Una issuance
// sin dns_names no contribuye nada.
func ParseIssuances(issuances []issuance) []string {
	var names []string
	for _, iss := range issuances {
		names = append(names, iss.DNSNames...)
	}
	return names
}

// issuance representa una issuance de CertSpotter.
type issuance struct {
	DNSNames []string `json:"dns_names"`
}
