// internal/sources/censys/censys.go
package censys

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tedbot101/Stalker-Recon/internal/core/domain"
	"github.com/tedbot101/Stalker-Recon/internal/platform/errors"
	"github.com/tedbot101/Stalker-Recon/internal/platform/httpclient"
	"github.com/tedbot101/Stalker-Recon/internal/platform/logx"
	"github.com/tedbot101/Stalker-Recon/internal/platform/quota"
)

const sourceName = "censys"

// Censys consulta la API de búsqueda de certificados de Censys. Autenticación
// Basic: cada credencial rotada tiene la forma "api_id:api_secret".
type Censys struct {
	client *httpclient.Client
	keeper *quota.Keeper
	logger logx.Logger
}

// New crea una nueva instancia de la fuente Censys.
func New(client *httpclient.Client, keeper *quota.Keeper, logger logx.Logger) *Censys {
	return &Censys{
		client: client,
		keeper: keeper,
		logger: logger.With("source", sourceName),
	}
}

// Name retorna el nombre de la fuente.
func (c *Censys) Name() string {
	return sourceName
}

// Service retorna el identificador registrado en el quota keeper.
func (c *Censys) Service() string {
	return sourceName
}

// Fetch consulta Censys y retorna los names de los certificados encontrados.
func (c *Censys) Fetch(ctx context.Context, target string) ([]string, error) {
	key, err := c.keeper.Acquire(ctx, sourceName)
	if err != nil {
		return nil, &domain.FetchError{Service: sourceName, Err: err}
	}

	query := url.QueryEscape(fmt.Sprintf("names: %s", target))
	reqURL := fmt.Sprintf("https://search.censys.io/api/v2/certificates/search?q=%s&per_page=100", query)
	headers := map[string]string{
		"Authorization": "Basic " + base64.StdEncoding.EncodeToString([]byte(key)),
	}

	c.logger.Debug("fetching censys data", "target", target, "url", reqURL)

	resp, err := c.client.Get(ctx, reqURL, headers)
	if err != nil {
		return nil, &domain.FetchError{Service: sourceName, Err: err}
	}
	defer resp.Body.Close()

	if statusErr := httpclient.CheckStatus(resp); statusErr != nil {
		if hint, ok := errors.RetryAfter(statusErr); ok {
			c.keeper.Suspend(sourceName, hint)
		}
		return nil, &domain.FetchError{
			Service:    sourceName,
			StatusCode: resp.StatusCode,
			Err:        statusErr,
		}
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &domain.ParseError{Service: sourceName, Err: err}
	}

	names := ParseHits(body.Result.Hits)
	c.logger.Info("censys fetch completed", "target", target, "names", len(names))
	return names, nil
}

// ParseHits aplana los names de todos los hits. Un hit sin names no
// contribuye nada.
func ParseHits(hits []hit) []string {
	var names []string
	for _, h := range hits {
		names = append(names, h.Names...)
	}
	return names
}

// searchResponse representa la respuesta de búsqueda de Censys v2.
type searchResponse struct {
	Result struct {
		Hits []hit `json:"hits"`
	} `json:"result"`
}

type hit struct {
	Names []string `json:"names"`
}
