// internal/sources/virustotal/virustotal.go
package virustotal

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

const sourceName = "virustotal"

// VirusTotal consulta la relación subdomains de la API v3. Autenticación por
// header propio (x-apikey); la API pública limita 4 requests por minuto, de
// ahí la rotación de keys.
type VirusTotal struct {
	client *httpclient.Client
	keeper *quota.Keeper
	logger logx.Logger
}

// New crea una nueva instancia de la fuente VirusTotal.
func New(client *httpclient.Client, keeper *quota.Keeper, logger logx.Logger) *VirusTotal {
	return &VirusTotal{
		client: client,
		keeper: keeper,
		logger: logger.With("source", sourceName),
	}
}

// Name retorna el nombre de la fuente.
func (v *VirusTotal) Name() string {
	return sourceName
}

// Service retorna el identificador registrado en el quota keeper.
func (v *VirusTotal) Service() string {
	return sourceName
}

// Fetch consulta VirusTotal y retorna los subdominios conocidos del dominio.
func (v *VirusTotal) Fetch(ctx context.Context, target string) ([]string, error) {
	key, err := v.keeper.Acquire(ctx, sourceName)
	if err != nil {
		return nil, &domain.FetchError{Service: sourceName, Err: err}
	}

	url := fmt.Sprintf("https://www.virustotal.com/api/v3/domains/%s/subdomains?limit=40", target)
	headers := map[string]string{"x-apikey": key}

	v.logger.Debug("fetching virustotal data", "target", target, "url", url)

	resp, err := v.client.Get(ctx, url, headers)
	if err != nil {
		return nil, &domain.FetchError{Service: sourceName, Err: err}
	}
	defer resp.Body.Close()

	if statusErr := httpclient.CheckStatus(resp); statusErr != nil {
		if hint, ok := errors.RetryAfter(statusErr); ok {
			v.keeper.Suspend(sourceName, hint)
		}
		return nil, &domain.FetchError{
			Service:    sourceName,
			StatusCode: resp.StatusCode,
			Err:        statusErr,
		}
	}

	var body subdomainsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &domain.ParseError{Service: sourceName, Err: err}
	}

	names := ParseObjects(body.Data)
	v.logger.Info("virustotal fetch completed", "target", target, "names", len(names))
	return names, nil
}

// ParseObjects extrae los ids de los objetos domain. Un objeto sin id no
// contribuye nada.
func ParseObjects(objects []domainObject) []string {
	names := make([]string, 0, len(objects))
	for _, obj := range objects {
		if obj.ID != "" {
			names = append(names, obj.ID)
		}
	}
	return names
}

// subdomainsResponse representa la respuesta de /domains/{d}/subdomains.
type subdomainsResponse struct {
	Data []domainObject `json:"data"`
}

type domainObject struct {
	ID string `json:"id"`
}
