// Package infra contém o Prober HTTP usado pelo resolver de fontes.
package infra

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"translate-gateway/source/domain"
)

const DefaultManifest = "manifest.json"

// HTTPProber faz HEAD em <raiz>/<manifest> sem cache. Qualquer status < 400 conta como alcançável.
type HTTPProber struct {
	Client   *http.Client
	Manifest string
}

var _ domain.Prober = HTTPProber{}

func NewHTTPProber(manifest string, timeout time.Duration) HTTPProber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return HTTPProber{
		Client:   &http.Client{Timeout: timeout},
		Manifest: manifest,
	}
}

func (p HTTPProber) Probe(ctx context.Context, c domain.Candidate) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, ManifestURL(c, p.manifest()), nil)
	if err != nil {
		return fmt.Errorf("probe %s: %w", c, err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", c, err)
	}
	resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("probe %s: status %d", c, resp.StatusCode)
	}
	return nil
}

func (p HTTPProber) manifest() string {
	if p.Manifest == "" {
		return DefaultManifest
	}
	return p.Manifest
}

// ManifestURL junta a raiz da candidata com um nome de arquivo.
func ManifestURL(c domain.Candidate, name string) string {
	return strings.TrimRight(c.URL, "/") + "/" + strings.TrimLeft(name, "/")
}
