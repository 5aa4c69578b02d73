package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"translate-gateway/catalog/domain"
	srcdomain "translate-gateway/source/domain"
	srcinfra "translate-gateway/source/infra"
)

// SourceLoader é o que RemoteBundles usa do resolver de fontes.
type SourceLoader interface {
	Load(ctx context.Context, fn func(ctx context.Context, c srcdomain.Candidate) error) (srcdomain.Candidate, error)
}

// RemoteBundles baixa <fonte>/<lang>.json da fonte corrente do resolver.
// Rede e 5xx trocam de fonte; 404 é ErrBundleNotFound; JSON inválido não troca.
type RemoteBundles struct {
	Sources SourceLoader
	Client  *http.Client
}

var _ domain.BundleSource = (*RemoteBundles)(nil)

func NewRemoteBundles(sources SourceLoader, timeout time.Duration) *RemoteBundles {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteBundles{Sources: sources, Client: &http.Client{Timeout: timeout}}
}

func (b *RemoteBundles) Bundle(ctx context.Context, lang string) (domain.Tree, error) {
	var tree domain.Tree
	_, err := b.Sources.Load(ctx, func(ctx context.Context, c srcdomain.Candidate) error {
		t, err := b.fetch(ctx, srcinfra.ManifestURL(c, domain.NormalizeLang(lang)+".json"))
		if err != nil {
			return err
		}
		tree = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

func (b *RemoteBundles) fetch(ctx context.Context, url string) (domain.Tree, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, srcdomain.SourceFailure(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrBundleNotFound, url)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, srcdomain.SourceFailure(fmt.Errorf("GET %s: status %d", url, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, srcdomain.SourceFailure(err)
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", url, err)
	}
	return normalizeTree(tree), nil
}
