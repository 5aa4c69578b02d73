// Package infra contém as implementações concretas do cliente de i18n: bundles
// (embutidos, servidos e remotos), tradutores e armazenamento da preferência.
package infra

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"translate-gateway/catalog/domain"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed bundles
var defaultBundles embed.FS

// DefaultBundles devolve os bundles que acompanham o binário.
func DefaultBundles() (*StaticBundles, error) {
	sub, err := fs.Sub(defaultBundles, "bundles")
	if err != nil {
		return nil, err
	}
	return LoadBundles(sub)
}

// LoadBundles lê <lang>.json, <lang>.yaml/.yml e <lang>.toml da raiz de fsys.
// Arquivos com outras extensões são ignorados.
func LoadBundles(fsys fs.FS) (*StaticBundles, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("catalog: read bundles: %w", err)
	}

	trees := make(map[string]domain.Tree)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := path.Ext(e.Name())
		unmarshal := unmarshalerFor(ext)
		if unmarshal == nil {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", e.Name(), err)
		}
		var tree domain.Tree
		if err := unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("catalog: parse %s: %w", e.Name(), err)
		}
		lang := domain.NormalizeLang(strings.TrimSuffix(e.Name(), ext))
		if _, dup := trees[lang]; dup {
			return nil, fmt.Errorf("catalog: duplicate bundle for %q", lang)
		}
		trees[lang] = normalizeTree(tree)
	}
	return &StaticBundles{trees: trees}, nil
}

func unmarshalerFor(ext string) func([]byte, any) error {
	switch strings.ToLower(ext) {
	case ".json":
		return json.Unmarshal
	case ".yaml", ".yml":
		return yaml.Unmarshal
	case ".toml":
		return toml.Unmarshal
	default:
		return nil
	}
}

// normalizeTree converte os nós em domain.Tree e as folhas escalares em string.
func normalizeTree(in map[string]any) domain.Tree {
	out := make(domain.Tree, len(in))
	for k, v := range in {
		switch v := v.(type) {
		case map[string]any:
			out[k] = normalizeTree(v)
		case string:
			out[k] = v
		case nil:
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}

// StaticBundles é um conjunto fixo de bundles em memória.
type StaticBundles struct {
	trees map[string]domain.Tree
}

var _ domain.BundleSource = (*StaticBundles)(nil)

func (b *StaticBundles) Bundle(_ context.Context, lang string) (domain.Tree, error) {
	t, ok := b.trees[domain.NormalizeLang(lang)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrBundleNotFound, lang)
	}
	return domain.CloneTree(t), nil
}

// Languages devolve os idiomas com bundle, ordenados.
func (b *StaticBundles) Languages() []string {
	out := make([]string, 0, len(b.trees))
	for l := range b.trees {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}
