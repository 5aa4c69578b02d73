// Package domain define o cache de traduções do cliente: um mapa aninhado por
// idioma, endereçado por chaves pontuadas ("result.salary.title").
package domain

import (
	"errors"
	"slices"
	"strings"
	"sync"
)

// BaseLanguage é o idioma dos textos-fonte e o último degrau do fallback.
const BaseLanguage = "ja"

var (
	// ErrKeyNotFound: a chave não existe no idioma pedido. Nunca chega à UI;
	// GetText absorve e devolve a própria chave.
	ErrKeyNotFound = errors.New("catalog: key not found")

	// ErrLanguageUnavailable: nenhuma chave faltante pôde ser traduzida.
	ErrLanguageUnavailable = errors.New("catalog: language unavailable")
)

// Tree é o formato de um bundle: folhas string, nós map[string]any.
type Tree = map[string]any

// Cache guarda uma árvore por idioma. Seguro para uso concorrente.
type Cache struct {
	mu    sync.RWMutex
	trees map[string]Tree
}

func NewCache() *Cache {
	return &Cache{trees: make(map[string]Tree)}
}

func split(key string) []string {
	return strings.Split(key, ".")
}

// Lookup percorre a árvore de lang. Sem fallback.
func (c *Cache) Lookup(lang, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var node any = c.trees[NormalizeLang(lang)]
	for _, seg := range split(key) {
		m, ok := node.(Tree)
		if !ok {
			return "", ErrKeyNotFound
		}
		if node, ok = m[seg]; !ok {
			return "", ErrKeyNotFound
		}
	}
	s, ok := node.(string)
	if !ok {
		return "", ErrKeyNotFound
	}
	return s, nil
}

// Set grava value em key criando os segmentos intermediários. Um segmento que
// hoje é folha vira nó (última escrita vence).
func (c *Cache) Set(lang, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lang = NormalizeLang(lang)
	node, ok := c.trees[lang]
	if !ok {
		node = Tree{}
		c.trees[lang] = node
	}
	segs := split(key)
	for _, seg := range segs[:len(segs)-1] {
		next, ok := node[seg].(Tree)
		if !ok {
			next = Tree{}
			node[seg] = next
		}
		node = next
	}
	node[segs[len(segs)-1]] = value
}

// Merge copia todas as folhas de tree para lang.
func (c *Cache) Merge(lang string, tree Tree) {
	for _, key := range flatten("", tree) {
		c.Set(lang, key.path, key.value)
	}
}

// Has indica se lang tem alguma entrada.
func (c *Cache) Has(lang string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.trees[NormalizeLang(lang)]
	return ok
}

func (c *Cache) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.trees))
	for lang := range c.trees {
		out = append(out, lang)
	}
	slices.Sort(out)
	return out
}

// Keys devolve as chaves pontuadas de lang, ordenadas.
func (c *Cache) Keys(lang string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	leaves := flatten("", c.trees[NormalizeLang(lang)])
	out := make([]string, len(leaves))
	for i, l := range leaves {
		out[i] = l.path
	}
	slices.Sort(out)
	return out
}

// Tree devolve uma cópia da árvore de lang (nil se ausente).
func (c *Cache) Tree(lang string) Tree {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.trees[NormalizeLang(lang)]
	if !ok {
		return nil
	}
	return CloneTree(t)
}

type leaf struct {
	path  string
	value string
}

func flatten(prefix string, t Tree) []leaf {
	var out []leaf
	for k, v := range t {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		switch v := v.(type) {
		case string:
			out = append(out, leaf{path, v})
		case Tree:
			out = append(out, flatten(path, v)...)
		}
	}
	return out
}

// CloneTree copia os nós de t; folhas são strings e não precisam de cópia.
func CloneTree(t Tree) Tree {
	out := make(Tree, len(t))
	for k, v := range t {
		if sub, ok := v.(Tree); ok {
			out[k] = CloneTree(sub)
			continue
		}
		out[k] = v
	}
	return out
}

// NormalizeLang reduz "EN-us" a "en-us"; vazio continua vazio.
func NormalizeLang(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// ErrBundleNotFound: não existe bundle estático para o idioma.
var ErrBundleNotFound = errors.New("catalog: bundle not found")
