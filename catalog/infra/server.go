package infra

import (
	"encoding/json"
	"net/http"

	"translate-gateway/catalog/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Manifest é o corpo de manifest.json: o arquivo sondado pelo HTTPProber.
type Manifest struct {
	Base      string   `json:"base"`
	Languages []string `json:"languages"`
}

// BundleServer publica bundles em HTTP, o que torna o próprio gateway uma
// fonte candidata:
//
//	GET|HEAD /manifest.json
//	GET|HEAD /{lang}.json
type BundleServer struct {
	Bundles *StaticBundles
	Base    string
}

func (s *BundleServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.GetHead)
	r.Get("/manifest.json", s.manifest)
	r.Get("/{lang}.json", s.bundle)
	return r
}

func (s *BundleServer) manifest(w http.ResponseWriter, r *http.Request) {
	base := s.Base
	if base == "" {
		base = domain.BaseLanguage
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, Manifest{Base: base, Languages: s.Bundles.Languages()})
}

func (s *BundleServer) bundle(w http.ResponseWriter, r *http.Request) {
	tree, err := s.Bundles.Bundle(r.Context(), chi.URLParam(r, "lang"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, tree)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
