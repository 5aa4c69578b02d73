// Package deeplfake imita o endpoint /v2/translate do DeepL para testes
// manuais e de integração do gateway.
package deeplfake

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
)

// Server responde "[<TARGET>] <texto>". Com FailStatus != 0 responde sempre esse status.
type Server struct {
	FailStatus int
	Logger     *slog.Logger

	calls atomic.Int64
}

func (s *Server) Calls() int64 { return s.calls.Load() }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/translate", s.translate)
	return mux
}

type translation struct {
	DetectedSourceLanguage string `json:"detected_source_language"`
	Text                   string `json:"text"`
}

func (s *Server) translate(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}

	if !strings.HasPrefix(r.Header.Get("Authorization"), "DeepL-Auth-Key ") {
		http.Error(w, `{"message":"Authorization failure"}`, http.StatusForbidden)
		return
	}
	if s.FailStatus != 0 {
		log.Info("fake deepl failing on purpose", "status", s.FailStatus)
		http.Error(w, `{"message":"fake failure"}`, s.FailStatus)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, `{"message":"bad form"}`, http.StatusBadRequest)
		return
	}

	text, target := r.PostForm.Get("text"), r.PostForm.Get("target_lang")
	if text == "" || target == "" {
		http.Error(w, `{"message":"Parameter 'text' or 'target_lang' not specified."}`, http.StatusBadRequest)
		return
	}
	source := r.PostForm.Get("source_lang")
	if source == "" {
		source = "JA"
	}

	log.Info("fake deepl translate", "target_lang", target, "chars", len([]rune(text)))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]translation{
		"translations": {{DetectedSourceLanguage: source, Text: "[" + target + "] " + text}},
	})
}
