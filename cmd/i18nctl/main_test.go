package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"translate-gateway/catalog/infra"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	*httptest.Server
	calls atomic.Int32
	fail  atomic.Bool
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()
	bundles, err := infra.DefaultBundles()
	require.NoError(t, err)

	g := &fakeGateway{}
	r := chi.NewRouter()
	r.Mount("/locales", (&infra.BundleServer{Bundles: bundles}).Routes())
	r.Post("/api/translate", func(w http.ResponseWriter, r *http.Request) {
		g.calls.Add(1)
		if g.fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Translation service temporarily unavailable"}`))
			return
		}
		var body struct{ Text, TargetLang string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"translatedText":     "[" + strings.ToUpper(body.TargetLang) + "] " + body.Text,
			"detectedSourceLang": "JA",
		})
	})
	g.Server = httptest.NewServer(r)
	t.Cleanup(g.Close)
	return g
}

func execute(t *testing.T, g *fakeGateway, prefFile string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LANG", "")
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--gateway", g.URL, "--pref-file", prefFile, "--rps", "0"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestUseThenGet(t *testing.T) {
	g := newFakeGateway(t)
	pref := filepath.Join(t.TempDir(), "lang.json")

	out, err := execute(t, g, pref, "use", "ko")
	require.NoError(t, err)
	assert.Equal(t, "ko (10/10 keys)\n", out)
	assert.EqualValues(t, 10, g.calls.Load())

	saved, err := os.ReadFile(pref)
	require.NoError(t, err)
	assert.Contains(t, string(saved), `"lang":"ko"`)

	out, err = execute(t, g, pref, "get", "camera.start")
	require.NoError(t, err)
	assert.Equal(t, "[KO] カメラを開始\n", out)
}

func TestBootstrap_BundledLanguageMakesNoGatewayCall(t *testing.T) {
	g := newFakeGateway(t)

	out, err := execute(t, g, filepath.Join(t.TempDir(), "lang.json"), "bootstrap", "--lang", "en", "--browser", "")
	require.NoError(t, err)
	assert.Equal(t, "en\n", out)
	assert.Zero(t, g.calls.Load())
}

func TestUse_GatewayDownKeepsLanguage(t *testing.T) {
	g := newFakeGateway(t)
	g.fail.Store(true)
	pref := filepath.Join(t.TempDir(), "lang.json")

	out, err := execute(t, g, pref, "use", "ko")
	assert.Error(t, err)
	assert.Equal(t, "still on ja\n", out)

	_, statErr := os.Stat(pref)
	assert.True(t, os.IsNotExist(statErr), "failed change is not saved")
}

func TestResolve_SkipsDeadSource(t *testing.T) {
	g := newFakeGateway(t)

	out, err := execute(t, g, filepath.Join(t.TempDir(), "lang.json"),
		"--sources", "http://127.0.0.1:1/locales,"+g.URL+"/locales", "resolve")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "  0 127.0.0.1:1"))
	assert.True(t, strings.HasPrefix(lines[1], "* 1 "))
}

func TestKeys(t *testing.T) {
	g := newFakeGateway(t)

	out, err := execute(t, g, filepath.Join(t.TempDir(), "lang.json"), "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "app.title\n")
	assert.Contains(t, out, "result.disclaimer\n")
}

func TestBrowserLanguage(t *testing.T) {
	t.Setenv("LANG", "pt_BR.UTF-8")
	assert.Equal(t, "pt-BR", browserLanguage())
	t.Setenv("LANG", "C")
	assert.Empty(t, browserLanguage())
}
