package deeplfake

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"translate-gateway/translation/domain"
	"translate-gateway/translation/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_WithDeepLProvider(t *testing.T) {
	fake := &Server{}
	srv := httptest.NewServer(fake.Handler())
	defer srv.Close()

	p := infra.NewDeepLProvider("test-key", infra.WithEndpoint(srv.URL+"/v2/translate"))
	res, err := p.Translate(context.Background(), "言語", "JA", "EN")
	require.NoError(t, err)
	assert.Equal(t, domain.Result{TranslatedText: "[EN] 言語", DetectedSourceLang: "JA"}, res)
	assert.EqualValues(t, 1, fake.Calls())
}

func TestServer_FailStatus(t *testing.T) {
	srv := httptest.NewServer((&Server{FailStatus: http.StatusServiceUnavailable}).Handler())
	defer srv.Close()

	p := infra.NewDeepLProvider("test-key", infra.WithEndpoint(srv.URL+"/v2/translate"))
	_, err := p.Translate(context.Background(), "x", "JA", "EN")

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusServiceUnavailable, pe.Status)
}

func TestServer_RequiresAuthHeader(t *testing.T) {
	srv := httptest.NewServer((&Server{}).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v2/translate", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
