package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"translate-gateway/translation/domain"

	"golang.org/x/time/rate"
)

const DefaultDeepLURL = "https://api-free.deepl.com/v2/translate"

// DeepLProvider chama a API v2 do DeepL (form-urlencoded).
type DeepLProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
	// pacing global das chamadas de saída; nil = sem limite
	limiter *rate.Limiter
}

var (
	_ domain.Provider     = (*DeepLProvider)(nil)
	_ domain.Configurable = (*DeepLProvider)(nil)
)

type DeepLOption func(*DeepLProvider)

func WithEndpoint(u string) DeepLOption {
	return func(p *DeepLProvider) {
		if u != "" {
			p.endpoint = u
		}
	}
}

func WithHTTPClient(c *http.Client) DeepLOption {
	return func(p *DeepLProvider) {
		if c != nil {
			p.client = c
		}
	}
}

// WithRateLimit limita as chamadas ao provedor (todas as origens somadas).
// rps <= 0 desliga.
func WithRateLimit(rps float64, burst int) DeepLOption {
	return func(p *DeepLProvider) {
		if rps <= 0 {
			p.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func NewDeepLProvider(apiKey string, opts ...DeepLOption) *DeepLProvider {
	p := &DeepLProvider{
		apiKey:   strings.TrimSpace(apiKey),
		endpoint: DefaultDeepLURL,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *DeepLProvider) Configured() bool { return p.apiKey != "" }

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

func (p *DeepLProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (domain.Result, error) {
	if !p.Configured() {
		return domain.Result{}, domain.ErrNotConfigured
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return domain.Result{}, fmt.Errorf("deepl: waiting for outbound slot: %w", err)
		}
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", strings.ToUpper(targetLang))
	if sourceLang != "" {
		form.Set("source_lang", strings.ToUpper(sourceLang))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Result{}, fmt.Errorf("deepl: build request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+p.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.Result{}, fmt.Errorf("deepl: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return domain.Result{}, &domain.ProviderError{Status: resp.StatusCode, Body: string(body)}
	}

	var out deeplResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return domain.Result{}, fmt.Errorf("%w: %v", domain.ErrInvalidProviderResponse, err)
	}
	if len(out.Translations) == 0 || out.Translations[0].Text == "" {
		return domain.Result{}, domain.ErrInvalidProviderResponse
	}

	first := out.Translations[0]
	return domain.Result{
		TranslatedText:     first.Text,
		DetectedSourceLang: first.DetectedSourceLanguage,
	}, nil
}
