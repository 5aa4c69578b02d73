package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"translate-gateway/catalog/domain"
	tdomain "translate-gateway/translation/domain"
)

// GatewayClient chama POST /api/translate de um gateway remoto.
type GatewayClient struct {
	BaseURL string
	Client  *http.Client
	// Header extra em cada chamada (ex.: a chave de cliente do rate limit).
	Header http.Header
}

var _ domain.Translator = (*GatewayClient)(nil)

func NewGatewayClient(baseURL string, timeout time.Duration) *GatewayClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GatewayClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

type gatewayResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
	RetryAfter     int    `json:"retryAfter"`
}

// Translate mapeia as respostas do gateway de volta para os erros de
// translation/domain: 429 vira *RateLimitError, 400 ErrInvalidRequest, 5xx *ProviderError.
func (g *GatewayClient) Translate(ctx context.Context, text, targetLang string) (string, error) {
	payload, err := json.Marshal(map[string]string{"text": text, "targetLang": targetLang})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/api/translate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range g.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var body gatewayResponse
	decodeErr := json.Unmarshal(data, &body)

	switch {
	case resp.StatusCode == http.StatusOK:
		if decodeErr != nil || body.TranslatedText == "" {
			return "", tdomain.ErrInvalidProviderResponse
		}
		return body.TranslatedText, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		secs := body.RetryAfter
		if h, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs == 0 {
			secs = h
		}
		return "", &tdomain.RateLimitError{RetryAfter: time.Duration(secs) * time.Second}
	case resp.StatusCode == http.StatusBadRequest:
		return "", fmt.Errorf("%w: %s", tdomain.ErrInvalidRequest, body.Error)
	default:
		return "", &tdomain.ProviderError{Status: resp.StatusCode, Body: body.Error}
	}
}

// GatewayService é o que DirectTranslator usa do gateway em processo.
type GatewayService interface {
	Translate(ctx context.Context, req tdomain.Request) (tdomain.Result, error)
}

// DirectTranslator usa o gateway no mesmo processo (mesmo rate limit, sem HTTP).
type DirectTranslator struct {
	Service   GatewayService
	ClientKey string
}

var _ domain.Translator = DirectTranslator{}

func (d DirectTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	res, err := d.Service.Translate(ctx, tdomain.Request{
		ClientKey:  d.ClientKey,
		Text:       text,
		TargetLang: targetLang,
	})
	if err != nil {
		return "", err
	}
	return res.TranslatedText, nil
}
