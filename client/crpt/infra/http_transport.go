package infra

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"crpt-gateway/client/crpt/domain"
)

// Resposta da API é pequena (um JSON com "value" ou uma mensagem de erro).
const maxResponseBody = 1 << 20

type HTTPTransportConfig struct {
	Timeout time.Duration
	// TLSVerify=false só para desenvolvimento (certificado autoassinado).
	TLSVerify *bool
}

// HTTPTransport faz a troca HTTP com net/http.
type HTTPTransport struct {
	client *http.Client
}

func NewHTTPTransport(cfg HTTPTransportConfig) *HTTPTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.TLSVerify != nil && !*cfg.TLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &HTTPTransport{client: &http.Client{Timeout: cfg.Timeout, Transport: transport}}
}

// NewHTTPTransportWithClient usa um *http.Client já pronto (ex.: httptest.Server.Client()).
func NewHTTPTransportWithClient(c *http.Client) *HTTPTransport {
	if c == nil {
		c = http.DefaultClient
	}
	return &HTTPTransport{client: c}
}

func (t *HTTPTransport) Do(ctx context.Context, r domain.Request) (domain.Response, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, bytes.NewReader(r.Body))
	if err != nil {
		return domain.Response{}, fmt.Errorf("build request: %w", err)
	}
	for k, v := range r.Header {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return domain.Response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return domain.Response{}, fmt.Errorf("read response: %w", err)
	}
	truncated := len(body) > maxResponseBody
	if truncated {
		body = body[:maxResponseBody]
	}
	return domain.Response{StatusCode: resp.StatusCode, Body: body, Truncated: truncated}, nil
}
