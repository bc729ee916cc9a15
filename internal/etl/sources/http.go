package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
)

// ── HTTP Source ─────────────────────────────────────────────
// Fetches files relative to a base URL, e.g. a static bucket website or
// an internal artifact server.

// TypeHTTP is the registry key of the HTTP source.
const TypeHTTP = "http"

func init() {
	etl.RegisterSource(etl.SourceSpec{
		Type:  TypeHTTP,
		Label: "HTTP base URL",
		ConfigFields: []etl.ConfigField{
			{Key: "baseUrl", Label: "Base URL", Required: true, Help: "Files are fetched from <baseUrl>/<file name>"},
			{Key: "headers", Label: "Headers", Help: "JSON object of headers (e.g., {\"Authorization\": \"Bearer xxx\"})"},
		},
	}, func(_ context.Context, cfg etl.SourceConfig) (etl.Source, error) {
		base, _ := cfg["baseUrl"].(string)
		headers := map[string]string{}
		switch h := cfg["headers"].(type) {
		case string:
			if h != "" {
				if err := json.Unmarshal([]byte(h), &headers); err != nil {
					return nil, fmt.Errorf("parse headers: %w", err)
				}
			}
		case map[string]string:
			headers = h
		}
		return NewHTTPSource(base, headers, nil)
	})
}

// HTTPSource performs one GET per file.
type HTTPSource struct {
	base    *url.URL
	headers map[string]string
	client  *http.Client
}

// NewHTTPSource validates baseURL. A nil client gets a 5 minute timeout.
func NewHTTPSource(baseURL string, headers map[string]string, client *http.Client) (*HTTPSource, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseUrl is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https: %s", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &HTTPSource{base: u, headers: headers, client: client}, nil
}

func (s *HTTPSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{Type: TypeHTTP, Label: "HTTP base URL"}
}

func (s *HTTPSource) Location() string { return s.base.String() }

func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	target := s.base.JoinPath(name).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", etl.ErrInputMissing, target)
	case resp.StatusCode >= 400:
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
	}
	return resp.Body, nil
}
