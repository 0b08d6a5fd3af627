// Copyright 2025 Recallkit Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package duck implements websearch.Provider against the DuckDuckGo
// Instant Answer API. The API is unauthenticated and returns a JSON
// document with an abstract plus related topics; both are mapped to
// search results.
package duck

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/recallkit/recall/websearch"
)

const (
	defaultBaseURL = "https://api.duckduckgo.com"
	defaultTimeout = 8 * time.Second
	providerName   = "duckduckgo"
)

// Provider queries the DuckDuckGo Instant Answer API.
type Provider struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ websearch.Provider = (*Provider)(nil)

// Option configures a Provider during construction.
type Option func(*Provider) error

// WithBaseURL overrides the API endpoint. Used by tests to point at a
// local server.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) error {
		if baseURL == "" {
			return fmt.Errorf("base URL cannot be empty")
		}
		p.baseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithHTTPClient overrides the HTTP client, including its timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) error {
		if client == nil {
			return fmt.Errorf("HTTP client cannot be nil")
		}
		p.client = client
		return nil
	}
}

// WithLogger sets a custom logger for the provider.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		p.logger = logger
		return nil
	}
}

// NewProvider creates a DuckDuckGo-backed search provider.
func NewProvider(opts ...Option) (*Provider, error) {
	p := &Provider{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default().With("component", "duck-provider"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Name identifies the provider in logs and provenance metadata.
func (p *Provider) Name() string {
	return providerName
}

// instantAnswer mirrors the subset of the Instant Answer schema we consume.
type instantAnswer struct {
	Heading       string         `json:"Heading"`
	AbstractText  string         `json:"AbstractText"`
	AbstractURL   string         `json:"AbstractURL"`
	RelatedTopics []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	Text     string         `json:"Text"`
	FirstURL string         `json:"FirstURL"`
	Topics   []relatedTopic `json:"Topics"`
}

// Search queries the Instant Answer API. It never returns an error;
// transport and decoding failures produce a failed Response so callers
// can fall back to local knowledge.
func (p *Provider) Search(ctx context.Context, query string, limit int) *websearch.Response {
	if limit <= 0 {
		limit = 5
	}

	endpoint := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1",
		p.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		p.logger.Warn("building search request failed", "err", err)
		return websearch.Failure(providerName)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("search request failed", "query", query, "err", err)
		return websearch.Failure(providerName)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("search returned unexpected status",
			"query", query, "status", resp.StatusCode)
		return websearch.Failure(providerName)
	}

	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		p.logger.Warn("decoding search response failed", "query", query, "err", err)
		return websearch.Failure(providerName)
	}

	results := collect(&answer, limit)
	p.logger.Debug("search completed", "query", query, "results", len(results))

	return &websearch.Response{
		Results:  results,
		Provider: providerName,
		Success:  true,
	}
}

// collect flattens the instant answer document into ranked results.
// The abstract, when present, always ranks first.
func collect(answer *instantAnswer, limit int) []websearch.Result {
	results := make([]websearch.Result, 0, limit)

	if answer.AbstractText != "" {
		results = append(results, websearch.Result{
			Title:      answer.Heading,
			URL:        answer.AbstractURL,
			Snippet:    answer.AbstractText,
			DisplayURL: displayURL(answer.AbstractURL),
			Relevance:  1.0,
			Source:     providerName,
		})
	}

	flat := flattenTopics(answer.RelatedTopics)
	for i, topic := range flat {
		if len(results) >= limit {
			break
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		results = append(results, websearch.Result{
			Title:      topicTitle(topic.Text),
			URL:        topic.FirstURL,
			Snippet:    topic.Text,
			DisplayURL: displayURL(topic.FirstURL),
			Relevance:  0.9 - float64(i)*0.05,
			Source:     providerName,
		})
	}

	return results
}

// flattenTopics expands one level of nested topic groups. Disambiguation
// pages nest their entries under a category topic.
func flattenTopics(topics []relatedTopic) []relatedTopic {
	flat := make([]relatedTopic, 0, len(topics))
	for _, t := range topics {
		if len(t.Topics) > 0 {
			flat = append(flat, t.Topics...)
			continue
		}
		flat = append(flat, t)
	}
	return flat
}

// topicTitle extracts a short title from the topic text, which reads
// "Title - description" in the Instant Answer schema.
func topicTitle(text string) string {
	if idx := strings.Index(text, " - "); idx > 0 {
		return text[:idx]
	}
	return text
}

func displayURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
