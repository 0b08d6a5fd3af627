package websearch

import "context"

// Result is a single external search hit.
type Result struct {
	Title      string
	URL        string
	Snippet    string
	DisplayURL string
	Relevance  float64
	Source     string
}

// Response is the outcome of one provider call. Success=false means the
// provider was unreachable or returned an error; Results is empty then.
type Response struct {
	Results  []Result
	Provider string
	Success  bool
}

// Provider performs external web searches.
// Implementations must be thread-safe for concurrent use and must never
// panic or propagate transport errors: failures surface as Success=false.
type Provider interface {
	// Search returns up to limit results for the query.
	// Cancellation and deadlines arrive via ctx; an expired context counts
	// as a failed call, not an error.
	Search(ctx context.Context, query string, limit int) *Response

	// Name identifies the provider in logs and provenance metadata.
	Name() string
}

// Failure builds the canonical failed response for a provider.
func Failure(provider string) *Response {
	return &Response{Provider: provider, Success: false}
}
