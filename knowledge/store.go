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


package knowledge

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/recallkit/recall/core"
	"github.com/recallkit/recall/score"
	"github.com/recallkit/recall/storage"
	"github.com/recallkit/recall/vectorize"
)

const (
	// DefaultThreshold is the minimum relevance for a search hit.
	// Tuned against the additive score scale; see the score package.
	DefaultThreshold = 0.3

	// DefaultMaxResults bounds a search result list when the caller
	// doesn't say otherwise.
	DefaultMaxResults = 5

	// defaultKeywordCount is how many keywords Add derives when none
	// are supplied.
	defaultKeywordCount = 5
)

// SearchOptions control a single Search call. Zero values select the
// package defaults; a zero Threshold therefore cannot be requested.
type SearchOptions struct {
	MaxResults int
	Threshold  float64
	Category   string // case-insensitive exact match filter when non-empty
}

// Store holds the full knowledge corpus in memory and scores all of it
// per query. Mutations write through to the backing repository before
// the in-memory view changes; usage-count increments persist best-effort.
type Store struct {
	repository storage.KnowledgeRepository
	vectorizer *vectorize.Vectorizer
	logger     *slog.Logger

	mu      sync.RWMutex
	entries []*core.KnowledgeEntry // insertion order, ties break on it
	index   map[string]int         // entry ID -> position in entries
}

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore creates a knowledge store over the given repository and
// vectorizer. Call Load before serving queries.
func NewStore(
	repository storage.KnowledgeRepository,
	vectorizer *vectorize.Vectorizer,
	opts ...Option,
) (*Store, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if vectorizer == nil {
		return nil, ErrVectorizerRequired
	}

	s := &Store{
		repository: repository,
		vectorizer: vectorizer,
		logger:     slog.Default(),
		index:      make(map[string]int),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Vectorizer returns the vectorizer this store embeds with.
func (s *Store) Vectorizer() *vectorize.Vectorizer {
	return s.vectorizer
}

// Load replaces the in-memory corpus with the repository's contents.
// Entry IDs embed creation time plus a monotonic counter, so the
// repository's ID order restores the original insertion order even for
// entries created in the same millisecond.
func (s *Store) Load(ctx context.Context) error {
	entries, err := s.repository.ListEntries(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.index = make(map[string]int, len(entries))
	for i, entry := range entries {
		s.index[entry.ID] = i
	}
	s.logger.Debug("knowledge corpus loaded", "entries", len(entries))
	return nil
}

// Search scores every entry against the query and returns hits with
// relevance at or above the threshold, sorted descending, truncated to
// MaxResults. Every entry that meets the threshold has its usage counter
// incremented, including entries the truncation then drops.
func (s *Store) Search(ctx context.Context, query string, opts SearchOptions) []*core.SearchResult {
	return s.SearchWithMonitor(ctx, query, opts, nil)
}

// SearchWithMonitor is Search with stage callbacks.
// The monitor receives callbacks at each stage of the scoring process.
func (s *Store) SearchWithMonitor(ctx context.Context, query string, opts SearchOptions, monitor SearchMonitor) []*core.SearchResult {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}

	monitor.Start(query)

	// One embedding per query; entries are scored against it.
	queryVec := s.vectorizer.Embed(query)
	monitor.AfterEmbedding(queryVec)

	s.mu.Lock()

	results := make([]*core.SearchResult, 0, opts.MaxResults)
	passed := make([]*core.KnowledgeEntry, 0)
	for _, entry := range s.entries {
		if opts.Category != "" && !strings.EqualFold(entry.Category, opts.Category) {
			continue
		}

		relevance, matchType, matched := score.Relevance(query, queryVec, entry)
		monitor.EntryScored(entry.ID, relevance, matchType)
		if relevance < opts.Threshold {
			continue
		}

		// Usage counts every qualifying entry, delivered or not.
		entry.Metadata.UsageCount++
		passed = append(passed, entry)
		monitor.ThresholdPassed(entry.ID, relevance)

		results = append(results, &core.SearchResult{
			Entry:        entry,
			Relevance:    relevance,
			MatchType:    matchType,
			MatchedTerms: matched,
		})
	}

	s.mu.Unlock()

	// Entries were visited in insertion order, so a stable sort keeps
	// that order among equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}

	if len(passed) > 0 {
		if _, err := s.repository.PutEntries(ctx, passed...); err != nil {
			s.logger.Warn("persisting usage counts failed", "entries", len(passed), "err", err)
		}
	}

	s.logger.Debug("search completed",
		"query", query, "qualified", len(passed), "returned", len(results))
	monitor.Finish(results)
	return results
}

// Add creates a manual entry. When no keywords are given they default to
// the most frequent non-stopword tokens of the title and content. The
// embedding is computed against the current idf table, which may be stale
// until the next RefreshCorpus.
func (s *Store) Add(ctx context.Context, title, content, category string, keywords ...string) (*core.KnowledgeEntry, error) {
	entry := &core.KnowledgeEntry{
		Title:    title,
		Content:  content,
		Category: category,
		Keywords: keywords,
		Metadata: core.Metadata{
			Confidence: 1.0,
			SourceType: core.SourceManual,
		},
	}
	return s.AddEntry(ctx, entry)
}

// AddEntry appends a prepared entry, assigning its ID and embedding.
// Callers that promote learned knowledge use this to control confidence
// and source type.
func (s *Store) AddEntry(ctx context.Context, entry *core.KnowledgeEntry) (*core.KnowledgeEntry, error) {
	if len(entry.Keywords) == 0 {
		entry.Keywords = DeriveKeywords(entry.Title+" "+entry.Content, defaultKeywordCount)
	}
	if entry.ID == "" {
		entry.ID = core.NewEntryID()
	}
	if entry.Metadata.LastUpdated.IsZero() {
		entry.Metadata.LastUpdated = time.Now()
	}
	entry.Embedding = s.vectorizer.Embed(entry.Title + " " + entry.Content)

	if err := core.ValidateKnowledgeEntry(entry); err != nil {
		return nil, err
	}
	if _, err := s.repository.PutEntries(ctx, entry); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.index[entry.ID] = len(s.entries)
	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	s.logger.Debug("knowledge entry added",
		"id", entry.ID, "category", entry.Category, "sourceType", entry.Metadata.SourceType)
	return entry, nil
}

// Get retrieves an entry by ID.
// Returns storage.ErrNotFound if the entry doesn't exist.
func (s *Store) Get(id string) (*core.KnowledgeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.entries[i], nil
}

// List returns all entries in insertion order.
func (s *Store) List() []*core.KnowledgeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.KnowledgeEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len reports the number of entries in the corpus.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Update mutates an existing entry in place, keyed by entry.ID. The
// embedding is regenerated only when the content changed; metadata other
// than LastUpdated is taken from the incoming entry as-is.
func (s *Store) Update(ctx context.Context, entry *core.KnowledgeEntry) error {
	s.mu.RLock()
	i, ok := s.index[entry.ID]
	var existing *core.KnowledgeEntry
	if ok {
		existing = s.entries[i]
	}
	s.mu.RUnlock()
	if !ok {
		return storage.ErrNotFound
	}

	if entry.Content != existing.Content {
		entry.Embedding = s.vectorizer.Embed(entry.Title + " " + entry.Content)
	} else if len(entry.Embedding) == 0 {
		entry.Embedding = existing.Embedding
	}
	entry.Metadata.LastUpdated = time.Now()

	if err := core.ValidateKnowledgeEntry(entry); err != nil {
		return err
	}
	if _, err := s.repository.PutEntries(ctx, entry); err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[i] = entry
	s.mu.Unlock()

	s.logger.Debug("knowledge entry updated", "id", entry.ID)
	return nil
}

// Delete removes entries by ID.
// Returns storage.ErrNotFound if any ID is unknown; no entry is removed then.
func (s *Store) Delete(ctx context.Context, ids ...string) error {
	s.mu.RLock()
	for _, id := range ids {
		if _, ok := s.index[id]; !ok {
			s.mu.RUnlock()
			return storage.ErrNotFound
		}
	}
	s.mu.RUnlock()

	if err := s.repository.DeleteEntries(ctx, ids...); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := s.entries[:0]
	for _, entry := range s.entries {
		if !drop[entry.ID] {
			kept = append(kept, entry)
		}
	}
	s.entries = kept
	s.index = make(map[string]int, len(kept))
	for i, entry := range kept {
		s.index[entry.ID] = i
	}

	s.logger.Debug("knowledge entries deleted", "count", len(ids))
	return nil
}

// Stats summarizes the corpus. Conversation-side fields stay zero; the
// caller merges those from the feedback ledger.
func (s *Store) Stats() storage.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := storage.Stats{
		KnowledgeEntries: len(s.entries),
		Categories:       make(map[string]int),
	}
	for _, entry := range s.entries {
		stats.Categories[entry.Category]++
		stats.TotalUsage += entry.Metadata.UsageCount
	}
	return stats
}

// MostUsed returns up to n entries with the highest usage counts,
// descending, ties in insertion order.
func (s *Store) MostUsed(n int) []*core.KnowledgeEntry {
	return s.topBy(n, func(a, b *core.KnowledgeEntry) bool {
		return a.Metadata.UsageCount > b.Metadata.UsageCount
	})
}

// RecentlyUpdated returns up to n entries ordered by LastUpdated,
// newest first.
func (s *Store) RecentlyUpdated(n int) []*core.KnowledgeEntry {
	return s.topBy(n, func(a, b *core.KnowledgeEntry) bool {
		return a.Metadata.LastUpdated.After(b.Metadata.LastUpdated)
	})
}

func (s *Store) topBy(n int, less func(a, b *core.KnowledgeEntry) bool) []*core.KnowledgeEntry {
	if n <= 0 {
		return nil
	}
	out := s.List()
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// RefreshCorpus recomputes the idf table over every entry's text and
// regenerates all embeddings against it, then persists the corpus. This
// is the only path by which idf weights change.
func (s *Store) RefreshCorpus(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]string, len(s.entries))
	for i, entry := range s.entries {
		docs[i] = entry.Title + " " + entry.Content
	}
	s.vectorizer.UpdateCorpus(docs)

	for i, entry := range s.entries {
		entry.Embedding = s.vectorizer.Embed(docs[i])
	}
	if len(s.entries) == 0 {
		return nil
	}
	if _, err := s.repository.PutEntries(ctx, s.entries...); err != nil {
		return err
	}

	s.logger.Info("corpus refreshed", "entries", len(s.entries))
	return nil
}

// DeriveKeywords extracts the n most frequent non-stopword tokens from
// text, most frequent first, ties in first-occurrence order.
func DeriveKeywords(text string, n int) []string {
	tokens := vectorize.Tokenize(text)
	counts := make(map[string]int)
	order := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if vectorize.IsStopWord(tok) {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}
