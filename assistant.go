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

package recall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/recallkit/recall/core"
	"github.com/recallkit/recall/feedback"
	"github.com/recallkit/recall/ingest"
	"github.com/recallkit/recall/knowledge"
	"github.com/recallkit/recall/storage"
	"github.com/recallkit/recall/storage/badger"
	"github.com/recallkit/recall/strategy"
	"github.com/recallkit/recall/synthesize"
	"github.com/recallkit/recall/vectorize"
	"github.com/recallkit/recall/websearch"
	"github.com/recallkit/recall/websearch/duck"
)

const (
	// defaultWebTimeout bounds one external provider call. A slow
	// provider must never block a local answer indefinitely.
	defaultWebTimeout = 8 * time.Second

	// webRetryAttempts and webRetryDelay configure the default
	// provider's retry decoration.
	webRetryAttempts = 2
	webRetryDelay    = 500 * time.Millisecond

	confidenceExcellent = 95
	confidenceKnowledge = 85
	confidenceFresh     = 70
	confidenceBlocked   = 40

	backupDirName = "backups"
)

// blockedFallbackText replaces any candidate the block gate suppressed.
const blockedFallbackText = "I'm sorry, I can't give you a good answer to " +
	"that right now. Could you try rephrasing the question?"

// ErrBackupsUnavailable is returned by backup operations when storage is
// in-memory and there is no directory to hold snapshot files.
var ErrBackupsUnavailable = errors.New("backups unavailable for in-memory storage")

// Assistant is the question answering facade. It wires the knowledge
// store, the feedback ledger, and the web search provider over one
// storage backend.
type Assistant struct {
	backend          *badger.Backend
	knowledgeRepo    storage.KnowledgeRepository
	conversationRepo storage.ConversationRepository
	store            *knowledge.Store
	ledger           *feedback.Ledger
	provider         websearch.Provider
	pool             *ants.Pool
	path             string
	webTimeout       time.Duration
	inMemory         bool
	degraded         bool
	logger           *slog.Logger
}

var _ storage.BackupManager = (*Assistant)(nil)

// Option configures an Assistant.
type Option func(*Assistant) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// WithSearchProvider overrides the web search provider.
// Default is the DuckDuckGo provider behind a retry decorator.
func WithSearchProvider(provider websearch.Provider) Option {
	return func(a *Assistant) error {
		if provider == nil {
			return fmt.Errorf("search provider cannot be nil")
		}
		a.provider = provider
		return nil
	}
}

// WithInMemory keeps all storage in memory. Used by tests and ephemeral
// deployments; backups are unavailable in this mode.
func WithInMemory() Option {
	return func(a *Assistant) error {
		a.inMemory = true
		return nil
	}
}

// WithWebTimeout bounds each external provider call.
func WithWebTimeout(timeout time.Duration) Option {
	return func(a *Assistant) error {
		if timeout <= 0 {
			return fmt.Errorf("web timeout must be positive")
		}
		a.webTimeout = timeout
		return nil
	}
}

// NewAssistant opens the assistant over a storage directory. When the
// directory cannot be opened the assistant still starts, degraded to
// in-memory storage, so questions keep getting answered; the condition
// is logged and visible via Degraded.
func NewAssistant(path string, opts ...Option) (*Assistant, error) {
	a := &Assistant{
		path:       path,
		webTimeout: defaultWebTimeout,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if a.provider == nil {
		provider, err := duck.NewProvider(duck.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		a.provider = websearch.NewRetrying(provider, webRetryAttempts, webRetryDelay)
	}

	backend, err := badger.OpenBackend(path, a.inMemory)
	if err != nil {
		a.logger.Error("opening storage failed, running in-memory", "path", path, "err", err)
		a.degraded = true
		backend, err = badger.OpenBackend("", true)
		if err != nil {
			return nil, err
		}
	}
	a.backend = backend

	if err := a.wire(); err != nil {
		backend.Close()
		return nil, err
	}
	return a, nil
}

func (a *Assistant) wire() error {
	knowledgeRepo, err := badger.NewKnowledgeRepository(a.backend)
	if err != nil {
		return err
	}
	conversationRepo, err := badger.NewConversationRepository(a.backend)
	if err != nil {
		knowledgeRepo.Close()
		return err
	}
	a.knowledgeRepo = knowledgeRepo
	a.conversationRepo = conversationRepo

	store, err := knowledge.NewStore(knowledgeRepo, vectorize.NewVectorizer(vectorize.DefaultVocabulary()),
		knowledge.WithLogger(a.logger))
	if err != nil {
		return err
	}
	ledger, err := feedback.NewLedger(conversationRepo, store, feedback.WithLogger(a.logger))
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := store.Load(ctx); err != nil {
		return err
	}
	if err := ledger.Load(ctx); err != nil {
		return err
	}

	pool, err := ants.NewPool(2)
	if err != nil {
		return err
	}

	a.store = store
	a.ledger = ledger
	a.pool = pool
	return nil
}

// Degraded reports whether the assistant fell back to in-memory storage
// because the backing directory could not be opened.
func (a *Assistant) Degraded() bool {
	return a.degraded
}

// Answer resolves a query through three steps, each tried once: an
// excellent response from a previously five-star-rated question, the
// best knowledge store match, then a synthesized response following the
// classified strategy. Every candidate passes the block gate before it
// is served; a suppressed candidate yields the generic fallback instead.
// Answer never returns an error: failures surface in the Source field.
func (a *Assistant) Answer(ctx context.Context, query string) *core.Answer {
	plan := strategy.Classify(query)
	if query == "" {
		return &core.Answer{
			Text:       blockedFallbackText,
			Source:     core.AnswerError,
			Confidence: confidenceBlocked,
			Strategy:   plan.Kind.String(),
		}
	}

	a.logger.Debug("answering",
		"strategy", plan.Kind.String(),
		"specific", strategy.IsSpecific(query),
		"comparison", strategy.IsComparison(query))

	// Kick off the web leg early when the plan will need it anyway.
	var webCh chan *websearch.Response
	if plan.Kind == strategy.WebFirst || plan.Kind == strategy.Hybrid {
		webCtx, cancel := context.WithTimeout(ctx, a.webTimeout)
		defer cancel()
		ch := make(chan *websearch.Response, 1)
		if err := a.pool.Submit(func() {
			ch <- a.provider.Search(webCtx, query, plan.WebBudget)
		}); err != nil {
			a.logger.Warn("web search submission failed", "err", err)
		} else {
			webCh = ch
		}
	}

	// Step 1: replay an excellent answer for a similar question.
	if hit := a.ledger.LookupExcellent(query); hit != nil {
		if a.ledger.Blocked(hit.Answer) {
			return a.blockedAnswer(plan)
		}
		return &core.Answer{
			Text:       hit.Answer,
			Source:     core.AnswerExcellent,
			Confidence: confidenceExcellent,
			Strategy:   plan.Kind.String(),
		}
	}

	// Step 2: serve the best knowledge match directly.
	localBudget := plan.LocalBudget
	if localBudget < 1 {
		localBudget = 1
	}
	local := a.store.Search(ctx, query, knowledge.SearchOptions{MaxResults: localBudget})
	if len(local) > 0 {
		top := local[0]
		if a.ledger.Blocked(top.Entry.Content) {
			return a.blockedAnswer(plan)
		}
		return &core.Answer{
			Text:       top.Entry.Content,
			Source:     core.AnswerKnowledge,
			Confidence: confidenceKnowledge,
			Strategy:   plan.Kind.String(),
			References: []string{top.Entry.ID},
		}
	}

	// Step 3: synthesize from the strategy's sources. A local-first plan
	// that reached this point found nothing local, so when the web leg
	// delivered, the served answer is re-marked web-only.
	web := a.collectWeb(ctx, webCh, plan, query)
	served := plan.Kind
	if plan.Kind == strategy.LocalFirst && len(web) > 0 {
		served = strategy.WebOnly
	}
	text := synthesize.Compose(query, local, web, served)
	if a.ledger.Blocked(text) {
		return a.blockedAnswer(plan)
	}

	references := make([]string, 0, len(web))
	for _, result := range web {
		references = append(references, result.URL)
	}
	return &core.Answer{
		Text:       text,
		Source:     core.AnswerFresh,
		Confidence: confidenceFresh,
		Strategy:   served.String(),
		References: references,
	}
}

// collectWeb resolves the web leg: receives the prefetched response when
// one is in flight, or performs the local-first escalation search. A
// failed provider yields no results, never an error.
func (a *Assistant) collectWeb(ctx context.Context, webCh chan *websearch.Response, plan strategy.Plan, query string) []websearch.Result {
	switch {
	case webCh != nil:
		select {
		case resp := <-webCh:
			if resp.Success {
				return resp.Results
			}
			a.logger.Warn("web search failed, serving local only",
				"provider", resp.Provider, "strategy", plan.Kind.String())
		case <-ctx.Done():
		}
		return nil

	case plan.Kind == strategy.LocalFirst:
		// Local came up short, escalate.
		webCtx, cancel := context.WithTimeout(ctx, a.webTimeout)
		defer cancel()
		resp := a.provider.Search(webCtx, query, plan.WebBudget)
		if resp.Success {
			return resp.Results
		}
		a.logger.Warn("web escalation failed", "provider", resp.Provider)
	}
	return nil
}

func (a *Assistant) blockedAnswer(plan strategy.Plan) *core.Answer {
	return &core.Answer{
		Text:       blockedFallbackText,
		Source:     core.AnswerBlockedFallback,
		Confidence: confidenceBlocked,
		Filtered:   true,
		Strategy:   plan.Kind.String(),
	}
}

// Rate records a rating for a question/answer pair and applies its
// consequence: promotion, blocking, or just the log entry.
func (a *Assistant) Rate(ctx context.Context, question, answer string, rating int, comment string) error {
	_, err := a.ledger.Rate(ctx, question, answer, rating, comment)
	return err
}

// Search queries the knowledge store directly.
func (a *Assistant) Search(ctx context.Context, query string, opts knowledge.SearchOptions) []*core.SearchResult {
	return a.store.Search(ctx, query, opts)
}

// AddKnowledge creates a manual knowledge entry.
func (a *Assistant) AddKnowledge(ctx context.Context, title, content, category string, keywords ...string) (*core.KnowledgeEntry, error) {
	return a.store.Add(ctx, title, content, category, keywords...)
}

// TrainFromConversation promotes one question/answer pair into the
// knowledge store under the given category.
func (a *Assistant) TrainFromConversation(ctx context.Context, question, answer, category string) (*core.KnowledgeEntry, error) {
	return a.ledger.Promote(ctx, question, answer, category)
}

// TrainFromAllConversations replays the conversation log and promotes
// every well-rated, unblocked exchange. Returns the number of entries
// the store gained.
func (a *Assistant) TrainFromAllConversations(ctx context.Context) (int, error) {
	conversations, err := a.ledger.Conversations(ctx)
	if err != nil {
		return 0, err
	}

	before := a.store.Len()
	for _, conv := range conversations {
		if conv.Rating < 4 || conv.Blocked {
			continue
		}
		if _, err := a.ledger.Promote(ctx, conv.Question, conv.Answer, ""); err != nil {
			return a.store.Len() - before, err
		}
	}
	return a.store.Len() - before, nil
}

// Stats summarizes the stored collections.
func (a *Assistant) Stats(ctx context.Context) (storage.Stats, error) {
	stats := a.store.Stats()

	conversations, err := a.ledger.Conversations(ctx)
	if err != nil {
		return stats, err
	}
	stats.Conversations = len(conversations)
	stats.Excellent, stats.Blocked = a.ledger.Counts()
	return stats, nil
}

// MostUsed returns the n most used knowledge entries.
func (a *Assistant) MostUsed(n int) []*core.KnowledgeEntry {
	return a.store.MostUsed(n)
}

// RecentlyUpdated returns the n most recently updated knowledge entries.
func (a *Assistant) RecentlyUpdated(n int) []*core.KnowledgeEntry {
	return a.store.RecentlyUpdated(n)
}

// IngestFiles loads text files into the knowledge store as file-sourced
// entries. Returns the number of entries created.
func (a *Assistant) IngestFiles(ctx context.Context, paths ...string) (int, error) {
	pipeline, err := ingest.NewPipeline(a.store, ingest.WithLogger(a.logger))
	if err != nil {
		return 0, err
	}
	defer pipeline.Release()
	return pipeline.IngestFiles(ctx, paths...)
}

// RefreshCorpus recomputes term weights over the whole corpus and
// regenerates all embeddings.
func (a *Assistant) RefreshCorpus(ctx context.Context) error {
	return a.store.RefreshCorpus(ctx)
}

// Backup writes a snapshot of all collections to the backups directory
// and returns its identifier.
func (a *Assistant) Backup(ctx context.Context) (string, error) {
	if a.inMemory {
		return "", ErrBackupsUnavailable
	}
	dir := filepath.Join(a.path, backupDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	id := fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	file, err := os.Create(filepath.Join(dir, id))
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := storage.WriteSnapshot(ctx, file, a.knowledgeRepo, a.conversationRepo); err != nil {
		return "", err
	}
	a.logger.Info("backup written", "id", id)
	return id, nil
}

// ListBackups returns available backup identifiers, newest first.
func (a *Assistant) ListBackups() ([]string, error) {
	if a.inMemory {
		return nil, ErrBackupsUnavailable
	}
	matches, err := filepath.Glob(filepath.Join(a.path, backupDirName, "backup_*.json"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, filepath.Base(match))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// Restore loads a snapshot back into storage, overwriting entries by ID,
// then reloads the in-memory state.
func (a *Assistant) Restore(ctx context.Context, id string) error {
	if a.inMemory {
		return ErrBackupsUnavailable
	}
	file, err := os.Open(filepath.Join(a.path, backupDirName, id))
	if err != nil {
		return fmt.Errorf("%w: %s", storage.ErrBackupNotFound, id)
	}
	defer file.Close()

	snapshot, err := storage.ReadSnapshot(file)
	if err != nil {
		return err
	}
	if err := storage.RestoreSnapshot(ctx, snapshot, a.knowledgeRepo, a.conversationRepo); err != nil {
		return err
	}

	if err := a.store.Load(ctx); err != nil {
		return err
	}
	if err := a.ledger.Load(ctx); err != nil {
		return err
	}
	a.logger.Info("backup restored", "id", id)
	return nil
}

// Close releases the worker pool, repositories, and the backend.
func (a *Assistant) Close() error {
	if a.pool != nil {
		a.pool.Release()
	}
	if err := a.knowledgeRepo.Close(); err != nil {
		a.logger.Error("error closing knowledge repository", "err", err)
		return err
	}
	if err := a.conversationRepo.Close(); err != nil {
		a.logger.Error("error closing conversation repository", "err", err)
		return err
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
