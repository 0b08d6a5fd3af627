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


package feedback

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/recallkit/recall/core"
	"github.com/recallkit/recall/knowledge"
	"github.com/recallkit/recall/storage"
)

const (
	// blockThreshold is the token overlap above which a candidate answer
	// is suppressed. Deliberately broad: the gate ignores questions.
	blockThreshold = 0.8

	// questionThreshold is the token overlap at which two questions count
	// as the same question for excellent-answer lookup.
	questionThreshold = 0.7

	// promotedConfidence is assigned to four-star promotions.
	promotedConfidence = 0.8

	// promotedKeywordCount is how many leading answer tokens become
	// keywords on promotion.
	promotedKeywordCount = 5

	// PromotedCategory is the category assigned to promoted entries.
	PromotedCategory = "learned"
)

// Ledger records ratings and their consequences. The excellent and
// blocked sets are cached in memory and consulted on every answer.
type Ledger struct {
	repository storage.ConversationRepository
	store      *knowledge.Store
	logger     *slog.Logger

	mu        sync.RWMutex
	excellent []*core.ConversationEntry
	blocked   []*core.ConversationEntry
}

// Option configures a Ledger.
type Option func(*Ledger) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLedger creates a feedback ledger. The knowledge store receives
// four-star promotions. Call Load before serving.
func NewLedger(
	repository storage.ConversationRepository,
	store *knowledge.Store,
	opts ...Option,
) (*Ledger, error) {
	if repository == nil {
		return nil, ErrConversationRepositoryRequired
	}
	if store == nil {
		return nil, ErrKnowledgeStoreRequired
	}

	l := &Ledger{
		repository: repository,
		store:      store,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Load fills the excellent and blocked caches from the repository.
func (l *Ledger) Load(ctx context.Context) error {
	excellent, err := l.repository.ListExcellent(ctx)
	if err != nil {
		return err
	}
	blocked, err := l.repository.ListBlocked(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.excellent = excellent
	l.blocked = blocked
	l.logger.Debug("feedback caches loaded",
		"excellent", len(excellent), "blocked", len(blocked))
	return nil
}

// Rate records a rating and applies its consequence. Every rating
// appends to the conversation log; a five promotes to the excellent set,
// a four into the knowledge store, two or below into the blocked set
// with the recorded rating pinned to 1.
func (l *Ledger) Rate(ctx context.Context, question, answer string, rating int, comment string) (*core.ConversationEntry, error) {
	if err := core.ValidateRating(rating); err != nil {
		return nil, err
	}

	entry := &core.ConversationEntry{
		Question:  question,
		Answer:    answer,
		Rating:    rating,
		Comment:   comment,
		Timestamp: time.Now(),
		Blocked:   rating <= 2,
	}
	if err := core.ValidateConversationEntry(entry); err != nil {
		return nil, err
	}

	logged, err := l.repository.AppendConversations(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry = logged[0]

	switch {
	case rating == 5:
		if err := l.saveExcellent(ctx, entry); err != nil {
			return nil, err
		}
	case rating == 4:
		if _, err := l.Promote(ctx, question, answer, PromotedCategory); err != nil {
			return nil, err
		}
	case rating <= 2:
		if err := l.block(ctx, entry); err != nil {
			return nil, err
		}
	}

	l.logger.Info("rating recorded", "rating", rating, "blocked", entry.Blocked)
	return entry, nil
}

func (l *Ledger) saveExcellent(ctx context.Context, entry *core.ConversationEntry) error {
	if err := l.repository.SaveExcellent(ctx, entry); err != nil {
		return err
	}

	// Dedup by case-insensitive question: a repeat replaces in place.
	key := core.IDFromQuestion(entry.Question)
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, cached := range l.excellent {
		if core.IDFromQuestion(cached.Question) == key {
			l.excellent[i] = entry
			return nil
		}
	}
	l.excellent = append(l.excellent, entry)
	return nil
}

func (l *Ledger) block(ctx context.Context, entry *core.ConversationEntry) error {
	// The blocked record always carries the floor rating.
	record := *entry
	record.Rating = 1
	record.Blocked = true

	if err := l.repository.BlockResponse(ctx, &record); err != nil {
		return err
	}

	l.mu.Lock()
	l.blocked = append(l.blocked, &record)
	l.mu.Unlock()

	l.logger.Info("answer blocked", "question", entry.Question)
	return nil
}

// Promote adds a question/answer pair to the knowledge store as a
// learned entry. Keywords are the first few answer tokens longer than
// three characters. Promoting the same question again is a no-op and
// returns the existing entry.
func (l *Ledger) Promote(ctx context.Context, question, answer, category string) (*core.KnowledgeEntry, error) {
	if category == "" {
		category = PromotedCategory
	}
	for _, existing := range l.store.List() {
		if strings.EqualFold(existing.Title, question) {
			return existing, nil
		}
	}

	entry := &core.KnowledgeEntry{
		Title:    question,
		Content:  answer,
		Category: category,
		Keywords: leadingKeywords(answer, promotedKeywordCount),
		Metadata: core.Metadata{
			Confidence: promotedConfidence,
			SourceType: core.SourceLearned,
		},
	}
	return l.store.AddEntry(ctx, entry)
}

// Blocked reports whether candidate text overlaps any blocked answer
// beyond the block threshold. The question that produced the candidate
// plays no part in the decision.
func (l *Ledger) Blocked(candidate string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, blocked := range l.blocked {
		if overlap(candidate, blocked.Answer) > blockThreshold {
			return true
		}
	}
	return false
}

// LookupExcellent returns the excellent answer whose question best
// matches, or nil when no question reaches the similarity threshold.
func (l *Ledger) LookupExcellent(question string) *core.ConversationEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var best *core.ConversationEntry
	var bestSim float64
	for _, cached := range l.excellent {
		sim := overlap(question, cached.Question)
		if sim >= questionThreshold && sim > bestSim {
			best = cached
			bestSim = sim
		}
	}
	return best
}

// Conversations returns the full conversation log in append order.
func (l *Ledger) Conversations(ctx context.Context) ([]*core.ConversationEntry, error) {
	return l.repository.ListConversations(ctx)
}

// Counts reports the cached excellent and blocked set sizes.
func (l *Ledger) Counts() (excellent, blocked int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.excellent), len(l.blocked)
}

// overlap is the shared token-overlap similarity: the number of common
// unique tokens longer than two characters, divided by the larger
// token-set size. Empty sets yield 0.
func overlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	common := 0
	for tok := range setA {
		if setB[tok] {
			common++
		}
	}
	max := len(setA)
	if len(setB) > max {
		max = len(setB)
	}
	return float64(common) / float64(max)
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?;:\"'()[]")
		if len(tok) > 2 {
			set[tok] = true
		}
	}
	return set
}

// leadingKeywords takes the first n tokens longer than three characters.
func leadingKeywords(text string, n int) []string {
	keywords := make([]string, 0, n)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?;:\"'()[]")
		if len(tok) <= 3 {
			continue
		}
		keywords = append(keywords, tok)
		if len(keywords) == n {
			break
		}
	}
	return keywords
}
