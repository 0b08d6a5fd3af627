package core

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ID is a unique identifier for conversation-side entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// IDFromQuestion generates a deterministic ID from a question, normalized to
// lower case so that case variants of the same question collide on purpose.
func IDFromQuestion(question string) ID {
	return IDFromContent(strings.ToLower(strings.TrimSpace(question)))
}

// SourceType identifies how a knowledge entry entered the system.
type SourceType string

const (
	// SourceManual marks entries added by an operator.
	SourceManual SourceType = "manual"
	// SourceLearned marks entries promoted from rated conversations.
	SourceLearned SourceType = "learned"
	// SourceGenerated marks entries produced by the system itself.
	SourceGenerated SourceType = "generated"
	// SourceFile marks entries ingested from files.
	SourceFile SourceType = "file"
)

// Metadata carries bookkeeping attached to a knowledge entry.
// Field names and the RFC 3339 lastUpdated format are part of the
// persisted JSON schema.
type Metadata struct {
	LastUpdated time.Time  `json:"lastUpdated"`
	Confidence  float64    `json:"confidence"` // in [0,1]
	SourceType  SourceType `json:"sourceType"`
	UsageCount  int        `json:"usageCount"`
}

// KnowledgeEntry is a single searchable unit of the local corpus.
// Embedding may be absent, or stale relative to the current IDF table;
// when present its length equals the vocabulary size and it is either
// L2-normalized or all-zero.
type KnowledgeEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Keywords  []string  `json:"keywords"`
	Embedding []float64 `json:"embedding,omitempty"`
	Metadata  Metadata  `json:"metadata"`
}

// entrySeq disambiguates entry IDs minted in the same millisecond. The
// fixed-width rendering keeps lexicographic ID order equal to creation
// order, which the storage layer relies on for insertion-order listing.
var entrySeq atomic.Uint64

// NewEntryID generates a knowledge entry ID from the current time, a
// process-monotonic counter, and a random suffix. The counter keeps IDs
// minted in the same millisecond sorted in creation order; the suffix
// keeps IDs from separate processes distinct.
func NewEntryID() string {
	return fmt.Sprintf("kb_%d_%06d_%s",
		time.Now().UnixMilli(), entrySeq.Add(1)%1_000_000, uuid.NewString()[:4])
}

// ConversationEntry is one rated (or unrated) question/answer observation.
// Entries are append-only once written; Blocked is true iff the rating at
// write time was 2 or lower.
type ConversationEntry struct {
	Id        ID        `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Rating    int       `json:"rating,omitempty"` // 0 = unrated, otherwise 1-5
	Comment   string    `json:"comment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Blocked   bool      `json:"blocked"`
}

// MatchType names the dominant signal behind a search hit.
type MatchType string

const (
	MatchSemantic MatchType = "semantic"
	MatchKeyword  MatchType = "keyword"
	MatchFuzzy    MatchType = "fuzzy"
)

// SearchResult is a transient scored hit against the knowledge store.
// Relevance is an unbounded ranking key, never a probability.
type SearchResult struct {
	Entry        *KnowledgeEntry
	Relevance    float64
	MatchType    MatchType
	MatchedTerms []string
}

// AnswerSource identifies which path produced an answer.
type AnswerSource string

const (
	// AnswerExcellent means a previously five-star-rated response was reused.
	AnswerExcellent AnswerSource = "excellent"
	// AnswerKnowledge means the best knowledge store match was served directly.
	AnswerKnowledge AnswerSource = "knowledge"
	// AnswerFresh means the response was synthesized for this query.
	AnswerFresh AnswerSource = "fresh"
	// AnswerBlockedFallback means a candidate was suppressed by the block gate.
	AnswerBlockedFallback AnswerSource = "blocked-fallback"
	// AnswerError means every path failed and the terminal apology was served.
	AnswerError AnswerSource = "error"
)

// Answer is the result object returned by the orchestrator. It always holds
// servable text; failures are reported through Source, never raised.
type Answer struct {
	Text       string
	Source     AnswerSource
	Confidence int
	Filtered   bool
	Strategy   string
	References []string // matched knowledge entry IDs and web result URLs
}
