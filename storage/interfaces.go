package storage

import (
	"context"
	"io"

	"github.com/recallkit/recall/core"
)

// KnowledgeRepository provides operations for the persisted knowledge corpus.
// Implementations must be thread-safe. Writes are durable before the call
// returns.
type KnowledgeRepository interface {
	// PutEntries upserts one or more knowledge entries, keyed by ID.
	// Entries without an ID get one assigned. LastUpdated is set to now
	// when zero. Returns the entries with IDs and timestamps populated.
	PutEntries(ctx context.Context, entries ...*core.KnowledgeEntry) ([]*core.KnowledgeEntry, error)

	// GetEntry retrieves a single entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, id string) (*core.KnowledgeEntry, error)

	// ListEntries retrieves every entry, ordered by ID. Entry IDs embed
	// their creation time, so this order follows insertion order.
	// Records that fail to deserialize are skipped with a warning.
	ListEntries(ctx context.Context) ([]*core.KnowledgeEntry, error)

	// DeleteEntries removes entries by ID.
	// Returns ErrNotFound if any entry doesn't exist.
	DeleteEntries(ctx context.Context, ids ...string) error

	// Close releases resources held by the repository.
	Close() error
}

// ConversationRepository provides operations for the conversation log and
// its rating-derived partitions. The log is append-only; the excellent and
// blocked collections are write-once-per-key caches consulted on every
// answer.
type ConversationRepository interface {
	// AppendConversations appends entries to the immutable conversation log.
	// IDs are assigned from a sequence. Returns the entries with IDs set.
	AppendConversations(ctx context.Context, entries ...*core.ConversationEntry) ([]*core.ConversationEntry, error)

	// PutConversations writes log entries under their existing IDs,
	// overwriting by key. Used by snapshot restore and migration so the
	// log round-trips without duplication; entries must carry a nonzero
	// ID or ErrMissingID is returned.
	PutConversations(ctx context.Context, entries ...*core.ConversationEntry) error

	// ListConversations returns the full conversation log in append order.
	ListConversations(ctx context.Context) ([]*core.ConversationEntry, error)

	// SaveExcellent records a five-star observation, keyed by the
	// case-insensitive question text so repeats overwrite in place.
	SaveExcellent(ctx context.Context, entry *core.ConversationEntry) error

	// ListExcellent returns all excellent observations.
	ListExcellent(ctx context.Context) ([]*core.ConversationEntry, error)

	// BlockResponse records a poorly rated answer, keyed by answer text.
	// Blocked entries are permanent.
	BlockResponse(ctx context.Context, entry *core.ConversationEntry) error

	// ListBlocked returns all blocked observations.
	ListBlocked(ctx context.Context) ([]*core.ConversationEntry, error)

	// Close releases resources held by the repository.
	Close() error
}

// BackupManager manages snapshot files for the persisted collections.
// Backups are plain JSON so they stay inspectable and portable between
// backend generations.
type BackupManager interface {
	// Backup writes a new snapshot and returns its identifier.
	Backup(ctx context.Context) (string, error)

	// ListBackups returns available snapshot identifiers, newest first.
	ListBackups() ([]string, error)

	// Restore loads a snapshot back into storage, overwriting by ID.
	// Returns ErrBackupNotFound for an unknown identifier.
	Restore(ctx context.Context, id string) error

	// ExportReadable writes the knowledge corpus as readable markdown.
	ExportReadable(w io.Writer) error
}

// Stats summarizes the persisted collections.
type Stats struct {
	KnowledgeEntries int            `json:"knowledgeEntries"`
	Conversations    int            `json:"conversations"`
	Excellent        int            `json:"excellent"`
	Blocked          int            `json:"blocked"`
	Categories       map[string]int `json:"categories"`
	TotalUsage       int            `json:"totalUsage"`
}
