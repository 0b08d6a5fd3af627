package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/recallkit/recall/core"
	"github.com/recallkit/recall/storage"
)

// ConversationRepository implements storage.ConversationRepository for BadgerDB.
type ConversationRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ConversationRepository = (*ConversationRepository)(nil)

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(backend *Backend) (*ConversationRepository, error) {
	idSeq, err := backend.GetSequence(conversationIDSeq)
	if err != nil {
		return nil, err
	}

	return &ConversationRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ConversationRepository) Close() error {
	return r.idSeq.Release()
}

// AppendConversations appends entries to the immutable conversation log.
func (r *ConversationRepository) AppendConversations(ctx context.Context, entries ...*core.ConversationEntry) ([]*core.ConversationEntry, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			nextID, err := r.nextFreeID(tx)
			if err != nil {
				return err
			}
			entry.Id = nextID

			if entry.Timestamp.IsZero() {
				entry.Timestamp = time.Now().UTC()
			}

			value, err := storage.MarshalConversationEntry(entry)
			if err != nil {
				return err
			}
			if err := tx.Set(makeConversationKey(entry.Id), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return entries, err
}

// nextFreeID draws sequence IDs until one is unoccupied. Restored
// snapshots write log entries under their original IDs, which can sit
// ahead of the sequence; skipping occupied IDs keeps later appends from
// overwriting them. ID 0 is never used.
func (r *ConversationRepository) nextFreeID(tx *badger.Txn) (core.ID, error) {
	for {
		next, err := r.idSeq.Next()
		if err != nil {
			return 0, err
		}
		if next == 0 {
			continue
		}
		_, err = tx.Get(makeConversationKey(core.ID(next)))
		if err == badger.ErrKeyNotFound {
			return core.ID(next), nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// PutConversations writes log entries under their snapshot IDs,
// overwriting by key. Restoring the same snapshot twice leaves the log
// unchanged instead of doubling it.
func (r *ConversationRepository) PutConversations(ctx context.Context, entries ...*core.ConversationEntry) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			if entry.Id == 0 {
				return storage.ErrMissingID
			}
			value, err := storage.MarshalConversationEntry(entry)
			if err != nil {
				return err
			}
			if err := tx.Set(makeConversationKey(entry.Id), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// ListConversations returns the full conversation log in append order.
func (r *ConversationRepository) ListConversations(ctx context.Context) ([]*core.ConversationEntry, error) {
	return r.listPrefix(conversationPrefix)
}

// SaveExcellent records a five-star observation, content-addressed by the
// normalized question so case variants of the same question overwrite in
// place instead of accumulating.
func (r *ConversationRepository) SaveExcellent(ctx context.Context, entry *core.ConversationEntry) error {
	id := core.IDFromQuestion(entry.Question)
	return r.putKeyed(makeExcellentKey(id), id, entry)
}

// ListExcellent returns all excellent observations.
func (r *ConversationRepository) ListExcellent(ctx context.Context) ([]*core.ConversationEntry, error) {
	return r.listPrefix(excellentPrefix)
}

// BlockResponse records a poorly rated answer, content-addressed by the
// answer text. Blocked entries are permanent.
func (r *ConversationRepository) BlockResponse(ctx context.Context, entry *core.ConversationEntry) error {
	id := core.IDFromContent(entry.Answer)
	return r.putKeyed(makeBlockedKey(id), id, entry)
}

// ListBlocked returns all blocked observations.
func (r *ConversationRepository) ListBlocked(ctx context.Context) ([]*core.ConversationEntry, error) {
	return r.listPrefix(blockedPrefix)
}

func (r *ConversationRepository) putKeyed(key []byte, id core.ID, entry *core.ConversationEntry) error {
	entry.Id = id
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		value, err := storage.MarshalConversationEntry(entry)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

func (r *ConversationRepository) listPrefix(prefix string) ([]*core.ConversationEntry, error) {
	var entries []*core.ConversationEntry

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			err := item.Value(func(val []byte) error {
				entry, err := storage.UnmarshalConversationEntry(val)
				if err != nil {
					r.backend.logger.Warn("skipping malformed conversation record",
						"key", string(item.Key()), "err", err)
					return nil
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return entries, nil
}
