package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/recallkit/recall/core"
	"github.com/recallkit/recall/storage"
)

// KnowledgeRepository implements storage.KnowledgeRepository for BadgerDB.
type KnowledgeRepository struct {
	backend *Backend
}

var _ storage.KnowledgeRepository = (*KnowledgeRepository)(nil)

// NewKnowledgeRepository creates a new KnowledgeRepository.
func NewKnowledgeRepository(backend *Backend) (*KnowledgeRepository, error) {
	return &KnowledgeRepository{backend: backend}, nil
}

// Close is a no-op; the repository holds no resources beyond the backend.
func (r *KnowledgeRepository) Close() error {
	return nil
}

// PutEntries upserts one or more knowledge entries, keyed by ID.
func (r *KnowledgeRepository) PutEntries(ctx context.Context, entries ...*core.KnowledgeEntry) ([]*core.KnowledgeEntry, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			if entry.ID == "" {
				entry.ID = core.NewEntryID()
			}
			if entry.Metadata.LastUpdated.IsZero() {
				entry.Metadata.LastUpdated = time.Now().UTC()
			}

			value, err := storage.MarshalKnowledgeEntry(entry)
			if err != nil {
				return err
			}
			if err := tx.Set(makeKnowledgeKey(entry.ID), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return entries, err
}

// GetEntry retrieves a single entry by ID.
func (r *KnowledgeRepository) GetEntry(ctx context.Context, id string) (*core.KnowledgeEntry, error) {
	var entry *core.KnowledgeEntry

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeKnowledgeKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err = storage.UnmarshalKnowledgeEntry(val)
			return err
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEntries retrieves every entry in key order. Records that fail to
// deserialize are skipped with a warning rather than failing the read.
func (r *KnowledgeRepository) ListEntries(ctx context.Context) ([]*core.KnowledgeEntry, error) {
	var entries []*core.KnowledgeEntry

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(knowledgePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			err := item.Value(func(val []byte) error {
				entry, err := storage.UnmarshalKnowledgeEntry(val)
				if err != nil {
					r.backend.logger.Warn("skipping malformed knowledge record",
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

// DeleteEntries removes entries by ID.
func (r *KnowledgeRepository) DeleteEntries(ctx context.Context, ids ...string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeKnowledgeKey(id)
			if _, err := tx.Get(key); err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			} else if err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
