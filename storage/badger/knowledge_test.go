package badger

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/recallkit/recall/core"
	"github.com/recallkit/recall/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry(id, title string) *core.KnowledgeEntry {
	return &core.KnowledgeEntry{
		ID:       id,
		Title:    title,
		Content:  "content for " + title,
		Category: "business",
		Keywords: []string{"keyword"},
		Metadata: core.Metadata{
			Confidence: 0.9,
			SourceType: core.SourceManual,
		},
	}
}

func TestKnowledgeRepository_PutAndGet(t *testing.T) {
	knowledgeRepo, conversationRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		conversationRepo.Close()
		knowledgeRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	t.Run("put assigns ID and timestamp", func(t *testing.T) {
		entry := newTestEntry("", "Pricing")
		added, err := knowledgeRepo.PutEntries(ctx, entry)
		require.NoError(t, err)
		require.Len(t, added, 1)
		assert.NotEmpty(t, added[0].ID)
		assert.False(t, added[0].Metadata.LastUpdated.IsZero())
	})

	t.Run("get round-trips the persisted schema", func(t *testing.T) {
		entry := newTestEntry("kb_roundtrip", "Services")
		entry.Embedding = []float64{0.6, 0.8}
		_, err := knowledgeRepo.PutEntries(ctx, entry)
		require.NoError(t, err)

		got, err := knowledgeRepo.GetEntry(ctx, "kb_roundtrip")
		require.NoError(t, err)
		assert.Equal(t, "Services", got.Title)
		assert.Equal(t, []float64{0.6, 0.8}, got.Embedding)
		assert.Equal(t, core.SourceManual, got.Metadata.SourceType)
	})

	t.Run("get missing entry returns ErrNotFound", func(t *testing.T) {
		_, err := knowledgeRepo.GetEntry(ctx, "kb_missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("put overwrites by ID", func(t *testing.T) {
		first := newTestEntry("kb_upsert", "Before")
		_, err := knowledgeRepo.PutEntries(ctx, first)
		require.NoError(t, err)

		second := newTestEntry("kb_upsert", "After")
		_, err = knowledgeRepo.PutEntries(ctx, second)
		require.NoError(t, err)

		got, err := knowledgeRepo.GetEntry(ctx, "kb_upsert")
		require.NoError(t, err)
		assert.Equal(t, "After", got.Title)
	})
}

func TestKnowledgeRepository_ListAndDelete(t *testing.T) {
	knowledgeRepo, conversationRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		conversationRepo.Close()
		knowledgeRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	_, err = knowledgeRepo.PutEntries(ctx,
		newTestEntry("kb_001", "First"),
		newTestEntry("kb_002", "Second"),
		newTestEntry("kb_003", "Third"),
	)
	require.NoError(t, err)

	t.Run("list returns entries in key order", func(t *testing.T) {
		entries, err := knowledgeRepo.ListEntries(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "kb_001", entries[0].ID)
		assert.Equal(t, "kb_003", entries[2].ID)
	})

	t.Run("delete removes entry", func(t *testing.T) {
		require.NoError(t, knowledgeRepo.DeleteEntries(ctx, "kb_002"))

		_, err := knowledgeRepo.GetEntry(ctx, "kb_002")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		entries, err := knowledgeRepo.ListEntries(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("delete missing entry returns ErrNotFound", func(t *testing.T) {
		err := knowledgeRepo.DeleteEntries(ctx, "kb_missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestKnowledgeRepository_SkipsMalformedRecords(t *testing.T) {
	knowledgeRepo, conversationRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		conversationRepo.Close()
		knowledgeRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	_, err = knowledgeRepo.PutEntries(ctx, newTestEntry("kb_good", "Good"))
	require.NoError(t, err)

	// Plant a corrupt record next to the good one.
	err = backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeKnowledgeKey("kb_corrupt"), []byte("{not json")); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	entries, err := knowledgeRepo.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kb_good", entries[0].ID)
}

func TestKnowledgeRepository_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	repo, err := NewKnowledgeRepository(backend)
	require.NoError(t, err)

	ctx := context.Background()
	entry := newTestEntry("kb_durable", "Durable")
	entry.Metadata.LastUpdated = time.Now().UTC().Truncate(time.Second)
	_, err = repo.PutEntries(ctx, entry)
	require.NoError(t, err)
	require.NoError(t, repo.Close())
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	repo, err = NewKnowledgeRepository(backend)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.GetEntry(ctx, "kb_durable")
	require.NoError(t, err)
	assert.Equal(t, "Durable", got.Title)
}
