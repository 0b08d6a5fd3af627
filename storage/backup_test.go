package storage_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/recallkit/recall/core"
	"github.com/recallkit/recall/storage"
	"github.com/recallkit/recall/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRepos(t *testing.T) (storage.KnowledgeRepository, storage.ConversationRepository, func()) {
	t.Helper()

	knowledgeRepo, conversationRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	ctx := context.Background()
	_, err = knowledgeRepo.PutEntries(ctx, &core.KnowledgeEntry{
		ID:       "kb_pricing",
		Title:    "Pricing",
		Content:  "Projects run on a fixed estimate.",
		Category: "business",
		Metadata: core.Metadata{Confidence: 0.9, SourceType: core.SourceManual, UsageCount: 2},
	})
	require.NoError(t, err)

	_, err = conversationRepo.AppendConversations(ctx, &core.ConversationEntry{
		Question: "q", Answer: "a", Rating: 3,
	})
	require.NoError(t, err)

	require.NoError(t, conversationRepo.SaveExcellent(ctx, &core.ConversationEntry{
		Question: "great question", Answer: "great answer", Rating: 5,
	}))
	require.NoError(t, conversationRepo.BlockResponse(ctx, &core.ConversationEntry{
		Question: "bad question", Answer: "bad answer", Rating: 1, Blocked: true,
	}))

	cleanup := func() {
		conversationRepo.Close()
		knowledgeRepo.Close()
		backend.Close()
	}
	return knowledgeRepo, conversationRepo, cleanup
}

func TestSnapshotRoundTrip(t *testing.T) {
	knowledgeRepo, conversationRepo, cleanup := seedRepos(t)
	defer cleanup()

	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, storage.WriteSnapshot(ctx, &buf, knowledgeRepo, conversationRepo))

	snapshot, err := storage.ReadSnapshot(&buf)
	require.NoError(t, err)

	assert.False(t, snapshot.Timestamp.IsZero())
	require.Len(t, snapshot.Entries, 1)
	assert.Equal(t, "kb_pricing", snapshot.Entries[0].ID)
	assert.Len(t, snapshot.Conversations, 1)
	assert.Len(t, snapshot.Excellent, 1)
	assert.Len(t, snapshot.Blocked, 1)
	assert.Equal(t, 1, snapshot.Stats.KnowledgeEntries)
	assert.Equal(t, 2, snapshot.Stats.TotalUsage)
	assert.Equal(t, 1, snapshot.Stats.Categories["business"])
}

func TestRestoreSnapshot_OverwritesByID(t *testing.T) {
	knowledgeRepo, conversationRepo, cleanup := seedRepos(t)
	defer cleanup()

	ctx := context.Background()

	snapshot := &storage.Snapshot{
		Entries: []*core.KnowledgeEntry{
			{
				ID:       "kb_pricing",
				Title:    "Updated pricing",
				Content:  "New content.",
				Metadata: core.Metadata{Confidence: 1, SourceType: core.SourceManual},
			},
		},
	}
	require.NoError(t, storage.RestoreSnapshot(ctx, snapshot, knowledgeRepo, conversationRepo))

	got, err := knowledgeRepo.GetEntry(ctx, "kb_pricing")
	require.NoError(t, err)
	assert.Equal(t, "Updated pricing", got.Title)

	entries, err := knowledgeRepo.ListEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRestoreSnapshot_InPlaceKeepsLogLength(t *testing.T) {
	knowledgeRepo, conversationRepo, cleanup := seedRepos(t)
	defer cleanup()

	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, storage.WriteSnapshot(ctx, &buf, knowledgeRepo, conversationRepo))

	snapshot, err := storage.ReadSnapshot(&buf)
	require.NoError(t, err)

	// Restoring a database's own snapshot twice must not grow the log.
	require.NoError(t, storage.RestoreSnapshot(ctx, snapshot, knowledgeRepo, conversationRepo))
	require.NoError(t, storage.RestoreSnapshot(ctx, snapshot, knowledgeRepo, conversationRepo))

	conversations, err := conversationRepo.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "q", conversations[0].Question)
	assert.Equal(t, snapshot.Conversations[0].Id, conversations[0].Id)
}

func TestRestoreSnapshot_AppendAfterRestoreKeepsBoth(t *testing.T) {
	knowledgeRepo, conversationRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		conversationRepo.Close()
		knowledgeRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	// Fresh database, restored log IDs sit ahead of the ID sequence.
	snapshot := &storage.Snapshot{
		Conversations: []*core.ConversationEntry{
			{Id: 1, Question: "restored one", Answer: "a", Rating: 3},
			{Id: 2, Question: "restored two", Answer: "b", Rating: 4},
		},
	}
	require.NoError(t, storage.RestoreSnapshot(ctx, snapshot, knowledgeRepo, conversationRepo))

	_, err = conversationRepo.AppendConversations(ctx, &core.ConversationEntry{
		Question: "appended", Answer: "c", Rating: 5,
	})
	require.NoError(t, err)

	conversations, err := conversationRepo.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 3)
	assert.Equal(t, "restored one", conversations[0].Question)
	assert.Equal(t, "restored two", conversations[1].Question)
	assert.Equal(t, "appended", conversations[2].Question)
}

func TestPutConversations_RequiresID(t *testing.T) {
	_, conversationRepo, cleanup := seedRepos(t)
	defer cleanup()

	err := conversationRepo.PutConversations(context.Background(),
		&core.ConversationEntry{Question: "no id", Answer: "a"})
	require.ErrorIs(t, err, storage.ErrMissingID)
}

func TestMigrate(t *testing.T) {
	srcK, srcC, cleanupSrc := seedRepos(t)
	defer cleanupSrc()

	dstK, dstC, dstBackend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		dstC.Close()
		dstK.Close()
		dstBackend.Close()
	}()

	ctx := context.Background()
	require.NoError(t, storage.Migrate(ctx, srcK, srcC, dstK, dstC))

	entries, err := dstK.ListEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	blocked, err := dstC.ListBlocked(ctx)
	require.NoError(t, err)
	assert.Len(t, blocked, 1)

	excellent, err := dstC.ListExcellent(ctx)
	require.NoError(t, err)
	assert.Len(t, excellent, 1)
}
