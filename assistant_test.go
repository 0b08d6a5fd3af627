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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recallkit/recall/core"
	"github.com/recallkit/recall/knowledge"
	"github.com/recallkit/recall/storage"
	"github.com/recallkit/recall/synthesize"
	"github.com/recallkit/recall/websearch/mock"
)

func newTestAssistant(t *testing.T, opts ...Option) *Assistant {
	t.Helper()

	opts = append([]Option{WithInMemory(), WithSearchProvider(mock.NewMockProvider())}, opts...)
	assistant, err := NewAssistant("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = assistant.Close() })
	return assistant
}

func seedPricing(t *testing.T, assistant *Assistant) *core.KnowledgeEntry {
	t.Helper()
	entry, err := assistant.AddKnowledge(context.Background(),
		"Project pricing",
		"Projects start at a fixed estimate based on scope and timeline.",
		"pricing", "pricing", "cost", "estimate")
	require.NoError(t, err)
	return entry
}

func TestAnswerFromKnowledgeStore(t *testing.T) {
	assistant := newTestAssistant(t)
	entry := seedPricing(t, assistant)

	answer := assistant.Answer(context.Background(), "how much does a project cost")

	assert.Equal(t, core.AnswerKnowledge, answer.Source)
	assert.Equal(t, 85, answer.Confidence)
	assert.Equal(t, entry.Content, answer.Text)
	assert.False(t, answer.Filtered)
	assert.Contains(t, answer.References, entry.ID)
}

func TestAnswerReplaysExcellentResponse(t *testing.T) {
	assistant := newTestAssistant(t)
	seedPricing(t, assistant)
	ctx := context.Background()

	rated := "Every project starts with a free scoping call, then a fixed quote."
	require.NoError(t, assistant.Rate(ctx, "how do you price projects", rated, 5, ""))

	answer := assistant.Answer(ctx, "how do you price projects")

	assert.Equal(t, core.AnswerExcellent, answer.Source)
	assert.Equal(t, 95, answer.Confidence)
	assert.Equal(t, rated, answer.Text)
}

func TestBlockedAnswerNeverServedAgain(t *testing.T) {
	assistant := newTestAssistant(t)
	ctx := context.Background()

	bad := "We charge one million dollars per hour for every engagement."
	_, err := assistant.AddKnowledge(ctx, "Pricing", bad, "pricing", "pricing", "cost")
	require.NoError(t, err)

	// Sanity: it serves before blocking.
	answer := assistant.Answer(ctx, "what is your pricing")
	require.Equal(t, bad, answer.Text)

	require.NoError(t, assistant.Rate(ctx, "what is your pricing", bad, 1, "nonsense"))

	// The same candidate is now suppressed, whatever the question.
	for _, query := range []string{"what is your pricing", "how much do you cost"} {
		answer = assistant.Answer(ctx, query)
		assert.Equal(t, core.AnswerBlockedFallback, answer.Source, "query %q", query)
		assert.Equal(t, 40, answer.Confidence)
		assert.True(t, answer.Filtered)
		assert.NotEqual(t, bad, answer.Text)
	}
}

func TestBlockGateCoversExcellentResponses(t *testing.T) {
	assistant := newTestAssistant(t)
	ctx := context.Background()

	text := "All support requests are answered within one business day."
	require.NoError(t, assistant.Rate(ctx, "how fast is support", text, 5, ""))
	require.NoError(t, assistant.Rate(ctx, "another question entirely", text, 1, ""))

	answer := assistant.Answer(ctx, "how fast is support")
	assert.Equal(t, core.AnswerBlockedFallback, answer.Source)
	assert.True(t, answer.Filtered)
}

func TestAnswerSynthesizesFromWeb(t *testing.T) {
	assistant := newTestAssistant(t)

	answer := assistant.Answer(context.Background(), "how does docker networking work")

	assert.Equal(t, core.AnswerFresh, answer.Source)
	assert.Equal(t, 70, answer.Confidence)
	assert.Equal(t, "hybrid", answer.Strategy)
	assert.Contains(t, answer.Text, "Here's what I found online:")
	assert.NotEmpty(t, answer.References)
	assert.Contains(t, answer.References[0], "https://example.com/")
}

func TestAnswerWebFirstFallsBackOnProviderFailure(t *testing.T) {
	failing := mock.NewFailingProvider()
	assistant := newTestAssistant(t, WithSearchProvider(failing))

	answer := assistant.Answer(context.Background(), "latest javascript framework releases")

	// Provider failure is absorbed: empty results, fallback text, no error.
	assert.Equal(t, core.AnswerFresh, answer.Source)
	assert.Equal(t, "web-first", answer.Strategy)
	assert.Equal(t, synthesize.Fallback, answer.Text)
	assert.GreaterOrEqual(t, failing.CallCount(), 1)
}

func TestAnswerLocalFirstEscalatesToWeb(t *testing.T) {
	provider := mock.NewMockProvider()
	assistant := newTestAssistant(t, WithSearchProvider(provider))

	answer := assistant.Answer(context.Background(), "do you ship internationally")

	assert.Equal(t, core.AnswerFresh, answer.Source)
	// Nothing local contributed, so the answer is marked web-only even
	// though the plan started local-first.
	assert.Equal(t, "web-only", answer.Strategy)
	assert.Equal(t, 1, provider.CallCount())
	assert.Contains(t, answer.Text, "Here's what I found online:")
}

func TestAnswerLocalFirstStaysLocalFirstWhenWebFails(t *testing.T) {
	failing := mock.NewFailingProvider()
	assistant := newTestAssistant(t, WithSearchProvider(failing))

	answer := assistant.Answer(context.Background(), "do you ship internationally")

	assert.Equal(t, core.AnswerFresh, answer.Source)
	assert.Equal(t, "local-first", answer.Strategy)
	assert.Equal(t, synthesize.Fallback, answer.Text)
}

func TestAnswerLocalOnlyNeverCallsProvider(t *testing.T) {
	provider := mock.NewMockProvider()
	assistant := newTestAssistant(t, WithSearchProvider(provider))

	answer := assistant.Answer(context.Background(), "tell me about your experience")

	assert.Equal(t, "local-only", answer.Strategy)
	assert.Equal(t, synthesize.Fallback, answer.Text)
	assert.Zero(t, provider.CallCount())
}

func TestAnswerEmptyQuery(t *testing.T) {
	assistant := newTestAssistant(t)

	answer := assistant.Answer(context.Background(), "")
	assert.Equal(t, core.AnswerError, answer.Source)
	assert.NotEmpty(t, answer.Text)
}

func TestRatePromotesFourStarIntoCorpus(t *testing.T) {
	assistant := newTestAssistant(t)
	ctx := context.Background()

	answer := "Maintenance retainers cover monitoring, patching, and small fixes."
	require.NoError(t, assistant.Rate(ctx, "what does maintenance include", answer, 4, ""))

	results := assistant.Search(ctx, "what does maintenance include", knowledge.SearchOptions{})
	require.NotEmpty(t, results)
	assert.Equal(t, answer, results[0].Entry.Content)
	assert.Equal(t, core.SourceLearned, results[0].Entry.Metadata.SourceType)
}

func TestTrainFromAllConversations(t *testing.T) {
	assistant := newTestAssistant(t)
	ctx := context.Background()

	require.NoError(t, assistant.Rate(ctx, "q one", "first answer about project scope", 3, ""))
	require.NoError(t, assistant.Rate(ctx, "q two", "second answer about hosting setup", 5, ""))
	require.NoError(t, assistant.Rate(ctx, "q three", "third answer that was plain wrong", 1, ""))

	added, err := assistant.TrainFromAllConversations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, added) // only the five-star exchange qualifies

	// Replaying is idempotent.
	added, err = assistant.TrainFromAllConversations(ctx)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestStats(t *testing.T) {
	assistant := newTestAssistant(t)
	ctx := context.Background()

	seedPricing(t, assistant)
	require.NoError(t, assistant.Rate(ctx, "great question", "a genuinely great answer", 5, ""))
	require.NoError(t, assistant.Rate(ctx, "bad question", "a genuinely bad answer text", 2, ""))

	stats, err := assistant.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.KnowledgeEntries)
	assert.Equal(t, 2, stats.Conversations)
	assert.Equal(t, 1, stats.Excellent)
	assert.Equal(t, 1, stats.Blocked)
	assert.Equal(t, 1, stats.Categories["pricing"])
}

func TestBackupAndRestore(t *testing.T) {
	dir := t.TempDir()

	assistant, err := NewAssistant(filepath.Join(dir, "db"),
		WithSearchProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = assistant.Close() })
	ctx := context.Background()

	entry := seedPricing(t, assistant)

	id, err := assistant.Backup(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "backup_"))

	ids, err := assistant.ListBackups()
	require.NoError(t, err)
	assert.Contains(t, ids, id)

	// Lose the entry, then restore it.
	require.NoError(t, assistant.store.Delete(ctx, entry.ID))
	require.NoError(t, assistant.Restore(ctx, id))

	restored, err := assistant.store.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Content, restored.Content)
}

func TestRestoreInPlaceKeepsConversationLog(t *testing.T) {
	dir := t.TempDir()

	assistant, err := NewAssistant(filepath.Join(dir, "db"),
		WithSearchProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = assistant.Close() })
	ctx := context.Background()

	require.NoError(t, assistant.Rate(ctx, "how long do projects take",
		"most projects run four to eight weeks", 3, ""))

	id, err := assistant.Backup(ctx)
	require.NoError(t, err)

	// Restoring a backup into the database it came from must not
	// duplicate the conversation log, no matter how often it runs.
	require.NoError(t, assistant.Restore(ctx, id))
	require.NoError(t, assistant.Restore(ctx, id))

	stats, err := assistant.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Conversations)
}

func TestRestoreUnknownBackup(t *testing.T) {
	assistant, err := NewAssistant(filepath.Join(t.TempDir(), "db"),
		WithSearchProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = assistant.Close() })

	err = assistant.Restore(context.Background(), "backup_nope.json")
	assert.ErrorIs(t, err, storage.ErrBackupNotFound)
}

func TestBackupsUnavailableInMemory(t *testing.T) {
	assistant := newTestAssistant(t)
	ctx := context.Background()

	_, err := assistant.Backup(ctx)
	assert.ErrorIs(t, err, ErrBackupsUnavailable)

	_, err = assistant.ListBackups()
	assert.ErrorIs(t, err, ErrBackupsUnavailable)

	err = assistant.Restore(ctx, "backup_any.json")
	assert.ErrorIs(t, err, ErrBackupsUnavailable)
}

func TestExportReadable(t *testing.T) {
	assistant := newTestAssistant(t)
	seedPricing(t, assistant)

	var sb strings.Builder
	require.NoError(t, assistant.ExportReadable(&sb))

	text := sb.String()
	assert.Contains(t, text, "# Knowledge Base")
	assert.Contains(t, text, "## pricing")
	assert.Contains(t, text, "### Project pricing")
	assert.Contains(t, text, "Keywords: pricing, cost, estimate")
}

func TestDegradedModeOnUnusableStoragePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assistant, err := NewAssistant(file, WithSearchProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = assistant.Close() })

	assert.True(t, assistant.Degraded())

	// Still answers.
	seedPricing(t, assistant)
	answer := assistant.Answer(context.Background(), "how much does a project cost")
	assert.Equal(t, core.AnswerKnowledge, answer.Source)
}

func TestIngestFiles(t *testing.T) {
	assistant := newTestAssistant(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "services.txt")
	require.NoError(t, os.WriteFile(path,
		[]byte("Consulting covers backend development and deployment support."), 0o644))

	added, err := assistant.IngestFiles(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	results := assistant.Search(context.Background(), "backend deployment consulting",
		knowledge.SearchOptions{})
	assert.NotEmpty(t, results)
}
