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


package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/recallkit/recall/core"
)

// Snapshot is the portable backup document: every persisted collection
// plus summary stats, serialized as one JSON object.
type Snapshot struct {
	Timestamp     time.Time                 `json:"timestamp"`
	Entries       []*core.KnowledgeEntry    `json:"entries"`
	Conversations []*core.ConversationEntry `json:"conversations"`
	Excellent     []*core.ConversationEntry `json:"excellent"`
	Blocked       []*core.ConversationEntry `json:"blocked"`
	Stats         Stats                     `json:"stats"`
}

// TakeSnapshot reads every collection from the given repositories.
func TakeSnapshot(ctx context.Context, kr KnowledgeRepository, cr ConversationRepository) (*Snapshot, error) {
	entries, err := kr.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	conversations, err := cr.ListConversations(ctx)
	if err != nil {
		return nil, err
	}
	excellent, err := cr.ListExcellent(ctx)
	if err != nil {
		return nil, err
	}
	blocked, err := cr.ListBlocked(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Timestamp:     time.Now().UTC(),
		Entries:       entries,
		Conversations: conversations,
		Excellent:     excellent,
		Blocked:       blocked,
	}
	snapshot.Stats = snapshot.computeStats()
	return snapshot, nil
}

func (s *Snapshot) computeStats() Stats {
	stats := Stats{
		KnowledgeEntries: len(s.Entries),
		Conversations:    len(s.Conversations),
		Excellent:        len(s.Excellent),
		Blocked:          len(s.Blocked),
		Categories:       make(map[string]int),
	}
	for _, entry := range s.Entries {
		if entry.Category != "" {
			stats.Categories[entry.Category]++
		}
		stats.TotalUsage += entry.Metadata.UsageCount
	}
	return stats
}

// WriteSnapshot serializes a snapshot of both repositories to w.
func WriteSnapshot(ctx context.Context, w io.Writer, kr KnowledgeRepository, cr ConversationRepository) error {
	snapshot, err := TakeSnapshot(ctx, kr, cr)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}

// ReadSnapshot deserializes a snapshot document from r.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var snapshot Snapshot
	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &snapshot, nil
}

// RestoreSnapshot imports a snapshot into the given repositories. Every
// collection overwrites by key (last-write-wins), so restoring into a
// database that already holds the snapshot's records is idempotent.
func RestoreSnapshot(ctx context.Context, snapshot *Snapshot, kr KnowledgeRepository, cr ConversationRepository) error {
	if len(snapshot.Entries) > 0 {
		if _, err := kr.PutEntries(ctx, snapshot.Entries...); err != nil {
			return err
		}
	}
	if len(snapshot.Conversations) > 0 {
		if err := cr.PutConversations(ctx, snapshot.Conversations...); err != nil {
			return err
		}
	}
	for _, entry := range snapshot.Excellent {
		if err := cr.SaveExcellent(ctx, entry); err != nil {
			return err
		}
	}
	for _, entry := range snapshot.Blocked {
		if err := cr.BlockResponse(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// Migrate copies the three logical collections from one backend to
// another, overwriting destination records by key. It is the explicit path
// for switching storage backends.
func Migrate(ctx context.Context, srcK KnowledgeRepository, srcC ConversationRepository, dstK KnowledgeRepository, dstC ConversationRepository) error {
	snapshot, err := TakeSnapshot(ctx, srcK, srcC)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}
	if err := RestoreSnapshot(ctx, snapshot, dstK, dstC); err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}
	return nil
}
