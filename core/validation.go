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


package core

import (
	"fmt"
	"time"
)

// ValidateKnowledgeEntry validates a KnowledgeEntry according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Content must not be empty
//   - Confidence must be in [0,1]
//   - SourceType must be one of the known values
//
// NOT validated:
//   - Embedding (can be empty or stale until the next corpus refresh)
//   - ID (empty is valid before persistence assigns one)
func ValidateKnowledgeEntry(entry *KnowledgeEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidKnowledgeEntry)
	}

	if entry.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeEntry, ErrEmptyTitle)
	}

	if entry.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeEntry, ErrEmptyContent)
	}

	if entry.Metadata.Confidence < 0 || entry.Metadata.Confidence > 1 {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeEntry, ErrInvalidConfidence)
	}

	if err := ValidateSourceType(entry.Metadata.SourceType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeEntry, err)
	}

	return nil
}

// ValidateConversationEntry validates a ConversationEntry according to domain rules.
//
// Validation rules:
//   - Question must not be empty
//   - Answer must not be empty
//   - Rating must be 0 (unrated) or in 1-5
//   - Timestamp must not be in the future
func ValidateConversationEntry(entry *ConversationEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidConversationEntry)
	}

	if entry.Question == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConversationEntry, ErrEmptyQuestion)
	}

	if entry.Answer == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConversationEntry, ErrEmptyAnswer)
	}

	if entry.Rating != 0 {
		if err := ValidateRating(entry.Rating); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConversationEntry, err)
		}
	}

	if !IsValidTimestamp(entry.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidConversationEntry, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateRating validates that a rating is within the 1-5 scale.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: value %d", ErrInvalidRating, rating)
	}
	return nil
}

// ValidateSourceType validates that a SourceType has a known value.
func ValidateSourceType(sourceType SourceType) error {
	switch sourceType {
	case SourceManual, SourceLearned, SourceGenerated, SourceFile:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidSourceType, sourceType)
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
