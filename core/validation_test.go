package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateKnowledgeEntry(t *testing.T) {
	valid := Metadata{
		LastUpdated: time.Now().Add(-1 * time.Hour),
		Confidence:  0.9,
		SourceType:  SourceManual,
	}

	tests := []struct {
		name    string
		entry   *KnowledgeEntry
		wantErr error
	}{
		{
			name: "valid entry",
			entry: &KnowledgeEntry{
				ID:       "kb_1",
				Title:    "Pricing",
				Content:  "Projects start at a fixed estimate.",
				Category: "business",
				Metadata: valid,
			},
			wantErr: nil,
		},
		{
			name: "valid entry without embedding",
			entry: &KnowledgeEntry{
				Title:    "Services",
				Content:  "Web development and consulting.",
				Metadata: valid,
			},
			wantErr: nil,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidKnowledgeEntry,
		},
		{
			name: "empty title",
			entry: &KnowledgeEntry{
				Content:  "content",
				Metadata: valid,
			},
			wantErr: ErrEmptyTitle,
		},
		{
			name: "empty content",
			entry: &KnowledgeEntry{
				Title:    "title",
				Metadata: valid,
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "confidence above one",
			entry: &KnowledgeEntry{
				Title:   "title",
				Content: "content",
				Metadata: Metadata{
					Confidence: 1.5,
					SourceType: SourceManual,
				},
			},
			wantErr: ErrInvalidConfidence,
		},
		{
			name: "unknown source type",
			entry: &KnowledgeEntry{
				Title:   "title",
				Content: "content",
				Metadata: Metadata{
					Confidence: 0.5,
					SourceType: SourceType("oracle"),
				},
			},
			wantErr: ErrInvalidSourceType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKnowledgeEntry(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateKnowledgeEntry() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateKnowledgeEntry() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConversationEntry(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Minute)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		entry   *ConversationEntry
		wantErr error
	}{
		{
			name: "valid rated entry",
			entry: &ConversationEntry{
				Question:  "What services do you offer?",
				Answer:    "Web development.",
				Rating:    5,
				Timestamp: validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid unrated entry",
			entry: &ConversationEntry{
				Question:  "How much does a project cost?",
				Answer:    "It depends on scope.",
				Timestamp: validTime,
			},
			wantErr: nil,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidConversationEntry,
		},
		{
			name: "empty question",
			entry: &ConversationEntry{
				Answer:    "answer",
				Timestamp: validTime,
			},
			wantErr: ErrEmptyQuestion,
		},
		{
			name: "empty answer",
			entry: &ConversationEntry{
				Question:  "question",
				Timestamp: validTime,
			},
			wantErr: ErrEmptyAnswer,
		},
		{
			name: "rating out of range",
			entry: &ConversationEntry{
				Question:  "question",
				Answer:    "answer",
				Rating:    7,
				Timestamp: validTime,
			},
			wantErr: ErrInvalidRating,
		},
		{
			name: "future timestamp",
			entry: &ConversationEntry{
				Question:  "question",
				Answer:    "answer",
				Timestamp: futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConversationEntry(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateConversationEntry() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateConversationEntry() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRating(t *testing.T) {
	for rating := 1; rating <= 5; rating++ {
		if err := ValidateRating(rating); err != nil {
			t.Errorf("ValidateRating(%d) = %v, want nil", rating, err)
		}
	}
	for _, rating := range []int{0, -1, 6, 100} {
		if err := ValidateRating(rating); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("ValidateRating(%d) = %v, want ErrInvalidRating", rating, err)
		}
	}
}
