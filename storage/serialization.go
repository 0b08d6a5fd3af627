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
	"encoding/json"
	"fmt"

	"github.com/recallkit/recall/core"
)

// MarshalKnowledgeEntry serializes a KnowledgeEntry to its JSON wire form.
// The JSON field names on the core types are the persisted schema;
// changing them breaks existing databases, backups, and exports.
func MarshalKnowledgeEntry(entry *core.KnowledgeEntry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalKnowledgeEntry deserializes a KnowledgeEntry from its JSON wire form.
func UnmarshalKnowledgeEntry(data []byte) (*core.KnowledgeEntry, error) {
	var entry core.KnowledgeEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}

// MarshalConversationEntry serializes a ConversationEntry to its JSON wire form.
func MarshalConversationEntry(entry *core.ConversationEntry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalConversationEntry deserializes a ConversationEntry from its JSON wire form.
func UnmarshalConversationEntry(data []byte) (*core.ConversationEntry, error) {
	var entry core.ConversationEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}
