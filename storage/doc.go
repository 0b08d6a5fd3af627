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


// Package storage provides the storage abstraction layer for recall.
//
// It defines repository interfaces over the three logical collections the
// system persists (knowledge entries, the append-only conversation log,
// and the excellent/blocked partitions) so different backends (BadgerDB,
// in-memory) can be used interchangeably. There is no runtime
// type-switching between backends: swapping storage is an explicit
// Migrate call over the repository interfaces.
//
// # Constructor Return Type Pattern
//
// Public backend constructors return interface types to enforce
// abstraction:
//
//	repo, err := badger.NewKnowledgeRepository(backend)  // storage.KnowledgeRepository
//
// # Serialization
//
// Records are persisted as JSON in the documented wire schema
// (lastUpdated and timestamp fields as RFC 3339). A record that fails to
// unmarshal is skipped with a warning rather than aborting the read; the
// warning is the deliberate improvement over silently replacing corrupt
// data with empty defaults.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
