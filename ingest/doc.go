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


// Package ingest loads text files into the knowledge store.
//
// Files are split into overlapping chunks, each chunk becoming one
// knowledge entry with source type "file". Files process concurrently on
// a worker pool; a failed file is logged and skipped, it never aborts
// the batch. After a batch the corpus idf table is refreshed so the new
// documents influence term weights.
package ingest
