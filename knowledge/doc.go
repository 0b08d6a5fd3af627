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


// Package knowledge implements the in-memory knowledge store with scored
// search over the full corpus.
//
// The store keeps every entry resident and scores all of them per query
// with the additive relevance combiner from the score package. Entries
// that meet the relevance threshold have their usage counter incremented
// even when the result-count limit later cuts them off; usage tracks
// qualification, not delivery. Writes go through the backing repository
// before the in-memory view changes, except usage-count increments which
// persist best-effort.
package knowledge
