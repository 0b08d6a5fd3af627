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


// Package vectorize turns text into fixed-length TF-IDF weighted term
// vectors over an immutable vocabulary.
//
// The vocabulary is built once at startup from curated domain terms plus a
// common-word list. The IDF table is mutable and only changes through
// Vectorizer.UpdateCorpus; between corpus updates embeddings may be stale
// relative to the knowledge store contents. That staleness is an accepted
// trade-off, not a bug: incremental additions embed against the current
// table and are re-embedded on the next corpus refresh.
//
// Vectors are L2-normalized, or all-zero when the text shares no terms
// with the vocabulary. These are sparse lexical vectors, not learned
// neural embeddings.
package vectorize
