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


// Package score combines several relevance signals into a single ranking
// key: cosine similarity over TF-IDF vectors, exact keyword and title
// hits, verbatim content matches, edit-distance fuzzy matches, and a
// category bonus.
//
// The combined score is additive and not bounded above. It is consumed
// only through threshold cutoff and descending sort; it is not a
// probability and must not be normalized. Downstream thresholds (the
// store's default 0.3 cutoff) are tuned against this exact scale, so the
// weight constants here change together with those thresholds or not at
// all.
package score
