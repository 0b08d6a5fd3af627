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


// Package feedback is the rating ledger: it turns user ratings into
// durable consequences.
//
// Every rating appends to an immutable conversation log. Five-star
// answers become excellent responses, replayed for similar questions.
// Four-star answers promote into the knowledge store as learned entries.
// Answers rated two or below join the blocked set, and the block gate
// suppresses any future candidate whose text overlaps a blocked answer,
// regardless of what question produced the candidate. Blocks are
// permanent: there is no unblock operation.
package feedback
