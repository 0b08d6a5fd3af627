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


// Package strategy classifies a query into a retrieval plan.
//
// Classification uses fixed keyword and regex sets only; Classify is a
// pure function of the query text. The plan says where to search and how
// to split the result budget. Escalation decisions that depend on actual
// result counts (local-first growing a web leg, web-first falling back to
// local) belong to the caller, which sees those counts.
package strategy
