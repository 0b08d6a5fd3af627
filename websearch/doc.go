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


// Package websearch defines the external search provider boundary.
//
// A Provider must never surface transport failures to the caller: a
// failed or timed-out search returns a Response with Success=false and no
// results, which the orchestrator treats as an empty result set and falls
// back to local-only answering.
//
// # Implementation Packages
//
//   - websearch/duck: DuckDuckGo Instant Answer API over HTTP
//   - websearch/mock: configurable test double
//
// NewRetrying wraps any Provider with bounded retry and exponential
// backoff; the orchestrator adds the call timeout on top via context.
package websearch
