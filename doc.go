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


// Package recall is a local-first question answering assistant that
// learns from feedback.
//
// An Assistant answers from three sources in fixed order: answers the
// user previously rated five stars, the best match from the local
// knowledge store, and a response synthesized from local and web search
// results. Ratings feed back into the system: high ratings promote
// answers into the corpus, low ratings block them from ever being served
// again. All state persists in a single BadgerDB directory.
//
// Basic usage:
//
//	assistant, err := recall.NewAssistant("/var/lib/recall")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer assistant.Close()
//
//	answer := assistant.Answer(ctx, "what services do you offer?")
//	fmt.Println(answer.Text)
//
//	// Teach it.
//	assistant.Rate(ctx, "what services do you offer?", answer.Text, 5, "")
package recall
