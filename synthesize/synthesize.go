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


// Package synthesize turns search results into answer text.
//
// Compose is a pure function: no I/O, no randomness, no state. Local
// results always precede web results in the output, and the web section
// header depends on whether local content came before it.
package synthesize

import (
	"fmt"
	"strings"

	"github.com/recallkit/recall/core"
	"github.com/recallkit/recall/strategy"
	"github.com/recallkit/recall/websearch"
)

// excerptLength bounds the preview taken from non-lead local entries.
const excerptLength = 120

// Fallback is returned when neither search side produced anything.
const Fallback = "I don't have information on that yet. I can help with " +
	"services and pricing, project timelines and process, technical " +
	"consulting, and how to get in touch."

// Compose builds the answer text from local and web results. The top
// local entry's content leads verbatim; remaining local entries appear
// as title plus excerpt; web results follow under a header that differs
// depending on whether local content preceded them. One trailer sentence
// names the strategy that produced the answer.
func Compose(query string, local []*core.SearchResult, web []websearch.Result, kind strategy.Kind) string {
	if len(local) == 0 && len(web) == 0 {
		return Fallback
	}

	var b strings.Builder

	if len(local) > 0 {
		b.WriteString(local[0].Entry.Content)
		b.WriteString("\n")

		for _, result := range local[1:] {
			fmt.Fprintf(&b, "\n**%s**: %s\n",
				result.Entry.Title, excerpt(result.Entry.Content))
		}
	}

	if len(web) > 0 {
		if len(local) > 0 {
			b.WriteString("\nHere's the latest information from the web:\n")
		} else {
			b.WriteString("Here's what I found online:\n")
		}
		for _, result := range web {
			fmt.Fprintf(&b, "\n**%s**\n%s\nSource: %s\n",
				result.Title, result.Snippet, result.URL)
		}
	}

	b.WriteString("\n")
	b.WriteString(trailer(kind))
	return b.String()
}

// trailer returns the per-strategy closing sentence. Wording is distinct
// per variant so the provenance survives in plain text.
func trailer(kind strategy.Kind) string {
	switch kind {
	case strategy.LocalOnly:
		return "This comes straight from my own knowledge base."
	case strategy.WebFirst:
		return "I prioritized fresh web sources for this; details may change quickly."
	case strategy.Hybrid:
		return "I combined my own knowledge with current results from the web."
	case strategy.LocalFirst:
		return "I answered from my own knowledge and added web results where they help."
	case strategy.WebOnly:
		return "My own knowledge had nothing on this, so everything here is from the web."
	default:
		return "I put this together from the sources available to me."
	}
}

// excerpt shortens content to a preview, cutting on a word boundary.
func excerpt(content string) string {
	content = strings.TrimSpace(content)
	if len(content) <= excerptLength {
		return content
	}
	cut := content[:excerptLength]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
