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


package strategy

import (
	"regexp"
	"strings"
)

// Kind is a retrieval strategy variant.
type Kind int

const (
	// LocalOnly serves exclusively from the knowledge store.
	LocalOnly Kind = iota
	// WebFirst queries the external provider, falling back to local
	// when the provider fails.
	WebFirst
	// Hybrid splits the budget between local and web, minority local.
	Hybrid
	// LocalFirst searches locally and escalates to web when local
	// yields fewer than two results.
	LocalFirst
	// WebOnly is never produced by Classify. The orchestrator re-marks a
	// LocalFirst answer with it when local search came up empty and the
	// whole response was served from the web leg.
	WebOnly
)

// String returns the strategy name used in logs and answer metadata.
func (k Kind) String() string {
	switch k {
	case LocalOnly:
		return "local-only"
	case WebFirst:
		return "web-first"
	case Hybrid:
		return "hybrid"
	case LocalFirst:
		return "local-first"
	case WebOnly:
		return "web-only"
	default:
		return "unknown"
	}
}

// DefaultBudget is the total result budget a plan distributes.
const DefaultBudget = 5

// Plan is the output of classification: where to search, and how many
// results each side may contribute.
type Plan struct {
	Kind        Kind
	LocalBudget int
	WebBudget   int
}

// Personal questions address the assistant's operator directly.
var personalPhrases = []string{
	"your experience",
	"your background",
	"your skills",
	"your portfolio",
	"your rate",
	"your availability",
	"about you",
	"about yourself",
	"who are you",
	"tell me about you",
	"do you offer",
	"can you build",
	"have you worked",
	"contact you",
	"hire you",
}

// Matched on word boundaries so "api" stays out of "capital" and "git"
// out of "digital".
var technicalPattern = regexp.MustCompile(`\b(` +
	`golang|javascript|typescript|python|react|` +
	`docker|kubernetes|linux|git|sql|redis|` +
	`api|apis|database|server|servers|backend|frontend|` +
	`framework|frameworks|library|deployment|microservices?|` +
	`programming|code|software|architecture|devops` +
	`)\b`)

// Word boundaries matter here: "now" must not fire inside "know".
var currentInfoPattern = regexp.MustCompile(
	`\b(latest|current|recent|recently|today|now|news|trending|updates?)\b`)

var currentInfoPhrases = []string{"this year", "this month"}

// Years read as a request for fresh information.
var yearPattern = regexp.MustCompile(`\b20\d{2}\b`)

var specificPhrases = []string{
	"how to", "how do i", "how can i", "step by step",
	"tutorial", "guide", "example", "walkthrough",
}

var comparisonWords = []string{
	" vs ", " versus ", "compare", "comparison", "difference between",
	"better than", "which is better",
}

// Classify maps a query to a retrieval plan. Deterministic and
// side-effect-free: the same query always yields the same plan.
func Classify(query string) Plan {
	q := strings.ToLower(strings.TrimSpace(query))

	switch {
	case isPersonal(q):
		return Plan{Kind: LocalOnly, LocalBudget: DefaultBudget}
	case needsCurrentInfo(q):
		return Plan{Kind: WebFirst, LocalBudget: DefaultBudget, WebBudget: DefaultBudget}
	case isTechnical(q):
		local := DefaultBudget * 2 / 5
		return Plan{Kind: Hybrid, LocalBudget: local, WebBudget: DefaultBudget - local}
	default:
		return Plan{Kind: LocalFirst, LocalBudget: DefaultBudget, WebBudget: DefaultBudget}
	}
}

func isPersonal(q string) bool {
	return containsAny(q, personalPhrases)
}

func needsCurrentInfo(q string) bool {
	return currentInfoPattern.MatchString(q) ||
		containsAny(q, currentInfoPhrases) ||
		yearPattern.MatchString(q)
}

func isTechnical(q string) bool {
	return technicalPattern.MatchString(q)
}

// IsSpecific reports how-to or tutorial phrasing. It doesn't change the
// plan kind; callers use it to bias result presentation.
func IsSpecific(query string) bool {
	return containsAny(strings.ToLower(query), specificPhrases)
}

// IsComparison reports compare-two-things phrasing.
func IsComparison(query string) bool {
	return containsAny(strings.ToLower(query), comparisonWords)
}

func containsAny(q string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}
