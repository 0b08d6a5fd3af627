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


// Command seeder loads a starter knowledge corpus so a fresh install
// has something to answer from. Entries come from the built-in set, or
// from a pipe-separated file (title|category|content per line).
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/recallkit/recall"
)

var (
	dbPath   = flag.String("db", "./recall_db", "path to the storage directory")
	seedFile = flag.String("file", "", "optional seed file, title|category|content per line")
)

type seedEntry struct {
	title    string
	category string
	content  string
}

var starterEntries = []seedEntry{
	{
		title:    "Services overview",
		category: "services",
		content: "I offer full-cycle software development: backend services, " +
			"web applications, APIs, and the deployment and hosting work to run " +
			"them in production. Engagements range from short consulting calls " +
			"to multi-month builds.",
	},
	{
		title:    "Project pricing",
		category: "pricing",
		content: "Most projects are quoted as a fixed estimate after a free " +
			"scoping call. The estimate covers scope, timeline, and milestones. " +
			"Small tasks and ongoing advisory work bill at an hourly rate instead.",
	},
	{
		title:    "Hourly rates and retainers",
		category: "pricing",
		content: "Hourly consulting is available for audits, reviews, and " +
			"short engagements. Monthly retainers cover maintenance, monitoring, " +
			"and a guaranteed response time for urgent fixes.",
	},
	{
		title:    "Typical project timeline",
		category: "process",
		content: "A typical project runs six to twelve weeks: one week of " +
			"scoping and design, iterative development with weekly demos, then a " +
			"deployment and handover phase with documentation.",
	},
	{
		title:    "Technology background",
		category: "portfolio",
		content: "Primary stack is Go on the backend with PostgreSQL or Redis " +
			"for storage, Docker and Kubernetes for deployment, and TypeScript " +
			"with React on the frontend. Strong focus on testing and performance.",
	},
	{
		title:    "Maintenance and support",
		category: "services",
		content: "Maintenance plans include dependency updates, security " +
			"patching, backup checks, and small fixes. Support requests are " +
			"answered within one business day.",
	},
	{
		title:    "How to get in touch",
		category: "contact",
		content: "The fastest way to reach me is email. Include a short " +
			"description of the project and your timeline; I reply with a few " +
			"meeting slots for a free scoping call.",
	},
}

func main() {
	flag.Parse()

	assistant, err := recall.NewAssistant(*dbPath)
	if err != nil {
		panic(err)
	}
	defer assistant.Close()

	ctx := context.Background()

	entries := starterEntries
	if *seedFile != "" {
		entries, err = entriesFromFile(*seedFile)
		if err != nil {
			panic(err)
		}
	}

	for _, entry := range entries {
		if _, err := assistant.AddKnowledge(ctx, entry.title, entry.content, entry.category); err != nil {
			panic(err)
		}
	}

	// New documents should influence term weights right away.
	if err := assistant.RefreshCorpus(ctx); err != nil {
		panic(err)
	}

	fmt.Printf("seeded %d entries into %s\n", len(entries), *dbPath)
}

func entriesFromFile(path string) ([]seedEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []seedEntry
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		parts := strings.SplitN(text, "|", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("line %d: expected title|category|content", line)
		}
		entries = append(entries, seedEntry{
			title:    strings.TrimSpace(parts[0]),
			category: strings.TrimSpace(parts[1]),
			content:  strings.TrimSpace(parts[2]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
