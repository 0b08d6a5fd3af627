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


package recall

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// ExportReadable writes the knowledge corpus as a markdown document,
// grouped by category. Intended for human review, not for reimport; use
// Backup for machine-readable snapshots.
func (a *Assistant) ExportReadable(w io.Writer) error {
	entries := a.store.List()

	byCategory := make(map[string][]int)
	for i, entry := range entries {
		byCategory[entry.Category] = append(byCategory[entry.Category], i)
	}
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var b strings.Builder
	fmt.Fprintf(&b, "# Knowledge Base\n\nExported %s. %d entries.\n",
		time.Now().Format("2006-01-02"), len(entries))

	for _, category := range categories {
		fmt.Fprintf(&b, "\n## %s\n", category)
		for _, i := range byCategory[category] {
			entry := entries[i]
			fmt.Fprintf(&b, "\n### %s\n\n%s\n", entry.Title, entry.Content)
			if len(entry.Keywords) > 0 {
				fmt.Fprintf(&b, "\nKeywords: %s\n", strings.Join(entry.Keywords, ", "))
			}
			fmt.Fprintf(&b, "Source: %s | Used %d times | Updated %s\n",
				entry.Metadata.SourceType,
				entry.Metadata.UsageCount,
				entry.Metadata.LastUpdated.Format("2006-01-02"))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
