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


package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/recallkit/recall/core"
	"github.com/recallkit/recall/knowledge"
)

// ErrKnowledgeStoreRequired is returned when a knowledge store is not provided.
var ErrKnowledgeStoreRequired = errors.New("knowledge store required")

const (
	defaultChunkSize    = 800
	defaultChunkOverlap = 100
	defaultCategory     = "docs"
)

// Pipeline splits files into chunks and stores them as knowledge entries.
type Pipeline struct {
	store        *knowledge.Store
	pool         *ants.Pool
	chunkSize    int
	chunkOverlap int
	category     string
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent file processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunking overrides the chunk size and overlap, in characters.
func WithChunking(size, overlap int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("chunk size must be positive, got %d", size)
		}
		if overlap < 0 || overlap >= size {
			return fmt.Errorf("chunk overlap must be in [0, size), got %d", overlap)
		}
		p.chunkSize = size
		p.chunkOverlap = overlap
		return nil
	}
}

// WithCategory sets the category assigned to ingested entries.
// Default is "docs".
func WithCategory(category string) Option {
	return func(p *Pipeline) error {
		if category == "" {
			return fmt.Errorf("category cannot be empty")
		}
		p.category = category
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a file ingestion pipeline over the knowledge store.
func NewPipeline(store *knowledge.Store, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrKnowledgeStoreRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:        store,
		pool:         pool,
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
		category:     defaultCategory,
		logger:       slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	return p, nil
}

// IngestFiles loads each file, chunks it, and stores the chunks. Files
// run concurrently on the pool; the call returns after all complete.
// A file that cannot be read or stored is logged and skipped. Returns
// the number of entries created. The idf table is refreshed once at the
// end when anything was added.
func (p *Pipeline) IngestFiles(ctx context.Context, paths ...string) (int, error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	added := 0

	for _, path := range paths {
		wg.Add(1)
		path := path
		err := p.pool.Submit(func() {
			defer wg.Done()
			n, err := p.ingestFile(ctx, path)
			if err != nil {
				p.logger.Warn("skipping file", "path", path, "err", err)
				return
			}
			mu.Lock()
			added += n
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			p.logger.Warn("submitting file failed", "path", path, "err", err)
		}
	}
	wg.Wait()

	if added == 0 {
		return 0, nil
	}
	if err := p.store.RefreshCorpus(ctx); err != nil {
		return added, err
	}

	p.logger.Info("ingestion completed", "files", len(paths), "entries", added)
	return added, nil
}

// ingestFile chunks one file and stores each chunk as an entry.
func (p *Pipeline) ingestFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, nil
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(p.chunkSize),
		textsplitter.WithChunkOverlap(p.chunkOverlap),
	)
	chunks, err := splitter.SplitText(text)
	if err != nil {
		return 0, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stored := 0
	for i, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}

		title := name
		if len(chunks) > 1 {
			title = fmt.Sprintf("%s (part %d)", name, i+1)
		}
		entry := &core.KnowledgeEntry{
			Title:    title,
			Content:  chunk,
			Category: p.category,
			Metadata: core.Metadata{
				Confidence: 1.0,
				SourceType: core.SourceFile,
			},
		}
		if _, err := p.store.AddEntry(ctx, entry); err != nil {
			return stored, err
		}
		stored++
	}

	p.logger.Debug("file ingested", "path", path, "chunks", stored)
	return stored, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
