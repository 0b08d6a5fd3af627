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


package websearch

import (
	"context"
	"log/slog"
	"time"
)

// retryingProvider decorates a Provider with bounded retry and
// exponential backoff. A response with Success=false triggers a retry;
// context expiry stops immediately.
type retryingProvider struct {
	inner       Provider
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

var _ Provider = (*retryingProvider)(nil)

// NewRetrying wraps a provider with retry semantics.
// maxAttempts must be at least 1; baseDelay doubles on each retry.
func NewRetrying(inner Provider, maxAttempts int, baseDelay time.Duration) Provider {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &retryingProvider{
		inner:       inner,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      slog.Default().With("component", "websearch-retry"),
	}
}

func (r *retryingProvider) Name() string {
	return r.inner.Name()
}

func (r *retryingProvider) Search(ctx context.Context, query string, limit int) *Response {
	delay := r.baseDelay

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return Failure(r.inner.Name())
		default:
		}

		resp := r.inner.Search(ctx, query, limit)
		if resp.Success {
			if attempt > 1 {
				r.logger.Debug("search succeeded after retry", "attempt", attempt)
			}
			return resp
		}

		if attempt == r.maxAttempts {
			break
		}
		r.logger.Debug("search failed, will retry",
			"attempt", attempt, "maxAttempts", r.maxAttempts)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Failure(r.inner.Name())
		case <-timer.C:
		}
		delay *= 2
	}

	return Failure(r.inner.Name())
}
