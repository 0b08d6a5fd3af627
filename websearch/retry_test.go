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


package websearch_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recallkit/recall/websearch"
	"github.com/recallkit/recall/websearch/mock"
)

func TestRetryingReturnsFirstSuccess(t *testing.T) {
	inner := mock.NewMockProvider()

	provider := websearch.NewRetrying(inner, 3, time.Millisecond)
	resp := provider.Search(context.Background(), "test query", 3)

	require.True(t, resp.Success)
	assert.Equal(t, 1, inner.CallCount())
}

func TestRetryingRecoversFromTransientFailure(t *testing.T) {
	inner := mock.NewMockProvider()
	calls := 0
	inner.SearchFunc = func(ctx context.Context, query string, limit int) *websearch.Response {
		calls++
		if calls < 3 {
			return websearch.Failure(inner.Name())
		}
		return &websearch.Response{
			Results:  []websearch.Result{{Title: "recovered"}},
			Provider: inner.Name(),
			Success:  true,
		}
	}

	provider := websearch.NewRetrying(inner, 3, time.Millisecond)
	resp := provider.Search(context.Background(), "test query", 3)

	require.True(t, resp.Success)
	assert.Equal(t, 3, inner.CallCount())
	assert.Equal(t, "recovered", resp.Results[0].Title)
}

func TestRetryingGivesUpAfterMaxAttempts(t *testing.T) {
	inner := mock.NewFailingProvider()

	provider := websearch.NewRetrying(inner, 3, time.Millisecond)
	resp := provider.Search(context.Background(), "test query", 3)

	assert.False(t, resp.Success)
	assert.Equal(t, 3, inner.CallCount())
}

func TestRetryingStopsOnContextCancel(t *testing.T) {
	inner := mock.NewFailingProvider()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := websearch.NewRetrying(inner, 5, time.Hour)
	resp := provider.Search(ctx, "test query", 3)

	assert.False(t, resp.Success)
	// The cancelled context is observed before the first backoff expires.
	assert.LessOrEqual(t, inner.CallCount(), 1)
}

func TestRetryingPreservesProviderName(t *testing.T) {
	inner := mock.NewMockProvider()
	provider := websearch.NewRetrying(inner, 2, time.Millisecond)
	assert.Equal(t, "mock", provider.Name())
}
