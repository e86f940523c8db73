package usage_test

import (
	"sync"
	"testing"

	"github.com/germanamz/docpipe/pkg/modeladapter/usage"
	"github.com/stretchr/testify/assert"
)

func TestTokenCount_Total(t *testing.T) {
	tc := usage.TokenCount{PromptTokens: 100, CompletionTokens: 50}
	assert.Equal(t, 150, tc.Total())
}

func TestTracker_Empty(t *testing.T) {
	var tr usage.Tracker

	assert.Zero(t, tr.Count())
	assert.Equal(t, usage.TokenCount{}, tr.Total())
	assert.Empty(t, tr.ByMode())
}

func TestTracker_AddCount(t *testing.T) {
	var tr usage.Tracker

	tr.Add(usage.TokenCount{Mode: usage.Completion, PromptTokens: 10, CompletionTokens: 5})
	tr.Add(usage.TokenCount{Mode: usage.Chat, PromptTokens: 20, CompletionTokens: 10})

	assert.Equal(t, 2, tr.Count())

	chat := tr.ByMode()[usage.Chat]
	assert.Equal(t, usage.Chat, chat.Mode)
	assert.Equal(t, 20, chat.PromptTokens)
}

func TestTracker_TotalAndByMode(t *testing.T) {
	var tr usage.Tracker

	tr.Add(usage.TokenCount{Mode: usage.Completion, PromptTokens: 10, CompletionTokens: 5})
	tr.Add(usage.TokenCount{Mode: usage.Completion, PromptTokens: 1, CompletionTokens: 1})
	tr.Add(usage.TokenCount{Mode: usage.Embedding, PromptTokens: 7})

	assert.Equal(t, usage.TokenCount{PromptTokens: 18, CompletionTokens: 6}, tr.Total())

	by := tr.ByMode()
	assert.Len(t, by, 2)
	assert.Equal(t, 11, by[usage.Completion].PromptTokens)
	assert.Equal(t, 6, by[usage.Completion].CompletionTokens)
	assert.Equal(t, 7, by[usage.Embedding].Total())
}

func TestTracker_ConcurrentAdd(t *testing.T) {
	var tr usage.Tracker
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Add(usage.TokenCount{Mode: usage.Completion, PromptTokens: 1, CompletionTokens: 1})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, tr.Count())
	assert.Equal(t, 100, tr.Total().Total())
}

func TestTracker_ByModeIsCopy(t *testing.T) {
	var tr usage.Tracker
	tr.Add(usage.TokenCount{Mode: usage.Chat, PromptTokens: 3})

	by := tr.ByMode()
	by[usage.Chat] = usage.TokenCount{}

	assert.Equal(t, 3, tr.ByMode()[usage.Chat].PromptTokens)
}
