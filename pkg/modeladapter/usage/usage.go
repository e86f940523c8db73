// Package usage tracks token consumption reported by the model service.
package usage

import "sync"

// Mode identifies the kind of call a token count belongs to.
type Mode string

const (
	Completion Mode = "completion"
	Chat       Mode = "chat"
	Embedding  Mode = "embedding"
)

// TokenCount holds the token counts the service reported for one call.
type TokenCount struct {
	Mode             Mode
	PromptTokens     int
	CompletionTokens int
}

// Total returns the sum of prompt and completion tokens.
func (tc TokenCount) Total() int {
	return tc.PromptTokens + tc.CompletionTokens
}

// Tracker accumulates token usage across calls. It keeps running totals per
// mode, so its size does not grow with the number of calls.
// It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	count  int
	byMode map[Mode]TokenCount
}

// Add records a token count entry.
func (t *Tracker) Add(tc TokenCount) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.byMode == nil {
		t.byMode = make(map[Mode]TokenCount)
	}

	agg := t.byMode[tc.Mode]
	agg.Mode = tc.Mode
	agg.PromptTokens += tc.PromptTokens
	agg.CompletionTokens += tc.CompletionTokens
	t.byMode[tc.Mode] = agg

	t.count++
}

// Total returns the aggregate token count across all entries. The Mode of the
// result is empty.
func (t *Tracker) Total() TokenCount {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total TokenCount
	for _, agg := range t.byMode {
		total.PromptTokens += agg.PromptTokens
		total.CompletionTokens += agg.CompletionTokens
	}

	return total
}

// ByMode returns the aggregate token count per call mode.
func (t *Tracker) ByMode() map[Mode]TokenCount {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[Mode]TokenCount, len(t.byMode))
	for m, agg := range t.byMode {
		out[m] = agg
	}

	return out
}

// Count returns the number of recorded entries.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.count
}
