package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type recordingInvalidator struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingInvalidator) InvalidateVideo(_ context.Context, ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	r.calls = append(r.calls, sorted)
}

func TestInvalidationWorker_BatchesDuplicates(t *testing.T) {
	inv := &recordingInvalidator{}
	w := NewInvalidationWorker(nil, inv, zerolog.Nop())

	for i := 0; i < 50; i++ {
		w.add("video-x")
	}
	w.add("video-y")
	w.add("")

	n := w.flush(context.Background())
	assert.Equal(t, 2, n)
	assert.Equal(t, [][]string{{"video-x", "video-y"}}, inv.calls)
}

func TestInvalidationWorker_EmptyFlush(t *testing.T) {
	inv := &recordingInvalidator{}
	w := NewInvalidationWorker(nil, inv, zerolog.Nop())

	assert.Zero(t, w.flush(context.Background()))
	assert.Empty(t, inv.calls)
}

func TestInvalidationWorker_FlushDrainsPending(t *testing.T) {
	inv := &recordingInvalidator{}
	w := NewInvalidationWorker(nil, inv, zerolog.Nop())

	w.add("a")
	w.flush(context.Background())
	w.flush(context.Background())
	assert.Len(t, inv.calls, 1)
}
