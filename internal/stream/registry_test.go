package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryKeepsResponsesApart(t *testing.T) {
	reg := NewRegistry()
	first := reg.Open("one", nil)
	second := reg.Open("two", nil)
	require.NotEqual(t, first.ID, second.ID)

	assert.True(t, reg.Append(second.ID, "B"))
	assert.True(t, reg.Append(first.ID, "A"))
	assert.True(t, reg.Append(second.ID, "b"))

	assert.Equal(t, "A", first.Text())
	assert.Equal(t, "Bb", second.Text())
}

func TestRegistryOldest(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Oldest()
	assert.False(t, ok)

	first := reg.Open("one", nil)
	second := reg.Open("two", nil)

	oldest, ok := reg.Oldest()
	require.True(t, ok)
	assert.Equal(t, first.ID, oldest.ID)

	require.True(t, reg.Finish(first.ID, nil))
	oldest, ok = reg.Oldest()
	require.True(t, ok)
	assert.Equal(t, second.ID, oldest.ID)
	assert.Equal(t, 1, reg.Len())
}

func TestFinishDropsLateChunks(t *testing.T) {
	reg := NewRegistry()
	resp := reg.Open("q", nil)
	reg.Append(resp.ID, "Hel")
	reg.Append(resp.ID, "lo")
	require.True(t, reg.Finish(resp.ID, nil))

	assert.False(t, reg.Append(resp.ID, "!"))
	assert.False(t, reg.Finish(resp.ID, nil))
	assert.False(t, resp.append("!"))

	text, err := resp.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
}

func TestFinishAll(t *testing.T) {
	reg := NewRegistry()
	a := reg.Open("a", nil)
	b := reg.Open("b", nil)
	boom := errors.New("connection lost")

	reg.FinishAll(boom)
	assert.Zero(t, reg.Len())
	for _, resp := range []*Response{a, b} {
		select {
		case <-resp.Done():
		default:
			t.Fatalf("response %s not finished", resp.ID)
		}
		assert.ErrorIs(t, resp.Err(), boom)
	}
}

func TestChunkCallback(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	reg := NewRegistry()
	resp := reg.Open("q", func(chunk string) {
		mu.Lock()
		seen = append(seen, chunk)
		mu.Unlock()
	})
	reg.Append(resp.ID, "x")
	reg.Append(resp.ID, "y")
	assert.Equal(t, []string{"x", "y"}, seen)
}

func TestWaitHonoursContext(t *testing.T) {
	resp := NewRegistry().Open("q", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := resp.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
