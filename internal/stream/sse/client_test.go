package sse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrelay/internal/models"
)

func writeEvents(w http.ResponseWriter, frames ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	flusher, _ := w.(http.Flusher)
	for _, frame := range frames {
		fmt.Fprint(w, frame)
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func TestAskConcatenatesUntilDone(t *testing.T) {
	questions := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		questions <- r.URL.Query().Get("question")
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		writeEvents(w,
			"data: Hel\n\n",
			"data: lo\n\n",
			"event: done\ndata: {}\n\n",
			"data: after done\n\n",
		)
	}))
	defer srv.Close()

	var chunks []string
	client := New(srv.URL + "/ask/stream")
	resp, err := client.Ask(context.Background(), "  say hi & more ", func(c string) { chunks = append(chunks, c) })
	require.NoError(t, err)
	assert.Equal(t, "Hello", resp.Text())
	assert.Equal(t, []string{"Hel", "lo"}, chunks)
	assert.Equal(t, "say hi & more", <-questions)
	assert.Equal(t, StateClosed, client.State())
}

func TestAskInterrupted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, "data: partial\n\n")
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Ask(context.Background(), "q", nil)
	assert.ErrorIs(t, err, ErrStreamInterrupted)
	assert.Equal(t, "partial", resp.Text())
}

func TestAskBackendErrorEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, "event: error\ndata: no documents\n\n")
	}))
	defer srv.Close()

	_, err := New(srv.URL).Ask(context.Background(), "q", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no documents")
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer srv.Close()

	_, err := New(srv.URL).Ask(context.Background(), " \t", nil)
	assert.ErrorIs(t, err, models.ErrEmptyQuestion)
	assert.Zero(t, calls)
}

func TestAskBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Ask(context.Background(), "q", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNewQuestionCancelsPreviousStream(t *testing.T) {
	firstOpen := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("question") == "first" {
			writeEvents(w, "data: 1\n\n")
			<-r.Context().Done()
			return
		}
		writeEvents(w, "data: 2\n\n", "event: done\ndata: {}\n\n")
	}))
	defer srv.Close()

	client := New(srv.URL)
	var (
		wg       sync.WaitGroup
		firstErr error
		first    string
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		var once sync.Once
		resp, err := client.Ask(context.Background(), "first", func(string) {
			once.Do(func() { close(firstOpen) })
		})
		firstErr = err
		if resp != nil {
			first = resp.Text()
		}
	}()

	select {
	case <-firstOpen:
	case <-time.After(5 * time.Second):
		t.Fatal("first stream never opened")
	}

	second, err := client.Ask(context.Background(), "second", nil)
	require.NoError(t, err)
	assert.Equal(t, "2", second.Text())

	wg.Wait()
	assert.ErrorIs(t, firstErr, ErrCanceled)
	assert.Equal(t, "1", first)
}
