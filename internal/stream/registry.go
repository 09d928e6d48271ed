// Package stream tracks answers that arrive incrementally. Every question
// gets a Response keyed by a request id, so chunks for overlapping questions
// never mix.
package stream

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ChunkFunc observes each chunk as it is appended.
type ChunkFunc func(chunk string)

// Response accumulates the chunks of one answer.
type Response struct {
	ID       string
	Question string

	mu       sync.Mutex
	buf      strings.Builder
	finished bool
	err      error
	done     chan struct{}
	onChunk  ChunkFunc
}

func newResponse(id, question string, onChunk ChunkFunc) *Response {
	return &Response{
		ID:       id,
		Question: question,
		done:     make(chan struct{}),
		onChunk:  onChunk,
	}
}

func (r *Response) append(chunk string) bool {
	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		return false
	}
	r.buf.WriteString(chunk)
	fn := r.onChunk
	r.mu.Unlock()
	if fn != nil {
		fn(chunk)
	}
	return true
}

func (r *Response) finish(err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return false
	}
	r.finished = true
	r.err = err
	close(r.done)
	return true
}

// Text is the answer so far.
func (r *Response) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// Done is closed once the answer is complete or failed.
func (r *Response) Done() <-chan struct{} {
	return r.done
}

// Err reports why the answer ended early. It is nil while streaming and
// after a clean finish.
func (r *Response) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Wait blocks until the answer finishes or ctx ends.
func (r *Response) Wait(ctx context.Context) (string, error) {
	select {
	case <-r.done:
		return r.Text(), r.Err()
	case <-ctx.Done():
		return r.Text(), ctx.Err()
	}
}

// Registry holds the unfinished responses in the order they were opened.
type Registry struct {
	mu    sync.Mutex
	byID  map[string]*Response
	order []string
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Response)}
}

// Open registers a response under a fresh request id.
func (r *Registry) Open(question string, onChunk ChunkFunc) *Response {
	resp := newResponse(uuid.NewString(), question, onChunk)
	r.mu.Lock()
	r.byID[resp.ID] = resp
	r.order = append(r.order, resp.ID)
	r.mu.Unlock()
	return resp
}

func (r *Registry) Get(id string) (*Response, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp, ok := r.byID[id]
	return resp, ok
}

// Oldest is the earliest opened response that has not finished.
func (r *Registry) Oldest() (*Response, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.order) == 0 {
		return nil, false
	}
	return r.byID[r.order[0]], true
}

// Append adds a chunk to the response with the given id. Chunks for unknown
// or finished responses are dropped.
func (r *Registry) Append(id, chunk string) bool {
	resp, ok := r.Get(id)
	if !ok {
		return false
	}
	return resp.append(chunk)
}

// Finish completes a response and forgets it.
func (r *Registry) Finish(id string, err error) bool {
	r.mu.Lock()
	resp, ok := r.byID[id]
	if ok {
		r.remove(id)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	return resp.finish(err)
}

// FinishAll fails every unfinished response, e.g. when the transport drops.
func (r *Registry) FinishAll(err error) {
	r.mu.Lock()
	pending := make([]*Response, 0, len(r.order))
	for _, id := range r.order {
		pending = append(pending, r.byID[id])
	}
	r.byID = make(map[string]*Response)
	r.order = nil
	r.mu.Unlock()

	for _, resp := range pending {
		resp.finish(err)
	}
}

// Len is the number of unfinished responses.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// remove expects r.mu to be held.
func (r *Registry) remove(id string) {
	delete(r.byID, id)
	for i, candidate := range r.order {
		if candidate == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
