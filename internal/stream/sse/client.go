// Package sse asks questions over a server-push event stream. Each question
// opens its own stream; starting a new one cancels the previous.
package sse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"docrelay/internal/models"
	"docrelay/internal/stream"
)

const (
	EventMessage = "message"
	EventDone    = "done"
	EventError   = "error"
)

var (
	ErrStreamInterrupted = errors.New("stream ended before done event")
	ErrCanceled          = errors.New("stream replaced by a newer question")
)

type State int

const (
	StateIdle State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "idle"
	}
}

type Client struct {
	endpoint string
	cl       *http.Client
	log      *slog.Logger
	registry *stream.Registry

	mu     sync.Mutex
	state  State
	seq    uint64
	cancel context.CancelCauseFunc
}

type Option func(*Client)

func WithHTTPClient(cl *http.Client) Option {
	return func(c *Client) {
		if cl != nil {
			c.cl = cl
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New builds a client for the stream endpoint, e.g.
// http://localhost:8000/ask/stream.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		cl:       &http.Client{},
		log:      slog.Default(),
		registry: stream.NewRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Ask streams the answer to question, calling onChunk for every message
// event. It returns once the done event arrives, the stream breaks, or ctx
// ends. A concurrent or later Ask cancels this one with ErrCanceled.
func (c *Client) Ask(ctx context.Context, question string, onChunk stream.ChunkFunc) (*stream.Response, error) {
	q, err := models.NormalizeQuestion(question)
	if err != nil {
		return nil, err
	}
	target, err := c.streamURL(q)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	seq := c.open(cancel)
	defer c.close(seq, cancel)

	resp := c.registry.Open(q, onChunk)
	err = c.consume(ctx, target, resp)
	if err != nil && ctx.Err() != nil {
		err = context.Cause(ctx)
	}
	c.registry.Finish(resp.ID, err)
	return resp, resp.Err()
}

func (c *Client) open(cancel context.CancelCauseFunc) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel(ErrCanceled)
	}
	c.seq++
	c.cancel = cancel
	c.state = StateOpen
	return c.seq
}

func (c *Client) close(seq uint64, cancel context.CancelCauseFunc) {
	cancel(nil)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq == seq {
		c.cancel = nil
		c.state = StateClosed
	}
}

func (c *Client) streamURL(question string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse stream url: %w", err)
	}
	query := u.Query()
	query.Set("question", question)
	u.RawQuery = query.Encode()
	return u.String(), nil
}

func (c *Client) consume(ctx context.Context, target string, resp *stream.Response) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	httpResp, err := c.cl.Do(req)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("open stream: status %d", httpResp.StatusCode)
	}

	c.log.Debug("stream open", "id", resp.ID)
	events := NewReader(httpResp.Body)
	for {
		ev, err := events.Next()
		if errors.Is(err, io.EOF) {
			return ErrStreamInterrupted
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
		switch ev.Name {
		case EventMessage:
			c.registry.Append(resp.ID, ev.Data)
		case EventDone:
			c.log.Debug("stream done", "id", resp.ID)
			return nil
		case EventError:
			return fmt.Errorf("backend: %s", ev.Data)
		default:
			c.log.Debug("ignoring event", "event", ev.Name)
		}
	}
}
