// Package socket asks questions over one long-lived WebSocket connection.
// Questions are tagged with request ids, so answers to overlapping questions
// stay apart.
package socket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"docrelay/internal/models"
	"docrelay/internal/stream"
)

var ErrClosed = errors.New("socket closed")

const writeWait = 10 * time.Second

type Client struct {
	conn     *websocket.Conn
	log      *slog.Logger
	registry *stream.Registry

	writeMu sync.Mutex

	closeOnce sync.Once
	closed    chan struct{}
	readErr   error
}

type Option func(*dialOptions)

type dialOptions struct {
	dialer *websocket.Dialer
	header http.Header
	log    *slog.Logger
}

func WithDialer(d *websocket.Dialer) Option {
	return func(o *dialOptions) {
		if d != nil {
			o.dialer = d
		}
	}
}

func WithHeader(h http.Header) Option {
	return func(o *dialOptions) { o.header = h }
}

func WithLogger(log *slog.Logger) Option {
	return func(o *dialOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// Dial connects once. The connection is reused for every question and is
// not re-established if it drops.
func Dial(ctx context.Context, endpoint string, opts ...Option) (*Client, error) {
	o := dialOptions{dialer: websocket.DefaultDialer, log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	conn, resp, err := o.dialer.DialContext(ctx, endpoint, o.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", endpoint, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	c := &Client{
		conn:     conn,
		log:      o.log,
		registry: stream.NewRegistry(),
		closed:   make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Send submits a question and returns its pending response without waiting.
func (c *Client) Send(question string, onChunk stream.ChunkFunc) (*stream.Response, error) {
	q, err := models.NormalizeQuestion(question)
	if err != nil {
		return nil, err
	}
	select {
	case <-c.closed:
		return nil, ErrClosed
	default:
	}

	resp := c.registry.Open(q, onChunk)
	select {
	case <-c.closed:
		c.registry.Finish(resp.ID, ErrClosed)
		return nil, ErrClosed
	default:
	}
	if err := c.write(request{ID: resp.ID, Question: q}); err != nil {
		c.registry.Finish(resp.ID, err)
		return nil, err
	}
	return resp, nil
}

// Ask submits a question and waits for its done frame.
func (c *Client) Ask(ctx context.Context, question string, onChunk stream.ChunkFunc) (*stream.Response, error) {
	resp, err := c.Send(question, onChunk)
	if err != nil {
		return nil, err
	}
	if _, err := resp.Wait(ctx); err != nil {
		return resp, err
	}
	return resp, nil
}

// Pending is the number of questions still waiting for done.
func (c *Client) Pending() int {
	return c.registry.Len()
}

// Done is closed once the connection is gone.
func (c *Client) Done() <-chan struct{} {
	return c.closed
}

func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()
	err := c.conn.Close()
	<-c.closed
	return err
}

func (c *Client) write(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("send question: %w", err)
	}
	return nil
}

func (c *Client) readLoop() {
	defer c.shutdown()
	for {
		mt, payload, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("socket read failed", "error", err)
			}
			c.readErr = err
			return
		}
		c.dispatch(Decode(mt, payload))
	}
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		err := ErrClosed
		if c.readErr != nil {
			err = fmt.Errorf("%w: %v", ErrClosed, c.readErr)
		}
		c.registry.FinishAll(err)
		close(c.closed)
	})
}

// target resolves the response a frame belongs to. Frames without an id go to
// the oldest unfinished question.
func (c *Client) target(id string) (*stream.Response, bool) {
	if id != "" {
		return c.registry.Get(id)
	}
	return c.registry.Oldest()
}

func (c *Client) dispatch(env Envelope) {
	resp, ok := c.target(env.ID)
	if !ok {
		if env.Event != EventReady {
			c.log.Debug("dropping frame", "type", env.Type, "event", env.Event, "id", env.ID)
		}
		return
	}
	if env.IsToken() {
		c.registry.Append(resp.ID, env.Data)
		return
	}
	switch env.Event {
	case EventDone:
		c.registry.Finish(resp.ID, nil)
	case EventError:
		c.registry.Finish(resp.ID, fmt.Errorf("backend: %s", env.Data))
	case EventReady:
	default:
		c.log.Debug("ignoring control frame", "event", env.Event)
	}
}
