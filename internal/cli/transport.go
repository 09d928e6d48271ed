package cli

import (
	"context"
	"fmt"
	"log/slog"

	"docrelay/internal/backend"
	"docrelay/internal/config"
	"docrelay/internal/stream"
	"docrelay/internal/stream/socket"
	"docrelay/internal/stream/sse"
)

const (
	transportSSE    = "sse"
	transportSocket = "ws"
	transportHTTP   = "http"
)

// asker streams one answer, handing each chunk to onChunk.
type asker interface {
	Ask(ctx context.Context, question string, onChunk stream.ChunkFunc) error
	Close() error
}

type sseAsker struct{ c *sse.Client }

func (a sseAsker) Ask(ctx context.Context, q string, onChunk stream.ChunkFunc) error {
	_, err := a.c.Ask(ctx, q, onChunk)
	return err
}

func (sseAsker) Close() error { return nil }

type socketAsker struct{ c *socket.Client }

func (a socketAsker) Ask(ctx context.Context, q string, onChunk stream.ChunkFunc) error {
	_, err := a.c.Ask(ctx, q, onChunk)
	return err
}

func (a socketAsker) Close() error { return a.c.Close() }

// httpAsker uses the blocking ask endpoint; the whole answer is one chunk.
type httpAsker struct{ c *backend.Client }

func (a httpAsker) Ask(ctx context.Context, q string, onChunk stream.ChunkFunc) error {
	answer, err := a.c.Ask(ctx, q)
	if err != nil {
		return err
	}
	if onChunk != nil {
		onChunk(answer)
	}
	return nil
}

func (httpAsker) Close() error { return nil }

func newAsker(ctx context.Context, cfg *config.Config, transport string, log *slog.Logger) (asker, error) {
	switch transport {
	case transportSSE:
		return sseAsker{sse.New(cfg.Backend.StreamURL, sse.WithLogger(log))}, nil
	case transportSocket:
		c, err := socket.Dial(ctx, cfg.Backend.SocketURL, socket.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return socketAsker{c}, nil
	case transportHTTP:
		return httpAsker{backend.New(cfg.Backend.BaseURL, backend.WithTimeout(cfg.Backend.Timeout))}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q (want %s, %s or %s)", transport, transportSSE, transportSocket, transportHTTP)
	}
}
