package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"docrelay/internal/display"
	"docrelay/internal/models"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var transport string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Read questions from stdin, one per line, and stream each answer",
		Long: `Read questions from stdin, one per line, and stream each answer.
With the ws transport every question shares one connection. The session ends
at end of input or on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			a, err := newAsker(ctx, cfg, transport, loggerFromCtx(ctx))
			if err != nil {
				return err
			}
			defer a.Close()
			return chat(ctx, cmd, a)
		},
	}
	cmd.Flags().StringVarP(&transport, "transport", "t", transportSocket, "answer transport: ws, sse or http")
	return cmd
}

// readLines feeds non-blank stdin lines to the returned channel. The reader
// goroutine may stay blocked in Scan after ctx ends; it exits with the
// process or at end of input.
func readLines(ctx context.Context, cmd *cobra.Command) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(cmd.InOrStdin())
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()
	return lines, errc
}

// chat asks each stdin line in turn. Answers are printed in question order.
// It returns when input ends or ctx is canceled, without waiting for stdin.
func chat(ctx context.Context, cmd *cobra.Command, a asker) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	display.Info(errOut, "One question per line. Ctrl-D or Ctrl-C ends the session.")

	lines, errc := readLines(ctx, cmd)
	answered := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case q, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				display.Success(errOut, fmt.Sprintf("%d answered.", answered))
				return nil
			}
			display.Question(out, q)
			err := a.Ask(ctx, q, printChunk(out))
			fmt.Fprintln(out)
			switch {
			case err == nil:
				answered++
			case errors.Is(err, models.ErrEmptyQuestion):
			case ctx.Err() != nil:
				return nil
			default:
				display.Error(errOut, err)
			}
		}
	}
}
