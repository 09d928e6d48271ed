package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"docrelay/internal/display"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var transport string
	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask one question and stream the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newAsker(ctx, cfg, transport, loggerFromCtx(ctx))
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			question := strings.Join(args, " ")
			display.Question(out, question)
			err = a.Ask(ctx, question, printChunk(out))
			fmt.Fprintln(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&transport, "transport", "t", transportSSE, "answer transport: sse, ws or http")
	return cmd
}

func printChunk(w io.Writer) func(string) {
	return func(chunk string) {
		fmt.Fprint(w, chunk)
	}
}
