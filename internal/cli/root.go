// Package cli implements the docrelay command tree.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"docrelay/internal/config"
	"docrelay/internal/display"
)

// Version is stamped at build time with -ldflags "-X docrelay/internal/cli.Version=...".
var Version = "dev"

type rootOptions struct {
	configFile string
	envFiles   []string
	debug      bool
}

// NewRootCmd builds the docrelay command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "docrelay",
		Short:         "Browser front end and streaming clients for a document Q&A backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(opts.envFiles...); err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), opts.debug)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(ctxWithLogger(ctx, logger))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "JSON config file")
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Enable debug logging")

	cmd.AddCommand(
		newServeCmd(opts),
		newAskCmd(opts),
		newChatCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		display.Error(cmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.configFile)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the docrelay version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("docrelay " + Version)
		},
	}
}
