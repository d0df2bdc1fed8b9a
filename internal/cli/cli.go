// Package cli implements the plmpeg command line tool.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gen2brain/mpeg"
)

// globalOptions are the flags shared by all commands.
type globalOptions struct {
	verbose   bool
	probeSize int
	logger    *slog.Logger
}

// NewRootCommand builds the plmpeg command tree.
func NewRootCommand(version string) *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "plmpeg",
		Short:         "Inspect and decode MPEG-1 Program Streams.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			g.logger = newLogger(cmd.ErrOrStderr(), g.verbose)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "log recoverable stream errors")
	flags.IntVar(&g.probeSize, "probe", 0, "probe this many bytes for the streams actually present instead of trusting the system header")

	rootCmd.AddCommand(
		newInfoCommand(g),
		newFrameCommand(g),
		newAudioCommand(g),
		newVersionCommand(version),
	)

	return rootCmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// options returns the session options for the global flags.
func (g *globalOptions) options() *mpeg.Options {
	return &mpeg.Options{Logger: g.logger}
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print plmpeg version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "plmpeg, %s\n", version)
		},
		DisableFlagsInUseLine: true,
	}
}
