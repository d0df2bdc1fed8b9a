package cli

import (
	"errors"
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newFrameCommand(g *globalOptions) *cobra.Command {
	var (
		at    time.Duration
		exact bool
		out   string
	)

	cmd := &cobra.Command{
		Use:   "frame --at <time> --out <png> <file>",
		Short: "Extract a single video frame as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := g.options()
			opts.DisableAudio = true

			m, err := openInput(args[0], g, opts)
			if err != nil {
				return err
			}
			defer m.Close()

			if m.NumVideoStreams() == 0 {
				return errors.New("no video stream")
			}

			frame := m.SeekFrame(at, exact)
			if frame == nil {
				return fmt.Errorf("no frame found at %s", at)
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}

			if err := png.Encode(f, frame.RGBA()); err != nil {
				_ = f.Close()

				return fmt.Errorf("failed to encode %s: %w", out, err)
			}

			g.logger.Info("frame written", "file", out, "time", frame.Time, "width", frame.Width, "height", frame.Height)

			return f.Close()
		},
	}

	cmd.Flags().DurationVar(&at, "at", 0, "presentation time of the frame")
	cmd.Flags().BoolVar(&exact, "exact", false, "decode up to the exact frame instead of the preceding intra frame")
	cmd.Flags().StringVarP(&out, "out", "o", "frame.png", "output PNG file")

	return cmd
}
