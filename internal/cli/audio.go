package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gen2brain/mpeg"
)

func parseSampleFormat(s string) (mpeg.SampleFormat, error) {
	switch s {
	case "f32":
		return mpeg.SampleFloat32, nil
	case "s16":
		return mpeg.SampleInt16, nil
	}

	return 0, fmt.Errorf("unknown sample format %q, want f32 or s16", s)
}

func newAudioCommand(g *globalOptions) *cobra.Command {
	var (
		out    string
		format string
		stream int
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "audio --out <raw> <file>",
		Short: "Decode an audio stream to raw interleaved stereo PCM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sampleFormat, err := parseSampleFormat(format)
			if err != nil {
				return err
			}

			opts := g.options()
			opts.DisableVideo = true
			opts.AudioStream = stream
			opts.StrictAudioSync = strict

			m, err := openInput(args[0], g, opts)
			if err != nil {
				return err
			}
			defer m.Close()

			if m.NumAudioStreams() == 0 {
				return errors.New("no audio stream")
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}

			w := bufio.NewWriter(f)

			frames := 0
			for !m.HasEnded() {
				if err := cmd.Context().Err(); err != nil {
					_ = f.Close()

					return err
				}

				samples := m.DecodeAudio()
				if samples == nil {
					continue
				}

				if _, err := w.Write(samples.Bytes(sampleFormat)); err != nil {
					_ = f.Close()

					return err
				}

				frames++
			}

			if err := w.Flush(); err != nil {
				_ = f.Close()

				return err
			}

			g.logger.Info("audio written", "file", out, "frames", frames,
				"samplerate", m.Samplerate(), "format", sampleFormat)

			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "audio.raw", "output file")
	cmd.Flags().StringVar(&format, "format", "f32", "sample format, f32 or s16")
	cmd.Flags().IntVar(&stream, "stream", 0, "audio stream index, 0 to 3")
	cmd.Flags().BoolVar(&strict, "strict-sync", false, "validate headers when resynchronizing")

	return cmd
}
