package cli

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gen2brain/mpeg"
)

// streamInfo is what info reports about one input.
type streamInfo struct {
	path       string
	hasHeaders bool
	video      int
	audio      int
	width      int
	height     int
	framerate  float64
	samplerate int
	channels   int
	videoStart float64
	audioStart float64
	duration   time.Duration
}

func newInfoCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file> [file...]",
		Short: "Print the streams and headers of MPEG-PS files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := make([]streamInfo, len(args))

			eg, ctx := errgroup.WithContext(cmd.Context())
			eg.SetLimit(runtime.GOMAXPROCS(0))

			for i, path := range args {
				eg.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}

					info, err := probeFile(path, g)
					if err != nil {
						return err
					}

					infos[i] = info

					return nil
				})
			}

			if err := eg.Wait(); err != nil {
				return err
			}

			for i := range infos {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}

				infos[i].write(cmd.OutOrStdout())
			}

			return nil
		},
	}
}

// probeFile reads the headers of one file in its own session.
func probeFile(path string, g *globalOptions) (streamInfo, error) {
	m, err := openInput(path, g, g.options())
	if err != nil {
		return streamInfo{}, err
	}
	defer m.Close()

	info := streamInfo{
		path:       path,
		hasHeaders: m.HasHeaders(),
		video:      m.NumVideoStreams(),
		audio:      m.NumAudioStreams(),
		width:      m.Width(),
		height:     m.Height(),
		framerate:  m.Framerate(),
		samplerate: m.Samplerate(),
		channels:   m.Channels(),
		duration:   m.Duration(),
	}

	if info.video > 0 {
		info.videoStart = m.Demux().StartTime(mpeg.PacketVideo1)
	}

	if info.audio > 0 {
		info.audioStart = m.Demux().StartTime(mpeg.PacketAudio1 + mpeg.PacketType(m.AudioStream()))
	}

	return info, nil
}

func (s *streamInfo) write(w io.Writer) {
	fmt.Fprintf(w, "File:          %s\n", s.path)
	fmt.Fprintf(w, "Headers:       %t\n", s.hasHeaders)
	fmt.Fprintf(w, "Duration:      %s\n", s.duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Video streams: %d\n", s.video)

	if s.video > 0 {
		fmt.Fprintf(w, "  Size:        %dx%d\n", s.width, s.height)
		fmt.Fprintf(w, "  Framerate:   %.3f fps\n", s.framerate)
		fmt.Fprintf(w, "  Start:       %.3fs\n", s.videoStart)
	}

	fmt.Fprintf(w, "Audio streams: %d\n", s.audio)

	if s.audio > 0 {
		fmt.Fprintf(w, "  Samplerate:  %d Hz\n", s.samplerate)
		fmt.Fprintf(w, "  Channels:    %d\n", s.channels)
		fmt.Fprintf(w, "  Start:       %.3fs\n", s.audioStart)
	}
}
