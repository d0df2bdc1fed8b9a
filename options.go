package mpeg

import (
	"log/slog"
	"time"
)

// DefaultBufferSize is the initial capacity of every buffer created without an explicit size.
const DefaultBufferSize = 128 * 1024

// Options specifies decoding parameters.
// A nil *Options, or a zero field, selects the default.
type Options struct {
	// BufferSize is the initial capacity in bytes of the buffers created by the
	// decoder. Ring and Append buffers grow on demand, File buffers refill in chunks of this size.
	BufferSize int
	// Logger receives debug messages about recoverable stream corruption.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
	// NoDelay makes the video decoder assume there are no B-frames and return
	// every picture right away instead of holding back the last reference frame.
	NoDelay bool
	// Loop rewinds the stream when it ends instead of reporting the end.
	Loop bool
	// AudioStream selects which of the up to four audio streams is decoded (0..3).
	AudioStream int
	// AudioLeadTime is how far ahead of the video the audio is decoded by Decode.
	AudioLeadTime time.Duration
	// DisableVideo turns off video decoding.
	DisableVideo bool
	// DisableAudio turns off audio decoding.
	DisableAudio bool
	// SeparateChannels fills Samples.Left and Samples.Right instead of Samples.Interleaved.
	SeparateChannels bool
	// StrictAudioSync validates the header fields following a resynchronized
	// audio frame sync before accepting it. By default only the sync bits are checked.
	StrictAudioSync bool
}

// withDefaults returns a copy of o with unset fields filled in.
func (o *Options) withDefaults() Options {
	var r Options
	if o != nil {
		r = *o
	}

	if r.BufferSize <= 0 {
		r.BufferSize = DefaultBufferSize
	}

	if r.Logger == nil {
		r.Logger = slog.Default()
	}

	return r
}

// resolveOptions picks the first of the variadic options.
func resolveOptions(opts []*Options) Options {
	if len(opts) > 0 {
		return opts[0].withDefaults()
	}

	return (*Options)(nil).withDefaults()
}
