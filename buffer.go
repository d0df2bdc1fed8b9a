package mpeg

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// BufferMode is the storage policy of a Buffer.
type BufferMode int

const (
	// ModeFixedMemory reads from caller-owned memory and rejects writes.
	ModeFixedMemory BufferMode = iota
	// ModeFile refills from an io.ReadSeeker and discards bytes that were read.
	ModeFile
	// ModeRing discards bytes that were read on every write. Seeking is only
	// possible back to the start, which clears the buffer.
	ModeRing
	// ModeAppend keeps everything that was written, so it can seek backwards.
	ModeAppend
)

func (m BufferMode) String() string {
	switch m {
	case ModeFixedMemory:
		return "fixed-memory"
	case ModeFile:
		return "file"
	case ModeRing:
		return "ring"
	case ModeAppend:
		return "append"
	}

	return fmt.Sprintf("BufferMode(%d)", int(m))
}

// LoadFunc is called when a Buffer needs more data than it holds.
// It should write into the buffer, or signal the end of the stream.
type LoadFunc func(b *Buffer)

// Buffer is a byte store with a bit-granular read cursor.
type Buffer struct {
	data      []byte // backing storage, len(data) is the capacity
	length    int    // valid bytes in data
	bitIndex  int    // read cursor in bits, never beyond length*8
	totalSize int    // size of the complete source, 0 while unknown

	mode             BufferMode
	discardReadBytes bool
	hasEnded         bool

	loadCallback LoadFunc

	file    io.ReadSeeker
	filePos int
	err     error

	log *slog.Logger
}

// NewFileBuffer creates a buffer that reads from r in chunks of Options.BufferSize bytes.
// The total size of the source is determined by seeking to its end.
func NewFileBuffer(r io.ReadSeeker, opts ...*Options) (*Buffer, error) {
	if r == nil {
		return nil, ErrNilSource
	}

	o := resolveOptions(opts)

	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to determine source size: %w", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind source: %w", err)
	}

	b := newBuffer(o.BufferSize, o.Logger)
	b.mode = ModeFile
	b.discardReadBytes = true
	b.file = r
	b.totalSize = int(size)
	b.loadCallback = (*Buffer).loadFile

	return b, nil
}

// NewMemoryBuffer creates a read-only buffer over data.
// The caller keeps ownership of data and must not modify it while the buffer is in use.
func NewMemoryBuffer(data []byte, opts ...*Options) *Buffer {
	o := resolveOptions(opts)

	return &Buffer{
		data:      data,
		length:    len(data),
		totalSize: len(data),
		mode:      ModeFixedMemory,
		log:       o.Logger,
	}
}

// NewRingBuffer creates an empty buffer that discards data once it has been
// read. Its total size stays unknown until SignalEnd is called.
func NewRingBuffer(capacity int, opts ...*Options) *Buffer {
	o := resolveOptions(opts)

	b := newBuffer(capacity, o.Logger)
	b.mode = ModeRing
	b.discardReadBytes = true

	return b
}

// NewAppendBuffer creates an empty buffer that keeps all written data.
func NewAppendBuffer(capacity int, opts ...*Options) *Buffer {
	o := resolveOptions(opts)

	b := newBuffer(capacity, o.Logger)
	b.mode = ModeAppend

	return b
}

func newBuffer(capacity int, log *slog.Logger) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}

	return &Buffer{
		data: make([]byte, capacity),
		log:  log,
	}
}

// SetLoadCallback sets the function called when the buffer runs dry.
// File buffers come with their own callback, replacing it stops the refill from the source.
func (b *Buffer) SetLoadCallback(fn LoadFunc) {
	b.loadCallback = fn
}

// Write appends p to the buffer, growing it as needed.
// Ring buffers first drop the bytes already read.
func (b *Buffer) Write(p []byte) (int, error) {
	if b.mode == ModeFixedMemory {
		return 0, ErrReadOnlyBuffer
	}

	if b.discardReadBytes {
		// Data that was already read is gone, as is any notion of the total size.
		b.discard()
		if b.mode == ModeRing {
			b.totalSize = 0
		}
	}

	if len(b.data)-b.length < len(p) {
		newSize := len(b.data)
		for newSize-b.length < len(p) {
			newSize *= 2
		}

		data := make([]byte, newSize)
		copy(data, b.data[:b.length])
		b.data = data
	}

	copy(b.data[b.length:], p)
	b.length += len(p)
	b.hasEnded = false

	return len(p), nil
}

// SignalEnd marks the data written so far as the complete stream.
func (b *Buffer) SignalEnd() {
	b.totalSize = b.length
}

// Rewind moves the read cursor back to the start.
func (b *Buffer) Rewind() {
	b.Seek(0)
}

// Seek moves the read cursor to the byte position pos.
// Ring buffers only accept 0, which also clears them.
func (b *Buffer) Seek(pos int) {
	b.hasEnded = false

	switch b.mode {
	case ModeFile:
		if _, err := b.file.Seek(int64(pos), io.SeekStart); err != nil {
			b.setErr(err)
		}
		b.filePos = pos
		b.bitIndex = 0
		b.length = 0
	case ModeRing:
		if pos != 0 {
			return
		}
		b.bitIndex = 0
		b.length = 0
		b.totalSize = 0
	default:
		if pos < b.length {
			b.bitIndex = pos << 3
		}
	}
}

// Tell returns the byte position of the read cursor in the source.
func (b *Buffer) Tell() int {
	if b.mode == ModeFile {
		return b.filePos + (b.bitIndex >> 3) - b.length
	}

	return b.bitIndex >> 3
}

// Size returns the size of the source for File buffers, otherwise the number of valid bytes.
func (b *Buffer) Size() int {
	if b.mode == ModeFile {
		return b.totalSize
	}

	return b.length
}

// Remaining returns the number of bytes left to read in memory.
func (b *Buffer) Remaining() int {
	return b.length - (b.bitIndex >> 3)
}

// Capacity returns the size of the backing storage.
func (b *Buffer) Capacity() int {
	return len(b.data)
}

// Mode returns the storage mode.
func (b *Buffer) Mode() BufferMode {
	return b.mode
}

// HasEnded reports whether the source is exhausted.
func (b *Buffer) HasEnded() bool {
	return b.hasEnded
}

// Err returns the first read error other than io.EOF hit by a File buffer.
func (b *Buffer) Err() error {
	return b.err
}

// Bytes returns the unread bytes held in memory. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data[b.bitIndex>>3 : b.length]
}

// discard drops the bytes before the read cursor.
func (b *Buffer) discard() {
	bytePos := b.bitIndex >> 3
	if bytePos == b.length {
		b.bitIndex = 0
		b.length = 0
	} else if bytePos > 0 {
		copy(b.data, b.data[bytePos:b.length])
		b.bitIndex -= bytePos << 3
		b.length -= bytePos
	}
}

// loadFile is the load callback of File buffers.
func (b *Buffer) loadFile() {
	if b.discardReadBytes {
		b.discard()
	}

	dst := b.data[b.length:]
	if len(dst) == 0 {
		return
	}

	n, err := io.ReadFull(b.file, dst)
	b.filePos += n
	b.length += n

	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		b.setErr(err)
	}

	if n == 0 {
		b.hasEnded = true
	}
}

func (b *Buffer) setErr(err error) {
	if b.err == nil {
		b.err = err
		b.log.Debug("mpeg: buffer read failed", "error", err)
	}
}
