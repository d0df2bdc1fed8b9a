package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/gen2brain/mpeg"
)

// openInput opens a session over path. Files ending in .zst are
// decompressed into memory first.
func openInput(path string, g *globalOptions, opts *mpeg.Options) (*mpeg.MPEG, error) {
	var (
		m   *mpeg.MPEG
		err error
	)

	if strings.HasSuffix(path, ".zst") {
		var data []byte
		data, err = readZstd(path)
		if err != nil {
			return nil, err
		}

		m, err = mpeg.NewFromBytes(data, opts)
	} else {
		m, err = mpeg.NewFromFile(path, opts)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if g.probeSize > 0 && !m.Probe(g.probeSize) {
		g.logger.Warn("no streams found while probing", "file", path, "bytes", g.probeSize)
	}

	return m, nil
}

func readZstd(path string) ([]byte, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	data, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to decompress: %w", path, err)
	}

	return data, nil
}
