package parser

import (
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// OpenReplay reads a replay file into memory. Files ending in .bz2, .gz or
// .zst are decompressed on the fly, as replays are usually distributed that way.
func OpenReplay(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access replay file: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("replay file is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay file: %w", err)
	}
	defer f.Close()

	r, closer, err := decompressor(path, f)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read replay file: %w", err)
	}
	return data, nil
}

// decompressor picks a reader for the file extension. The returned close
// function is nil when the reader holds no resources.
func decompressor(path string, r io.Reader) (io.Reader, func(), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bz2":
		return bzip2.NewReader(r), nil, nil
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return zr, func() { zr.Close() }, nil
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return zr, zr.Close, nil
	default:
		return r, nil, nil
	}
}
