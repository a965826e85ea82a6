package yuv

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// IsCompressed reports whether path names a zstd-compressed raw frame.
func IsCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zst")
}

// Decode reads a raw YUYV frame of the given size from r. When compressed
// is set the stream is zstd-decoded first.
func Decode(r io.Reader, width, height int, compressed bool) (*Frame, error) {
	if compressed {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	need, err := FrameBytes(width, height)
	if err != nil {
		return nil, err
	}
	// Read through a limit instead of allocating need bytes up front, so a
	// short input with a huge claimed size fails without the allocation.
	data, err := io.ReadAll(io.LimitReader(r, int64(need)))
	if err != nil {
		return nil, fmt.Errorf("failed to read %dx%d frame: %w", width, height, err)
	}
	if len(data) < need {
		return nil, fmt.Errorf("failed to read %dx%d frame (%d bytes): %w", width, height, need, io.ErrUnexpectedEOF)
	}
	return Wrap(data, width, height)
}

// Encode writes the frame bytes to w, zstd-compressed when compressed is set.
func Encode(w io.Writer, f *Frame, compressed bool) error {
	data := f.Data[:f.Width*f.Height*BytesPerPixel]
	if !compressed {
		_, err := w.Write(data)
		return err
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return fmt.Errorf("failed to compress frame: %w", err)
	}
	return enc.Close()
}

// ReadFile loads a raw frame from path. Files ending in .zst are treated as
// zstd-compressed.
func ReadFile(path string, width, height int) (*Frame, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame file: %w", err)
	}
	f, err := Decode(bytes.NewReader(raw), width, height, IsCompressed(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// WriteFile stores f at path, compressing when the name ends in .zst.
// The file is written to a temporary name first and renamed into place.
func WriteFile(path string, f *Frame) error {
	var buf bytes.Buffer
	if err := Encode(&buf, f, IsCompressed(path)); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write frame file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename frame file: %w", err)
	}
	return nil
}
