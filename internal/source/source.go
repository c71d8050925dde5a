// Package source loads FCS bytes from disk or a stream so pkg/fcs can parse
// them from memory. Plain files are mapped read-only; gzip and zstd
// compressed files are inflated transparently.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

var (
	ErrTooLarge = errors.New("input exceeds size limit")
	ErrInvalid  = errors.New("invalid input size")
)

// DefaultLimit bounds decompressed input. Large acquisitions stay well below it.
const DefaultLimit = 4 << 30

// Buffer holds the bytes of one input. Bytes must not be used after Close.
type Buffer struct {
	data        []byte
	mmapped     bool
	compression Compression
}

func (b *Buffer) Bytes() []byte { return b.data }

func (b *Buffer) Len() int { return len(b.data) }

// Mapped reports whether Bytes is backed by a memory mapping.
func (b *Buffer) Mapped() bool { return b.mmapped }

// Compression reports the container format the input was stored in.
func (b *Buffer) Compression() Compression { return b.compression }

// Close releases the mapping, if any. It is safe to call more than once.
func (b *Buffer) Close() error {
	data, mapped := b.data, b.mmapped
	b.data, b.mmapped = nil, false
	if mapped && len(data) > 0 {
		return unix.Munmap(data)
	}
	return nil
}

// Load reads the file at path. Uncompressed files are mapped read-only when
// the platform allows it and read into memory otherwise. The returned buffer
// must be closed.
func Load(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size, err := checkSize(stat.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if size == 0 {
		return &Buffer{data: []byte{}}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		// Fallback for file systems without mmap support.
		data, err = readAllAt(f, size)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return inflate(data, false)
	}
	return inflate(data, true)
}

// LoadReaderAt reads size bytes from r without mapping.
func LoadReaderAt(r io.ReaderAt, size int64) (*Buffer, error) {
	n, err := checkSize(size)
	if err != nil {
		return nil, err
	}
	data, err := readAllAt(r, n)
	if err != nil {
		return nil, err
	}
	return inflate(data, false)
}

// ReadAll reads r to the end, inflating compressed input. Both the raw and
// the inflated size are bounded by limit; limit <= 0 means DefaultLimit.
func ReadAll(r io.Reader, limit int64) (*Buffer, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	kind := Detect(data)
	if kind == None {
		return &Buffer{data: data}, nil
	}
	out, err := decompress(data, kind, limit)
	if err != nil {
		return nil, err
	}
	return &Buffer{data: out, compression: kind}, nil
}

// inflate wraps raw file bytes, replacing them with the decompressed
// content when a compression magic is found.
func inflate(data []byte, mapped bool) (*Buffer, error) {
	kind := Detect(data)
	if kind == None {
		return &Buffer{data: data, mmapped: mapped}, nil
	}
	out, err := decompress(data, kind, DefaultLimit)
	if mapped {
		if uerr := unix.Munmap(data); uerr != nil && err == nil {
			err = uerr
		}
	}
	if err != nil {
		return nil, err
	}
	return &Buffer{data: out, compression: kind}, nil
}

func checkSize(size int64) (int, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return 0, fmt.Errorf("%w: %d bytes", ErrInvalid, size)
	}
	return int(size), nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}
