package file

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrShortRead indicates a source that could not supply the requested range.
var ErrShortRead = errors.New("source cannot supply requested range")

// Source supplies the bytes of an upload.
type Source interface {
	Prepare() error
	// ReadAt returns exactly length bytes starting at position.
	ReadAt(position uint64, length int) ([]byte, error)
}

// MemorySource serves an upload from a byte slice.
type MemorySource struct {
	data []byte
}

// NewMemorySource wraps data. The slice must not be modified afterwards.
func NewMemorySource(data []byte) *MemorySource {
	return &MemorySource{data: data}
}

// Prepare implements Source. A memory source is always ready.
func (s *MemorySource) Prepare() error {
	return nil
}

// ReadAt implements Source.
func (s *MemorySource) ReadAt(position uint64, length int) ([]byte, error) {
	if length < 0 || position > uint64(len(s.data)) || uint64(length) > uint64(len(s.data))-position {
		return nil, fmt.Errorf("%w: %d bytes at %d of %d", ErrShortRead, length, position, len(s.data))
	}
	return s.data[position : position+uint64(length)], nil
}

// PathSource serves an upload from a file on disk.
type PathSource struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// NewPathSource creates a source reading path.
func NewPathSource(path string) *PathSource {
	return &PathSource{path: path}
}

// Prepare opens the file for reading.
func (s *PathSource) Prepare() error {
	path, err := ValidatePath(s.path)
	if err != nil {
		return fmt.Errorf("source path %q: %w", s.path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		s.file.Close()
	}
	s.file = f
	return nil
}

// ReadAt implements Source.
func (s *PathSource) ReadAt(position uint64, length int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil, fmt.Errorf("%w: source not prepared", ErrShortRead)
	}
	buf := make([]byte, length)
	n, err := s.file.ReadAt(buf, int64(position))
	if n == length {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = ErrShortRead
	}
	return nil, fmt.Errorf("read %d bytes at %d: %w", length, position, err)
}

// Close releases the file.
func (s *PathSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
