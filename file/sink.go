package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrDirectoryTraversal indicates an attempt to access files outside allowed directories.
var ErrDirectoryTraversal = errors.New("path contains directory traversal")

// ErrSinkNotPrepared indicates a write or finalize before Prepare.
var ErrSinkNotPrepared = errors.New("sink not prepared")

// Sink receives the bytes of a download.
type Sink interface {
	// Prepare readies the sink. It is called before the first chunk and
	// may be called again after Cancel.
	Prepare() error
	// Write appends the next chunk.
	Write(data []byte) error
	// Finalize commits the received bytes.
	Finalize() error
	// Cancel discards everything received.
	Cancel()
}

// ValidatePath checks if a file path is safe from directory traversal attacks.
// Returns the cleaned path if valid, or an error if the path contains traversal sequences.
func ValidatePath(path string) (string, error) {
	cleanedPath := filepath.Clean(path)
	if strings.Contains(cleanedPath, "..") {
		return "", ErrDirectoryTraversal
	}
	return cleanedPath, nil
}

// ResultFileName builds a collision-free on-disk name that keeps the
// extension of the offered name.
func ResultFileName(offered string) string {
	ext := filepath.Ext(filepath.Base(offered))
	if strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return uuid.NewString() + ext
}

// MemorySink collects a download in memory. Avatars and nodes files use it.
type MemorySink struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	prepared bool
	result   []byte
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Prepare implements Sink.
func (s *MemorySink) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reset()
	s.result = nil
	s.prepared = true
	return nil
}

// Write appends data to the buffer.
func (s *MemorySink) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.prepared {
		return ErrSinkNotPrepared
	}
	s.buf.Write(data)
	return nil
}

// Finalize implements Sink.
func (s *MemorySink) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.prepared {
		return ErrSinkNotPrepared
	}
	s.result = bytes.Clone(s.buf.Bytes())
	if s.result == nil {
		s.result = []byte{}
	}
	return nil
}

// Cancel discards the buffered bytes.
func (s *MemorySink) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reset()
	s.result = nil
	s.prepared = false
}

// Bytes returns the finalized content, or nil before Finalize.
func (s *MemorySink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// PathSink writes a download to a temporary file and moves it to the
// result path on Finalize. Both paths must be on the same filesystem.
type PathSink struct {
	tempPath   string
	resultPath string

	mu   sync.Mutex
	file *os.File
}

// NewPathSink creates a sink staging into tempPath.
func NewPathSink(tempPath, resultPath string) *PathSink {
	return &PathSink{tempPath: tempPath, resultPath: resultPath}
}

// ResultPath returns where the file lands after Finalize.
func (s *PathSink) ResultPath() string {
	return s.resultPath
}

// Prepare creates the temporary file.
func (s *PathSink) Prepare() error {
	tempPath, err := ValidatePath(s.tempPath)
	if err != nil {
		return fmt.Errorf("temp path %q: %w", s.tempPath, err)
	}
	resultPath, err := ValidatePath(s.resultPath)
	if err != nil {
		return fmt.Errorf("result path %q: %w", s.resultPath, err)
	}
	for _, dir := range []string{filepath.Dir(tempPath), filepath.Dir(resultPath)} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		s.file.Close()
	}
	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	s.tempPath, s.resultPath, s.file = tempPath, resultPath, f
	return nil
}

// Write appends data to the temporary file.
func (s *PathSink) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return ErrSinkNotPrepared
	}
	if _, err := s.file.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	return nil
}

// Finalize moves the temporary file to the result path.
func (s *PathSink) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return ErrSinkNotPrepared
	}
	f := s.file
	s.file = nil
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(s.tempPath, s.resultPath); err != nil {
		return fmt.Errorf("move %q to %q: %w", s.tempPath, s.resultPath, err)
	}
	return nil
}

// Cancel removes the temporary file.
func (s *PathSink) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
	for _, path := range []string{s.tempPath, s.resultPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logrus.WithFields(logrus.Fields{
				"function": "PathSink.Cancel",
				"path":     path,
				"error":    err.Error(),
			}).Warn("Failed to remove partial download")
		}
	}
}
