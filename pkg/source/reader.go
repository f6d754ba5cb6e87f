// Package source supplies documents as ordered lines of text.
package source

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// maxLineBytes bounds a single line; longer lines fail the read.
const maxLineBytes = 1 << 20

// ReadError is returned when a document cannot be read. It unwraps to the
// underlying os error, so errors.Is(err, fs.ErrNotExist) works.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Reader supplies the lines of a named document.
type Reader interface {
	ReadLines(path string) ([]string, error)
}

// FileReader reads documents from the local filesystem.
type FileReader struct{}

// ReadLines reads path using a FileReader.
func ReadLines(path string) ([]string, error) {
	return FileReader{}.ReadLines(path)
}

// ReadLines returns the file's lines in order with line endings removed.
func (FileReader) ReadLines(path string) ([]string, error) {
	if err := ValidateTextFile(path); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	log.Debugf("Read %d lines from %s", len(lines), path)
	return lines, nil
}

// MemoryReader serves documents from memory, keyed by name.
type MemoryReader struct {
	mu   sync.RWMutex
	docs map[string][]string
}

// NewMemoryReader creates a reader over the given documents.
func NewMemoryReader(docs map[string]string) *MemoryReader {
	r := &MemoryReader{docs: make(map[string][]string, len(docs))}
	for name, text := range docs {
		r.Put(name, text)
	}
	return r
}

// Put stores or replaces a document.
func (r *MemoryReader) Put(name, text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	r.mu.Lock()
	r.docs[name] = lines
	r.mu.Unlock()
}

// ReadLines returns a copy of the named document's lines.
func (r *MemoryReader) ReadLines(name string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lines, ok := r.docs[name]
	if !ok {
		return nil, &ReadError{Path: name, Err: os.ErrNotExist}
	}
	return append([]string(nil), lines...), nil
}
