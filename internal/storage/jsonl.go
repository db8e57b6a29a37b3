package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// maxLineSize bounds a single captured exchange. Full blocks with traces can
// run to several megabytes.
const maxLineSize = 64 * 1024 * 1024

// JsonlStorage appends exchanges to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

func (s *JsonlStorage) Path() string { return s.path }

// PutExchanges appends a batch of exchanges as JSON lines.
func (s *JsonlStorage) PutExchanges(batch []Exchange) error {
	if len(batch) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := NewWriter(s.path, true)
	if err != nil {
		return err
	}
	for _, ex := range batch {
		if err := w.Write(ex); err != nil {
			w.Close()
			return fmt.Errorf("write exchange: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// Writer writes one JSON value per line through a buffer. Close flushes it.
type Writer struct {
	f   *os.File
	buf *bufio.Writer
	enc *json.Encoder
}

// NewWriter opens path for writing, creating parent directories. Without
// appendMode an existing file is truncated.
func NewWriter(path string, appendMode bool) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}

	mode := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		mode = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, mode, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &Writer{f: f, buf: buf, enc: enc}, nil
}

// Write encodes value followed by a newline.
func (w *Writer) Write(value any) error {
	if err := w.enc.Encode(value); err != nil {
		return fmt.Errorf("encode line: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	flushErr := w.buf.Flush()
	closeErr := w.f.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// ReadExchanges calls fn for every non-blank line of r with its 1-based line
// number. Lines that are not valid exchanges reach fn with a nil exchange and
// the parse error; fn decides whether to go on.
func ReadExchanges(r io.Reader, fn func(line int, ex *Exchange, err error) error) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ex Exchange
		if err := json.Unmarshal(line, &ex); err != nil {
			if err := fn(n, nil, fmt.Errorf("parse exchange: %w", err)); err != nil {
				return err
			}
			continue
		}
		if err := fn(n, &ex, nil); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}
	return nil
}
