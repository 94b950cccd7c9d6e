package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Reader iterates data rows of a delimited text upload. It strips a UTF-8
// BOM, validates encoding, skips blank lines and keeps 1-based row numbers
// for error reporting.
type Reader struct {
	scanner   *bufio.Scanner
	row       int
	headers   []string
	headerMap map[string]int
}

// maxLineBytes bounds a single line; exports with longer lines are broken
// uploads, not data.
const maxLineBytes = 1 << 20

// NewReader creates a reader over raw upload bytes
func NewReader(r io.Reader) (*Reader, error) {
	buf := bufio.NewReader(r)

	head, err := buf.Peek(4096)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}

	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = buf.Discard(3)
		head = head[3:]
	}
	if !utf8.Valid(head) {
		return nil, ErrInvalidEncoding
	}

	scanner := bufio.NewScanner(buf)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	return &Reader{
		scanner:   scanner,
		headerMap: make(map[string]int),
	}, nil
}

// ReadRow returns the next non-blank line split into fields along with its
// 1-based line number. io.EOF signals the end of input.
func (r *Reader) ReadRow() ([]string, int, error) {
	for r.scanner.Scan() {
		r.row++
		line := strings.TrimRight(r.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		return SplitFields(line), r.row, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, r.row, fmt.Errorf("failed to read upload: %w", err)
	}
	return nil, r.row, io.EOF
}

// ParseHeader consumes the first data row as a header. Header names are
// trimmed and lowercased so lookups are case-insensitive.
func (r *Reader) ParseHeader() error {
	fields, _, err := r.ReadRow()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return err
	}

	r.headers = make([]string, len(fields))
	for i, h := range fields {
		name := strings.ToLower(strings.TrimSpace(h))
		r.headers[i] = name
		r.headerMap[name] = i
	}
	return nil
}

// Headers returns the parsed header names in file order
func (r *Reader) Headers() []string {
	return r.headers
}

// HasHeader reports whether the named column is present
func (r *Reader) HasHeader(name string) bool {
	_, ok := r.headerMap[strings.ToLower(name)]
	return ok
}

// Field returns the named column's value from a data row, trimmed. Missing
// columns and short rows yield an empty string.
func (r *Reader) Field(fields []string, name string) string {
	idx, ok := r.headerMap[strings.ToLower(name)]
	if !ok || idx >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[idx])
}
