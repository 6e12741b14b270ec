package fasta

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedHeader is returned when a header line does not start with '>'
// or carries no identifier token.
var ErrMalformedHeader = errors.New("fasta: malformed header")

// An Entry is a single header line and its sequence, concatenated from all of
// the entry's sequence lines.
type Entry struct {
	Header   string
	Sequence []byte
}

// ID returns the first whitespace-delimited token of the header.
func (e Entry) ID() string {
	fields := strings.Fields(e.Header)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Description returns the header with the identifier token removed.
func (e Entry) Description() string {
	id := e.ID()
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(e.Header), id))
}

// String returns the entry in FASTA format, with the sequence wrapped at 60
// columns.
func (e Entry) String() string {
	return e.StringCols(60)
}

// StringCols returns the FASTA string for this entry with the sequence
// wrapped at the number of columns given.
//
// If cols is <= 0, then no wrapping is done.
func (e Entry) StringCols(cols int) string {
	if cols <= 0 || len(e.Sequence) == 0 {
		return fmt.Sprintf(">%s\n%s", e.Header, string(e.Sequence))
	}

	wrapped := make([]string, 1+((len(e.Sequence)-1)/cols))
	for i := range wrapped {
		start := cols * i
		end := start + cols
		if end > len(e.Sequence) {
			end = len(e.Sequence)
		}
		wrapped[i] = string(e.Sequence[start:end])
	}
	return fmt.Sprintf(">%s\n%s", e.Header, strings.Join(wrapped, "\n"))
}

func (e Entry) isNull() bool {
	return len(e.Header) == 0 && e.Sequence == nil
}

// A Reader reads entries from FASTA encoded input.
//
// If TrustSequences is true, sequence lines are appended without checking
// their characters. By default only a-z, A-Z, '*' and '-' are accepted.
type Reader struct {
	TrustSequences bool

	buf        *bufio.Reader
	line       int
	nextHeader []byte
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		buf:  bufio.NewReader(r),
		line: 1,
	}
}

// ReadAll reads all entries in the input. Processing stops at the first
// error.
func (r *Reader) ReadAll() ([]Entry, error) {
	var entries []Entry
	for {
		entry, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Read returns the next entry in the input, or io.EOF when there are none
// left. Blank lines and surrounding whitespace are ignored. Lower case
// sequence letters are kept as they are.
//
// It is NOT safe to call this function from multiple goroutines.
func (r *Reader) Read() (Entry, error) {
	entry, err := r.readEntry()
	if !entry.isNull() && (err == nil || err == io.EOF) {
		return entry, nil
	}
	if err == io.EOF {
		return Entry{}, io.EOF
	}
	return Entry{}, fmt.Errorf("fasta: line %d: %w", r.line, err)
}

func (r *Reader) readEntry() (Entry, error) {
	entry := Entry{}
	seenHeader := false

	if r.nextHeader != nil {
		entry.Header = trimHeader(r.nextHeader)
		r.nextHeader = nil
		seenHeader = true
	}
	for {
		line, err := r.buf.ReadBytes('\n')
		if err == io.EOF {
			if len(line) == 0 {
				return entry, io.EOF
			}
		} else if err != nil {
			return Entry{}, err
		}
		line = bytes.TrimSpace(line)

		if len(line) == 0 {
			r.line++
			if err == io.EOF {
				return entry, io.EOF
			}
			continue
		}

		if !seenHeader {
			if line[0] != '>' {
				return Entry{}, fmt.Errorf("%w: expected '>', got %q", ErrMalformedHeader, line[0])
			}
			entry.Header = trimHeader(line)
			seenHeader = true
			r.line++
			if err == io.EOF {
				return entry, io.EOF
			}
			continue
		} else if line[0] == '>' {
			r.nextHeader = line
			r.line++
			return entry, nil
		}

		if entry.Sequence == nil {
			entry.Sequence = make([]byte, 0, 64)
		}
		if !r.TrustSequences {
			for _, b := range line {
				if !isSequenceByte(b) {
					return Entry{}, fmt.Errorf("invalid sequence character %q", b)
				}
			}
		}
		entry.Sequence = append(entry.Sequence, line...)
		r.line++

		if err == io.EOF {
			return entry, io.EOF
		}
	}
}

func isSequenceByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '*' || b == '-'
}

func trimHeader(line []byte) string {
	return strings.TrimSpace(string(bytes.TrimPrefix(line, []byte{'>'})))
}

// Split cuts FASTA text into the raw bytes of each entry, header line
// included, without re-encoding anything. Leading blank lines are skipped;
// any other content before the first header is a malformed header.
func Split(data []byte) ([][]byte, error) {
	var chunks [][]byte
	start := -1
	offset := 0
	for offset < len(data) {
		end := bytes.IndexByte(data[offset:], '\n')
		next := len(data)
		if end >= 0 {
			next = offset + end + 1
		}
		line := data[offset:next]

		if len(line) > 0 && line[0] == '>' {
			if start >= 0 {
				chunks = append(chunks, data[start:offset])
			}
			start = offset
		} else if start < 0 && len(bytes.TrimSpace(line)) > 0 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, firstLine(line))
		}
		offset = next
	}
	if start >= 0 {
		chunks = append(chunks, data[start:])
	}
	return chunks, nil
}

// HeaderID returns the identifier of a raw header line: the first
// whitespace-delimited token with the leading '>' removed.
func HeaderID(line string) (string, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, ">") {
		return "", fmt.Errorf("%w: %q", ErrMalformedHeader, line)
	}
	fields := strings.Fields(line)
	if len(fields) == 0 || len(fields[0]) < 2 {
		return "", fmt.Errorf("%w: no identifier in %q", ErrMalformedHeader, line)
	}
	return fields[0][1:], nil
}

// FileName derives the file name for raw FASTA content from its first line:
// the header identifier with '.' replaced by '_', plus ".fasta".
func FileName(content []byte) (string, error) {
	id, err := HeaderID(firstLine(content))
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(id, ".", "_") + ".fasta", nil
}

func firstLine(data []byte) string {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		data = data[:i]
	}
	return string(data)
}

// A Writer writes entries in FASTA format.
type Writer struct {
	w       io.Writer
	Columns int
}

// NewWriter returns a Writer that wraps sequences at 60 columns.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, Columns: 60}
}

// Write writes a single entry followed by a newline.
func (w *Writer) Write(e Entry) error {
	_, err := fmt.Fprintln(w.w, e.StringCols(w.Columns))
	return err
}

// WriteAll writes all entries.
func (w *Writer) WriteAll(entries []Entry) error {
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			return err
		}
	}
	return nil
}
