package sequence

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ligustah/biofetch/pkg/fasta"
)

var lineBreaks = strings.NewReplacer("\n", "", "\r", "")

// File reads sequences from local FASTA files.
type File struct{}

// NewFile returns a file loader.
func NewFile() *File {
	return &File{}
}

// Kind implements Source.
func (*File) Kind() Kind { return KindFile }

// Read returns the residues of the file at path: every line after the
// first, concatenated, with line breaks removed. The content is not
// validated against any alphabet.
func (*File) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read sequence file: %w", err)
	}
	_, body := splitHeader(data)
	return lineBreaks.Replace(string(body)), nil
}

// Load implements Source using req.Path. The record ID is the header
// identifier, or the file name when the header has none.
func (f *File) Load(_ context.Context, req Request) ([]Record, error) {
	data, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("read sequence file: %w", err)
	}
	header, body := splitHeader(data)

	rec := Record{
		ID:  filepath.Base(req.Path),
		Seq: lineBreaks.Replace(string(body)),
	}
	if id, err := fasta.HeaderID(string(header)); err == nil {
		rec.ID = id
		rec.Description = fasta.Entry{Header: strings.TrimPrefix(string(header), ">")}.Description()
	}
	return []Record{rec}, nil
}

func splitHeader(data []byte) (header, body []byte) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return data, nil
	}
	return data[:i], data[i+1:]
}
