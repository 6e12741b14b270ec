package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func TestWriteAndRead(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "mem://", Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	data := []byte(">a\nACDE\n")
	a, err := s.Write(ctx, "a.fasta", data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	sum := sha256.Sum256(data)
	if a.Key != "a.fasta" || a.Size != int64(len(data)) || a.Checksum != hex.EncodeToString(sum[:]) {
		t.Errorf("unexpected artifact %+v", a)
	}

	got, err := s.Read(ctx, "a.fasta")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}

	ok, err := s.Exists(ctx, "a.fasta")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}
}

func TestReadMissing(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "mem://", Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.Read(ctx, "missing"); !errors.Is(err, ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing object: %v", err)
	}
}

func TestCombine(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "mem://", Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.Write(ctx, "a.fasta", []byte(">a\nAC\n")); err != nil {
		t.Fatalf("Write a: %v", err)
	}
	if _, err := s.Write(ctx, "b.fasta", []byte(">b\nGT\n")); err != nil {
		t.Fatalf("Write b: %v", err)
	}

	a, err := s.Combine(ctx, "combined_seq.fasta", []string{"a.fasta", "b.fasta"})
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if a.Size != 12 {
		t.Errorf("expected combined size 12, got %d", a.Size)
	}

	got, _ := s.Read(ctx, "combined_seq.fasta")
	if string(got) != ">a\nAC\n>b\nGT\n" {
		t.Errorf("unexpected combined content %q", got)
	}

	if _, err := s.Combine(ctx, "x.fasta", []string{"a.fasta", "nope.fasta"}); !errors.Is(err, ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestOpenLocalDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.Write(ctx, "1ABC.pdb", []byte("HEADER\nEND\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "1ABC.pdb"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "HEADER\nEND\n" {
		t.Errorf("unexpected file content %q", data)
	}
}

func TestOpenMissingDir(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "sequences")

	if _, err := Open(ctx, dir, Options{}); err == nil {
		t.Fatal("expected error for missing directory")
	}

	s, err := Open(ctx, dir, Options{CreateDir: true})
	if err != nil {
		t.Fatalf("Open with CreateDir: %v", err)
	}
	defer s.Close()

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("expected directory to be created: %v", err)
	}
}

func TestNewDoesNotCloseBucket(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	s := New(bucket, Options{})
	if _, err := s.Write(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := bucket.ReadAll(ctx, "k"); err != nil {
		t.Errorf("bucket closed by store: %v", err)
	}
}

func TestErrorType(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "mem://", Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	_, err = s.Read(ctx, "missing.pdb")
	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if se.Op != "read" || se.Key != "missing.pdb" {
		t.Errorf("unexpected error fields %+v", se)
	}

	_, err = Open(ctx, filepath.Join(t.TempDir(), "nope"), Options{})
	if !errors.As(err, &se) || se.Op != "open" {
		t.Errorf("expected open *Error, got %v", err)
	}
}
