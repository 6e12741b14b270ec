package structure

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	biohttp "github.com/ligustah/biofetch/internal/http"
)

const testPDB = `HEADER    HYDROLASE                               01-JAN-00   1ABC
ATOM      1  N   MET A   1      11.104  13.207   2.100  1.00 20.00           N
END
`

func newTestServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/download/1ABC.pdb" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(testPDB))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestDownload(t *testing.T) {
	server, _ := newTestServer(t)
	d := New(Options{BaseURL: server.URL + "/download"})

	dest := filepath.Join(t.TempDir(), "lysozyme")
	path, err := d.Download(context.Background(), "1abc", dest)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	if path != dest+".pdb" {
		t.Errorf("expected suffix appended, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != testPDB {
		t.Errorf("file content does not match response body")
	}
}

func TestDownloadKeepsSuffix(t *testing.T) {
	server, _ := newTestServer(t)
	d := New(Options{BaseURL: server.URL + "/download/"})

	dest := filepath.Join(t.TempDir(), "x.pdb")
	path, err := d.Download(context.Background(), "1ABC", dest)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if path != dest {
		t.Errorf("expected %s, got %s", dest, path)
	}
}

func TestDownloadDefaultPath(t *testing.T) {
	server, _ := newTestServer(t)
	d := New(Options{BaseURL: server.URL + "/download"})

	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	path, err := d.Download(context.Background(), " 1abc ", "")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if path != "1ABC.pdb" {
		t.Errorf("expected 1ABC.pdb, got %s", path)
	}
	if _, err := os.Stat(filepath.Join(dir, "1ABC.pdb")); err != nil {
		t.Errorf("expected file in working directory: %v", err)
	}
}

func TestDownloadNotFound(t *testing.T) {
	server, requests := newTestServer(t)
	d := New(Options{BaseURL: server.URL + "/download"})

	dir := t.TempDir()
	_, err := d.Download(context.Background(), "9XYZ", filepath.Join(dir, "9XYZ"))
	if err == nil {
		t.Fatal("expected error")
	}

	var se *biohttp.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Errorf("expected 404 status error, got %v", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status code in message, got %q", err.Error())
	}
	if *requests != 1 {
		t.Errorf("expected a single request, got %d", *requests)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no files written, found %d", len(entries))
	}
}

func TestDownloadMissingDir(t *testing.T) {
	server, _ := newTestServer(t)

	dest := filepath.Join(t.TempDir(), "missing", "1ABC.pdb")
	if _, err := New(Options{BaseURL: server.URL + "/download"}).Download(context.Background(), "1ABC", dest); err == nil {
		t.Fatal("expected error for missing directory")
	}

	d := New(Options{BaseURL: server.URL + "/download", CreateDirs: true})
	if _, err := d.Download(context.Background(), "1ABC", dest); err != nil {
		t.Fatalf("Download with CreateDirs: %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("expected file to exist: %v", err)
	}
}

func TestDownloadEmptyID(t *testing.T) {
	d := New(Options{})
	if _, err := d.Download(context.Background(), "  ", ""); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}
}

func TestDownloadTo(t *testing.T) {
	server, _ := newTestServer(t)
	d := New(Options{BaseURL: server.URL + "/download"})

	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	a, err := d.DownloadTo(ctx, bucket, "1abc", "")
	if err != nil {
		t.Fatalf("DownloadTo: %v", err)
	}
	if a.Key != "1ABC.pdb" || a.Size != int64(len(testPDB)) || a.Checksum == "" {
		t.Errorf("unexpected artifact %+v", a)
	}

	data, err := bucket.ReadAll(ctx, "1ABC.pdb")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != testPDB {
		t.Error("stored content does not match response body")
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		id, dest, want string
	}{
		{"1ABC", "", "1ABC.pdb"},
		{"1ABC", "out/x", "out/x.pdb"},
		{"1ABC", "out/x.pdb", "out/x.pdb"},
		{"1ABC", "x.ent", "x.ent.pdb"},
	}
	for _, tt := range tests {
		if got := ResolvePath(tt.id, tt.dest); got != tt.want {
			t.Errorf("ResolvePath(%q, %q) = %q, want %q", tt.id, tt.dest, got, tt.want)
		}
	}
}

func TestNewKeepsHTTPOptions(t *testing.T) {
	userAgent := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case userAgent <- r.Header.Get("User-Agent"):
		default:
		}
		w.Write([]byte(testPDB))
	}))
	t.Cleanup(server.Close)

	d := New(Options{
		BaseURL: server.URL + "/download",
		HTTPOptions: biohttp.Options{
			MaxBodySize: 10,
			UserAgent:   "lab-pipeline/2.0",
		},
	})

	_, err := d.Fetch(context.Background(), "1abc")
	if !errors.Is(err, biohttp.ErrTooLarge) {
		t.Errorf("expected ErrTooLarge from caller's body limit, got %v", err)
	}
	if ua := <-userAgent; ua != "lab-pipeline/2.0" {
		t.Errorf("User-Agent = %q, want caller's value", ua)
	}
}
