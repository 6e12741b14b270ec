package structure

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gocloud.dev/blob"

	biohttp "github.com/ligustah/biofetch/internal/http"
	"github.com/ligustah/biofetch/internal/logging"
	"github.com/ligustah/biofetch/pkg/store"
)

// DefaultBaseURL is the RCSB download endpoint.
const DefaultBaseURL = "https://files.rcsb.org/download/"

// Extension is the suffix of downloaded structure files.
const Extension = ".pdb"

// ErrEmptyID is returned when the identifier is blank.
var ErrEmptyID = errors.New("structure: empty identifier")

// Options configures the downloader.
type Options struct {
	// BaseURL is prefixed to "{ID}.pdb".
	// Default: DefaultBaseURL
	BaseURL string

	// CreateDirs creates a missing destination directory.
	CreateDirs bool

	// HTTPOptions configures the HTTP client. Zero durations take the
	// client defaults; a zero MaxBodySize means no limit.
	HTTPOptions biohttp.Options

	Logger *zerolog.Logger
}

// Downloader fetches structure files.
type Downloader struct {
	client *biohttp.Client
	opts   Options
	log    zerolog.Logger
}

// New creates a Downloader.
func New(opts Options) *Downloader {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}

	return &Downloader{
		client: biohttp.NewClient(opts.HTTPOptions),
		opts:   opts,
		log:    logging.OrNop(opts.Logger),
	}
}

// NormalizeID trims and upper-cases a structure identifier.
func NormalizeID(id string) (string, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return "", ErrEmptyID
	}
	return id, nil
}

// ResolvePath returns the path a structure is written to: "{ID}.pdb" when
// dest is empty, otherwise dest with ".pdb" appended if missing.
func ResolvePath(id, dest string) string {
	if dest == "" {
		return id + Extension
	}
	if !strings.HasSuffix(dest, Extension) {
		dest += Extension
	}
	return dest
}

// URL returns the download URL for a normalised identifier.
func (d *Downloader) URL(id string) string {
	return d.opts.BaseURL + id + Extension
}

// Fetch downloads the structure file for id and returns its content.
func (d *Downloader) Fetch(ctx context.Context, id string) ([]byte, error) {
	id, err := NormalizeID(id)
	if err != nil {
		return nil, err
	}

	data, err := d.client.Fetch(ctx, d.URL(id))
	if err != nil {
		return nil, fmt.Errorf("download structure %s: %w", id, err)
	}
	return data, nil
}

// Download fetches the structure for id and writes it to dest (see
// ResolvePath). It returns the path written.
func (d *Downloader) Download(ctx context.Context, id, dest string) (string, error) {
	id, err := NormalizeID(id)
	if err != nil {
		return "", err
	}
	path := ResolvePath(id, dest)

	data, err := d.Fetch(ctx, id)
	if err != nil {
		return "", err
	}

	s, err := store.Open(ctx, filepath.Dir(path), store.Options{CreateDir: d.opts.CreateDirs})
	if err != nil {
		return "", err
	}
	defer s.Close()

	a, err := s.Write(ctx, filepath.Base(path), data)
	if err != nil {
		return "", err
	}

	d.log.Info().
		Str("id", id).
		Str("path", path).
		Int64("bytes", a.Size).
		Msg("structure downloaded")

	return path, nil
}

// DownloadTo fetches the structure for id and writes it to bucket under key,
// or under "{ID}.pdb" when key is empty.
func (d *Downloader) DownloadTo(ctx context.Context, bucket *blob.Bucket, id, key string) (store.Artifact, error) {
	id, err := NormalizeID(id)
	if err != nil {
		return store.Artifact{}, err
	}
	key = ResolvePath(id, key)

	data, err := d.Fetch(ctx, id)
	if err != nil {
		return store.Artifact{}, err
	}

	a, err := store.New(bucket, store.Options{}).Write(ctx, key, data)
	if err != nil {
		return store.Artifact{}, err
	}

	d.log.Info().
		Str("id", id).
		Str("key", a.Key).
		Int64("bytes", a.Size).
		Str("sha256", a.Checksum).
		Msg("structure stored")

	return a, nil
}
