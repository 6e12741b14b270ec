package sequence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ligustah/biofetch/internal/logging"
	"github.com/ligustah/biofetch/internal/progress"
	"github.com/ligustah/biofetch/pkg/fasta"
	"github.com/ligustah/biofetch/pkg/store"
)

var (
	// ErrNoIDs is returned when no accession IDs are given.
	ErrNoIDs = errors.New("sequence: at least one accession id is required")
	// ErrNoDatabase is returned when no database is given.
	ErrNoDatabase = errors.New("sequence: database is required")
	// ErrNoFetcher is returned by a remote loader built without a Fetcher.
	ErrNoFetcher = errors.New("sequence: remote loader has no fetcher")
	// ErrAlphabet is returned when alphabet validation is enabled and a
	// record contains foreign symbols.
	ErrAlphabet = errors.New("sequence: residue outside alphabet")
	// ErrMissingRecords is returned when the response holds fewer records
	// than distinct accession IDs were requested.
	ErrMissingRecords = errors.New("sequence: response is missing requested records")
)

// Fetcher downloads FASTA text for a batch of accession IDs.
// *entrez.Client implements it.
type Fetcher interface {
	EFetch(ctx context.Context, db string, ids []string) ([]byte, error)
}

// RemoteOptions configures the remote loader.
type RemoteOptions struct {
	Fetcher Fetcher

	// Folder is a local directory or bucket URL receiving one file per
	// record plus the combined file.
	// Default: "sequences"
	Folder string

	// Name is used for the combined file, "combined_{Name}.fasta".
	// Default: "seq"
	Name string

	// CreateDirs creates a missing local Folder instead of failing.
	CreateDirs bool

	// ValidateAlphabet rejects records with symbols outside the IUPAC
	// alphabet implied by the database (protein or nucleotide).
	ValidateAlphabet bool

	// Progress receives per-file progress lines when non-nil.
	Progress io.Writer

	Logger *zerolog.Logger
}

// Remote fetches sequences by accession ID and persists them.
type Remote struct {
	opts RemoteOptions
	log  zerolog.Logger
}

// NewRemote returns a remote loader.
func NewRemote(opts RemoteOptions) *Remote {
	if opts.Folder == "" {
		opts.Folder = "sequences"
	}
	if opts.Name == "" {
		opts.Name = "seq"
	}
	return &Remote{opts: opts, log: logging.OrNop(opts.Logger)}
}

// Kind implements Source.
func (*Remote) Kind() Kind { return KindRemote }

// Load implements Source using req.IDs and req.DB.
func (r *Remote) Load(ctx context.Context, req Request) ([]Record, error) {
	return r.Fetch(ctx, req.IDs, req.DB)
}

// Fetch downloads ids from db in one batched request, persists every
// record (see Persist) and returns the parsed records in response order.
func (r *Remote) Fetch(ctx context.Context, ids []string, db string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, ErrNoIDs
	}
	if db == "" {
		return nil, ErrNoDatabase
	}
	if r.opts.Fetcher == nil {
		return nil, ErrNoFetcher
	}

	r.log.Info().Str("db", db).Int("ids", len(ids)).Msg("fetching sequences")

	raw, err := r.opts.Fetcher.EFetch(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	rd := fasta.NewReader(bytes.NewReader(raw))
	rd.TrustSequences = true
	entries, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s response: %w", db, err)
	}
	if want := countUnique(ids); len(entries) < want {
		return nil, fmt.Errorf("%w: asked for %d, got %d", ErrMissingRecords, want, len(entries))
	}

	alphabet := alphabetFor(db)
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		rec := Record{
			ID:          e.ID(),
			Description: e.Description(),
			Seq:         string(e.Sequence),
			Alphabet:    alphabet,
		}
		if r.opts.ValidateAlphabet && alphabet != "" && !alphabet.Contains(rec.Seq) {
			return nil, fmt.Errorf("%w: %s", ErrAlphabet, rec.ID)
		}
		records = append(records, rec)
	}

	if _, err := r.Persist(ctx, raw, r.opts.Name); err != nil {
		return nil, err
	}

	return records, nil
}

// Persist writes each FASTA record in raw to its own file in the folder and
// all of them, concatenated, to "combined_{name}.fasta". File names are
// derived from each record's header (see fasta.FileName) before anything is
// written. It returns the paths of the per-record files.
//
// A write failure aborts the batch; files already written are left in place.
func (r *Remote) Persist(ctx context.Context, raw []byte, name string) ([]string, error) {
	chunks, err := fasta.Split(raw)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(chunks))
	for i, chunk := range chunks {
		if keys[i], err = fasta.FileName(chunk); err != nil {
			return nil, err
		}
	}

	s, err := store.Open(ctx, r.opts.Folder, store.Options{CreateDir: r.opts.CreateDirs})
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var reporter *progress.Reporter
	if r.opts.Progress != nil {
		reporter = progress.NewReporter(progress.Options{
			Total:  len(chunks),
			Label:  r.opts.Folder,
			Output: r.opts.Progress,
		})
		reporter.Start()
		defer reporter.Stop()
	}

	paths := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		a, err := s.Write(ctx, keys[i], chunk)
		if err != nil {
			if reporter != nil {
				reporter.ItemFailed(keys[i], err)
			}
			return nil, err
		}
		if reporter != nil {
			reporter.ItemCompleted(a.Key, a.Size)
		}
		r.log.Debug().Str("file", a.Key).Int64("bytes", a.Size).Msg("sequence written")
		paths = append(paths, r.location(a.Key))
	}

	combined, err := s.Combine(ctx, "combined_"+name+".fasta", keys)
	if err != nil {
		return nil, err
	}
	r.log.Info().
		Int("files", len(paths)).
		Str("combined", r.location(combined.Key)).
		Msg("sequences persisted")

	return paths, nil
}

func (r *Remote) location(key string) string {
	if strings.Contains(r.opts.Folder, "://") {
		return key
	}
	return filepath.Join(r.opts.Folder, key)
}

func countUnique(ids []string) int {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[strings.TrimSpace(id)] = struct{}{}
	}
	return len(seen)
}

func alphabetFor(db string) Alphabet {
	switch strings.ToLower(db) {
	case "protein":
		return ProteinIUPAC
	case "nucleotide", "nuccore":
		return NucleotideIUPAC
	default:
		return ""
	}
}
