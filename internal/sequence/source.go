package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned for selection keys that name no loader.
var ErrUnknownKind = errors.New("sequence: unknown loader kind")

// Kind selects a Source implementation.
type Kind string

// Loader kinds.
const (
	KindRandom Kind = "random"
	KindRemote Kind = "remote"
	KindFile   Kind = "file"
)

// ParseKind resolves a selection key. "api" is accepted for remote and
// "fasta" for file.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "random":
		return KindRandom, nil
	case "remote", "api":
		return KindRemote, nil
	case "file", "fasta":
		return KindFile, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Request carries the arguments of a Load call. Each Source reads only the
// fields it needs: Length for random, IDs and DB for remote, Path for file.
type Request struct {
	Length int
	IDs    []string
	DB     string
	Path   string
}

// Source produces sequence records.
type Source interface {
	Kind() Kind
	Load(ctx context.Context, req Request) ([]Record, error)
}

var (
	_ Source = (*Random)(nil)
	_ Source = (*Remote)(nil)
	_ Source = (*File)(nil)
)

// FactoryOptions holds the configuration handed to every loader the factory
// builds.
type FactoryOptions struct {
	// Seed makes random loaders reproducible when non-zero.
	Seed uint64

	Remote RemoteOptions
}

// Factory builds loaders by selection key.
type Factory struct {
	opts FactoryOptions
}

// NewFactory returns a factory.
func NewFactory(opts FactoryOptions) *Factory {
	return &Factory{opts: opts}
}

// Get returns a fresh loader for kind, or ErrUnknownKind.
func (f *Factory) Get(kind string) (Source, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}

	switch k {
	case KindRandom:
		if f.opts.Seed != 0 {
			return NewSeededRandom(f.opts.Seed), nil
		}
		return NewRandom(), nil
	case KindRemote:
		return NewRemote(f.opts.Remote), nil
	default:
		return NewFile(), nil
	}
}
