package sequence

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// ErrInvalidLength is returned for negative sequence lengths.
var ErrInvalidLength = errors.New("sequence: length must not be negative")

// Random generates synthetic protein sequences.
type Random struct {
	alphabet Alphabet

	mu  sync.Mutex
	rng *rand.Rand // nil uses the global source
}

// NewRandom returns an unseeded generator. Output is not reproducible.
func NewRandom() *Random {
	return &Random{alphabet: Protein}
}

// NewSeededRandom returns a generator whose output is fully determined by
// seed.
func NewSeededRandom(seed uint64) *Random {
	return &Random{
		alphabet: Protein,
		rng:      rand.New(rand.NewPCG(seed, seed)),
	}
}

// Kind implements Source.
func (g *Random) Kind() Kind { return KindRandom }

// Generate draws length symbols independently and uniformly from the
// protein alphabet.
func (g *Random) Generate(length int) (Record, error) {
	if length < 0 {
		return Record{}, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	var sb strings.Builder
	sb.Grow(length)

	n := len(g.alphabet)
	if g.rng != nil {
		g.mu.Lock()
		for i := 0; i < length; i++ {
			sb.WriteByte(g.alphabet[g.rng.IntN(n)])
		}
		g.mu.Unlock()
	} else {
		for i := 0; i < length; i++ {
			sb.WriteByte(g.alphabet[rand.IntN(n)])
		}
	}

	return Record{
		ID:       "random",
		Seq:      sb.String(),
		Alphabet: g.alphabet,
	}, nil
}

// Load implements Source using req.Length.
func (g *Random) Load(_ context.Context, req Request) ([]Record, error) {
	rec, err := g.Generate(req.Length)
	if err != nil {
		return nil, err
	}
	return []Record{rec}, nil
}
