package sequence

import (
	"strings"

	"github.com/ligustah/biofetch/pkg/fasta"
)

// Alphabet is the set of residue symbols a sequence may use.
type Alphabet string

// Alphabets.
const (
	// Protein is the 20 canonical amino acids.
	Protein Alphabet = "ACDEFGHIKLMNPQRSTVWY"
	DNA     Alphabet = "ACGT"
	RNA     Alphabet = "ACGU"

	// ProteinIUPAC adds the ambiguity codes B, Z, J and X, the rare residues
	// U and O, and the stop symbol.
	ProteinIUPAC Alphabet = Protein + "BZJXUO*"
	// NucleotideIUPAC covers DNA and RNA with the ambiguity codes.
	NucleotideIUPAC Alphabet = "ACGTURYSWKMBDHVN"
)

// Contains reports whether every symbol of seq is in the alphabet.
func (a Alphabet) Contains(seq string) bool {
	for _, r := range seq {
		if !strings.ContainsRune(string(a), r) {
			return false
		}
	}
	return true
}

// Record is a single sequence: an identifier and a residue string.
type Record struct {
	ID          string
	Description string
	Seq         string
	Alphabet    Alphabet // empty when unknown
}

// Len returns the number of residues.
func (r Record) Len() int {
	return len(r.Seq)
}

// String returns the record as a single-line FASTA entry.
func (r Record) String() string {
	return ">" + r.header() + "\n" + r.Seq
}

// Entry converts the record for use with a fasta.Writer.
func (r Record) Entry() fasta.Entry {
	return fasta.Entry{Header: r.header(), Sequence: []byte(r.Seq)}
}

func (r Record) header() string {
	if r.Description == "" {
		return r.ID
	}
	return r.ID + " " + r.Description
}
