// Package sequence loads sequence records from interchangeable sources.
//
// Three sources implement [Source]:
//   - [Random] generates synthetic protein sequences.
//   - [Remote] downloads records by accession ID (through a [Fetcher] such
//     as the Entrez client), writes one FASTA file per record plus a
//     combined file, and returns the parsed records.
//   - [File] reads the residues of a local FASTA file.
//
// A [Factory] maps a selection key ("random", "remote"/"api",
// "file"/"fasta") to a fresh loader:
//
//	f := sequence.NewFactory(sequence.FactoryOptions{
//	    Remote: sequence.RemoteOptions{Fetcher: entrezClient},
//	})
//	src, err := f.Get("api")
//	if err != nil {
//	    return err // sequence.ErrUnknownKind
//	}
//	recs, err := src.Load(ctx, sequence.Request{
//	    IDs: []string{"NM_000518.5"},
//	    DB:  "nucleotide",
//	})
package sequence
