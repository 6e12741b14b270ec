// Package store persists downloaded artifacts (structure files, FASTA
// records) to a gocloud.dev blob bucket.
//
// A location is either a local directory path or a bucket URL. Local paths
// are opened with fileblob and must already exist unless CreateDir is set;
// URLs are handed to blob.OpenBucket, so any driver registered by the
// program (mem://, file://, s3://, gs://) works.
//
// Every write is committed when the blob writer closes, so a failed write
// never leaves a partially written object behind.
//
//	s, err := store.Open(ctx, "sequences", store.Options{})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	a, err := s.Write(ctx, "NM_000518_5.fasta", data)
//	// a.Key, a.Size, a.Checksum
package store
