// Package progress reports progress while fetched records are persisted.
//
// Output is written to stderr by default:
//
//	[biofetch] Fetching: protein NP_000509.1,NP_000549.1 | Items: 2
//	[biofetch] Wrote NP_000509_1.fasta (170 B) [1/2]
//	[biofetch] Wrote NP_000549_1.fasta (182 B) [2/2]
//	[biofetch] Done: 2 written | 0 failed | 352 B | 12ms
//
// It also holds the byte size helpers used by configuration parsing.
package progress
