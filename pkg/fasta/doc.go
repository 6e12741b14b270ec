// Package fasta reads and writes FASTA formatted sequence data.
//
// A FASTA entry is a single header line starting with '>' followed by one or
// more sequence lines:
//
//	>sp|P69905|HBA_HUMAN Hemoglobin subunit alpha
//	MVLSPADKTNVKAAWGKVGAHAGEYGAEALERMFLSFPTTKTYFPHFDLSH
//	GSAQVKGHGKKVADALTNAVAHVDDMPNALSALSDLHAHKLRVDPVNFKLL
//
// Use [NewReader] to parse entries, [Split] to cut a response into the raw
// text of each entry without re-encoding it, and [FileName] to derive the
// on-disk name used for a persisted entry.
package fasta
