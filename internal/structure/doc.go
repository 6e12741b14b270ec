// Package structure downloads macromolecular structure files from RCSB.
//
// Identifiers are case-insensitive and normalised to upper case. The file is
// fetched from
//
//	https://files.rcsb.org/download/{ID}.pdb
//
// and written verbatim. The response body is read completely before the
// destination is opened, so a failed download never leaves a file behind.
//
// # Usage
//
//	d := structure.New(structure.Options{})
//	path, err := d.Download(ctx, "1abc", "")
//	// path == "1ABC.pdb"
//
// [Downloader.DownloadTo] writes to any gocloud.dev bucket instead of the
// local filesystem.
package structure
