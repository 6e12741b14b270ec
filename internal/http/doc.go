// Package http provides the GET client used to talk to public data
// repositories such as RCSB and NCBI Entrez.
//
// This package handles:
//   - Per-request timeouts and context cancellation
//   - Status code classification via *StatusError
//   - Optional retry with exponential backoff for 5xx and transport errors
//   - Bounded body reads
//
// # Usage
//
//	client := http.NewClient(http.Options{
//	    Timeout:       30 * time.Second,
//	    RetryAttempts: 2,
//	})
//
//	data, err := client.Fetch(ctx, url)
//	var se *http.StatusError
//	if errors.As(err, &se) {
//	    // se.Code
//	}
package http
