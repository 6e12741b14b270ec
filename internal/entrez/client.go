// Package entrez is a minimal client for the NCBI E-utilities efetch
// endpoint, used to download FASTA records by accession ID.
package entrez

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	biohttp "github.com/ligustah/biofetch/internal/http"
	"github.com/ligustah/biofetch/internal/logging"
)

// DefaultBaseURL is the public E-utilities endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"

var (
	// ErrNoEmail is returned when the client is built without a contact
	// address. NCBI requires one to identify callers.
	ErrNoEmail = errors.New("entrez: contact email is required")
	// ErrNoIDs is returned when EFetch is called without identifiers.
	ErrNoIDs = errors.New("entrez: no ids given")
	// ErrNoDatabase is returned when EFetch is called without a database.
	ErrNoDatabase = errors.New("entrez: no database given")
)

// Options configures the client.
type Options struct {
	// BaseURL of the E-utilities service.
	// Default: DefaultBaseURL
	BaseURL string

	// Email identifies the caller to NCBI. Required.
	Email string

	// Tool names the calling program.
	// Default: "biofetch"
	Tool string

	// APIKey raises the NCBI rate limit when set.
	APIKey string

	Logger *zerolog.Logger
}

// Client fetches records from Entrez.
type Client struct {
	http *biohttp.Client
	base *url.URL
	opts Options
	log  zerolog.Logger
}

// NewClient creates a client that issues requests through hc.
func NewClient(hc *biohttp.Client, opts Options) (*Client, error) {
	if opts.Email == "" {
		return nil, ErrNoEmail
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Tool == "" {
		opts.Tool = "biofetch"
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("entrez: parse base url: %w", err)
	}

	return &Client{
		http: hc,
		base: base,
		opts: opts,
		log:  logging.OrNop(opts.Logger),
	}, nil
}

// EFetchURL returns the efetch URL for ids in db, in FASTA text format.
func (c *Client) EFetchURL(db string, ids []string) string {
	q := url.Values{}
	q.Set("db", db)
	q.Set("id", strings.Join(ids, ","))
	q.Set("rettype", "fasta")
	q.Set("retmode", "text")
	q.Set("tool", c.opts.Tool)
	q.Set("email", c.opts.Email)
	if c.opts.APIKey != "" {
		q.Set("api_key", c.opts.APIKey)
	}

	u := c.base.ResolveReference(&url.URL{Path: "efetch.fcgi"})
	u.RawQuery = q.Encode()
	return u.String()
}

// EFetch downloads all ids from db in a single request and returns the raw
// FASTA text.
func (c *Client) EFetch(ctx context.Context, db string, ids []string) ([]byte, error) {
	if db == "" {
		return nil, ErrNoDatabase
	}
	if len(ids) == 0 {
		return nil, ErrNoIDs
	}

	c.log.Debug().Str("db", db).Strs("ids", ids).Msg("efetch")

	data, err := c.http.Fetch(ctx, c.EFetchURL(db, ids))
	if err != nil {
		return nil, fmt.Errorf("entrez: efetch %s: %w", db, err)
	}
	return data, nil
}
