package entrez

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	biohttp "github.com/ligustah/biofetch/internal/http"
)

func TestEFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/entrez/eutils/efetch.fcgi" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		want := map[string]string{
			"db":      "protein",
			"id":      "NP_000509.1,NP_000549.1",
			"rettype": "fasta",
			"retmode": "text",
			"tool":    "biofetch",
			"email":   "lab@example.org",
			"api_key": "key",
		}
		for k, v := range want {
			if got := q.Get(k); got != v {
				t.Errorf("query %s = %q, want %q", k, got, v)
			}
		}
		w.Write([]byte(">NP_000509.1 beta\nMVHLTPEEK\n\n>NP_000549.1 alpha\nMVLSPADK\n\n"))
	}))
	defer server.Close()

	c, err := NewClient(biohttp.NewClient(biohttp.DefaultOptions()), Options{
		BaseURL: server.URL + "/entrez/eutils",
		Email:   "lab@example.org",
		APIKey:  "key",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	data, err := c.EFetch(context.Background(), "protein", []string{"NP_000509.1", "NP_000549.1"})
	if err != nil {
		t.Fatalf("EFetch: %v", err)
	}
	if len(data) == 0 || data[0] != '>' {
		t.Errorf("unexpected body %q", data)
	}
}

func TestEFetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c, err := NewClient(biohttp.NewClient(biohttp.DefaultOptions()), Options{
		BaseURL: server.URL,
		Email:   "lab@example.org",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = c.EFetch(context.Background(), "nucleotide", []string{"bogus"})
	var se *biohttp.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 error, got %v", err)
	}
}

func TestEFetchArguments(t *testing.T) {
	c, err := NewClient(biohttp.NewClient(biohttp.DefaultOptions()), Options{Email: "lab@example.org"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := c.EFetch(context.Background(), "protein", nil); !errors.Is(err, ErrNoIDs) {
		t.Errorf("expected ErrNoIDs, got %v", err)
	}
	if _, err := c.EFetch(context.Background(), "", []string{"x"}); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("expected ErrNoDatabase, got %v", err)
	}
}

func TestNewClientRequiresEmail(t *testing.T) {
	if _, err := NewClient(biohttp.NewClient(biohttp.DefaultOptions()), Options{}); !errors.Is(err, ErrNoEmail) {
		t.Errorf("expected ErrNoEmail, got %v", err)
	}
}

func TestEFetchURLDefaults(t *testing.T) {
	c, err := NewClient(biohttp.NewClient(biohttp.DefaultOptions()), Options{Email: "lab@example.org"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	got := c.EFetchURL("nucleotide", []string{"NM_000518.5"})
	want := "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi?db=nucleotide&email=lab%40example.org&id=NM_000518.5&retmode=text&rettype=fasta&tool=biofetch"
	if got != want {
		t.Errorf("EFetchURL = %s, want %s", got, want)
	}
}
