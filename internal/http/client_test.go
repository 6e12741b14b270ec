package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); ua != DefaultUserAgent {
			t.Errorf("expected user agent %q, got %q", DefaultUserAgent, ua)
		}
		w.Write([]byte("HEADER    PROTEIN\n"))
	}))
	defer server.Close()

	client := NewClient(DefaultOptions())
	body, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "HEADER    PROTEIN\n" {
		t.Errorf("unexpected body %q", string(data))
	}
}

func TestGetStatusErrors(t *testing.T) {
	tests := []struct {
		code     int
		sentinel error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusServiceUnavailable, ErrServerError},
		{http.StatusNoContent, nil},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer server.Close()

			client := NewClient(DefaultOptions())
			_, err := client.Get(context.Background(), server.URL)
			if err == nil {
				t.Fatal("expected error")
			}

			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StatusError, got %T: %v", err, err)
			}
			if se.Code != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, se.Code)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("expected errors.Is(%v), got %v", tt.sentinel, err)
			}
		})
	}
}

func TestNoRetryByDefault(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(DefaultOptions())
	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetryOnServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.RetryAttempts = 5
	opts.RetryBackoff = 10 * time.Millisecond
	opts.RetryMaxBackoff = 50 * time.Millisecond

	client := NewClient(opts)
	data, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if string(data) != "ok" {
		t.Errorf("expected 'ok', got %q", string(data))
	}
}

func TestNotFoundIsNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.RetryAttempts = 3
	opts.RetryBackoff = time.Millisecond

	client := NewClient(opts)
	_, err := client.Get(context.Background(), server.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestFetchBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("A", 100)))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.MaxBodySize = 10

	client := NewClient(opts)
	_, err := client.Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}

	opts.MaxBodySize = 100
	client = NewClient(opts)
	data, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch at limit: %v", err)
	}
	if len(data) != 100 {
		t.Errorf("expected 100 bytes, got %d", len(data))
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(DefaultOptions())
	_, err := client.Get(ctx, server.URL)
	if err == nil {
		t.Error("expected error due to context cancellation")
	}
}

func TestNewClientDefaultsPerField(t *testing.T) {
	c := NewClient(Options{RetryAttempts: 2, MaxBodySize: 5})

	def := DefaultOptions()
	if c.opts.Timeout != def.Timeout || c.client.Timeout != def.Timeout {
		t.Errorf("Timeout = %v/%v, want %v", c.opts.Timeout, c.client.Timeout, def.Timeout)
	}
	if c.opts.RetryBackoff != def.RetryBackoff {
		t.Errorf("RetryBackoff = %v, want %v", c.opts.RetryBackoff, def.RetryBackoff)
	}
	if c.opts.RetryMaxBackoff != def.RetryMaxBackoff {
		t.Errorf("RetryMaxBackoff = %v, want %v", c.opts.RetryMaxBackoff, def.RetryMaxBackoff)
	}
	if c.opts.RetryAttempts != 2 || c.opts.MaxBodySize != 5 {
		t.Errorf("caller values lost: %+v", c.opts)
	}
	if c.opts.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q", c.opts.UserAgent)
	}

	c = NewClient(Options{RetryBackoff: 2 * time.Minute})
	if c.opts.RetryMaxBackoff != 2*time.Minute {
		t.Errorf("RetryMaxBackoff = %v, want it raised to the initial backoff", c.opts.RetryMaxBackoff)
	}
}
