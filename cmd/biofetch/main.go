package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/ligustah/biofetch/internal/entrez"
	biohttp "github.com/ligustah/biofetch/internal/http"
	"github.com/ligustah/biofetch/internal/sequence"
	"github.com/ligustah/biofetch/pkg/fasta"
	"github.com/ligustah/biofetch/pkg/store"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitGeneralError    = 1
	ExitInvalidArgs     = 2
	ExitSourceNotAccess = 3
	ExitStorageError    = 5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return execute(ctx, args, os.Stdout, os.Stderr)
}

// execute runs the command tree against args and maps the outcome to an
// exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	if ctx.Err() != nil {
		fmt.Fprintln(stderr, "[biofetch] Interrupted")
		return ExitGeneralError
	}

	code := exitCode(err)
	fmt.Fprintf(stderr, "Error: %v\n", err)
	if code == ExitInvalidArgs {
		fmt.Fprintln(stderr, "Run 'biofetch --help' for usage.")
	}
	return code
}

// usageError marks errors caused by bad command line input.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func exitCode(err error) int {
	var ue *usageError
	if errors.As(err, &ue) {
		return ExitInvalidArgs
	}
	// cobra reports unknown subcommands of the root as plain errors
	if strings.HasPrefix(err.Error(), "unknown command") {
		return ExitInvalidArgs
	}

	switch {
	case errors.Is(err, sequence.ErrUnknownKind),
		errors.Is(err, sequence.ErrInvalidLength),
		errors.Is(err, sequence.ErrNoIDs),
		errors.Is(err, sequence.ErrNoDatabase),
		errors.Is(err, entrez.ErrNoEmail):
		return ExitInvalidArgs
	}

	var se *biohttp.StatusError
	if errors.As(err, &se) || errors.Is(err, biohttp.ErrTooLarge) {
		return ExitSourceNotAccess
	}

	var ste *store.Error
	if errors.As(err, &ste) {
		return ExitStorageError
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ExitSourceNotAccess
	}

	if errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fasta.ErrMalformedHeader) ||
		errors.Is(err, sequence.ErrMissingRecords) {
		return ExitSourceNotAccess
	}

	return ExitGeneralError
}
