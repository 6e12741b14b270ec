package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ligustah/biofetch/internal/config"
	biohttp "github.com/ligustah/biofetch/internal/http"
	"github.com/ligustah/biofetch/internal/logging"
	"github.com/ligustah/biofetch/internal/progress"
)

// cli carries state shared by every subcommand once the root has resolved
// configuration.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	flags      flagValues

	cfg config.Config
	log zerolog.Logger
}

// flagValues holds command line overrides. Only flags the user actually
// set are applied, and they replace file and env values even when zero.
type flagValues struct {
	logLevel      string
	logFormat     string
	progress      bool
	createDirs    bool
	timeout       time.Duration
	maxBodySize   string
	retryAttempts int
	retryBackoff  time.Duration

	structureURL string

	entrezURL        string
	email            string
	apiKey           string
	sequenceDir      string
	combinedName     string
	seed             uint64
	validateAlphabet bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "biofetch",
		Short: "Fetch protein structures and sequences from public repositories",
		Long: `biofetch downloads structure files from RCSB and loads sequences from
NCBI Entrez, local FASTA files or a random generator.

Configuration is read from --config (YAML or TOML), then BIOFETCH_*
environment variables, then command line flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Flags())
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "Path to a YAML or TOML config file (env: BIOFETCH_CONFIG)")
	pf.StringVar(&c.flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&c.flags.logFormat, "log-format", "", "Log format: console or json")
	pf.BoolVar(&c.flags.progress, "progress", false, "Show progress output")
	pf.BoolVar(&c.flags.createDirs, "create-dirs", false, "Create missing destination directories")
	pf.DurationVar(&c.flags.timeout, "timeout", 0, "Per-request HTTP timeout (default 30s)")
	pf.StringVar(&c.flags.maxBodySize, "max-body-size", "", "Largest accepted response body (default 64MB)")
	pf.IntVar(&c.flags.retryAttempts, "retry-attempts", 0, "Retries for transient HTTP failures")
	pf.DurationVar(&c.flags.retryBackoff, "retry-backoff", 0, "Initial retry backoff (default 1s)")

	root.AddCommand(c.newStructureCommand())
	root.AddCommand(c.newSequenceCommand())

	return root
}

// setup resolves configuration (defaults < file < env < flags) and builds
// the logger.
func (c *cli) setup(fs *pflag.FlagSet) error {
	cfg := config.Default()

	path := c.configPath
	if path == "" {
		path = os.Getenv("BIOFETCH_CONFIG")
	}
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return &usageError{err: err}
		}
		cfg = loaded
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return &usageError{err: err}
	}

	if err := c.flags.apply(fs, &cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return &usageError{err: err}
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.stderr,
	})
	if err != nil {
		return &usageError{err: err}
	}

	c.cfg = cfg
	c.log = logger
	c.log.Debug().
		Str("structure_url", cfg.StructureURL).
		Str("entrez_url", cfg.Entrez.BaseURL).
		Str("sequence_dir", cfg.SequenceDir).
		Msg("configuration loaded")
	return nil
}

// apply writes the flags the user set onto cfg.
func (f flagValues) apply(fs *pflag.FlagSet, cfg *config.Config) error {
	set := func(name string) bool {
		flag := fs.Lookup(name)
		return flag != nil && flag.Changed
	}

	if set("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if set("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if set("progress") {
		cfg.Progress = f.progress
	}
	if set("create-dirs") {
		cfg.CreateDirs = f.createDirs
	}
	if set("timeout") {
		if f.timeout <= 0 {
			return usageErrorf("--timeout must be positive")
		}
		cfg.Timeout = f.timeout
	}
	if set("max-body-size") {
		n, err := progress.ParseBytes(f.maxBodySize)
		if err != nil {
			return usageErrorf("invalid --max-body-size: %v", err)
		}
		cfg.MaxBodySize = n
	}
	if set("retry-attempts") {
		if f.retryAttempts < 0 {
			return usageErrorf("--retry-attempts must not be negative")
		}
		cfg.Retry.Attempts = f.retryAttempts
	}
	if set("retry-backoff") {
		cfg.Retry.Backoff = f.retryBackoff
	}
	if set("structure-url") {
		cfg.StructureURL = f.structureURL
	}
	if set("entrez-url") {
		cfg.Entrez.BaseURL = f.entrezURL
	}
	if set("email") {
		cfg.Entrez.Email = f.email
	}
	if set("api-key") {
		cfg.Entrez.APIKey = f.apiKey
	}
	if set("folder") {
		cfg.SequenceDir = f.sequenceDir
	}
	if set("name") {
		cfg.CombinedName = f.combinedName
	}
	if set("seed") {
		cfg.Seed = f.seed
	}
	if set("validate-alphabet") {
		cfg.ValidateAlphabet = f.validateAlphabet
	}

	return nil
}

// httpOptions derives client options from the resolved configuration.
func (c *cli) httpOptions() biohttp.Options {
	opts := biohttp.DefaultOptions()
	opts.Timeout = c.cfg.Timeout
	opts.RetryAttempts = c.cfg.Retry.Attempts
	if c.cfg.Retry.Backoff > 0 {
		opts.RetryBackoff = c.cfg.Retry.Backoff
	}
	if c.cfg.Retry.MaxBackoff > 0 {
		opts.RetryMaxBackoff = c.cfg.Retry.MaxBackoff
	}
	if c.cfg.MaxBodySize > 0 {
		opts.MaxBodySize = c.cfg.MaxBodySize
	}
	return opts
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.stdout, format, args...)
}
