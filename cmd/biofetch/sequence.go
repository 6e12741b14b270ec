package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ligustah/biofetch/internal/entrez"
	biohttp "github.com/ligustah/biofetch/internal/http"
	"github.com/ligustah/biofetch/internal/sequence"
	"github.com/ligustah/biofetch/pkg/fasta"
)

func (c *cli) newSequenceCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "sequence KIND",
		Short: "Load sequences from a random, remote or file source",
		Long: `Load sequences and print them to stdout as FASTA.

Sources:
  random           Generate a random protein sequence
  remote (api)     Fetch accessions from NCBI Entrez and persist them
  file   (fasta)   Read the residues of a local FASTA file`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			// Known kinds are dispatched to their subcommand by cobra, so
			// anything that reaches here is not a source.
			if _, err := sequence.ParseKind(args[0]); err != nil {
				return err
			}
			return usageErrorf("run 'biofetch sequence %s --help' for usage", args[0])
		},
	}
	cmd.PersistentFlags().BoolVar(&raw, "raw", false, "Print residues only, one record per line")

	emit := func(records []sequence.Record) error {
		if raw {
			for _, rec := range records {
				c.printf("%s\n", rec.Seq)
			}
			return nil
		}
		entries := make([]fasta.Entry, len(records))
		for i, rec := range records {
			entries[i] = rec.Entry()
		}
		return fasta.NewWriter(c.stdout).WriteAll(entries)
	}

	cmd.AddCommand(c.newRandomCommand(emit))
	cmd.AddCommand(c.newRemoteCommand(emit))
	cmd.AddCommand(c.newFileCommand(emit))

	return cmd
}

func (c *cli) newRandomCommand(emit func([]sequence.Record) error) *cobra.Command {
	var length int

	cmd := &cobra.Command{
		Use:     "random",
		Short:   "Generate a random protein sequence",
		Example: "  biofetch sequence random --length 120 --seed 7",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if length < 0 {
				return usageErrorf("--length must not be negative")
			}
			records, err := c.load(cmd.Context(), string(sequence.KindRandom), sequence.RemoteOptions{}, sequence.Request{Length: length})
			if err != nil {
				return err
			}
			return emit(records)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&length, "length", "n", 100, "Number of residues")
	f.Uint64Var(&c.flags.seed, "seed", 0, "Seed for reproducible output (0 = unseeded)")

	return cmd
}

func (c *cli) newRemoteCommand(emit func([]sequence.Record) error) *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:     "remote ID...",
		Aliases: []string{"api"},
		Short:   "Fetch sequences from NCBI Entrez and persist them",
		Long: `Fetch accessions from NCBI Entrez in one batched efetch request.

Each record is written to <folder>/<id>.fasta (dots in the id become
underscores) and all records to <folder>/combined_<name>.fasta. The folder
must exist unless --create-dirs is set. NCBI requires a contact email,
configured with --email, entrez.email or BIOFETCH_ENTREZ_EMAIL.`,
		Example: "  biofetch sequence remote --db protein --email me@example.org P69905.1 P68871.2",
		Args:    usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if db == "" {
				return usageErrorf("--db is required")
			}
			if err := c.cfg.ValidateRemote(); err != nil {
				return &usageError{err: err}
			}

			client, err := entrez.NewClient(biohttp.NewClient(c.httpOptions()), entrez.Options{
				BaseURL: c.cfg.Entrez.BaseURL,
				Email:   c.cfg.Entrez.Email,
				Tool:    c.cfg.Entrez.Tool,
				APIKey:  c.cfg.Entrez.APIKey,
				Logger:  &c.log,
			})
			if err != nil {
				return &usageError{err: err}
			}

			opts := sequence.RemoteOptions{
				Fetcher:          client,
				Folder:           c.cfg.SequenceDir,
				Name:             c.cfg.CombinedName,
				CreateDirs:       c.cfg.CreateDirs,
				ValidateAlphabet: c.cfg.ValidateAlphabet,
				Logger:           &c.log,
			}
			if c.cfg.Progress {
				opts.Progress = c.stderr
			}

			records, err := c.load(cmd.Context(), string(sequence.KindRemote), opts, sequence.Request{IDs: args, DB: db})
			if err != nil {
				return err
			}
			return emit(records)
		},
	}

	f := cmd.Flags()
	f.StringVar(&db, "db", "", "Entrez database, e.g. protein or nucleotide (required)")
	f.StringVar(&c.flags.sequenceDir, "folder", "", "Directory or bucket URL for persisted records (default sequences)")
	f.StringVar(&c.flags.combinedName, "name", "", "Suffix of the combined file name (default seq)")
	f.StringVar(&c.flags.entrezURL, "entrez-url", "", "Base URL of the Entrez E-utilities")
	f.StringVar(&c.flags.email, "email", "", "Contact email sent to NCBI")
	f.StringVar(&c.flags.apiKey, "api-key", "", "NCBI API key")
	f.BoolVar(&c.flags.validateAlphabet, "validate-alphabet", false, "Reject records with residues outside the database alphabet")

	return cmd
}

func (c *cli) newFileCommand(emit func([]sequence.Record) error) *cobra.Command {
	return &cobra.Command{
		Use:     "file PATH",
		Aliases: []string{"fasta"},
		Short:   "Read the residues of a local FASTA file",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := c.load(cmd.Context(), string(sequence.KindFile), sequence.RemoteOptions{}, sequence.Request{Path: args[0]})
			if err != nil {
				return err
			}
			return emit(records)
		},
	}
}

// load selects a source through the factory and loads req from it.
func (c *cli) load(ctx context.Context, kind string, remote sequence.RemoteOptions, req sequence.Request) ([]sequence.Record, error) {
	src, err := sequence.NewFactory(sequence.FactoryOptions{
		Seed:   c.cfg.Seed,
		Remote: remote,
	}).Get(kind)
	if err != nil {
		return nil, err
	}

	records, err := src.Load(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("load %s sequence: %w", src.Kind(), err)
	}
	c.log.Debug().Str("source", string(src.Kind())).Int("records", len(records)).Msg("sequences loaded")
	return records, nil
}
