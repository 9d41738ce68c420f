package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/banklift-dev/banklift/internal/config"
	"github.com/banklift-dev/banklift/internal/importer"
	"github.com/banklift-dev/banklift/internal/journal"
	"github.com/banklift-dev/banklift/internal/ledger"
	"github.com/banklift-dev/banklift/internal/match"
	"github.com/banklift-dev/banklift/internal/model"
	"github.com/banklift-dev/banklift/internal/normalize"
	"github.com/banklift-dev/banklift/internal/runlog"
)

func newConvertCommand() *cobra.Command {
	var (
		configPath string
		output     string
		importRoot string
	)

	cmd := &cobra.Command{
		Use:   "convert [statement.csv]",
		Short: "Convert a bank CSV export to beancount entries",
		Long: `Convert reads a bank CSV export and prints one beancount entry per
booking. When a journal is configured, the counter account of each
entry is guessed from the most recent prior booking with the same
payee; bookings without history go to the unknown account for manual
review.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, configPath)
			if err != nil {
				return err
			}

			switch {
			case importRoot != "" && len(args) > 0:
				return fmt.Errorf("cannot combine --import-dir with a statement file")
			case importRoot != "":
				return runConvertDir(cmd, cfg, importRoot)
			case len(args) == 1:
				return runConvertFile(cmd, cfg, args[0], output)
			default:
				return fmt.Errorf("need a statement file or --import-dir")
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default banklift.yaml in the working directory)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&importRoot, "import-dir", "", "convert every CSV under <dir>/import/ and move them to import/processed/")

	cmd.Flags().String("account", "", "account the export belongs to")
	cmd.Flags().String("journal", "", "beancount journal to learn counter accounts from")
	cmd.Flags().String("currency", "", "currency for rows that do not carry one")
	cmd.Flags().String("format", "", "statement format")
	cmd.Flags().String("flag", "", "entry flag, ! or *")
	cmd.Flags().String("unknown-account", "", "account for unclassified bookings")
	cmd.Flags().Bool("case-insensitive", false, "fold payee case during matching")

	return cmd
}

// resolveConfig layers an explicit config file (or banklift.yaml in
// the working directory, if present) over the defaults, then applies
// any flags the user set.
func resolveConfig(cmd *cobra.Command, configPath string) (config.Config, error) {
	cfg := config.Default()

	if configPath == "" {
		if _, err := os.Stat(ConfigFileName); err == nil {
			configPath = ConfigFileName
		}
	}
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	stringFlags := map[string]*string{
		"account":         &cfg.Account,
		"journal":         &cfg.Journal,
		"currency":        &cfg.Currency,
		"format":          &cfg.Format,
		"flag":            &cfg.Flag,
		"unknown-account": &cfg.UnknownAccount,
	}
	for name, dst := range stringFlags {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed("case-insensitive") {
		cfg.CaseInsensitive, _ = flags.GetBool("case-insensitive")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// buildIndex loads the configured journal and indexes its history.
// Without a journal there is no index and every booking stays
// unclassified.
func buildIndex(cfg config.Config) (*match.Index, error) {
	if cfg.Journal == "" {
		return nil, nil
	}
	records, err := journal.Load(cfg.Journal, cfg.Account)
	if err != nil {
		return nil, err
	}
	return match.NewIndex(records, match.Options{CaseInsensitive: cfg.CaseInsensitive}), nil
}

// conversion is the outcome of converting one statement file.
type conversion struct {
	Transactions []model.Transaction
	Closing      *model.Balance
	Unmatched    []string // distinct unclassified payees, in input order
}

// convertStatement runs the pipeline over one parsed statement:
// normalize each row, infer the counter account, keep input order.
// The first malformed row aborts the whole conversion.
func convertStatement(stmt *model.Statement, idx *match.Index, cfg config.Config, dateLayout string) (conversion, error) {
	opts := normalize.Options{
		DateLayout:     dateLayout,
		Currency:       cfg.Currency,
		PrimaryAccount: cfg.Account,
		UnknownAccount: cfg.UnknownAccount,
	}

	var result conversion
	seen := make(map[string]bool)
	for _, raw := range stmt.Records {
		txn, err := normalize.Record(raw, opts)
		if err != nil {
			return conversion{}, err
		}
		if idx != nil {
			if account, ok := idx.InferAt(txn.Payee, txn.Date); ok {
				txn.CounterAccount = account
			}
		}
		if txn.CounterAccount == cfg.UnknownAccount && !seen[txn.Payee] {
			seen[txn.Payee] = true
			result.Unmatched = append(result.Unmatched, txn.Payee)
		}
		result.Transactions = append(result.Transactions, txn)
	}

	if stmt.Closing != nil {
		closing, err := normalize.Closing(*stmt.Closing, opts)
		if err != nil {
			return conversion{}, err
		}
		result.Closing = &closing
	}

	return result, nil
}

// convertSource parses and converts one statement file and renders it
// to a buffer. Rendering to memory first means a malformed row never
// leaves a partial output file behind.
func convertSource(cfg config.Config, idx *match.Index, srcPath string) (conversion, []byte, error) {
	parser := importer.DefaultRegistry().Get(cfg.Format)
	if parser == nil {
		return conversion{}, nil, fmt.Errorf("unknown format %q (have: %s)",
			cfg.Format, strings.Join(importer.DefaultRegistry().Formats(), ", "))
	}

	f, err := os.Open(srcPath)
	if err != nil {
		return conversion{}, nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	stmt, err := parser.Parse(f)
	if err != nil {
		return conversion{}, nil, fmt.Errorf("parsing %s: %w", srcPath, err)
	}

	result, err := convertStatement(stmt, idx, cfg, parser.DateLayout())
	if err != nil {
		return conversion{}, nil, fmt.Errorf("converting %s: %w", srcPath, err)
	}

	var buf bytes.Buffer
	if err := ledger.Write(&buf, result.Transactions, result.Closing, cfg.Flag); err != nil {
		return conversion{}, nil, err
	}
	return result, buf.Bytes(), nil
}

func runConvertFile(cmd *cobra.Command, cfg config.Config, srcPath, output string) error {
	idx, err := buildIndex(cfg)
	if err != nil {
		return err
	}

	result, rendered, err := convertSource(cfg, idx, srcPath)
	if err != nil {
		return err
	}

	if output == "" {
		if _, err := cmd.OutOrStdout().Write(rendered); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	} else if err := os.WriteFile(output, rendered, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return finishRun(cmd, cfg, srcPath, result)
}

func runConvertDir(cmd *cobra.Command, cfg config.Config, root string) error {
	idx, err := buildIndex(cfg)
	if err != nil {
		return err
	}

	files, err := importer.Scan(root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to convert.")
		return nil
	}

	for _, file := range files {
		result, rendered, err := convertSource(cfg, idx, file.Path)
		if err != nil {
			return err
		}

		outPath := filepath.Join(root, strings.TrimSuffix(file.Name, filepath.Ext(file.Name))+".beancount")
		if err := os.WriteFile(outPath, rendered, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		if err := importer.MarkProcessed(root, file.Name); err != nil {
			return err
		}
		if err := finishRun(cmd, cfg, file.Path, result); err != nil {
			return err
		}
	}
	return nil
}

// finishRun prints the per-file summary and records the run log row.
func finishRun(cmd *cobra.Command, cfg config.Config, srcPath string, result conversion) error {
	rows := len(result.Transactions)
	unmatched := 0
	for _, txn := range result.Transactions {
		if txn.CounterAccount == cfg.UnknownAccount {
			unmatched++
		}
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "%s: %d bookings, %d classified, %d for review\n",
		filepath.Base(srcPath), rows, rows-unmatched, unmatched)
	if len(result.Unmatched) > 0 {
		warn := color.New(color.FgYellow)
		warn.Fprintf(stderr, "  review %s:\n", cfg.UnknownAccount)
		for _, payee := range result.Unmatched {
			warn.Fprintf(stderr, "    %s\n", payee)
		}
	}

	if cfg.LogDir == "" {
		return nil
	}
	return runlog.Append(cfg.LogDir, runlog.Entry{
		Timestamp: time.Now().UTC(),
		Source:    filepath.Base(srcPath),
		Format:    cfg.Format,
		Rows:      rows,
		Matched:   rows - unmatched,
		Unmatched: unmatched,
	})
}
