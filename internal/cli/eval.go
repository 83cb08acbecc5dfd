package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/linjoin/internal/dataset"
	"github.com/roach88/linjoin/internal/eval"
	"github.com/roach88/linjoin/internal/joinclass"
	"github.com/roach88/linjoin/internal/store"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Data         string // dataset .cue file (required)
	DB           string // SQLite file; empty means in-memory
	Show         bool   // print the solutions
	MaxSolutions int
}

// EvalResult is the JSON payload of the eval command.
type EvalResult struct {
	Dataset     string   `json:"dataset"`
	DatasetHash string   `json:"dataset_hash"`
	Linear      bool     `json:"linear"`
	Rule        string   `json:"rule,omitempty"`
	Join        []string `json:"join"`
	Sequence    []string `json:"sequence"`
	Same        bool     `json:"same"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval --data <dataset.cue> <left> <right>",
		Short: "Evaluate a join both ways over a dataset",
		Long: `Evaluate (join left right) as a relational join and as a substitution
sequence over a dataset, and report whether the solutions agree.

With --db the dataset is stored under its name next to any datasets loaded
before; evaluation only sees the quads of the named dataset.

Exit codes:
  0 - Evaluated; an accepted join gave the same solutions both ways
  1 - Evaluation failed, or an accepted join gave different solutions
  2 - Command error (unreadable plan or dataset, etc.)

Examples:
  linjoin eval --data people.cue @left.sse @right.sse
  linjoin eval --data people.cue --show --format json @left.sse @right.sse
  linjoin eval --data people.cue --db linjoin.db @left.sse @right.sse`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Data, "data", "", "dataset file (.cue)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database to load the dataset into (default in-memory)")
	cmd.Flags().BoolVar(&opts.Show, "show", false, "print the solutions of both strategies")
	cmd.Flags().IntVar(&opts.MaxSolutions, "max-solutions", eval.DefaultMaxSolutions, "bound on intermediate results (0 disables)")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runEval(opts *EvalOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	nodes, err := readPlans(args)
	if err != nil {
		return planFailure(formatter, err)
	}
	left, right := nodes[0], nodes[1]

	ds, err := dataset.LoadFile(opts.Data)
	if err != nil {
		code := ErrCodeDataset
		if errors.Is(err, os.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return commandError(formatter, ExitCommandError, code, err.Error())
	}

	var st *store.Store
	if opts.DB == "" {
		st, err = store.OpenMemory()
	} else {
		st, err = store.Open(opts.DB)
	}
	if err != nil {
		return commandError(formatter, ExitCommandError, ErrCodeGeneric, fmt.Sprintf("open store: %v", err))
	}
	defer st.Close()

	loaded, err := st.LoadDataset(ctx, ds.Name, ds.Quads)
	if err != nil {
		return commandError(formatter, ExitCommandError, ErrCodeDataset, err.Error())
	}
	if loaded {
		formatter.VerboseLog("Loaded dataset %s (%d quads)", ds.Name, len(ds.Quads))
	} else {
		formatter.VerboseLog("Dataset %s already loaded", ds.Name)
	}

	d, err := joinclass.New(nil, joinclass.WithTracer(joinclass.LogTracer{Logger: logger})).Classify(left, right)
	if err != nil {
		return commandError(formatter, ExitCommandError, ErrCodeDefect, err.Error())
	}

	ev := eval.New(st.Dataset(ds.Name), eval.WithMaxSolutions(opts.MaxSolutions))
	cmp, err := ev.Compare(ctx, left, right)
	if err != nil {
		_ = formatter.Error(ErrCodeEval, err.Error())
		return WrapExitError(ExitFailure, ErrCodeEval, err)
	}

	result := EvalResult{
		Dataset:     ds.Name,
		DatasetHash: ds.Hash(),
		Linear:      d.Linear,
		Join:        eval.Canonical(cmp.Join),
		Sequence:    eval.Canonical(cmp.Sequence),
		Same:        cmp.Same,
	}
	if !d.Linear {
		result.Rule = d.Rule.String()
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputEvalText(formatter, result, len(ds.Quads), opts.Show)
	}

	if result.Linear && !result.Same {
		return NewExitError(ExitFailure, "accepted join gives different solutions")
	}
	return nil
}

func outputEvalText(f *OutputFormatter, r EvalResult, quads int, show bool) {
	w := f.Writer
	fmt.Fprintf(w, "dataset: %s (%d quads)\n", r.Dataset, quads)
	if r.Linear {
		fmt.Fprintln(w, "classifier: linear")
	} else {
		fmt.Fprintf(w, "classifier: reject (%s)\n", r.Rule)
	}
	for _, part := range []struct {
		name string
		rows []string
	}{{"join", r.Join}, {"sequence", r.Sequence}} {
		fmt.Fprintf(w, "%s: %d solution(s)\n", part.name, len(part.rows))
		if show {
			for _, row := range part.rows {
				fmt.Fprintf(w, "  %s\n", row)
			}
		}
	}
	fmt.Fprintf(w, "same: %t\n", r.Same)
}
