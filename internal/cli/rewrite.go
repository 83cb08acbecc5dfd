package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/linjoin/internal/algebra"
	"github.com/roach88/linjoin/internal/rewrite"
)

// RewriteOptions holds flags for the rewrite command.
type RewriteOptions struct {
	*RootOptions
	Indent  bool   // multi-line plan output
	PassID  string // fixed pass ID instead of a UUIDv7
	Metrics bool   // report the rewriter's counters
}

// RewriteResult is the JSON payload of the rewrite command.
type RewriteResult struct {
	Plan        string                 `json:"plan"`
	Fingerprint string                 `json:"fingerprint"`
	Linearized  int                    `json:"linearized"`
	Joins       []rewrite.JoinDecision `json:"joins"`
	Metrics     []metricSample         `json:"metrics,omitempty"`
}

// NewRewriteCommand creates the rewrite command.
func NewRewriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RewriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rewrite <plan>",
		Short: "Replace linear joins in a plan with sequences",
		Long: `Run one rewrite pass over a plan. Every join the classifier accepts
becomes a sequence; rejected joins are kept.

Examples:
  linjoin rewrite @query.sse
  linjoin rewrite --metrics @query.sse
  linjoin rewrite --indent '(join (bgp (triple ?s <http://ex/p> ?o)) (bgp (triple ?o <http://ex/q> ?x)))'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Indent, "indent", false, "print the plan over multiple lines")
	cmd.Flags().StringVar(&opts.PassID, "pass-id", "", "use a fixed pass ID")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print rewrite metrics after the plan")

	return cmd
}

func runRewrite(opts *RewriteOptions, arg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	plan, err := readPlan(arg)
	if err != nil {
		return planFailure(formatter, err)
	}

	reg := prometheus.NewRegistry()
	rwOpts := []rewrite.Option{
		rewrite.WithLogger(logger),
		rewrite.WithMetrics(rewrite.NewMetrics(reg)),
	}
	if opts.PassID != "" {
		rwOpts = append(rwOpts, rewrite.WithPassIDGenerator(rewrite.NewFixedGenerator(opts.PassID)))
	}
	res, err := rewrite.New(rwOpts...).Rewrite(cmd.Context(), plan)
	if err != nil {
		return commandError(formatter, ExitCommandError, ErrCodeDefect, err.Error())
	}

	var samples []metricSample
	if opts.Metrics {
		if samples, err = gatherSamples(reg); err != nil {
			return commandError(formatter, ExitFailure, ErrCodeGeneric, err.Error())
		}
	}

	if formatter.Format == "json" {
		return formatter.SuccessWithPass(res.PassID, RewriteResult{
			Plan:        algebra.Format(res.Plan),
			Fingerprint: fingerprint(res.Plan),
			Linearized:  res.Linearized,
			Joins:       res.Joins,
			Metrics:     samples,
		})
	}

	w := formatter.Writer
	if opts.Indent {
		fmt.Fprintln(w, algebra.FormatIndent(res.Plan))
	} else {
		fmt.Fprintln(w, algebra.Format(res.Plan))
	}
	for _, j := range res.Joins {
		if j.Decision.Linear {
			fmt.Fprintln(w, "join: linear")
		} else {
			fmt.Fprintf(w, "join: reject (%s)\n", j.Decision.Rule)
		}
	}
	for _, m := range samples {
		fmt.Fprintf(w, "metric: %s %g\n", m.Name, m.Value)
	}
	formatter.VerboseLog("pass %s: %d of %d join(s) linearized", res.PassID, res.Linearized, len(res.Joins))
	return nil
}

// fingerprint renders algebra.Fingerprint as fixed-width hex.
func fingerprint(n algebra.Node) string {
	return fmt.Sprintf("%016x", algebra.Fingerprint(n))
}
