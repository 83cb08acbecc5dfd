package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/linjoin/internal/joinclass"
)

// ClassifyOptions holds flags for the classify command.
type ClassifyOptions struct {
	*RootOptions
	Explain bool // print every rule step and the check sets
}

// ClassifyResult is the JSON payload of the classify command.
type ClassifyResult struct {
	Linear   bool                `json:"linear"`
	Rule     string              `json:"rule,omitempty"`
	Left     string              `json:"left_fingerprint"`
	Right    string              `json:"right_fingerprint"`
	Decision *joinclass.Decision `json:"decision,omitempty"`
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClassifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "classify <left> <right>",
		Short: "Decide whether (join left right) is linear",
		Long: `Run the join classifier on a left and right plan.

Prints "linear" when the right side may be evaluated once per left
solution by substitution, or the rejecting rule otherwise.

Examples:
  linjoin classify '(bgp (triple ?s <http://ex/p> ?o))' '(bgp (triple ?s <http://ex/q> ?x))'
  linjoin classify --explain @left.sse @right.sse
  linjoin classify --format json @left.sse @right.sse`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "print rule steps and variable sets")

	return cmd
}

func runClassify(opts *ClassifyOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	nodes, err := readPlans(args)
	if err != nil {
		return planFailure(formatter, err)
	}
	left, right := nodes[0], nodes[1]

	classifier := joinclass.New(nil, joinclass.WithTracer(joinclass.LogTracer{Logger: logger}))
	d, err := classifier.Classify(left, right)
	if err != nil {
		return commandError(formatter, ExitCommandError, ErrCodeDefect, err.Error())
	}

	if formatter.Format == "json" {
		result := ClassifyResult{
			Linear: d.Linear,
			Left:   fingerprint(left),
			Right:  fingerprint(right),
		}
		if !d.Linear {
			result.Rule = d.Rule.String()
		}
		if opts.Explain {
			result.Decision = &d
		}
		return formatter.Success(result)
	}

	w := formatter.Writer
	if opts.Explain {
		fmt.Fprintln(w, d.String())
		if d.Sets != nil {
			fmt.Fprintln(w, d.Sets.String())
		}
		return nil
	}
	if d.Linear {
		fmt.Fprintln(w, "linear")
	} else {
		fmt.Fprintf(w, "reject (%s)\n", d.Rule)
	}
	return nil
}
