package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/qseq/internal/domain/search/predicate"
	"github.com/kailas-cloud/qseq/internal/domain/search/request"
	"github.com/kailas-cloud/qseq/internal/domain/search/result"
	"github.com/kailas-cloud/qseq/internal/domain/search/symmetry"
	searchuc "github.com/kailas-cloud/qseq/internal/usecase/search"
)

type searchOptions struct {
	predicate    string
	symmetry     string
	maxSolutions int
	maxLeaves    uint64
	timeout      time.Duration
	countOnly    bool
	asJSON       bool
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search SIZE",
		Short: "Enumerate all sequences of a length satisfying the predicate",
		Long: `Search enumerates symmetric sequences of the given length over the
16-symbol alphabet and prints those whose autocorrelation vanishes.

Solutions are printed as they are found; the summary goes to stderr.
With more than one worker the print order is not fixed.`,
		Example: `  qseq search 6
  qseq search 10 --symmetry ii --predicate periodic
  qseq search 12 --max-solutions 1 --timeout 30s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("size must be an integer: %q", args[0])
			}
			return runSearch(cmd, root, opts, size)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.predicate, "predicate", "p", string(predicate.OddPeriodic), "odd_periodic or periodic")
	f.StringVarP(&opts.symmetry, "symmetry", "s", string(symmetry.Palindromic), "none, palindromic, ii, iii or iv")
	f.IntVarP(&opts.maxSolutions, "max-solutions", "n", 0, "stop after this many solutions (0 = all)")
	f.Uint64Var(&opts.maxLeaves, "max-leaves", 0, "stop after this many complete candidates (0 = all)")
	f.DurationVar(&opts.timeout, "timeout", 0, "stop after this long (0 = none)")
	f.BoolVarP(&opts.countOnly, "count", "c", false, "print only the summary")
	f.BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	return cmd
}

func runSearch(cmd *cobra.Command, root *rootOptions, opts *searchOptions, size int) error {
	req, err := request.New(size,
		predicate.Predicate(opts.predicate), symmetry.Symmetry(opts.symmetry),
		opts.maxSolutions, opts.maxLeaves, root.workers,
	)
	if err != nil {
		return fmt.Errorf("invalid search: %w", err)
	}

	svc, err := root.service(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	out := cmd.OutOrStdout()
	var emit searchuc.EmitFunc
	if !opts.countOnly && !opts.asJSON {
		emit = func(solution string) { fmt.Fprintln(out, solution) }
	}

	res, err := svc.Search(ctx, req, emit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if opts.asJSON {
		return writeResultJSON(out, &res)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), summaryLine(&res))
	return nil
}

// summaryLine renders a result as key=value pairs.
func summaryLine(r *result.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "size=%d predicate=%s symmetry=%s count=%d leaves=%d elapsed=%s",
		r.Size(), r.Predicate(), r.Symmetry(), r.Count(), r.Leaves(), r.Elapsed().Round(time.Microsecond))
	if r.Truncated() {
		sb.WriteString(" truncated")
	}
	if r.Cached() {
		sb.WriteString(" cached")
	}
	return sb.String()
}

type resultJSON struct {
	Size      int      `json:"size"`
	Predicate string   `json:"predicate"`
	Symmetry  string   `json:"symmetry"`
	Count     int      `json:"count"`
	Leaves    uint64   `json:"leaves"`
	Truncated bool     `json:"truncated"`
	Cached    bool     `json:"cached"`
	ElapsedMs int64    `json:"elapsed_ms"`
	Solutions []string `json:"solutions"`
}

func writeResultJSON(w io.Writer, r *result.Result) error {
	solutions := r.Solutions()
	if solutions == nil {
		solutions = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resultJSON{
		Size:      r.Size(),
		Predicate: string(r.Predicate()),
		Symmetry:  string(r.Symmetry()),
		Count:     r.Count(),
		Leaves:    r.Leaves(),
		Truncated: r.Truncated(),
		Cached:    r.Cached(),
		ElapsedMs: r.Elapsed().Milliseconds(),
		Solutions: solutions,
	}); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func newSweepCmd(root *rootOptions) *cobra.Command {
	var pred, sym string

	cmd := &cobra.Command{
		Use:   "sweep FROM TO",
		Short: "Count solutions for every length in a range",
		Long: `Sweep runs a complete search for each length from FROM to TO and prints
a table of solution counts. Lengths the symmetry does not support are skipped.`,
		Example: `  qseq sweep 1 10
  qseq sweep 2 12 --symmetry iv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("FROM must be an integer: %q", args[0])
			}
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("TO must be an integer: %q", args[1])
			}

			svc, err := root.service(cmd)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SIZE\tCOUNT\tLEAVES\tELAPSED\tSOURCE")
			err = svc.Sweep(cmd.Context(), searchuc.SweepParams{
				From:      from,
				To:        to,
				Predicate: predicate.Predicate(pred),
				Symmetry:  symmetry.Symmetry(sym),
				Workers:   root.workers,
			}, func(r result.Result) {
				source := "search"
				if r.Cached() {
					source = "cache"
				}
				fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\n",
					r.Size(), r.Count(), r.Leaves(), r.Elapsed().Round(time.Microsecond), source)
			})
			if flushErr := tw.Flush(); flushErr != nil && err == nil {
				err = flushErr
			}
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&pred, "predicate", "p", string(predicate.OddPeriodic), "odd_periodic or periodic")
	cmd.Flags().StringVarP(&sym, "symmetry", "s", string(symmetry.Palindromic), "none, palindromic, ii, iii or iv")
	return cmd
}
