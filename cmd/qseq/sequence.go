package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/qseq/internal/domain/quaternion"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "check SEQUENCE...",
		Short: "Report whether sequences are PQS or OPQS",
		Long: `Check prints the length and the PQS and OPQS flags of each sequence.
symmetric means v[t] == v[n-t] for every t >= 1, leaving position 0 out.
palindrome means v[t] == v[n-1-t], which holds for every palindromic search result.`,
		Example: `  qseq check J+q+J
  qseq check -v +ii+`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := root.service(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, labels := range args {
				a, err := svc.Check(labels)
				if err != nil {
					return fmt.Errorf("check %q: %w", labels, err)
				}
				fmt.Fprintf(out, "%s length=%d pqs=%t opqs=%t symmetric=%t palindrome=%t\n",
					a.Sequence, len(a.Periodic), a.PQS, a.OPQS, a.Symmetric, a.Palindrome)
				if !verbose {
					continue
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "  SHIFT\tPERIODIC\tODD-PERIODIC")
				for t := range a.Periodic {
					fmt.Fprintf(tw, "  %d\t%s\t%s\n", t, a.Periodic[t], a.OddPeriodic[t])
				}
				if err := tw.Flush(); err != nil {
					return fmt.Errorf("write table: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the autocorrelation at every shift")
	return cmd
}

func newShrinkCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shrink SEQUENCE...",
		Short: "Find the longest centered OPQS inside each sequence",
		Long: `Shrink strips the same number of symbols from both ends of a sequence,
fewest first, and prints the first remainder that is an OPQS.`,
		Example: `  qseq shrink +ijZji+`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := root.service(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, labels := range args {
				sub, ok, err := svc.Shrink(labels)
				if err != nil {
					return fmt.Errorf("shrink %q: %w", labels, err)
				}
				if !ok {
					sub = "-"
				}
				fmt.Fprintf(out, "%s %s\n", labels, sub)
			}
			return nil
		},
	}
}

func newAlphabetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alphabet",
		Short: "List the 16 symbols and their quaternion values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tLABEL\tVALUE")
			for i, q := range quaternion.Alphabet() {
				fmt.Fprintf(tw, "%d\t%c\t%s\n", i, quaternion.Labels[i], q)
			}
			if err := tw.Flush(); err != nil {
				return fmt.Errorf("write table: %w", err)
			}
			return nil
		},
	}
}
