package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sarchlab/chesttrack/integrity"
	"github.com/sarchlab/chesttrack/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report <journal.sqlite3>",
	Short: "Summarize a journal recorded by replay",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		opts := reportOptions{filename: args[0]}
		opts.cause, _ = cmd.Flags().GetString("cause")
		opts.limit, _ = cmd.Flags().GetInt("limit")

		return runReport(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	reportCmd.Flags().String("cause", "",
		"list the evictions with this cause (expired, periodic_check, "+
			"player_block_break)")
	reportCmd.Flags().IntP("limit", "n", 20,
		"maximum number of sweeps or evictions to list, 0 for all")
	rootCmd.AddCommand(reportCmd)
}

type reportOptions struct {
	filename string
	cause    string
	limit    int
}

func runReport(ctx context.Context, opts reportOptions, out io.Writer) error {
	if opts.cause != "" {
		if _, err := integrity.ParseCause(opts.cause); err != nil {
			return err
		}
	}

	r, err := journal.Open(opts.filename)
	if err != nil {
		return err
	}
	defer r.Close()

	info, err := r.ExecInfo(ctx)
	if err != nil {
		return err
	}

	renderTable(out, []string{"Property", "Value"}, len(info),
		func(i int) []string { return []string{info[i].Property, info[i].Value} })

	counts, err := r.EvictionsByCause(ctx)
	if err != nil {
		return err
	}

	renderTable(out, []string{"Cause", "Evictions"}, len(counts),
		func(i int) []string {
			return []string{counts[i].Cause, strconv.Itoa(counts[i].Count)}
		})

	if opts.cause != "" {
		return reportEvictions(ctx, r, opts, out)
	}

	return reportSweeps(ctx, r, opts, out)
}

func reportSweeps(
	ctx context.Context,
	r *journal.Reader,
	opts reportOptions,
	out io.Writer,
) error {
	sweeps, total, err := r.Sweeps(ctx, journal.QueryParams{
		OrderBy: "Tick",
		Limit:   opts.limit,
	})
	if err != nil {
		return err
	}

	renderTable(out, []string{"Tick", "Bank", "Key", "Entries", "Evicted"},
		len(sweeps), func(i int) []string {
			s := sweeps[i]
			return []string{
				strconv.FormatInt(s.Tick, 10), s.BankID, s.Key,
				strconv.Itoa(s.Entries), strconv.Itoa(s.Evicted),
			}
		})

	fmt.Fprintf(out, "%d of %d sweeps\n", len(sweeps), total)

	return nil
}

func reportEvictions(
	ctx context.Context,
	r *journal.Reader,
	opts reportOptions,
	out io.Writer,
) error {
	evictions, total, err := r.Evictions(ctx, journal.QueryParams{
		Where:   "Cause = ?",
		Args:    []any{opts.cause},
		OrderBy: "Tick",
		Limit:   opts.limit,
	})
	if err != nil {
		return err
	}

	renderTable(out,
		[]string{"Tick", "Bank", "Key", "Position", "Seconds Past Expiry"},
		len(evictions), func(i int) []string {
			e := evictions[i]
			return []string{
				strconv.FormatInt(e.Tick, 10), e.BankID, e.Key,
				fmt.Sprintf("%d, %d, %d", e.X, e.Y, e.Z),
				strconv.FormatInt(e.SecondsPastExpiry, 10),
			}
		})

	fmt.Fprintf(out, "%d of %d %s evictions\n", len(evictions), total,
		opts.cause)

	return nil
}

func renderTable(out io.Writer, header []string, n int, row func(int) []string) {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)

	for i := 0; i < n; i++ {
		table.Append(row(i))
	}

	table.Render()
}
