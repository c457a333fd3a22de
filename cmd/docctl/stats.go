package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/tarcin/docissuer/internal/app/migrations"
	"github.com/tarcin/docissuer/internal/app/models"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show document totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			stats, err := e.repos.StatsRepository.Stats(cmd.Context())
			if err != nil {
				return err
			}
			renderStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

func newSequencesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sequences",
		Short: "Show certificate sequence counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			counters, err := e.repos.SequenceRepository.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(counters) == 0 {
				printWarning(out, "no certificate has been issued yet")
				return nil
			}
			renderSequences(out, counters, e.cfg.Sequence.IDPrefix)
			return nil
		},
	}
}

func renderStats(w io.Writer, s *models.Stats) {
	heading.Fprintln(w, "Document totals")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Count"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk([][]string{
		{"Certificates", strconv.FormatInt(s.TotalCertificates, 10)},
		{"Letters", strconv.FormatInt(s.TotalLetters, 10)},
		{"Batches", strconv.FormatInt(s.TotalBatches, 10)},
		{"Downloads", strconv.FormatInt(s.TotalDownloads, 10)},
	})
	table.Render()
}

func renderSequences(w io.Writer, counters []models.SequenceCounter, prefix string) {
	heading.Fprintln(w, "Certificate sequences")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Year", "Course code", "Last issued", "Next ID"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, c := range counters {
		table.Append([]string{
			strconv.Itoa(c.Year),
			c.CourseCode,
			strconv.Itoa(c.LastSequence),
			models.FormatCertificateID(prefix, c.Year, c.CourseCode, c.LastSequence+1),
		})
	}
	table.Render()
}

func renderMigrations(w io.Writer, list []migrations.Migration) {
	heading.Fprintln(w, "Migrations")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Version", "File", "Applied"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, m := range list {
		applied := "pending"
		if m.AppliedAt != nil {
			applied = m.AppliedAt.Local().Format(time.DateTime)
		}
		table.Append([]string{m.Version, m.File, applied})
	}
	table.Render()
	fmt.Fprintf(w, "%d migration file(s)\n", len(list))
}
