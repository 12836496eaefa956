package commands

import (
	"fmt"

	"github.com/de-tools/vgsales-report/pkg/adapters"
	"github.com/de-tools/vgsales-report/pkg/models/domain"
	"github.com/de-tools/vgsales-report/pkg/runtime/terminal/export"
	"github.com/de-tools/vgsales-report/pkg/store/archive"
	"github.com/spf13/cobra"
)

type HistoryCmd struct {
	archiveDSN string
	limit      int
	reporter   *export.Reporter
}

func NewHistoryCmd(reporter *export.Reporter) *cobra.Command {
	hc := &HistoryCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived reports",
		RunE:  hc.run,
	}

	cmd.Flags().StringVar(&hc.archiveDSN, "archive", "", "DuckDB file or postgres:// database holding the archive")
	cmd.Flags().IntVar(&hc.limit, "limit", 20, "Maximum number of reports to list")

	_ = cmd.MarkFlagRequired("archive")

	return cmd
}

func (hc *HistoryCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := archive.Open(ctx, hc.archiveDSN)
	if err != nil {
		return err
	}
	defer closeArchive(ctx, a)

	runs, err := a.List(ctx, hc.limit)
	if err != nil {
		return fmt.Errorf("failed to list archived reports: %w", err)
	}

	reports := make([]*domain.Report, 0, len(runs))
	for _, run := range runs {
		rep, err := adapters.MapStoreRunToDomainReport(run)
		if err != nil {
			return fmt.Errorf("failed to read archived report %s: %w", run.ID, err)
		}
		reports = append(reports, rep)
	}
	return hc.reporter.HandleHistory(reports)
}
