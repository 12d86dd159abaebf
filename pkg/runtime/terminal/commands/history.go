package commands

import (
	"fmt"
	"time"

	"github.com/de-tools/sales-atlas/pkg/adapters"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/spf13/cobra"
)

type HistoryCmd struct {
	session  Session
	reporter Reporter
	limit    int
}

func NewHistoryCmd(session Session, reporter Reporter) *cobra.Command {
	hc := &HistoryCmd{session: session, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent refresh cycles",
		Args:  cobra.NoArgs,
		RunE:  hc.run,
	}

	cmd.Flags().IntVar(&hc.limit, "limit", 10, "Number of runs to show")

	return cmd
}

func (hc *HistoryCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if hc.limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", hc.limit)
	}

	history, err := hc.session.History(ctx)
	if err != nil {
		return err
	}

	runs, err := history.ListRecent(ctx, hc.limit)
	if err != nil {
		return fmt.Errorf("failed to list refresh runs: %w", err)
	}

	return hc.reporter.Handle(&domain.Report{
		Title:       "Refresh History",
		GeneratedAt: time.Now(),
		Sections:    []domain.ReportSection{adapters.MapRefreshRunsToSection(runs)},
	})
}
