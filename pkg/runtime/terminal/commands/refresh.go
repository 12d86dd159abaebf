package commands

import (
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/services/dashboard"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type RefreshCmd struct {
	session  Session
	reporter Reporter
}

func NewRefreshCmd(session Session, reporter Reporter) *cobra.Command {
	rc := &RefreshCmd{session: session, reporter: reporter}
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch every dashboard payload and print the report",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}
}

func (rc *RefreshCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	d, err := rc.session.Dashboard(ctx)
	if err != nil {
		return err
	}

	refreshErr := d.Refresher.RefreshAll(ctx, dashboard.TriggerManual)
	if refreshErr != nil {
		zerolog.Ctx(ctx).Warn().Err(refreshErr).Msg("refresh incomplete, report may be partial")
	}

	if err := rc.reporter.Handle(report(d)); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}
	return refreshErr
}
