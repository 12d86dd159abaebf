package commands

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/de-tools/sales-atlas/pkg/services/dashboard"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type ChartCmd struct {
	session Session
	out     string
}

func NewChartCmd(session Session) *cobra.Command {
	cc := &ChartCmd{session: session}
	cmd := &cobra.Command{
		Use:       "chart <slot>",
		Short:     "Refresh and save one chart as PNG",
		Long:      "Slots: " + strings.Join(dashboard.ChartSlots, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: dashboard.ChartSlots,
		RunE:      cc.run,
	}

	cmd.Flags().StringVarP(&cc.out, "out", "o", "", "Output PNG path")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func (cc *ChartCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)
	slot := args[0]

	if !slices.Contains(dashboard.ChartSlots, slot) {
		return fmt.Errorf("unknown chart %q, expected one of: %s", slot, strings.Join(dashboard.ChartSlots, ", "))
	}

	d, err := cc.session.Dashboard(ctx)
	if err != nil {
		return err
	}
	if err := d.Refresher.RefreshAll(ctx, dashboard.TriggerManual); err != nil {
		logger.Warn().Err(err).Msg("refresh incomplete")
	}

	f, err := os.Create(cc.out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", cc.out, err)
	}

	if err := d.Charts.RenderPNG(slot, f); err != nil {
		_ = f.Close()
		_ = os.Remove(cc.out)
		return fmt.Errorf("failed to render %s: %w", slot, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", cc.out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", slot, cc.out)
	return nil
}
