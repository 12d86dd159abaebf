package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/services/dashboard"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type UploadCmd struct {
	session  Session
	reporter Reporter
	quiet    bool
}

func NewUploadCmd(session Session, reporter Reporter) *cobra.Command {
	uc := &UploadCmd{session: session, reporter: reporter}
	cmd := &cobra.Command{
		Use:       "upload <sales|products|customers> <file.csv>",
		Short:     "Upload a CSV file to the backend",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(api.UploadSales), string(api.UploadProducts), string(api.UploadCustomers)},
		RunE:      uc.run,
	}

	cmd.Flags().BoolVarP(&uc.quiet, "quiet", "q", false, "Print only the upload message")

	return cmd
}

func (uc *UploadCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	kind, err := api.ParseUploadKind(args[0])
	if err != nil {
		return err
	}

	d, err := uc.session.Dashboard(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[1], err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close upload file")
		}
	}(f)

	uploadErr := d.Forms.Upload(ctx, kind, filepath.Base(args[1]), f)

	if el, ok := d.Page.Element(dashboard.UploadMessage(kind)); ok && el.Text != "" {
		fmt.Fprintln(cmd.OutOrStdout(), el.Text)
	}

	var rejected *dashboard.RejectedError
	switch {
	case errors.As(uploadErr, &rejected):
		return uploadErr
	case uploadErr != nil:
		logger.Warn().Err(uploadErr).Msg("upload finished with errors")
	}

	if uc.quiet {
		return uploadErr
	}
	if err := uc.reporter.Handle(report(d)); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}
	return uploadErr
}
