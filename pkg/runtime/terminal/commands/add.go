package commands

import (
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/services/dashboard"
	"github.com/spf13/cobra"
)

func NewAddCmd(session Session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a customer or a product",
	}

	cmd.AddCommand(newAddCustomerCmd(session))
	cmd.AddCommand(newAddProductCmd(session))

	return cmd
}

type AddCustomerCmd struct {
	session Session
	form    api.CustomerForm
}

func newAddCustomerCmd(session Session) *cobra.Command {
	ac := &AddCustomerCmd{session: session}
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Add a customer",
		Args:  cobra.NoArgs,
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.form.Name, "name", "", "Customer name")
	cmd.Flags().StringVar(&ac.form.Email, "email", "", "Customer email")
	cmd.Flags().StringVar(&ac.form.Phone, "phone", "", "Customer phone")
	cmd.Flags().StringVar(&ac.form.Address, "address", "", "Customer address")

	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func (ac *AddCustomerCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	d, err := ac.session.Dashboard(ctx)
	if err != nil {
		return err
	}

	submitErr := d.Forms.SubmitCustomer(ctx, ac.form)
	printMessage(cmd, d, dashboard.FormSuccess)
	return submitErr
}

type AddProductCmd struct {
	session Session
	form    api.ProductForm
}

func newAddProductCmd(session Session) *cobra.Command {
	ap := &AddProductCmd{session: session}
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE:  ap.run,
	}

	cmd.Flags().StringVar(&ap.form.Name, "name", "", "Product name")
	cmd.Flags().StringVar(&ap.form.Qty, "qty", "", "Quantity")
	cmd.Flags().StringVar(&ap.form.Price, "price", "", "Unit price")

	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func (ap *AddProductCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	d, err := ap.session.Dashboard(ctx)
	if err != nil {
		return err
	}

	submitErr := d.Forms.SubmitProduct(ctx, ap.form)
	printMessage(cmd, d, dashboard.ProductSuccess)
	return submitErr
}

func printMessage(cmd *cobra.Command, d *dashboard.Dashboard, id string) {
	if el, ok := d.Page.Element(id); ok && el.Text != "" {
		fmt.Fprintln(cmd.OutOrStdout(), el.Text)
	}
}
