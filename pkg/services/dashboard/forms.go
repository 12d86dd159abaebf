package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/store/client"
	"github.com/de-tools/sales-atlas/pkg/view"
	"github.com/rs/zerolog"
)

const (
	ClassSuccess = "success"
	ClassError   = "error"

	msgChooseFile    = "Please choose a file first."
	msgCustomerAdded = "Customer added successfully."
	msgProductAdded  = "Product added successfully."
)

var ErrNoFileChosen = errors.New("no file chosen")

// RejectedError is a submission the backend answered with an error field.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "Error: " + e.Message
}

type refresher interface {
	RefreshAll(ctx context.Context, trigger Trigger) error
}

// Forms submits uploads and forms to the backend. Each widget reports
// into its own message element; a success triggers a full refresh.
type Forms struct {
	backend   client.Backend
	page      *view.Page
	refresher refresher
}

func NewForms(backend client.Backend, page *view.Page, refresher refresher) *Forms {
	return &Forms{
		backend:   backend,
		page:      page,
		refresher: refresher,
	}
}

// ChooseFile records the file picked for an upload widget.
func (f *Forms) ChooseFile(kind api.UploadKind, filename string) error {
	return f.page.SetValue(FileInput(kind), filename)
}

// Upload sends content as the CSV for kind. An empty filename or nil
// content is treated as no file chosen.
func (f *Forms) Upload(ctx context.Context, kind api.UploadKind, filename string, content io.Reader) error {
	logger := zerolog.Ctx(ctx).With().Str("upload", string(kind)).Logger()
	input, msg := FileInput(kind), UploadMessage(kind)

	if filename == "" || content == nil {
		if err := f.page.SetMessage(msg, msgChooseFile, ClassError); err != nil {
			return err
		}
		return ErrNoFileChosen
	}
	if err := f.ChooseFile(kind, filename); err != nil {
		return err
	}

	res, err := f.backend.Upload(ctx, kind, filename, content)
	if err != nil {
		logger.Error().Err(err).Msg("upload failed")
		return f.fail(msg, err.Error(), err)
	}
	if res.Failed() {
		logger.Warn().Str("error", res.Error).Msg("upload rejected")
		return f.fail(msg, res.Error, nil)
	}

	if err := f.page.SetMessage(msg, fmt.Sprintf("Uploaded %d rows.", res.Rows), ClassSuccess); err != nil {
		return err
	}
	if err := f.page.Reset(input); err != nil {
		return err
	}

	logger.Info().Int64("rows", res.Rows).Msg("upload accepted")
	return f.refresher.RefreshAll(ctx, TriggerMutation)
}

func (f *Forms) SubmitCustomer(ctx context.Context, form api.CustomerForm) error {
	if err := f.fill(map[string]string{
		CustomerName:    form.Name,
		CustomerEmail:   form.Email,
		CustomerPhone:   form.Phone,
		CustomerAddress: form.Address,
	}); err != nil {
		return err
	}

	res, err := f.backend.AddCustomer(ctx, form)
	return f.complete(ctx, "customer", res, err, FormSuccess, msgCustomerAdded, customerFields)
}

func (f *Forms) SubmitProduct(ctx context.Context, form api.ProductForm) error {
	if err := f.fill(map[string]string{
		ProductName:  form.Name,
		ProductQty:   form.Qty,
		ProductPrice: form.Price,
	}); err != nil {
		return err
	}

	res, err := f.backend.AddProduct(ctx, form)
	return f.complete(ctx, "product", res, err, ProductSuccess, msgProductAdded, productFields)
}

func (f *Forms) complete(
	ctx context.Context,
	name string,
	res *api.MutationResult,
	err error,
	msg, success string,
	fields []string,
) error {
	logger := zerolog.Ctx(ctx).With().Str("form", name).Logger()

	if err != nil {
		logger.Error().Err(err).Msg("form submission failed")
		return f.fail(msg, err.Error(), err)
	}
	if res.Failed() {
		logger.Warn().Str("error", res.Error).Msg("form rejected")
		return f.fail(msg, res.Error, nil)
	}

	if err := f.page.SetMessage(msg, success, ClassSuccess); err != nil {
		return err
	}
	if err := f.page.Reset(fields...); err != nil {
		return err
	}
	return f.refresher.RefreshAll(ctx, TriggerMutation)
}

// fail shows message as an error on msg and leaves the inputs alone.
// cause is returned when set, otherwise a RejectedError.
func (f *Forms) fail(msg, message string, cause error) error {
	if err := f.page.SetMessage(msg, "Error: "+message, ClassError); err != nil {
		return err
	}
	if cause != nil {
		return cause
	}
	return &RejectedError{Message: message}
}

func (f *Forms) fill(values map[string]string) error {
	for id, v := range values {
		if err := f.page.SetValue(id, v); err != nil {
			return err
		}
	}
	return nil
}
