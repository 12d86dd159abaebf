package dashboard

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/de-tools/sales-atlas/pkg/chart"
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/services/dashboard"
	"github.com/de-tools/sales-atlas/pkg/view"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxUploadSize = 32 << 20

//go:embed templates/index.html
var templates embed.FS

// Themes offered by the theme selector.
var Themes = []string{"light", "dark"}

var chartTitles = map[string]string{
	dashboard.MonthlyChart:  "Monthly Sales",
	dashboard.SalesChart:    "Sales & Forecast",
	dashboard.SegmentsChart: "Product Demand Segments",
}

type Handler struct {
	dash *dashboard.Dashboard
	tmpl *template.Template
}

func NewHandler(dash *dashboard.Dashboard) (*Handler, error) {
	tmpl, err := template.New("index.html").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &Handler{dash: dash, tmpl: tmpl}, nil
}

type chartView struct {
	Slot  string
	Title string
	Live  bool
}

type uploadView struct {
	Kind    api.UploadKind
	Input   string
	Message view.Element
}

type pageView struct {
	BodyClass string
	Theme     string
	Themes    []string
	El        map[string]view.Element
	Charts    []chartView
	Uploads   []uploadView
}

// Index refreshes the page and renders it. The redirect that follows an
// action already refreshed, so it is served as is.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	if r.URL.Query().Get(refreshedParam) == "" {
		if err := h.dash.Refresher.RefreshAll(ctx, dashboard.TriggerStartup); err != nil {
			logger.Warn().Err(err).Msg("page load refresh incomplete")
		}
	}
	snap := h.dash.Page.Snapshot()

	data := pageView{
		BodyClass: strings.Join(snap.Body, " "),
		Themes:    Themes,
		El:        make(map[string]view.Element, len(snap.Elements)),
	}
	for _, el := range snap.Elements {
		data.El[el.ID] = el
	}
	data.Theme = data.El[dashboard.ThemeSelector].Value

	for _, slot := range dashboard.ChartSlots {
		_, live := h.dash.Charts.Handle(slot)
		data.Charts = append(data.Charts, chartView{Slot: slot, Title: chartTitles[slot], Live: live})
	}
	for _, kind := range api.UploadKinds {
		data.Uploads = append(data.Uploads, uploadView{
			Kind:    kind,
			Input:   dashboard.FileInput(kind),
			Message: data.El[dashboard.UploadMessage(kind)],
		})
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		logger.Error().Err(err).Msg("failed to render dashboard")
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn().Err(err).Msg("failed to write dashboard")
	}
}

func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	slot := chi.URLParam(r, "slot")

	var buf bytes.Buffer
	err := h.dash.Charts.RenderPNG(slot, &buf)
	switch {
	case errors.Is(err, chart.ErrNoChart), errors.Is(err, chart.ErrEmptyChart):
		http.NotFound(w, r)
		return
	case err != nil:
		logger.Error().Err(err).Str("slot", slot).Msg("failed to render chart")
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn().Err(err).Str("slot", slot).Msg("failed to write chart")
	}
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(h.dash.Page.Snapshot())
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode page state")
	}
}

func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.dash.Refresher.RefreshAll(ctx, dashboard.TriggerManual); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("manual refresh incomplete")
	}
	backToPage(w, r)
}

func (h *Handler) Theme(w http.ResponseWriter, r *http.Request) {
	class, err := h.dash.Theme.ApplyTheme(r.FormValue("theme"))
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to apply theme")
		http.Error(w, "failed to apply theme", http.StatusInternalServerError)
		return
	}
	zerolog.Ctx(r.Context()).Debug().Str("class", class).Msg("theme applied")
	backToPage(w, r)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	kind, err := api.ParseUploadKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		logger.Warn().Err(err).Msg("failed to parse upload")
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		err = h.dash.Forms.Upload(ctx, kind, "", nil)
	case err != nil:
		logger.Warn().Err(err).Msg("failed to read upload")
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	default:
		defer func() {
			if err := file.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close upload")
			}
		}()
		err = h.dash.Forms.Upload(ctx, kind, header.Filename, file)
	}
	if err != nil {
		logger.Debug().Err(err).Str("kind", string(kind)).Msg("upload not accepted")
	}

	backToPage(w, r)
}

func (h *Handler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := api.CustomerForm{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Phone:   r.FormValue("phone"),
		Address: r.FormValue("address"),
	}
	if err := h.dash.Forms.SubmitCustomer(ctx, form); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("customer not added")
	}
	backToPage(w, r)
}

func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := api.ProductForm{
		Name:  r.FormValue("pname"),
		Qty:   r.FormValue("qty"),
		Price: r.FormValue("price"),
	}
	if err := h.dash.Forms.SubmitProduct(ctx, form); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("product not added")
	}
	backToPage(w, r)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

const refreshedParam = "refreshed"

func backToPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/?"+refreshedParam+"=1", http.StatusSeeOther)
}
